// Package sched drives the time-based order lifecycle transitions. The
// order service itself has no timer dependency; this package is the
// external trigger.
package sched

import (
	"context"
	"log/slog"
	"time"
)

// DayOrderExpirer is the slice of the order service the sweeper needs.
type DayOrderExpirer interface {
	ExpireDayOrders() (int, error)
}

// ExpirySweeper expires open DAY orders once the trading session has
// closed. It polls at the configured interval but only sweeps on ticks at
// or after the session-close time of day, so open DAY orders survive until
// the session actually ends.
type ExpirySweeper struct {
	interval     time.Duration
	sessionClose time.Duration // time of day as an offset from midnight
	orders       DayOrderExpirer
	logger       *slog.Logger
	now          func() time.Time
}

// NewExpirySweeper creates a sweeper polling at the given interval and
// sweeping after the given session-close time of day.
func NewExpirySweeper(interval, sessionClose time.Duration, orders DayOrderExpirer, logger *slog.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		interval:     interval,
		sessionClose: sessionClose,
		orders:       orders,
		logger:       logger,
		now:          time.Now,
	}
}

// Start launches a background goroutine that polls at the configured
// interval until ctx is cancelled.
func (s *ExpirySweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *ExpirySweeper) sweep() {
	if !s.sessionClosed() {
		return
	}

	count, err := s.orders.ExpireDayOrders()
	if err != nil {
		s.logger.Error("day order expiration sweep failed",
			slog.Int("expired", count),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.Info("day order expiration sweep complete", slog.Int("expired", count))
}

// sessionClosed reports whether the current time of day is at or past the
// session close. Expiring again after close is harmless: a sweep over no
// open DAY orders is a no-op.
func (s *ExpirySweeper) sessionClosed() bool {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return now.Sub(midnight) >= s.sessionClose
}
