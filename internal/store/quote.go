package store

import (
	"sync"
	"time"

	"github.com/efreitasn/brokercore/internal/domain"
)

// QuoteStore is a thread-safe in-memory store for the per-symbol best
// quote published by the price source. Saves are guarded by an optimistic
// version check.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes map[string]*domain.Quote
}

// NewQuoteStore creates an empty QuoteStore.
func NewQuoteStore() *QuoteStore {
	return &QuoteStore{quotes: make(map[string]*domain.Quote)}
}

// Get retrieves the quote for a symbol. It returns
// domain.ErrQuoteNotFound if the symbol has never been quoted.
func (s *QuoteStore) Get(symbol string) (*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[symbol]
	if !ok {
		return nil, domain.ErrQuoteNotFound
	}
	return q.Clone(), nil
}

// Save persists a quote. New symbols are inserted with version 1; existing
// rows fail with domain.ErrConflictRetryable when the caller's copy is
// stale.
func (s *QuoteStore) Save(q *domain.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.quotes[q.Symbol]; ok && stored.Version != q.Version {
		return domain.ErrConflictRetryable
	}
	q.Version++
	q.UpdatedAt = time.Now()
	s.quotes[q.Symbol] = q.Clone()
	return nil
}
