// Package exchange defines the matching capability the order service
// depends on, plus a reference implementation backed by the quote store.
// A real order-book venue can replace the simulator without the service
// layer changing.
package exchange

import (
	"github.com/shopspring/decimal"

	"github.com/efreitasn/brokercore/internal/domain"
)

// MatchType classifies the outcome of one matching attempt.
type MatchType string

const (
	MatchTypeNoFill      MatchType = "NO_FILL"
	MatchTypePartialFill MatchType = "PARTIAL_FILL"
	MatchTypeFullFill    MatchType = "FULL_FILL"
)

// MatchResult is the matching outcome for a single order evaluation.
type MatchResult struct {
	Type         MatchType
	FillQuantity decimal.Decimal
	FillPrice    decimal.Decimal
	ExecutionID  string
}

// HasFill reports whether the attempt produced an execution.
func (r MatchResult) HasFill() bool {
	return r.Type == MatchTypePartialFill || r.Type == MatchTypeFullFill
}

// NoFill returns the empty outcome.
func NoFill() MatchResult {
	return MatchResult{Type: MatchTypeNoFill, FillQuantity: decimal.Zero}
}

// PartialFill returns an outcome that filled part of the order's remainder.
func PartialFill(qty, price decimal.Decimal, executionID string) MatchResult {
	return MatchResult{Type: MatchTypePartialFill, FillQuantity: qty, FillPrice: price, ExecutionID: executionID}
}

// FullFill returns an outcome that filled the order's whole remainder.
func FullFill(qty, price decimal.Decimal, executionID string) MatchResult {
	return MatchResult{Type: MatchTypeFullFill, FillQuantity: qty, FillPrice: price, ExecutionID: executionID}
}

// Gateway is the matching backend consumed by the order service. Match
// evaluates one order against available liquidity without committing
// anything venue-side; Commit finalizes a previously returned fill once
// broker-side settlement has succeeded. Cancel acknowledges a best-effort
// cancellation of a previously submitted order.
type Gateway interface {
	Match(order *domain.Order) (MatchResult, error)
	Commit(order *domain.Order, result MatchResult) error
	Cancel(order *domain.Order) error
}
