package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	// Entity lookups.
	ErrOrderNotFound    = errors.New("order_not_found")
	ErrHoldNotFound     = errors.New("order_hold_not_found")
	ErrAccountNotFound  = errors.New("account_not_found")
	ErrPositionNotFound = errors.New("position_not_found")
	ErrQuoteNotFound    = errors.New("quote_not_found")

	// Ledger and hold mutation guards.
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInsufficientBalance  = errors.New("insufficient_balance")
	ErrInsufficientHoldings = errors.New("insufficient_holdings")

	// Reservation failures surfaced to the order caller.
	ErrInsufficientCash     = errors.New("insufficient_cash")
	ErrInsufficientQuantity = errors.New("insufficient_quantity")

	// State machine guards.
	ErrInvalidState = errors.New("order_invalid_state")

	// Order creation and amendment validation.
	ErrInvalidTimeInForce   = errors.New("invalid_time_in_force")
	ErrAmendNotAllowed      = errors.New("amend_not_allowed")
	ErrInvalidAmendRequest  = errors.New("invalid_amend_request")
	ErrInvalidAmendQuantity = errors.New("invalid_amend_quantity")
	ErrAmendNoChange        = errors.New("amend_no_change")

	// Optimistic concurrency: a save observed a stale version. The caller
	// may retry the whole operation.
	ErrConflictRetryable = errors.New("conflict_retryable")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
