package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldType identifies which resource an order hold reserves.
type HoldType string

const (
	HoldTypeCash     HoldType = "CASH"     // buy orders reserve cash
	HoldTypeQuantity HoldType = "QUANTITY" // sell orders reserve shares
)

// OrderHold tracks how much of an order's reservation has been consumed by
// fills versus released back to the ledger. One-to-one with an order, never
// deleted: consumed + released <= total at all times, and consumed +
// released == total once the order is terminal.
type OrderHold struct {
	OrderID        string
	AccountID      int64
	HoldType       HoldType
	TotalAmount    decimal.Decimal
	ConsumedAmount decimal.Decimal
	ReleasedAmount decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int64
}

// NewOrderHold creates a hold with nothing consumed or released.
func NewOrderHold(orderID string, accountID int64, holdType HoldType, totalAmount decimal.Decimal) *OrderHold {
	return &OrderHold{
		OrderID:        orderID,
		AccountID:      accountID,
		HoldType:       holdType,
		TotalAmount:    totalAmount,
		ConsumedAmount: decimal.Zero,
		ReleasedAmount: decimal.Zero,
	}
}

// RemainingAmount returns the portion of the reservation not yet consumed
// or released.
func (h *OrderHold) RemainingAmount() decimal.Decimal {
	return h.TotalAmount.Sub(h.ConsumedAmount).Sub(h.ReleasedAmount)
}

// Consume marks amount of the reservation as settled by a fill.
func (h *OrderHold) Consume(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(h.RemainingAmount()) {
		return ErrInvalidAmount
	}
	h.ConsumedAmount = h.ConsumedAmount.Add(amount)
	return nil
}

// Release returns amount of the reservation to the ledger without
// consuming it (amend-down path).
func (h *OrderHold) Release(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(h.RemainingAmount()) {
		return ErrInvalidAmount
	}
	h.ReleasedAmount = h.ReleasedAmount.Add(amount)
	return nil
}

// ReleaseRemaining releases whatever is left of the reservation and returns
// the released amount, which may be zero.
func (h *OrderHold) ReleaseRemaining() decimal.Decimal {
	remaining := h.RemainingAmount()
	if remaining.Sign() > 0 {
		h.ReleasedAmount = h.ReleasedAmount.Add(remaining)
	}
	return remaining
}

// IncreaseTotal grows the reservation (amend-up path for buy orders).
func (h *OrderHold) IncreaseTotal(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	h.TotalAmount = h.TotalAmount.Add(amount)
	return nil
}

// Clone returns a copy for staged mutation.
func (h *OrderHold) Clone() *OrderHold {
	c := *h
	return &c
}
