package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fill is the immutable record of one execution against an order.
// Fills are append-only; their quantities sum to the order's filled
// quantity.
type Fill struct {
	ExecutionID  string
	OrderID      string
	FillPrice    decimal.Decimal
	FillQuantity decimal.Decimal
	FeeAmount    decimal.Decimal
	TaxAmount    decimal.Decimal
	FilledAt     time.Time
}

// Notional returns price × quantity for this fill.
func (f *Fill) Notional() decimal.Decimal {
	return f.FillPrice.Mul(f.FillQuantity)
}
