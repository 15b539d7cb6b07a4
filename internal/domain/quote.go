package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the single best price and tradable quantity for a symbol, as
// published by the external price source.
type Quote struct {
	Symbol       string
	Price        decimal.Decimal
	AvailableQty decimal.Decimal
	UpdatedAt    time.Time
	Version      int64
}

// NewQuote creates a quote snapshot.
func NewQuote(symbol string, price, availableQty decimal.Decimal) *Quote {
	return &Quote{
		Symbol:       symbol,
		Price:        price,
		AvailableQty: availableQty,
	}
}

// Update replaces the quoted price and tradable quantity.
func (q *Quote) Update(price, availableQty decimal.Decimal) {
	q.Price = price
	q.AvailableQty = availableQty
}

// ConsumeAvailable takes up to qty from the tradable quantity and returns
// how much was actually taken.
func (q *Quote) ConsumeAvailable(qty decimal.Decimal) (decimal.Decimal, error) {
	if qty.Sign() <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	consumed := decimal.Min(qty, q.AvailableQty)
	q.AvailableQty = q.AvailableQty.Sub(consumed)
	return consumed, nil
}

// Clone returns a copy for staged mutation.
func (q *Quote) Clone() *Quote {
	c := *q
	return &c
}

// NormalizeSymbol trims whitespace and uppercases a raw symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
