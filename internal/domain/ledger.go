package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashBalance is the per-account cash snapshot with hold tracking.
// Available and held never go negative; hold/release move cash between the
// two buckets, consumeHeld spends held cash, addAvailable credits inbound
// settlement proceeds.
type CashBalance struct {
	AccountID     int64
	AvailableCash decimal.Decimal
	HeldCash      decimal.Decimal
	UpdatedAt     time.Time
	Version       int64
}

// NewCashBalance creates a balance with the given available cash and
// nothing held.
func NewCashBalance(accountID int64, availableCash decimal.Decimal) *CashBalance {
	return &CashBalance{
		AccountID:     accountID,
		AvailableCash: availableCash,
		HeldCash:      decimal.Zero,
	}
}

// Hold moves amount from available to held.
func (c *CashBalance) Hold(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if c.AvailableCash.LessThan(amount) {
		return ErrInsufficientBalance
	}
	c.AvailableCash = c.AvailableCash.Sub(amount)
	c.HeldCash = c.HeldCash.Add(amount)
	return nil
}

// ConsumeHeld spends amount of held cash. The funds settle elsewhere;
// available cash is untouched.
func (c *CashBalance) ConsumeHeld(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if c.HeldCash.LessThan(amount) {
		return ErrInsufficientBalance
	}
	c.HeldCash = c.HeldCash.Sub(amount)
	return nil
}

// ReleaseHeld moves amount back from held to available.
func (c *CashBalance) ReleaseHeld(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if c.HeldCash.LessThan(amount) {
		return ErrInsufficientBalance
	}
	c.HeldCash = c.HeldCash.Sub(amount)
	c.AvailableCash = c.AvailableCash.Add(amount)
	return nil
}

// AddAvailable credits amount unconditionally (sell proceeds).
func (c *CashBalance) AddAvailable(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	c.AvailableCash = c.AvailableCash.Add(amount)
	return nil
}

// ResetAvailable overwrites the balance for account seeding, dropping any
// held cash.
func (c *CashBalance) ResetAvailable(availableCash decimal.Decimal) error {
	if availableCash.Sign() < 0 {
		return ErrInvalidAmount
	}
	c.AvailableCash = availableCash
	c.HeldCash = decimal.Zero
	return nil
}

// Clone returns a copy for staged mutation.
func (c *CashBalance) Clone() *CashBalance {
	b := *c
	return &b
}

// Position is the per-(account, symbol) share snapshot with hold tracking
// for sell orders. averagePrice is the cost basis, updated only on buy
// fills by a quantity-weighted average.
type Position struct {
	AccountID    int64
	Symbol       string
	AvailableQty decimal.Decimal
	HeldQty      decimal.Decimal
	AveragePrice decimal.Decimal
	UpdatedAt    time.Time
	Version      int64
}

// NewPosition creates a position snapshot with nothing held.
func NewPosition(accountID int64, symbol string, availableQty, averagePrice decimal.Decimal) *Position {
	return &Position{
		AccountID:    accountID,
		Symbol:       symbol,
		AvailableQty: availableQty,
		HeldQty:      decimal.Zero,
		AveragePrice: averagePrice,
	}
}

// Hold moves qty from available to held.
func (p *Position) Hold(qty decimal.Decimal) error {
	if qty.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if p.AvailableQty.LessThan(qty) {
		return ErrInsufficientHoldings
	}
	p.AvailableQty = p.AvailableQty.Sub(qty)
	p.HeldQty = p.HeldQty.Add(qty)
	return nil
}

// ConsumeHeld removes qty of held shares (delivered on a sell fill).
func (p *Position) ConsumeHeld(qty decimal.Decimal) error {
	if qty.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if p.HeldQty.LessThan(qty) {
		return ErrInsufficientHoldings
	}
	p.HeldQty = p.HeldQty.Sub(qty)
	return nil
}

// ReleaseHeld moves qty back from held to available.
func (p *Position) ReleaseHeld(qty decimal.Decimal) error {
	if qty.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if p.HeldQty.LessThan(qty) {
		return ErrInsufficientHoldings
	}
	p.HeldQty = p.HeldQty.Sub(qty)
	p.AvailableQty = p.AvailableQty.Add(qty)
	return nil
}

// AddBoughtQuantity credits a buy fill and recomputes the cost basis:
// newAvg = (oldAvg×oldQty + price×qty) / (oldQty+qty), half-up at the
// money scale.
func (p *Position) AddBoughtQuantity(qty, price decimal.Decimal) error {
	if qty.Sign() <= 0 || price.Sign() <= 0 {
		return ErrInvalidAmount
	}

	currentValue := p.AveragePrice.Mul(p.AvailableQty)
	newValue := price.Mul(qty)
	newTotalQty := p.AvailableQty.Add(qty)

	p.AveragePrice = currentValue.Add(newValue).DivRound(newTotalQty, MoneyScale)
	p.AvailableQty = newTotalQty
	return nil
}

// ResetHolding overwrites the position for account seeding, dropping any
// held quantity.
func (p *Position) ResetHolding(availableQty, averagePrice decimal.Decimal) error {
	if availableQty.Sign() < 0 || averagePrice.Sign() < 0 {
		return ErrInvalidAmount
	}
	p.AvailableQty = availableQty
	p.HeldQty = decimal.Zero
	p.AveragePrice = averagePrice
	return nil
}

// Clone returns a copy for staged mutation.
func (p *Position) Clone() *Position {
	c := *p
	return &c
}
