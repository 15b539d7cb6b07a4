package domain

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits kept for every persisted
// monetary or quantity value.
const MoneyScale = 4

// ToMoney rounds a derived value (notional, fee, weighted price) to
// MoneyScale digits, half-up.
func ToMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// IsWholeShare reports whether a quantity is a whole-share unit. Quantities
// are stored at the money scale but must not carry a fractional part at the
// order-validation boundary.
func IsWholeShare(q decimal.Decimal) bool {
	return q.IsInteger()
}
