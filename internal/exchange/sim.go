package exchange

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/brokercore/internal/domain"
	"github.com/efreitasn/brokercore/internal/store"
)

// SimExchange is the reference Gateway: a single best-price-per-symbol
// oracle over the quote store. Match offers min(order remainder, quoted
// available quantity) at the quoted price when the price is acceptable;
// the quote's tradable quantity is only decremented on Commit.
type SimExchange struct {
	quotes *store.QuoteStore
}

// NewSimExchange creates a simulator over the given quote store.
func NewSimExchange(quotes *store.QuoteStore) *SimExchange {
	return &SimExchange{quotes: quotes}
}

// Match evaluates the order against the current quote. A missing quote or
// an unacceptable price yields no fill. The quote itself is left untouched
// until the caller commits the fill.
func (e *SimExchange) Match(order *domain.Order) (MatchResult, error) {
	quote, err := e.quotes.Get(order.Symbol)
	if err != nil {
		return NoFill(), nil
	}

	if !priceAcceptable(order, quote.Price) {
		return NoFill(), nil
	}

	filled := decimal.Min(order.RemainingQty, quote.AvailableQty)
	if filled.Sign() <= 0 {
		return NoFill(), nil
	}

	executionID := uuid.NewString()
	if filled.Equal(order.RemainingQty) {
		return FullFill(filled, quote.Price, executionID), nil
	}
	return PartialFill(filled, quote.Price, executionID), nil
}

// Commit consumes the filled quantity from the symbol's quoted liquidity.
func (e *SimExchange) Commit(order *domain.Order, result MatchResult) error {
	if !result.HasFill() {
		return nil
	}

	quote, err := e.quotes.Get(order.Symbol)
	if err != nil {
		return err
	}
	if _, err := quote.ConsumeAvailable(result.FillQuantity); err != nil {
		return err
	}
	return e.quotes.Save(quote)
}

// Cancel acknowledges immediately: no order rests in a venue-side queue.
func (e *SimExchange) Cancel(order *domain.Order) error {
	return nil
}

// priceAcceptable applies the price-acceptability test: market orders
// always accept the quote; a limit buy accepts quotes at or below its
// limit, a limit sell at or above.
func priceAcceptable(order *domain.Order, quotePrice decimal.Decimal) bool {
	if order.OrderType == domain.OrderTypeMarket {
		return true
	}
	if order.Side == domain.OrderSideBuy {
		return quotePrice.LessThanOrEqual(*order.LimitPrice)
	}
	return quotePrice.GreaterThanOrEqual(*order.LimitPrice)
}
