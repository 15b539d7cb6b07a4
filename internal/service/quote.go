package service

import (
	"github.com/shopspring/decimal"

	"github.com/efreitasn/brokercore/internal/domain"
	"github.com/efreitasn/brokercore/internal/store"
)

// QuoteService maintains the per-symbol best quote and triggers a rematch
// of open orders immediately after every update.
type QuoteService struct {
	quotes *store.QuoteStore
	orders *OrderService
}

// NewQuoteService creates a QuoteService.
func NewQuoteService(quotes *store.QuoteStore, orders *OrderService) *QuoteService {
	return &QuoteService{quotes: quotes, orders: orders}
}

// UpsertQuote validates and stores a new price/liquidity snapshot for the
// symbol, then re-attempts matching for the symbol's open DAY orders.
func (s *QuoteService) UpsertQuote(rawSymbol string, price, availableQty decimal.Decimal) (*domain.Quote, error) {
	if price.Sign() <= 0 {
		return nil, &domain.ValidationError{Message: "price must be positive"}
	}
	if availableQty.Sign() < 0 {
		return nil, &domain.ValidationError{Message: "available_quantity must not be negative"}
	}

	symbol := domain.NormalizeSymbol(rawSymbol)
	if symbol == "" {
		return nil, &domain.ValidationError{Message: "symbol is required"}
	}

	quote, err := s.quotes.Get(symbol)
	if err != nil {
		quote = domain.NewQuote(symbol, price, availableQty)
	} else {
		quote.Update(price, availableQty)
	}
	if err := s.quotes.Save(quote); err != nil {
		return nil, err
	}

	if err := s.orders.RematchOpenOrdersForSymbol(symbol); err != nil {
		return nil, err
	}
	return quote, nil
}

// GetQuote returns the current quote for a symbol.
func (s *QuoteService) GetQuote(rawSymbol string) (*domain.Quote, error) {
	return s.quotes.Get(domain.NormalizeSymbol(rawSymbol))
}
