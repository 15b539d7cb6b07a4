package service

import (
	"github.com/shopspring/decimal"

	"github.com/efreitasn/brokercore/internal/domain"
	"github.com/efreitasn/brokercore/internal/store"
)

// AccountService seeds and reads the account ledger. Seeding overwrites
// the row and drops any held amount; it exists for test and development
// setups, not for settlement.
type AccountService struct {
	accounts *store.AccountStore
}

// NewAccountService creates an AccountService.
func NewAccountService(accounts *store.AccountStore) *AccountService {
	return &AccountService{accounts: accounts}
}

// UpsertCash creates or overwrites an account's cash balance.
func (s *AccountService) UpsertCash(accountID int64, availableCash decimal.Decimal) (*domain.CashBalance, error) {
	if availableCash.Sign() < 0 {
		return nil, &domain.ValidationError{Message: "available_cash must not be negative"}
	}

	cash, err := s.accounts.GetCash(accountID)
	if err != nil {
		cash = domain.NewCashBalance(accountID, availableCash)
	}
	if err := cash.ResetAvailable(availableCash); err != nil {
		return nil, err
	}
	if err := s.accounts.SaveCash(cash); err != nil {
		return nil, err
	}
	return cash, nil
}

// UpsertPosition creates or overwrites a position snapshot.
func (s *AccountService) UpsertPosition(accountID int64, rawSymbol string, availableQty, averagePrice decimal.Decimal) (*domain.Position, error) {
	if availableQty.Sign() < 0 {
		return nil, &domain.ValidationError{Message: "available_quantity must not be negative"}
	}
	if !domain.IsWholeShare(availableQty) {
		return nil, &domain.ValidationError{Message: "available_quantity must be a whole-share unit"}
	}
	if averagePrice.Sign() < 0 {
		return nil, &domain.ValidationError{Message: "average_price must not be negative"}
	}

	symbol := domain.NormalizeSymbol(rawSymbol)
	if symbol == "" {
		return nil, &domain.ValidationError{Message: "symbol is required"}
	}

	position, err := s.accounts.GetPosition(accountID, symbol)
	if err != nil {
		position = domain.NewPosition(accountID, symbol, availableQty, averagePrice)
	}
	if err := position.ResetHolding(availableQty, averagePrice); err != nil {
		return nil, err
	}
	if err := s.accounts.SavePosition(position); err != nil {
		return nil, err
	}
	return position, nil
}

// GetCash returns an account's cash balance.
func (s *AccountService) GetCash(accountID int64) (*domain.CashBalance, error) {
	return s.accounts.GetCash(accountID)
}

// GetPosition returns an account's position in a symbol.
func (s *AccountService) GetPosition(accountID int64, rawSymbol string) (*domain.Position, error) {
	return s.accounts.GetPosition(accountID, domain.NormalizeSymbol(rawSymbol))
}
