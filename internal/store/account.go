package store

import (
	"sync"
	"time"

	"github.com/efreitasn/brokercore/internal/domain"
)

type positionKey struct {
	AccountID int64
	Symbol    string
}

// AccountStore is a thread-safe in-memory store for the account ledger:
// cash balances keyed by account ID and positions keyed by
// (account ID, symbol). Saves are guarded by an optimistic version check.
type AccountStore struct {
	mu        sync.RWMutex
	cash      map[int64]*domain.CashBalance
	positions map[positionKey]*domain.Position
}

// NewAccountStore creates an empty AccountStore.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		cash:      make(map[int64]*domain.CashBalance),
		positions: make(map[positionKey]*domain.Position),
	}
}

// GetCash retrieves an account's cash balance. It returns
// domain.ErrAccountNotFound if the account has no balance row.
func (s *AccountStore) GetCash(accountID int64) (*domain.CashBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cash[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return c.Clone(), nil
}

// SaveCash persists a cash balance. New rows are inserted with version 1;
// existing rows fail with domain.ErrConflictRetryable when the caller's
// copy is stale.
func (s *AccountStore) SaveCash(c *domain.CashBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.cash[c.AccountID]; ok && stored.Version != c.Version {
		return domain.ErrConflictRetryable
	}
	c.Version++
	c.UpdatedAt = time.Now()
	s.cash[c.AccountID] = c.Clone()
	return nil
}

// GetPosition retrieves a position snapshot. It returns
// domain.ErrPositionNotFound if the account holds nothing in the symbol.
func (s *AccountStore) GetPosition(accountID int64, symbol string) (*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.positions[positionKey{AccountID: accountID, Symbol: symbol}]
	if !ok {
		return nil, domain.ErrPositionNotFound
	}
	return p.Clone(), nil
}

// SavePosition persists a position. New rows are inserted with version 1;
// existing rows fail with domain.ErrConflictRetryable when the caller's
// copy is stale.
func (s *AccountStore) SavePosition(p *domain.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := positionKey{AccountID: p.AccountID, Symbol: p.Symbol}
	if stored, ok := s.positions[key]; ok && stored.Version != p.Version {
		return domain.ErrConflictRetryable
	}
	p.Version++
	p.UpdatedAt = time.Now()
	s.positions[key] = p.Clone()
	return nil
}
