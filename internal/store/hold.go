package store

import (
	"sync"
	"time"

	"github.com/efreitasn/brokercore/internal/domain"
)

// HoldStore is a thread-safe in-memory store for order holds, keyed by
// order ID (one hold per order). Holds are never deleted; they remain as
// the reservation audit trail.
type HoldStore struct {
	mu    sync.RWMutex
	holds map[string]*domain.OrderHold
}

// NewHoldStore creates an empty HoldStore.
func NewHoldStore() *HoldStore {
	return &HoldStore{holds: make(map[string]*domain.OrderHold)}
}

// Create persists a new hold for its order.
func (s *HoldStore) Create(h *domain.OrderHold) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h.CreatedAt = time.Now()
	h.UpdatedAt = h.CreatedAt
	h.Version = 1
	s.holds[h.OrderID] = h.Clone()
}

// GetByOrder retrieves the hold for an order. It returns
// domain.ErrHoldNotFound if no hold exists.
func (s *HoldStore) GetByOrder(orderID string) (*domain.OrderHold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.holds[orderID]
	if !ok {
		return nil, domain.ErrHoldNotFound
	}
	return h.Clone(), nil
}

// Save replaces a previously loaded hold. It fails with
// domain.ErrConflictRetryable when the caller's copy is stale.
func (s *HoldStore) Save(h *domain.OrderHold) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.holds[h.OrderID]
	if !ok {
		return domain.ErrHoldNotFound
	}
	if stored.Version != h.Version {
		return domain.ErrConflictRetryable
	}

	h.Version++
	h.UpdatedAt = time.Now()
	s.holds[h.OrderID] = h.Clone()
	return nil
}
