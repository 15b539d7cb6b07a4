package store

import (
	"sync"

	"github.com/efreitasn/brokercore/internal/domain"
)

// FillStore is a thread-safe append-only store for fills, indexed by
// order ID in insertion order.
type FillStore struct {
	mu    sync.RWMutex
	fills map[string][]*domain.Fill // order_id → fills (append-only)
}

// NewFillStore creates an empty FillStore.
func NewFillStore() *FillStore {
	return &FillStore{fills: make(map[string][]*domain.Fill)}
}

// Append records a fill against its order.
func (s *FillStore) Append(f *domain.Fill) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *f
	s.fills[f.OrderID] = append(s.fills[f.OrderID], &c)
}

// ListByOrder returns the fills for an order in execution order.
func (s *FillStore) ListByOrder(orderID string) []*domain.Fill {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.fills[orderID]
	fills := make([]*domain.Fill, 0, len(stored))
	for _, f := range stored {
		c := *f
		fills = append(fills, &c)
	}
	return fills
}
