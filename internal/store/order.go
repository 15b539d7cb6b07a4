package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/efreitasn/brokercore/internal/domain"
)

// openOrderEntry is one open order in the per-symbol fairness index,
// ordered by creation time ascending with the store-assigned sequence as
// the tie-break. Min() returns the oldest open order.
type openOrderEntry struct {
	CreatedAt time.Time
	Seq       int64
	OrderID   string
}

func openOrderLess(a, b openOrderEntry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.Seq < b.Seq
}

type idempotencyKey struct {
	AccountID int64
	Key       string
}

// OrderStore is a thread-safe in-memory store for orders with a primary
// index by order ID, a uniqueness index by (account, idempotency key), and
// a per-symbol B-tree of open orders that backs the oldest-first ordering
// of rematch and expiration sweeps. Saves are guarded by an optimistic
// version check.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	byIdem map[idempotencyKey]string
	open   map[string]*btree.BTreeG[openOrderEntry] // symbol → open orders
	seq    int64
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[string]*domain.Order),
		byIdem: make(map[idempotencyKey]string),
		open:   make(map[string]*btree.BTreeG[openOrderEntry]),
	}
}

const openIndexDegree = 32

func (s *OrderStore) openTree(symbol string) *btree.BTreeG[openOrderEntry] {
	tree, ok := s.open[symbol]
	if !ok {
		tree = btree.NewG(openIndexDegree, openOrderLess)
		s.open[symbol] = tree
	}
	return tree
}

// Create persists a new order, assigning its sequence, creation timestamp,
// and initial version. The caller must have assigned the order ID.
func (s *OrderStore) Create(o *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	o.Seq = s.seq
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	o.Version = 1

	s.orders[o.ID] = o.Clone()
	s.byIdem[idempotencyKey{AccountID: o.AccountID, Key: o.IdempotencyKey}] = o.ID
	s.syncOpenIndexLocked(o)
}

// Save replaces a previously loaded order. It fails with
// domain.ErrConflictRetryable when the caller's copy is stale.
func (s *OrderStore) Save(o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[o.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if stored.Version != o.Version {
		return domain.ErrConflictRetryable
	}

	o.Version++
	o.UpdatedAt = time.Now()
	s.orders[o.ID] = o.Clone()
	s.syncOpenIndexLocked(o)
	return nil
}

// syncOpenIndexLocked keeps the per-symbol open-order index in step with
// the order's status.
func (s *OrderStore) syncOpenIndexLocked(o *domain.Order) {
	entry := openOrderEntry{CreatedAt: o.CreatedAt, Seq: o.Seq, OrderID: o.ID}
	tree := s.openTree(o.Symbol)
	if o.IsOpen() {
		tree.ReplaceOrInsert(entry)
	} else {
		tree.Delete(entry)
	}
}

// Get retrieves an order by ID. It returns domain.ErrOrderNotFound if the
// order does not exist.
func (s *OrderStore) Get(id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o.Clone(), nil
}

// GetByIdempotencyKey retrieves the order previously created with the
// given (account, idempotency key) pair.
func (s *OrderStore) GetByIdempotencyKey(accountID int64, key string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byIdem[idempotencyKey{AccountID: accountID, Key: key}]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return s.orders[id].Clone(), nil
}

// ListOpenBySymbol returns the open (NEW or PARTIALLY_FILLED) orders for a
// symbol, oldest created first with the sequence as the tie-break.
func (s *OrderStore) ListOpenBySymbol(symbol string) []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.open[symbol]
	if !ok {
		return nil
	}

	orders := make([]*domain.Order, 0, tree.Len())
	tree.Ascend(func(e openOrderEntry) bool {
		orders = append(orders, s.orders[e.OrderID].Clone())
		return true
	})
	return orders
}

// ListOpenByTimeInForce returns all open orders with the given time in
// force across every symbol, oldest created first with the sequence as the
// tie-break.
func (s *OrderStore) ListOpenByTimeInForce(tif domain.TimeInForce) []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []*domain.Order
	for _, tree := range s.open {
		tree.Ascend(func(e openOrderEntry) bool {
			o := s.orders[e.OrderID]
			if o.TimeInForce == tif {
				orders = append(orders, o.Clone())
			}
			return true
		})
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].Seq < orders[j].Seq
	})
	return orders
}
