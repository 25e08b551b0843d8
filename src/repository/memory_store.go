package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"swaprouter/src/model"
)

// MemoryOrderStore is a process-local order store for tests and local runs.
// It honors the same contracts as OrderRepository: compare-and-register on
// the order id, nonce advance inside the create step.
type MemoryOrderStore struct {
	mu      sync.Mutex
	orders  map[string]model.Order
	routes  map[string][]model.RouteSplit
	results map[string]model.ExecutionResult
	nonces  map[string]uint64
}

// NewMemoryOrderStore creates an empty store.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{
		orders:  make(map[string]model.Order),
		routes:  make(map[string][]model.RouteSplit),
		results: make(map[string]model.ExecutionResult),
		nonces:  make(map[string]uint64),
	}
}

// CreateOrder registers the order, its routes, and advances the nonce.
func (s *MemoryOrderStore) CreateOrder(_ context.Context, order *model.Order, routes []model.RouteSplit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.ID]; exists {
		return model.ErrDuplicateOrder
	}

	s.orders[order.ID] = *order
	stored := make([]model.RouteSplit, len(routes))
	copy(stored, routes)
	for i := range stored {
		stored[i].ID = uint(i + 1)
	}
	s.routes[order.ID] = stored
	s.nonces[order.Submitter]++
	return nil
}

// GetOrder returns a copy of the order, (nil, nil) when absent.
func (s *MemoryOrderStore) GetOrder(_ context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	clone := order
	return &clone, nil
}

// GetRoutes returns copies of the order's route splits.
func (s *MemoryOrderStore) GetRoutes(_ context.Context, id string) ([]model.RouteSplit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	routes := s.routes[id]
	out := make([]model.RouteSplit, len(routes))
	copy(out, routes)
	return out, nil
}

// CurrentNonce returns the submitter's nonce, zero when unseen.
func (s *MemoryOrderStore) CurrentNonce(_ context.Context, submitter string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nonces[submitter], nil
}

// MarkExecuted flips the order and its routes to executed, storing each
// route's realized output (aligned with insertion order).
func (s *MemoryOrderStore) MarkExecuted(_ context.Context, id string, executedAt time.Time, realizedOut []*model.BigInt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return model.ErrDuplicateOrder
	}
	order.Status = model.OrderStatusExecuted
	order.Executed = true
	order.ExecutedAt = &executedAt
	s.orders[id] = order

	routes := s.routes[id]
	for i := range routes {
		routes[i].Executed = true
		if i < len(realizedOut) {
			routes[i].RealizedOut = realizedOut[i]
		}
	}
	return nil
}

// MarkRefunded flips the order to refunded.
func (s *MemoryOrderStore) MarkRefunded(_ context.Context, id string, refundAmount *model.BigInt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return model.ErrDuplicateOrder
	}
	order.Status = model.OrderStatusRefunded
	order.Refunded = true
	order.RefundAmount = refundAmount
	s.orders[id] = order
	return nil
}

// SaveResult stores the terminal execution result.
func (s *MemoryOrderStore) SaveResult(_ context.Context, result *model.ExecutionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.OrderID] = *result
	return nil
}

// GetResult returns the execution result, (nil, nil) when absent.
func (s *MemoryOrderStore) GetResult(_ context.Context, id string) (*model.ExecutionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.results[id]
	if !ok {
		return nil, nil
	}
	clone := result
	return &clone, nil
}

// CountOrders returns the number of orders ever created.
func (s *MemoryOrderStore) CountOrders(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.orders)), nil
}

// MemoryVenueStore is a process-local venue store with insertion-order
// enumeration semantics.
type MemoryVenueStore struct {
	mu     sync.Mutex
	venues map[string]model.Venue
	seq    uint
}

// NewMemoryVenueStore creates an empty store.
func NewMemoryVenueStore() *MemoryVenueStore {
	return &MemoryVenueStore{venues: make(map[string]model.Venue)}
}

// UpsertVenue inserts or updates; Seq and CreatedAt survive updates.
func (s *MemoryVenueStore) UpsertVenue(_ context.Context, venue *model.Venue) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	existing, ok := s.venues[venue.ID]
	if ok {
		venue.Seq = existing.Seq
		venue.CreatedAt = existing.CreatedAt
		venue.UpdatedAt = now
		s.venues[venue.ID] = *venue
		return false, nil
	}

	s.seq++
	venue.Seq = s.seq
	venue.CreatedAt = now
	venue.UpdatedAt = now
	s.venues[venue.ID] = *venue
	return true, nil
}

// GetVenue returns a copy of the venue, (nil, nil) when absent.
func (s *MemoryVenueStore) GetVenue(_ context.Context, id string) (*model.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	venue, ok := s.venues[id]
	if !ok {
		return nil, nil
	}
	clone := venue
	return &clone, nil
}

// ListVenues enumerates venues in first-registration order.
func (s *MemoryVenueStore) ListVenues(_ context.Context) ([]model.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	venues := make([]model.Venue, 0, len(s.venues))
	for _, venue := range s.venues {
		venues = append(venues, venue)
	}
	sort.Slice(venues, func(i, j int) bool { return venues[i].Seq < venues[j].Seq })
	return venues, nil
}

// CountVenues returns the number of registered venues.
func (s *MemoryVenueStore) CountVenues(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.venues)), nil
}
