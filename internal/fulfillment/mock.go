package fulfillment

import (
	"context"
	"sync"
)

// MockOrder is an in-memory Order implementation for tests.
type MockOrder struct {
	mu       sync.Mutex
	id       int64
	status   string
	Metadata map[string]string
	SaveErr  error
	Saves    int
}

// NewMockOrder creates an order with the given id and status.
func NewMockOrder(id int64, status string) *MockOrder {
	return &MockOrder{
		id:       id,
		status:   status,
		Metadata: make(map[string]string),
	}
}

// ID returns the order id.
func (o *MockOrder) ID() int64 { return o.id }

// Status returns the current status.
func (o *MockOrder) Status() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// SetStatus replaces the status.
func (o *MockOrder) SetStatus(status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = status
}

// UpdateMetadata sets a named metadata field.
func (o *MockOrder) UpdateMetadata(field, value string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Metadata[field] = value
}

// Save counts the persist call.
func (o *MockOrder) Save(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.SaveErr != nil {
		return o.SaveErr
	}
	o.Saves++
	return nil
}

// MockOrderStore is an in-memory OrderStore for tests.
type MockOrderStore struct {
	mu     sync.Mutex
	orders map[int64]*MockOrder
	// FindErr, when set, is returned by every FindByID call.
	FindErr error
}

// NewMockOrderStore creates an empty store.
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{orders: make(map[int64]*MockOrder)}
}

// Add registers an order.
func (s *MockOrderStore) Add(order *MockOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID()] = order
}

// FindByID returns the order or ErrOrderNotFound.
func (s *MockOrderStore) FindByID(ctx context.Context, id int64) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Ensure mocks implement the contracts
var (
	_ Order      = (*MockOrder)(nil)
	_ OrderStore = (*MockOrderStore)(nil)
)
