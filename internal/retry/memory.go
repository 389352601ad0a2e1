package retry

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation for tests and local
// development. Semantics match SQLiteStore.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[int64]*FailedRequest // keyed by order id
	nextID   int64
	cooldown time.Duration

	// Now is the clock, swappable in tests.
	Now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(cooldown time.Duration) *MemoryStore {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &MemoryStore{
		entries:  make(map[int64]*FailedRequest),
		nextID:   1,
		cooldown: cooldown,
		Now:      time.Now,
	}
}

// FindOneToRetry returns the oldest eligible entry, or nil when drained.
func (s *MemoryStore) FindOneToRetry(ctx context.Context) (*FailedRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.Now().Add(-s.cooldown)
	var oldest *FailedRequest
	for _, fr := range s.entries {
		if fr.Status != StatusFailed || fr.Exhausted() || fr.LastAttemptDate.After(cutoff) {
			continue
		}
		if oldest == nil ||
			fr.LastAttemptDate.Before(oldest.LastAttemptDate) ||
			(fr.LastAttemptDate.Equal(oldest.LastAttemptDate) && fr.ID < oldest.ID) {
			oldest = fr
		}
	}
	if oldest == nil {
		return nil, nil
	}
	clone := *oldest
	return &clone, nil
}

// Create upserts the entry for orderID.
func (s *MemoryStore) Create(ctx context.Context, orderID int64, status Status, failedAttempts int) (*FailedRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fr, ok := s.entries[orderID]
	if !ok {
		fr = &FailedRequest{ID: s.nextID, OrderID: orderID}
		s.nextID++
		s.entries[orderID] = fr
	}
	fr.Status = status
	fr.FailedAttempts = failedAttempts
	fr.LastAttemptDate = s.Now()

	clone := *fr
	return &clone, nil
}

// FindByOrderID returns the entry for orderID, or nil if none exists.
func (s *MemoryStore) FindByOrderID(ctx context.Context, orderID int64) (*FailedRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fr, ok := s.entries[orderID]
	if !ok {
		return nil, nil
	}
	clone := *fr
	return &clone, nil
}

// Update persists the full current state of the entity.
func (s *MemoryStore) Update(ctx context.Context, fr *FailedRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *fr
	s.entries[fr.OrderID] = &clone
	return nil
}

// DeleteWhereStale removes terminally resolved entries.
func (s *MemoryStore) DeleteWhereStale(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for orderID, fr := range s.entries {
		if fr.Stale() {
			delete(s.entries, orderID)
			removed++
		}
	}
	return removed, nil
}

// Enqueue records a fresh failed submission for orderID. Satisfies
// fulfillment.FailureQueue.
func (s *MemoryStore) Enqueue(ctx context.Context, orderID int64) error {
	_, err := s.Create(ctx, orderID, StatusFailed, 1)
	return err
}

// Len returns the number of entries currently stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
