package retry

import (
	"context"
	"fmt"
)

// Store is the durable queue of retry-eligible submissions.
//
// The worker is the sole mutator of an entry between FindOneToRetry and
// Update, so updates are last-write-wins with no optimistic concurrency.
type Store interface {
	// FindOneToRetry returns at most one entry with status failed, attempts
	// below the cap, and the cooldown elapsed since the last attempt. Entries
	// are yielded oldest last-attempt first. Returns nil when none qualify.
	FindOneToRetry(ctx context.Context) (*FailedRequest, error)

	// Create upserts the entry for orderID, replacing status and attempt
	// count if one already exists. One entry per order, always.
	Create(ctx context.Context, orderID int64, status Status, failedAttempts int) (*FailedRequest, error)

	// Update persists the full current state of the entity.
	Update(ctx context.Context, fr *FailedRequest) error

	// DeleteWhereStale removes all entries with status success or attempts
	// at or over the cap. Idempotent. Returns the number of rows removed.
	DeleteWhereStale(ctx context.Context) (int64, error)
}

// StorageError wraps a persistence-layer failure. Callers do not recover
// from partial writes; the operation failed as a whole.
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("retry store: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
