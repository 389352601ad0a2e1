// Package retry implements the failed-request queue: a durable record of
// logistics submissions that need retrying, and the worker that drains it.
package retry

import (
	"time"
)

// Status is the lifecycle state of a failed request.
type Status string

const (
	// StatusFailed marks an entry as still eligible for retry, until the
	// attempt cap is reached.
	StatusFailed Status = "failed"
	// StatusSuccess marks an entry as terminally resolved and eligible for
	// purge.
	StatusSuccess Status = "success"
)

// MaxAttempts caps retries per order. Once FailedAttempts reaches the cap the
// entry is terminal: it stays in the store until the next purge pass but is
// never returned by FindOneToRetry again.
const MaxAttempts = 3

// DefaultCooldown is the minimum time between consecutive retry attempts for
// the same entry.
const DefaultCooldown = 5 * time.Minute

// FailedRequest is one order whose logistics submission needs retrying.
// Exactly one entry exists per order at any time.
type FailedRequest struct {
	ID              int64
	OrderID         int64
	Status          Status
	FailedAttempts  int
	LastAttemptDate time.Time
}

// Exhausted reports whether the entry has reached the attempt cap.
func (r *FailedRequest) Exhausted() bool {
	return r.FailedAttempts >= MaxAttempts
}

// Stale reports whether the entry is terminally resolved and safe to purge.
func (r *FailedRequest) Stale() bool {
	return r.Status == StatusSuccess || r.Exhausted()
}
