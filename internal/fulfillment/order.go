// Package fulfillment contains the core submission pipeline: the order
// contract against the shop, the payload builder, and the single-attempt
// submission command.
package fulfillment

import (
	"context"
	"errors"
)

// ErrOrderNotFound indicates the referenced sales order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// Order is the view of a sales order the pipeline needs: identity, status,
// and a small set of named metadata fields. The shop owns its lifecycle.
type Order interface {
	ID() int64
	Status() string
	SetStatus(status string)
	UpdateMetadata(field, value string)
	Save(ctx context.Context) error
}

// OrderStore resolves sales orders by id.
type OrderStore interface {
	// FindByID returns the order or ErrOrderNotFound.
	FindByID(ctx context.Context, id int64) (Order, error)
}

// Submitter performs exactly one logistics submission attempt for an order.
type Submitter interface {
	Execute(ctx context.Context, order Order, targetStatus string) error
}

// FailureQueue enqueues an order for later resubmission.
type FailureQueue interface {
	Enqueue(ctx context.Context, orderID int64) error
}
