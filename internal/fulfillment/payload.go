package fulfillment

import (
	"context"
	"fmt"

	"github.com/tournevent/fulfillment/pkg/logistics"
)

// PayloadBuilder maps a sales order to the provider wire payload. The field
// mapping itself belongs to the shop integration, not to this pipeline.
type PayloadBuilder interface {
	Build(ctx context.Context, order Order) (*logistics.OrderPayload, error)
}

// ReferenceBuilder is the minimal PayloadBuilder used for wiring: it carries
// only the order identity. The reference is stable per order so resubmissions
// of the same order are idempotent on the provider side.
type ReferenceBuilder struct{}

// Build returns a payload referencing the order.
func (ReferenceBuilder) Build(ctx context.Context, order Order) (*logistics.OrderPayload, error) {
	return &logistics.OrderPayload{
		Reference:   fmt.Sprintf("order-%d", order.ID()),
		OrderNumber: fmt.Sprintf("%d", order.ID()),
	}, nil
}
