package fulfillment

import (
	"context"
	"time"

	"github.com/tournevent/fulfillment/internal/telemetry"
	"github.com/tournevent/fulfillment/pkg/logistics"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// SubmitCommand performs exactly one attempt to create a logistics order for
// a given sales order and classifies the outcome. It never swallows errors:
// every failure is either a logistics.ConflictError (non-retryable) or a
// logistics.SubmissionError (retryable).
type SubmitCommand struct {
	client  *logistics.Client
	builder PayloadBuilder
	logger  *otelzap.Logger
	metrics *telemetry.Metrics
}

// NewSubmitCommand creates a submission command.
func NewSubmitCommand(client *logistics.Client, builder PayloadBuilder, logger *otelzap.Logger, metrics *telemetry.Metrics) *SubmitCommand {
	return &SubmitCommand{
		client:  client,
		builder: builder,
		logger:  logger,
		metrics: metrics,
	}
}

// Execute submits the order and, on success, moves it to targetStatus and
// saves it. The caller must pass a resolved, non-nil order. Side effects are
// scoped to that single order.
func (c *SubmitCommand) Execute(ctx context.Context, order Order, targetStatus string) error {
	payload, err := c.builder.Build(ctx, order)
	if err != nil {
		return logistics.NewSubmissionError("PAYLOAD", "failed to build order payload").WithCause(err)
	}

	start := time.Now()
	_, err = c.client.Submit(ctx, payload)
	duration := time.Since(start).Seconds()

	switch {
	case err == nil:
		c.metrics.RecordSubmission("success", duration)
	case logistics.IsConflict(err):
		c.metrics.RecordSubmission("conflict", duration)
		return err
	default:
		c.metrics.RecordSubmission("failure", duration)
		return err
	}

	order.SetStatus(targetStatus)
	if err := order.Save(ctx); err != nil {
		c.logger.Error("Failed to persist order after submission",
			zap.Int64("order_id", order.ID()),
			zap.Error(err),
		)
		return logistics.NewSubmissionError("ORDER_SAVE", "failed to persist order status").WithCause(err)
	}

	c.logger.Info("Order submitted to logistics provider",
		zap.Int64("order_id", order.ID()),
		zap.String("status", targetStatus),
	)
	return nil
}

// Ensure SubmitCommand implements Submitter
var _ Submitter = (*SubmitCommand)(nil)
