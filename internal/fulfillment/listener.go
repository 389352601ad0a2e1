package fulfillment

import (
	"context"

	"github.com/tournevent/fulfillment/internal/notify"
	"github.com/tournevent/fulfillment/pkg/logistics"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ListenerConfig holds the order states the listener routes between.
type ListenerConfig struct {
	FulfillmentState      string // Status that triggers submission
	FulfilledState        string // Status applied on successful submission
	FulfillmentErrorState string // Status applied on permanent failure
}

// StatusListener reacts to sales-order status transitions. When an order
// reaches the fulfillment state it performs one synchronous submission
// attempt; retryable failures are enqueued for the retry worker, conflicts
// are routed straight to the error state.
type StatusListener struct {
	cfg      ListenerConfig
	orders   OrderStore
	submit   Submitter
	queue    FailureQueue
	notifier notify.Notifier
	logger   *otelzap.Logger
}

// NewStatusListener creates a listener.
func NewStatusListener(cfg ListenerConfig, orders OrderStore, submit Submitter, queue FailureQueue, notifier notify.Notifier, logger *otelzap.Logger) *StatusListener {
	return &StatusListener{
		cfg:      cfg,
		orders:   orders,
		submit:   submit,
		queue:    queue,
		notifier: notifier,
		logger:   logger,
	}
}

// HandleStatusChange processes one order-status transition event.
func (l *StatusListener) HandleStatusChange(ctx context.Context, orderID int64, newStatus string) error {
	if newStatus != l.cfg.FulfillmentState {
		return nil
	}

	order, err := l.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	err = l.submit.Execute(ctx, order, l.cfg.FulfilledState)
	switch {
	case err == nil:
		return nil

	case logistics.IsConflict(err):
		l.logger.Warn("Logistics order conflict",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		order.SetStatus(l.cfg.FulfillmentErrorState)
		if saveErr := order.Save(ctx); saveErr != nil {
			l.logger.Error("Failed to persist error state", zap.Int64("order_id", orderID), zap.Error(saveErr))
		}
		l.notifyConflict(ctx, orderID, err)
		return err

	default:
		l.logger.Warn("Logistics submission failed, enqueueing for retry",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		if qErr := l.queue.Enqueue(ctx, orderID); qErr != nil {
			l.logger.Error("Failed to enqueue failed request", zap.Int64("order_id", orderID), zap.Error(qErr))
			return qErr
		}
		return err
	}
}

func (l *StatusListener) notifyConflict(ctx context.Context, orderID int64, cause error) {
	subject, message := notify.ConflictMessage(orderID, cause)
	if err := l.notifier.Notify(ctx, subject, message); err != nil {
		l.logger.Error("Failed to notify administrator", zap.Int64("order_id", orderID), zap.Error(err))
	}
}
