package retry

import (
	"context"
	"errors"
	"time"

	"github.com/tournevent/fulfillment/internal/fulfillment"
	"github.com/tournevent/fulfillment/internal/notify"
	"github.com/tournevent/fulfillment/internal/telemetry"
	"github.com/tournevent/fulfillment/pkg/logistics"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TokenSink receives a refreshed access token before a drain cycle.
type TokenSink interface {
	SetAccessToken(token string)
}

// WorkerConfig holds the worker's credentials and order states.
type WorkerConfig struct {
	ClientID              string
	ClientSecret          string
	FulfilledState        string // Applied to the order on successful resubmission
	FulfillmentErrorState string // Applied on conflict or retry exhaustion
}

// Worker drains the failed-request store: it resubmits each eligible order,
// updates the entry, and escalates permanently failed orders. One entry is
// processed fully, including its network round-trip, before the next is
// pulled.
//
// Overlapping Drain calls within this process are collapsed by a
// single-flight guard. Mutual exclusion across processes is the deployment's
// responsibility; FindOneToRetry plus Update is not atomic as a pair.
type Worker struct {
	cfg      WorkerConfig
	store    Store
	orders   fulfillment.OrderStore
	submit   fulfillment.Submitter
	auth     logistics.Authenticator
	tokens   TokenSink
	notifier notify.Notifier
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics

	group singleflight.Group
	token logistics.Token
	now   func() time.Time
}

// NewWorker creates a retry queue worker.
func NewWorker(cfg WorkerConfig, store Store, orders fulfillment.OrderStore, submit fulfillment.Submitter,
	auth logistics.Authenticator, tokens TokenSink, notifier notify.Notifier,
	logger *otelzap.Logger, metrics *telemetry.Metrics) *Worker {
	return &Worker{
		cfg:      cfg,
		store:    store,
		orders:   orders,
		submit:   submit,
		auth:     auth,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Drain processes eligible failed requests until the store yields none.
// Concurrent calls share a single execution.
func (w *Worker) Drain(ctx context.Context) error {
	_, err, _ := w.group.Do("drain", func() (interface{}, error) {
		return nil, w.drain(ctx)
	})
	return err
}

// Purge removes terminally resolved entries. Callers run it after Drain as
// an explicit, separate step.
func (w *Worker) Purge(ctx context.Context) error {
	removed, err := w.store.DeleteWhereStale(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		w.metrics.PurgedTotal.Add(float64(removed))
		w.logger.Info("Purged stale retry queue entries", zap.Int64("removed", removed))
	}
	return nil
}

func (w *Worker) drain(ctx context.Context) error {
	if err := w.refreshToken(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fr, err := w.store.FindOneToRetry(ctx)
		if err != nil {
			return err
		}
		if fr == nil {
			return nil // drained
		}

		if err := w.process(ctx, fr); err != nil {
			return err
		}
	}
}

// refreshToken authenticates once per drain cycle, reusing the cached token
// while it remains valid.
func (w *Worker) refreshToken(ctx context.Context) error {
	if w.auth == nil {
		return nil
	}
	if w.token.Valid() {
		w.tokens.SetAccessToken(w.token.Value)
		return nil
	}

	token, err := w.auth.Authenticate(ctx, w.cfg.ClientID, w.cfg.ClientSecret)
	if err != nil {
		w.logger.Error("Failed to authenticate with logistics provider", zap.Error(err))
		return err
	}
	w.token = token
	w.tokens.SetAccessToken(token.Value)
	return nil
}

// process handles one pulled entry end to end and persists the result.
func (w *Worker) process(ctx context.Context, fr *FailedRequest) error {
	order, err := w.orders.FindByID(ctx, fr.OrderID)
	if errors.Is(err, fulfillment.ErrOrderNotFound) {
		// A missing order makes retrying meaningless; resolve terminally so
		// the next purge removes the entry.
		w.logger.Warn("Order for failed request no longer exists",
			zap.Int64("order_id", fr.OrderID),
		)
		fr.Status = StatusSuccess
		fr.LastAttemptDate = w.now()
		w.metrics.RecordRetry("orphaned")
		return w.store.Update(ctx, fr)
	}
	if err != nil {
		return err
	}

	submitErr := w.submit.Execute(ctx, order, w.cfg.FulfilledState)
	fr.LastAttemptDate = w.now()

	switch {
	case submitErr == nil:
		fr.Status = StatusSuccess
		w.metrics.RecordRetry("success")
		w.logger.Info("Resubmission succeeded", zap.Int64("order_id", fr.OrderID))

	case logistics.IsConflict(submitErr):
		// Conflicts are never retried: route the order to the error state,
		// alert an administrator, and make the entry terminal.
		subject, message := notify.ConflictMessage(fr.OrderID, submitErr)
		w.escalate(ctx, order, subject, message)
		fr.FailedAttempts = MaxAttempts
		w.metrics.RecordRetry("conflict")

	default:
		fr.FailedAttempts++
		w.metrics.RecordRetry("failure")
		w.logger.Warn("Resubmission failed",
			zap.Int64("order_id", fr.OrderID),
			zap.Int("failed_attempts", fr.FailedAttempts),
			zap.Error(submitErr),
		)
		if fr.Exhausted() {
			subject, message := notify.ExhaustedMessage(fr.OrderID, fr.FailedAttempts)
			w.escalate(ctx, order, subject, message)
			w.metrics.RecordRetry("exhausted")
		}
	}

	return w.store.Update(ctx, fr)
}

// escalate moves the order to the fulfillment error state and notifies an
// administrator. Escalation failures are logged, not propagated: the entry's
// terminal state must still be persisted.
func (w *Worker) escalate(ctx context.Context, order fulfillment.Order, subject, message string) {
	order.SetStatus(w.cfg.FulfillmentErrorState)
	if err := order.Save(ctx); err != nil {
		w.logger.Error("Failed to persist fulfillment error state",
			zap.Int64("order_id", order.ID()),
			zap.Error(err),
		)
	}
	if err := w.notifier.Notify(ctx, subject, message); err != nil {
		w.logger.Error("Failed to notify administrator",
			zap.Int64("order_id", order.ID()),
			zap.Error(err),
		)
	}
}
