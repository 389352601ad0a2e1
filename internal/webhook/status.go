package webhook

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/tournevent/fulfillment/internal/fulfillment"
	"github.com/tournevent/fulfillment/internal/telemetry"
	"github.com/tournevent/fulfillment/pkg/logistics"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// StatusListener handles an order status change from the shop.
type StatusListener interface {
	HandleStatusChange(ctx context.Context, orderID int64, newStatus string) error
}

// StatusHandler receives the shop's order status change events and runs the
// submission flow synchronously. Failures do not surface as 5xx: a retryable
// failure is queued and acknowledged with 202, a conflict with 409.
type StatusHandler struct {
	listener StatusListener
	validate *validatorv10.Validate
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
}

// NewStatusHandler creates a status change handler.
func NewStatusHandler(listener StatusListener, logger *otelzap.Logger, metrics *telemetry.Metrics) *StatusHandler {
	return &StatusHandler{
		listener: listener,
		validate: validatorv10.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

// Register mounts the status change route.
func (h *StatusHandler) Register(r gin.IRouter) {
	r.Group("/api/v1").POST("/orders/:id/status", h.handleStatusChange)
}

type statusChange struct {
	Status *string `json:"status" validate:"required"`
}

func (h *StatusHandler) handleStatusChange(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.metrics.RecordWebhook("status", "not_found")
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	var body statusChange
	if err := c.ShouldBindJSON(&body); err != nil {
		h.metrics.RecordWebhook("status", "unprocessable")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "invalid_request_body",
			"msg":   err.Error(),
		})
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		h.metrics.RecordWebhook("status", "unprocessable")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation_failed",
			"fields": validationErrorsToMap(err),
		})
		return
	}

	err = h.listener.HandleStatusChange(c.Request.Context(), id, *body.Status)
	switch {
	case err == nil:
		h.metrics.RecordWebhook("status", "ok")
		c.Status(http.StatusOK)

	case errors.Is(err, fulfillment.ErrOrderNotFound):
		h.metrics.RecordWebhook("status", "not_found")
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})

	case logistics.IsConflict(err):
		h.metrics.RecordWebhook("status", "conflict")
		c.JSON(http.StatusConflict, gin.H{"error": "logistics order conflict"})

	case logistics.IsRetryable(err):
		// The listener already queued the order for retry.
		h.metrics.RecordWebhook("status", "queued")
		c.JSON(http.StatusAccepted, gin.H{"status": "queued_for_retry"})

	default:
		h.logger.Error("Status change handling failed",
			zap.Int64("order_id", id),
			zap.Error(err),
		)
		h.metrics.RecordWebhook("status", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
