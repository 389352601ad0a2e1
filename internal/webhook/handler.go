// Package webhook exposes the logistics provider's callback endpoints.
package webhook

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/tournevent/fulfillment/internal/fulfillment"
	"github.com/tournevent/fulfillment/internal/telemetry"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Config holds the order state and metadata field names the handler writes.
type Config struct {
	FulfilledState    string
	OrderIDField      string
	TrackingLinkField string
	CarrierInfoField  string
}

// Handler processes inbound provider callbacks. Both endpoints are
// idempotent: replaying a callback produces the same end state.
type Handler struct {
	cfg      Config
	orders   fulfillment.OrderStore
	validate *validatorv10.Validate
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
}

// NewHandler creates a webhook handler.
func NewHandler(cfg Config, orders fulfillment.OrderStore, logger *otelzap.Logger, metrics *telemetry.Metrics) *Handler {
	return &Handler{
		cfg:      cfg,
		orders:   orders,
		validate: validatorv10.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

// Register mounts the callback routes under the versioned namespace.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	v1.POST("/orders/:id/callbacks/success", h.handleSuccess)
	v1.POST("/orders/:id/callbacks/fulfillment", h.handleFulfillment)
}

// successCallback carries the provider-side order identifier.
// Fields are pointers so that presence and emptiness are distinguishable:
// a present-but-empty field passes validation but is not written.
type successCallback struct {
	OrderID *string `json:"orderId" validate:"required"`
}

// fulfillmentCallback carries tracking and carrier information.
type fulfillmentCallback struct {
	TrackingURL      *string `json:"trackingUrl" validate:"required"`
	TransportProduct *string `json:"transportProduct" validate:"required"`
}

func (h *Handler) handleSuccess(c *gin.Context) {
	var body successCallback
	order, ok := h.bind(c, "success", &body)
	if !ok {
		return
	}

	h.writeMeta(order, h.cfg.OrderIDField, body.OrderID)

	if err := order.Save(c.Request.Context()); err != nil {
		h.fail(c, "success", order.ID(), err)
		return
	}

	h.metrics.RecordWebhook("success", "ok")
	c.Status(http.StatusOK)
}

func (h *Handler) handleFulfillment(c *gin.Context) {
	var body fulfillmentCallback
	order, ok := h.bind(c, "fulfillment", &body)
	if !ok {
		return
	}

	order.SetStatus(h.cfg.FulfilledState)
	h.writeMeta(order, h.cfg.TrackingLinkField, body.TrackingURL)
	h.writeMeta(order, h.cfg.CarrierInfoField, body.TransportProduct)

	if err := order.Save(c.Request.Context()); err != nil {
		h.fail(c, "fulfillment", order.ID(), err)
		return
	}

	h.metrics.RecordWebhook("fulfillment", "ok")
	c.Status(http.StatusOK)
}

// bind resolves the order from the path and validates the JSON body. On any
// failure it writes the HTTP response and returns ok=false.
func (h *Handler) bind(c *gin.Context, callback string, out interface{}) (fulfillment.Order, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.metrics.RecordWebhook(callback, "not_found")
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return nil, false
	}

	if err := c.ShouldBindJSON(out); err != nil {
		h.metrics.RecordWebhook(callback, "unprocessable")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "invalid_request_body",
			"msg":   err.Error(),
		})
		return nil, false
	}

	if err := h.validate.Struct(out); err != nil {
		h.metrics.RecordWebhook(callback, "unprocessable")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation_failed",
			"fields": validationErrorsToMap(err),
		})
		return nil, false
	}

	order, err := h.orders.FindByID(c.Request.Context(), id)
	if errors.Is(err, fulfillment.ErrOrderNotFound) {
		h.metrics.RecordWebhook(callback, "not_found")
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return nil, false
	}
	if err != nil {
		h.fail(c, callback, id, err)
		return nil, false
	}

	return order, true
}

// writeMeta writes a metadata field, skipping empty values (last-write-wins
// for non-empty ones).
func (h *Handler) writeMeta(order fulfillment.Order, field string, value *string) {
	if value == nil || *value == "" {
		return
	}
	order.UpdateMetadata(field, *value)
}

func (h *Handler) fail(c *gin.Context, callback string, orderID int64, err error) {
	h.logger.Error("Webhook callback failed",
		zap.String("callback", callback),
		zap.Int64("order_id", orderID),
		zap.Error(err),
	)
	h.metrics.RecordWebhook(callback, "error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = "missing required field"
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}
