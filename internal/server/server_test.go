package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/tournevent/fulfillment/internal/fulfillment"
	"github.com/tournevent/fulfillment/internal/server"
	"github.com/tournevent/fulfillment/internal/telemetry"
	"github.com/tournevent/fulfillment/internal/webhook"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestServer() *server.Server {
	logger := otelzap.New(zap.NewNop())
	handler := webhook.NewHandler(webhook.Config{
		FulfilledState:    "completed",
		OrderIDField:      "logistics_order_id",
		TrackingLinkField: "tracking_link",
		CarrierInfoField:  "carrier_information",
	}, fulfillment.NewMockOrderStore(), logger, telemetry.NewMetrics(prometheus.NewRegistry()))
	return server.New(server.Config{Port: 0}, logger, handler)
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_WebhookRoutesMounted(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/99/callbacks/success",
		strings.NewReader(`{"orderId":"lo-1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	// Route exists: the handler answers 404 for the unknown order, not gin.
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "order not found")
}
