package logistics

import (
	"context"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	UseMock bool // When true, uses the mock API client
}

// Client is the logistics provider client.
// It wraps the underlying APIClient (mock or HTTP) with logging and tracing.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer

	auth         Authenticator
	clientID     string
	clientSecret string
	tokenMu      sync.Mutex
	token        Token
}

// New creates a new logistics client.
// If cfg.UseMock is true, it uses a mock API client for testing.
// Otherwise, it uses the real HTTP API client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// NewWithAPIClient creates a new client with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// SetAccessToken replaces the bearer token used for subsequent calls.
func (c *Client) SetAccessToken(token string) {
	c.apiClient.SetAccessToken(token)
}

// WithAuthenticator enables lazy token refresh: Submit authenticates with the
// given credentials whenever the cached token has expired. Callers that manage
// tokens themselves, via SetAccessToken, simply skip this.
func (c *Client) WithAuthenticator(auth Authenticator, clientID, clientSecret string) *Client {
	c.auth = auth
	c.clientID = clientID
	c.clientSecret = clientSecret
	return c
}

func (c *Client) ensureToken(ctx context.Context) error {
	if c.auth == nil {
		return nil
	}
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	if c.token.Valid() {
		return nil
	}

	token, err := c.auth.Authenticate(ctx, c.clientID, c.clientSecret)
	if err != nil {
		return NewSubmissionError("AUTH", "authentication failed").WithCause(err)
	}
	c.token = token
	c.apiClient.SetAccessToken(token.Value)
	return nil
}

// Submit creates a logistics order with the provider. Failures carry the
// typed classification produced at the API boundary: ConflictError for
// duplicates, SubmissionError for everything else.
func (c *Client) Submit(ctx context.Context, payload *OrderPayload) (*CreateOrderResponse, error) {
	c.logger.Info("Submitting logistics order",
		zap.String("reference", payload.Reference),
		zap.String("order_number", payload.OrderNumber),
	)

	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "logistics.Submit")
		defer span.End()
	}

	if err := c.ensureToken(ctx); err != nil {
		c.logger.Error("Logistics authentication error", zap.Error(err))
		return nil, err
	}

	resp, err := c.apiClient.CreateOrder(ctx, payload)
	if err != nil {
		c.logger.Error("Logistics API error", zap.Error(err))
		return nil, err
	}

	c.logger.Info("Logistics order created",
		zap.String("provider_order_id", resp.ID),
		zap.String("status", resp.Status),
	)
	return resp, nil
}
