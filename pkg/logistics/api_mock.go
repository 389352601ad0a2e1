package logistics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors   bool
	SimulateConflict bool
	SimulateLatency  time.Duration

	OnCreateOrder func(ctx context.Context, req *OrderPayload) (*CreateOrderResponse, error)

	mu       sync.Mutex
	token    string
	Requests []*OrderPayload
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// SetAccessToken records the token for later inspection.
func (m *MockAPIClient) SetAccessToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

// AccessToken returns the last token set on the mock.
func (m *MockAPIClient) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// CreateOrder returns a mock order creation response.
func (m *MockAPIClient) CreateOrder(ctx context.Context, req *OrderPayload) (*CreateOrderResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.SimulateConflict {
		return nil, &ConflictError{Message: "order already exists for reference " + req.Reference}
	}

	if m.SimulateErrors {
		return nil, NewSubmissionError("MOCK_ERROR", "simulated API error").WithStatusCode(500)
	}

	if m.OnCreateOrder != nil {
		return m.OnCreateOrder(ctx, req)
	}

	return &CreateOrderResponse{
		ID:        "lo-" + uuid.New().String()[:8],
		Reference: req.Reference,
		Status:    "accepted",
	}, nil
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)
