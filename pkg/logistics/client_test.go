package logistics_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/fulfillment/pkg/logistics"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(mockAPI *logistics.MockAPIClient) *logistics.Client {
	logger := otelzap.New(zap.NewNop())
	return logistics.NewWithAPIClient(logistics.Config{}, mockAPI, logger, nil)
}

func TestClient_Submit_Success(t *testing.T) {
	mockAPI := logistics.NewMockAPIClient()
	client := newTestClient(mockAPI)

	payload := &logistics.OrderPayload{
		Reference:   "order-12",
		OrderNumber: "12",
	}

	resp, err := client.Submit(context.Background(), payload)

	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "order-12", resp.Reference)
	require.Len(t, mockAPI.Requests, 1)
	assert.Equal(t, "order-12", mockAPI.Requests[0].Reference)
}

func TestClient_Submit_Conflict(t *testing.T) {
	mockAPI := logistics.NewMockAPIClient()
	mockAPI.SimulateConflict = true
	client := newTestClient(mockAPI)

	_, err := client.Submit(context.Background(), &logistics.OrderPayload{Reference: "order-12"})

	require.Error(t, err)
	assert.True(t, logistics.IsConflict(err))
	assert.Contains(t, err.Error(), "order-12")
}

func TestClient_Submit_Failure(t *testing.T) {
	mockAPI := logistics.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.Submit(context.Background(), &logistics.OrderPayload{Reference: "order-12"})

	require.Error(t, err)
	assert.True(t, logistics.IsRetryable(err))
}

func TestClient_Submit_CustomMock(t *testing.T) {
	mockAPI := logistics.NewMockAPIClient()
	mockAPI.OnCreateOrder = func(ctx context.Context, req *logistics.OrderPayload) (*logistics.CreateOrderResponse, error) {
		return &logistics.CreateOrderResponse{
			ID:        "custom-order-1",
			Reference: req.Reference,
			Status:    "processing",
		}, nil
	}
	client := newTestClient(mockAPI)

	resp, err := client.Submit(context.Background(), &logistics.OrderPayload{Reference: "order-99"})

	require.NoError(t, err)
	assert.Equal(t, "custom-order-1", resp.ID)
	assert.Equal(t, "processing", resp.Status)
}

func TestClient_SetAccessToken(t *testing.T) {
	mockAPI := logistics.NewMockAPIClient()
	client := newTestClient(mockAPI)

	client.SetAccessToken("bearer-123")

	assert.Equal(t, "bearer-123", mockAPI.AccessToken())
}

func TestClient_Submit_LazyTokenRefresh(t *testing.T) {
	mockAPI := logistics.NewMockAPIClient()
	auth := &logistics.MockAuthenticator{}
	client := newTestClient(mockAPI).WithAuthenticator(auth, "client", "secret")

	_, err := client.Submit(context.Background(), &logistics.OrderPayload{Reference: "order-12"})
	require.NoError(t, err)
	_, err = client.Submit(context.Background(), &logistics.OrderPayload{Reference: "order-13"})
	require.NoError(t, err)

	// The cached token stays valid, so only the first call authenticates.
	assert.Equal(t, 1, auth.Calls)
	assert.Equal(t, "mock-token", mockAPI.AccessToken())
}

func TestClient_Submit_AuthFailure(t *testing.T) {
	mockAPI := logistics.NewMockAPIClient()
	auth := &logistics.MockAuthenticator{Err: assert.AnError}
	client := newTestClient(mockAPI).WithAuthenticator(auth, "client", "secret")

	_, err := client.Submit(context.Background(), &logistics.OrderPayload{Reference: "order-12"})

	require.Error(t, err)
	assert.True(t, logistics.IsRetryable(err))
	assert.Empty(t, mockAPI.Requests)
}
