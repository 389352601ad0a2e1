package logistics_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/fulfillment/pkg/logistics"
)

func TestHTTPAuthenticator_Authenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "my-client", r.PostForm.Get("client_id"))
		assert.Equal(t, "my-secret", r.PostForm.Get("client_secret"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "abc123",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	auth := logistics.NewHTTPAuthenticator(srv.URL, 0)
	token, err := auth.Authenticate(context.Background(), "my-client", "my-secret")

	require.NoError(t, err)
	assert.Equal(t, "abc123", token.Value)
	assert.True(t, token.Valid())
	// Lifetime includes the expiry skew headroom.
	assert.True(t, token.ExpiresAt.Before(time.Now().Add(time.Hour)))
}

func TestHTTPAuthenticator_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	auth := logistics.NewHTTPAuthenticator(srv.URL, 0)
	_, err := auth.Authenticate(context.Background(), "bad", "creds")

	require.Error(t, err)
	assert.True(t, logistics.IsRetryable(err))
}

func TestHTTPAuthenticator_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"expires_in": 3600})
	}))
	defer srv.Close()

	auth := logistics.NewHTTPAuthenticator(srv.URL, 0)
	_, err := auth.Authenticate(context.Background(), "my-client", "my-secret")

	require.Error(t, err)
}

func TestToken_Valid(t *testing.T) {
	expired := logistics.Token{Value: "x", ExpiresAt: time.Now().Add(-time.Minute)}
	live := logistics.Token{Value: "x", ExpiresAt: time.Now().Add(time.Minute)}
	empty := logistics.Token{}

	assert.False(t, expired.Valid())
	assert.True(t, live.Valid())
	assert.False(t, empty.Valid())
}
