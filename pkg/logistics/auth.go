package logistics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// tokenExpirySkew is subtracted from the reported lifetime so a token is
// refreshed before the provider actually rejects it.
const tokenExpirySkew = 30 * time.Second

// Token is a bearer token issued by the provider's auth endpoint.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Valid reports whether the token can still be used.
func (t Token) Valid() bool {
	return t.Value != "" && time.Now().Before(t.ExpiresAt)
}

// Authenticator exchanges client credentials for a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, clientID, clientSecret string) (Token, error)
}

// HTTPAuthenticator is the production Authenticator against the provider's
// OAuth-style client-credentials token endpoint.
type HTTPAuthenticator struct {
	tokenURL   string
	httpClient *http.Client
}

// NewHTTPAuthenticator creates an authenticator for the given token endpoint.
func NewHTTPAuthenticator(tokenURL string, timeout time.Duration) *HTTPAuthenticator {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &HTTPAuthenticator{
		tokenURL:   tokenURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authenticate performs the client-credentials exchange.
func (a *HTTPAuthenticator) Authenticate(ctx context.Context, clientID, clientSecret string) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Token{}, NewSubmissionError("AUTH_TRANSPORT", "token request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Token{}, NewSubmissionError("AUTH_FAILED",
			fmt.Sprintf("token endpoint returned %d", resp.StatusCode)).WithStatusCode(resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Token{}, NewSubmissionError("AUTH_DECODE", "failed to decode token response").WithCause(err)
	}
	if body.AccessToken == "" {
		return Token{}, NewSubmissionError("AUTH_EMPTY", "token endpoint returned no access token")
	}

	lifetime := time.Duration(body.ExpiresIn) * time.Second
	if lifetime > tokenExpirySkew {
		lifetime -= tokenExpirySkew
	}

	return Token{
		Value:     body.AccessToken,
		ExpiresAt: time.Now().Add(lifetime),
	}, nil
}

// MockAuthenticator is a test double for Authenticator.
type MockAuthenticator struct {
	Calls int
	Err   error
}

// Authenticate returns a long-lived static token.
func (m *MockAuthenticator) Authenticate(ctx context.Context, clientID, clientSecret string) (Token, error) {
	m.Calls++
	if m.Err != nil {
		return Token{}, m.Err
	}
	return Token{Value: "mock-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
}
