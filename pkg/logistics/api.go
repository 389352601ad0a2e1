// Package logistics provides the client for the logistics provider's write API.
package logistics

import (
	"context"
)

// APIClient defines the low-level operations of the provider API.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// CreateOrder submits a new logistics order.
	CreateOrder(ctx context.Context, req *OrderPayload) (*CreateOrderResponse, error)

	// SetAccessToken replaces the bearer token used for subsequent calls.
	SetAccessToken(token string)
}

// ============================================================================
// API Request/Response Types
// ============================================================================

// OrderPayload represents a logistics order creation request.
// POST /orders endpoint.
type OrderPayload struct {
	Reference   string    `json:"reference"` // Stable per sales order, prevents duplicates
	OrderNumber string    `json:"order_number"`
	Recipient   Recipient `json:"recipient"`
	Lines       []Line    `json:"lines,omitempty"`
	Note        string    `json:"note,omitempty"`
}

// Recipient is the delivery target of a logistics order.
type Recipient struct {
	Name       string `json:"name"`
	Company    string `json:"company,omitempty"`
	Address1   string `json:"address_1"`
	Address2   string `json:"address_2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"` // ISO 3166-1 alpha-2
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Line represents one order line.
type Line struct {
	SKU      string `json:"sku"`
	Name     string `json:"name,omitempty"`
	Quantity int    `json:"quantity"`
}

// CreateOrderResponse represents the provider's order creation response.
type CreateOrderResponse struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// APIError is the provider's wire-level error body.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"` // Field-level errors
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}
