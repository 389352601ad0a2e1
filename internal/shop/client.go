// Package shop implements the order store against the shop's REST API.
package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tournevent/fulfillment/internal/fulfillment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ClientConfig holds shop API connection settings.
type ClientConfig struct {
	RestURL string // e.g. https://shop.example.com/wp-json/wc/v3
	Key     string
	Secret  string
	Timeout time.Duration
}

// Client talks to the shop's REST API. It implements fulfillment.OrderStore.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	logger     *otelzap.Logger
}

// NewClient creates a shop API client.
func NewClient(cfg ClientConfig, logger *otelzap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// wire representation of a shop order
type orderDocument struct {
	ID       int64       `json:"id"`
	Status   string      `json:"status"`
	MetaData []metaEntry `json:"meta_data,omitempty"`
}

type metaEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FindByID fetches the order, returning fulfillment.ErrOrderNotFound on 404.
func (c *Client) FindByID(ctx context.Context, id int64) (fulfillment.Order, error) {
	url := fmt.Sprintf("%s/orders/%d", c.cfg.RestURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shop API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fulfillment.ErrOrderNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("shop API returned %d: %s", resp.StatusCode, body)
	}

	var doc orderDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}

	return newRemoteOrder(c, doc), nil
}

// save pushes pending status and metadata changes for an order.
func (c *Client) save(ctx context.Context, id int64, status string, meta map[string]string) error {
	doc := orderDocument{Status: status}
	for key, value := range meta {
		doc.MetaData = append(doc.MetaData, metaEntry{Key: key, Value: value})
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal order update: %w", err)
	}

	url := fmt.Sprintf("%s/orders/%d", c.cfg.RestURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shop API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("shop API returned %d: %s", resp.StatusCode, respBody)
	}

	c.logger.Debug("Order persisted to shop",
		zap.Int64("order_id", id),
		zap.String("status", status),
	)
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fulfillment-bridge/1.0")
	if c.cfg.Key != "" {
		req.SetBasicAuth(c.cfg.Key, c.cfg.Secret)
	}
}

// remoteOrder is the fulfillment.Order view of a shop order. Status and
// metadata changes accumulate locally until Save.
type remoteOrder struct {
	client *Client
	id     int64
	status string
	meta   map[string]string
}

func newRemoteOrder(client *Client, doc orderDocument) *remoteOrder {
	return &remoteOrder{
		client: client,
		id:     doc.ID,
		status: doc.Status,
		meta:   make(map[string]string),
	}
}

func (o *remoteOrder) ID() int64      { return o.id }
func (o *remoteOrder) Status() string { return o.status }

func (o *remoteOrder) SetStatus(status string) {
	o.status = status
}

func (o *remoteOrder) UpdateMetadata(field, value string) {
	o.meta[field] = value
}

func (o *remoteOrder) Save(ctx context.Context) error {
	return o.client.save(ctx, o.id, o.status, o.meta)
}

// Ensure the contracts are satisfied
var (
	_ fulfillment.OrderStore = (*Client)(nil)
	_ fulfillment.Order      = (*remoteOrder)(nil)
)
