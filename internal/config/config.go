package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Logistics provider API
	APIBaseURL   string `envconfig:"LOGISTICS_API_BASE_URL" default:"https://api.logistics-provider.com/v1"`
	TokenURL     string `envconfig:"LOGISTICS_TOKEN_URL" default:"https://api.logistics-provider.com/oauth/token"`
	ClientID     string `envconfig:"LOGISTICS_CLIENT_ID"`
	ClientSecret string `envconfig:"LOGISTICS_CLIENT_SECRET"`
	APIUseMock   bool   `envconfig:"LOGISTICS_USE_MOCK" default:"false"`

	// Shop REST API (order store)
	ShopRestURL string `envconfig:"SHOP_REST_URL"`
	ShopKey     string `envconfig:"SHOP_API_KEY"`
	ShopSecret  string `envconfig:"SHOP_API_SECRET"`

	// Order states
	FulfillmentState      string `envconfig:"FULFILLMENT_STATE" default:"ready-to-ship"`
	FulfilledState        string `envconfig:"FULFILLED_STATE" default:"completed"`
	FulfillmentErrorState string `envconfig:"FULFILLMENT_ERROR_STATE" default:"fulfillment-error"`

	// Order metadata field names
	OrderIDField      string `envconfig:"ORDER_ID_FIELD" default:"logistics_order_id"`
	TrackingLinkField string `envconfig:"TRACKING_LINK_FIELD" default:"tracking_link"`
	CarrierInfoField  string `envconfig:"CARRIER_INFO_FIELD" default:"carrier_information"`

	// Retry queue
	DatabasePath  string        `envconfig:"DATABASE_PATH" default:"fulfillment.db"`
	RetryCooldown time.Duration `envconfig:"RETRY_COOLDOWN" default:"5m"`

	// Administrator notifications
	AdminEmail   string `envconfig:"ADMIN_EMAIL"`
	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"fulfillment-bridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("fulfillment.state", c.FulfillmentState),
		attribute.Bool("logistics.mock", c.APIUseMock),
	}
}
