package main

import (
	"context"

	"github.com/tournevent/fulfillment/internal/config"
	"github.com/tournevent/fulfillment/internal/fulfillment"
	"github.com/tournevent/fulfillment/internal/notify"
	"github.com/tournevent/fulfillment/internal/retry"
	"github.com/tournevent/fulfillment/internal/shop"
	"github.com/tournevent/fulfillment/internal/telemetry"
	"github.com/tournevent/fulfillment/internal/webhook"
	"github.com/tournevent/fulfillment/pkg/logistics"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	return shutdown, err
}

func initOrderStore(cfg *config.Config, logger *otelzap.Logger) fulfillment.OrderStore {
	return shop.NewClient(shop.ClientConfig{
		RestURL: cfg.ShopRestURL,
		Key:     cfg.ShopKey,
		Secret:  cfg.ShopSecret,
	}, logger)
}

func initNotifier(cfg *config.Config, logger *otelzap.Logger) notify.Notifier {
	if cfg.SMTPHost != "" && cfg.AdminEmail != "" {
		notifier, err := notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			To:       cfg.AdminEmail,
		})
		if err == nil {
			return notifier
		}
		logger.Warn("Falling back to log notifier: " + err.Error())
	}
	return notify.NewLogNotifier(logger)
}

func initWebhookHandler(cfg *config.Config, logger *otelzap.Logger, metrics *telemetry.Metrics) *webhook.Handler {
	return webhook.NewHandler(webhook.Config{
		FulfilledState:    cfg.FulfilledState,
		OrderIDField:      cfg.OrderIDField,
		TrackingLinkField: cfg.TrackingLinkField,
		CarrierInfoField:  cfg.CarrierInfoField,
	}, initOrderStore(cfg, logger), logger, metrics)
}

// initStatusHandler wires the shop status-change endpoint: a synchronous
// submission listener backed by the retry queue for transient failures. The
// returned cleanup closes the queue store.
func initStatusHandler(cfg *config.Config, logger *otelzap.Logger, metrics *telemetry.Metrics) (*webhook.StatusHandler, func(), error) {
	store, err := retry.NewSQLiteStore(cfg.DatabasePath, retry.WithCooldown(cfg.RetryCooldown))
	if err != nil {
		return nil, nil, err
	}

	client := logistics.New(logistics.Config{
		BaseURL: cfg.APIBaseURL,
		UseMock: cfg.APIUseMock,
	}, logger, nil)
	if !cfg.APIUseMock {
		client.WithAuthenticator(logistics.NewHTTPAuthenticator(cfg.TokenURL, 0), cfg.ClientID, cfg.ClientSecret)
	}

	command := fulfillment.NewSubmitCommand(client, fulfillment.ReferenceBuilder{}, logger, metrics)
	listener := fulfillment.NewStatusListener(fulfillment.ListenerConfig{
		FulfillmentState:      cfg.FulfillmentState,
		FulfilledState:        cfg.FulfilledState,
		FulfillmentErrorState: cfg.FulfillmentErrorState,
	}, initOrderStore(cfg, logger), command, store, initNotifier(cfg, logger), logger)

	cleanup := func() { _ = store.Close() }
	return webhook.NewStatusHandler(listener, logger, metrics), cleanup, nil
}

// initWorker wires the retry queue worker and returns it with a cleanup
// function that closes the underlying store.
func initWorker(cfg *config.Config, logger *otelzap.Logger, metrics *telemetry.Metrics) (*retry.Worker, func(), error) {
	store, err := retry.NewSQLiteStore(cfg.DatabasePath, retry.WithCooldown(cfg.RetryCooldown))
	if err != nil {
		return nil, nil, err
	}

	client := logistics.New(logistics.Config{
		BaseURL: cfg.APIBaseURL,
		UseMock: cfg.APIUseMock,
	}, logger, nil)

	command := fulfillment.NewSubmitCommand(client, fulfillment.ReferenceBuilder{}, logger, metrics)

	var auth logistics.Authenticator
	if !cfg.APIUseMock {
		auth = logistics.NewHTTPAuthenticator(cfg.TokenURL, 0)
	}

	worker := retry.NewWorker(retry.WorkerConfig{
		ClientID:              cfg.ClientID,
		ClientSecret:          cfg.ClientSecret,
		FulfilledState:        cfg.FulfilledState,
		FulfillmentErrorState: cfg.FulfillmentErrorState,
	}, store, initOrderStore(cfg, logger), command, auth, client, initNotifier(cfg, logger), logger, metrics)

	cleanup := func() { _ = store.Close() }
	return worker, cleanup, nil
}
