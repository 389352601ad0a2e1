package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tournevent/fulfillment/internal/server"
	"github.com/tournevent/fulfillment/internal/telemetry"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "fulfillment",
	Short:   "Fulfillment Bridge - submits shop orders to the logistics provider",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook callback server",
	RunE:  runServe,
}

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Run one retry queue drain cycle and purge stale entries",
	RunE:  runDrain,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(drainCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(ctx)
	}

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)
	handler := initWebhookHandler(cfg, logger, metrics)
	statusHandler, cleanup, err := initStatusHandler(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("Starting Fulfillment Bridge",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
	)

	srv := server.New(server.Config{Port: cfg.Port}, logger, handler, statusHandler)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runDrain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)
	worker, cleanup, err := initWorker(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := worker.Drain(ctx); err != nil {
		return fmt.Errorf("drain error: %w", err)
	}
	if err := worker.Purge(ctx); err != nil {
		return fmt.Errorf("purge error: %w", err)
	}
	return nil
}
