// Package server runs the HTTP surface: webhook callbacks, health, metrics.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Config holds server configuration.
type Config struct {
	Port int
}

// Registrar mounts a group of routes on the router.
type Registrar interface {
	Register(r gin.IRouter)
}

// Server is the HTTP server for the fulfillment bridge.
type Server struct {
	port   int
	engine *gin.Engine
	logger *otelzap.Logger
}

// New creates a new server instance with all routes mounted.
func New(cfg Config, logger *otelzap.Logger, handlers ...Registrar) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	for _, h := range handlers {
		h.Register(engine)
	}

	return &Server{
		port:   cfg.Port,
		engine: engine,
		logger: logger,
	}
}

// Engine exposes the router, for tests.
func (s *Server) Engine() http.Handler {
	return s.engine
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
