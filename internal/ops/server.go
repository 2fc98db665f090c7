// Package ops exposes the worker's operational HTTP surface: a health
// check and the Prometheus metrics endpoint. The queue core itself has no
// HTTP surface.
package ops

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"batchq/internal/config"
)

// Server is the ops HTTP server.
type Server struct {
	app    *fiber.App
	config *config.ServerConfig
	logger *slog.Logger
}

// NewServer creates the ops server with its routes configured.
func NewServer(cfg *config.ServerConfig, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		StrictRouting:         true,
		CaseSensitive:         true,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
	})

	s := &Server{
		app:    app,
		config: cfg,
		logger: logger,
	}

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Get("/healthz", s.healthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return s
}

// healthCheck reports liveness.
func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Start begins listening on the configured address. Blocks until the
// server stops.
func (s *Server) Start() error {
	addr := s.config.Address()
	s.logger.Info("starting ops server", "address", addr)

	if err := s.app.Listen(addr); err != nil {
		return fmt.Errorf("ops server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
