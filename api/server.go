// Package api serves the relay command surface to the UI process over HTTP.
package api

import (
	"net"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/journal"
	"github.com/papercomputeco/relay/pkg/metrics"
	"github.com/papercomputeco/relay/pkg/shell"
)

// Config is the command server configuration.
type Config struct {
	// Address to listen on (e.g., "127.0.0.1:7390")
	ListenAddr string
}

// Server exposes shell.Commands as POST /invoke/:command.
type Server struct {
	config   Config
	commands *shell.Commands
	journal  journal.Storer
	metrics  *metrics.Collector
	logger   *zap.Logger
	app      *fiber.App
}

// NewServer creates the command server. journal and metrics may be nil, in
// which case their endpoints are not registered.
func NewServer(config Config, commands *shell.Commands, j journal.Storer, m *metrics.Collector, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		// Uploads are read from local paths, so bodies stay small
		BodyLimit: 16 * 1024 * 1024,
	})

	s := &Server{
		config:   config,
		commands: commands,
		journal:  j,
		metrics:  m,
		logger:   logger,
		app:      app,
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
	app.Post("/invoke/:command", s.handleInvoke)

	if j != nil {
		app.Get("/journal", s.handleJournal)
	}
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	return s
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting command server", zap.String("listen", s.config.ListenAddr))
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener serves on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting command server", zap.String("listen", ln.Addr().String()))
	return s.app.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight handlers.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying fiber app, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
