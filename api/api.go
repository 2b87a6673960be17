package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/amberhq/amber/pkg/bridge"
	"github.com/amberhq/amber/pkg/extract"
	"github.com/amberhq/amber/pkg/tiered"
	"github.com/amberhq/amber/pkg/worker"
)

// Server is the API server for the amber context engine.
type Server struct {
	config    Config
	store     *tiered.Store
	extractor *extract.Extractor
	pool      *worker.Pool
	bridger   *bridge.Builder
	logger    *zap.Logger
	app       *fiber.App
}

// NewServer creates a new API server. The tiered store, extractor, worker
// pool, and bridge builder are injected so they can be shared with the CLI
// when both run in the same process.
func NewServer(config Config, store *tiered.Store, extractor *extract.Extractor, pool *worker.Pool, bridger *bridge.Builder, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:    config,
		store:     store,
		extractor: extractor,
		pool:      pool,
		bridger:   bridger,
		logger:    logger,
		app:       app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/capture", s.handleCapture)
	app.Get("/records/:id", s.handleGetRecord)
	app.Delete("/records/:id", s.handleDeleteRecord)
	app.Get("/search", s.handleSearch)
	app.Post("/bridges", s.handleCreateBridge)
	app.Get("/bridges/:id", s.handleGetBridge)
	app.Get("/stats", s.handleStats)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
