package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"afterlife/internal/core/config"
	"afterlife/internal/core/logger"
	"afterlife/internal/core/metrics"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "afterlife/docs/swagger"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the Fiber application and configuration.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// cfg holds the application configuration.
	cfg *config.AppConfig
	// storage is probed by the health endpoint.
	storage Pinger
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Error   string `json:"error,omitempty"`
}

// New creates a new Server instance with configured middleware, the health
// endpoint and, when m is not nil, the Prometheus endpoint.
func New(cfg *config.AppConfig, storage Pinger, m *metrics.Registry) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "afterlife",
	})

	app.Use(requestid.New(requestid.Config{
		Header: "X-Ray-ID",
	}))

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Get(),
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		},
	}))

	s := &Server{
		App:     app,
		cfg:     cfg,
		storage: storage,
	}

	app.Get("/healthz", s.health)
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	return s
}

// health handles GET /healthz.
// @Summary Health check
// @Description Reports whether the storage backend answers.
// @Tags ops
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) health(c *fiber.Ctx) error {
	if s.storage == nil {
		return c.Status(http.StatusOK).JSON(HealthResponse{Status: "ok", Storage: "none"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	if err := s.storage.Ping(ctx); err != nil {
		logger.Get().Warn("Storage health check failed", zap.Error(err))
		return c.Status(http.StatusServiceUnavailable).JSON(HealthResponse{
			Status:  "degraded",
			Storage: s.cfg.Storage.Backend,
			Error:   err.Error(),
		})
	}

	return c.Status(http.StatusOK).JSON(HealthResponse{Status: "ok", Storage: s.cfg.Storage.Backend})
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.ServerPort)
	logger.Get().Info("Starting server", zap.String("address", addr))
	return s.App.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.App.ShutdownWithContext(ctx)
}
