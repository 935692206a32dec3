package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/skyfeed/aggregator/internal/handler"
	"github.com/skyfeed/aggregator/internal/metrics"
	"github.com/skyfeed/aggregator/internal/middleware"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Logger        *slog.Logger
	APIKey        string
	IsDevelopment bool
	Aggregator    handler.Aggregator
	Metrics       metrics.Recorder
	// Snapshotter enables GET /metrics when non-nil.
	Snapshotter metrics.Snapshotter
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	h := handler.New()
	healthHandler := handler.NewHealthHandler()
	aggregateHandler := handler.NewAggregateHandler(cfg.Aggregator, cfg.Logger)

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.Logger(middleware.LoggerConfig{
		Logger:     cfg.Logger,
		QuietPaths: []string{"/health", "/metrics"},
	}))
	r.Use(middleware.Recoverer(cfg.Logger))

	// No auth required
	r.Get("/", h.Info)
	r.Get("/health", healthHandler.Health)
	if cfg.Snapshotter != nil {
		r.Get("/metrics", handler.NewMetricsHandler(cfg.Snapshotter).Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Logger:  cfg.Logger,
			APIKey:  cfg.APIKey,
			Metrics: cfg.Metrics,
		}))
		r.Get("/aggregate", aggregateHandler.Aggregate)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
