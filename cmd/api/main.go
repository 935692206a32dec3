// Package main is the entrypoint for the aggregator API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/skyfeed/aggregator/internal/config"
	"github.com/skyfeed/aggregator/internal/metrics"
	"github.com/skyfeed/aggregator/internal/model"
	"github.com/skyfeed/aggregator/internal/server"
	"github.com/skyfeed/aggregator/internal/service"
	"github.com/skyfeed/aggregator/internal/upstream"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.APIKey == config.DefaultAPIKey && cfg.IsProduction() {
		logger.Warn("running in production with the default API key")
	}

	// Upstream client shared by every request
	upstreamClient := upstream.NewClient(
		upstream.NewHTTPClient(cfg.UpstreamTimeout),
		upstream.Endpoints{
			ISS:     cfg.Upstreams.ISSURL,
			SpaceX:  cfg.Upstreams.SpaceXURL,
			CatFact: cfg.Upstreams.CatFactURL,
			FX:      cfg.Upstreams.FXURL,
		},
	)

	routerCfg := server.RouterConfig{
		Logger:        logger,
		APIKey:        cfg.APIKey,
		IsDevelopment: cfg.IsDevelopment(),
		Metrics:       metrics.NewNoop(),
	}
	if cfg.MetricsEnabled {
		recorder := metrics.NewInMemory(model.Sources...)
		routerCfg.Metrics = recorder
		routerCfg.Snapshotter = recorder
	}
	routerCfg.Aggregator = service.NewAggregator(upstreamClient, logger, routerCfg.Metrics)

	srv := server.New(
		server.NewRouter(routerCfg),
		server.Options{
			Addr:            cfg.Addr(),
			ReadTimeout:     cfg.ReadTimeout,
			WriteTimeout:    cfg.WriteTimeout,
			ShutdownTimeout: cfg.ShutdownTimeout,
		},
		logger,
	)
	srv.OnShutdown("upstream-client", upstreamClient.Close)

	logger.Info("starting server",
		"addr", cfg.Addr(),
		"env", cfg.AppEnv,
		"upstream_timeout", cfg.UpstreamTimeout.String(),
		"metrics_enabled", cfg.MetricsEnabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		stop()
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "aggregator")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
