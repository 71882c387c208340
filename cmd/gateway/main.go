package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghuser/chatmesh/pkg/config"
	"github.com/ghuser/chatmesh/pkg/gateway"
	"github.com/ghuser/chatmesh/pkg/httpx"
	"github.com/ghuser/chatmesh/pkg/logger"
	"github.com/ghuser/chatmesh/pkg/telemetry"
	"github.com/ghuser/chatmesh/pkg/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
	)

	// The gateway holds no connections of its own; health reflects only the
	// process being up. Upstream health is each service's own /health.
	r.Get("/health", httpx.HealthHandler(httpx.HealthChecks{}))
	r.Get("/metrics", telemetry.MetricsHandler().ServeHTTP)

	if err := gateway.Routes(r, cfg, token.NewManager(cfg), log); err != nil {
		log.Error("failed to build proxy routes", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure
	}

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("gateway listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("gateway stopped")
}
