package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/chatmesh/pkg/app"
	"github.com/ghuser/chatmesh/pkg/config"
	"github.com/ghuser/chatmesh/pkg/database"
	"github.com/ghuser/chatmesh/pkg/httpx"
	"github.com/ghuser/chatmesh/pkg/logger"
	"github.com/ghuser/chatmesh/pkg/messaging"
	"github.com/ghuser/chatmesh/pkg/telemetry"
	userApi "github.com/ghuser/chatmesh/services/user/application/api"
	userHandlers "github.com/ghuser/chatmesh/services/user/application/handlers"
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
	ctx := context.Background()

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure
	}
	defer pool.Close()
	log.Info("database pool connected")

	broker := messaging.NewConnManager(cfg.BrokerURL, log)

	appConfig := &app.Application{
		Config: cfg,
		Db:     pool,
		Logger: log,
		Broker: broker,
	}

	// The consumer starts the broker connection and re-subscribes on every
	// reconnect; its Stop also stops the shared connection manager.
	consumer := userHandlers.NewAuthEventsConsumer(appConfig)
	if err := consumer.Start(); err != nil {
		log.Error("failed to start auth events consumer", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer consumer.Stop() //nolint:errcheck

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

	r.Get("/health", httpx.HealthHandler(httpx.HealthChecks{
		Database: pool,
		Broker:   broker,
	}))
	r.Get("/metrics", telemetry.MetricsHandler().ServeHTTP)
	r.Route("/api", func(r chi.Router) {
		userApi.UserRoutes(r, appConfig)
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("user service listening", "addr", srv.Addr, "env", cfg.Environment)
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
	log.Info("user service stopped")
}
