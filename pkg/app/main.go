package app

import (
	"github.com/ghuser/chatmesh/pkg/cache"
	"github.com/ghuser/chatmesh/pkg/config"
	"github.com/ghuser/chatmesh/pkg/database"
	"github.com/ghuser/chatmesh/pkg/logger"
	"github.com/ghuser/chatmesh/pkg/messaging"
	"github.com/ghuser/chatmesh/pkg/token"
)

// Application holds shared infrastructure dependencies for one service process.
// Pass to the service's route registration during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler — use slog's context methods
// and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "syncing user", "user_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config *config.Config
	Db     *database.Database
	Logger logger.Logger

	// Broker is the shared AMQP connection manager. Disabled (never dials)
	// when RABBITMQ_URI is unset; publishers and consumers degrade gracefully.
	Broker *messaging.ConnManager

	// Redis is nil in services that do not cache (auth, user).
	Redis *cache.RedisClient

	// Tokens is nil in services that neither mint nor verify JWTs (chat).
	Tokens *token.Manager
}
