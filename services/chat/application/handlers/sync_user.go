package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/app"
	"github.com/ghuser/chatmesh/pkg/logger"
	"github.com/ghuser/chatmesh/pkg/messaging"
	domainevents "github.com/ghuser/chatmesh/services/chat/domain/events"
	"github.com/ghuser/chatmesh/services/chat/domain/models"
	"github.com/ghuser/chatmesh/services/chat/domain/repositories"
	"github.com/ghuser/chatmesh/services/chat/infrastructure/persistence/postgres"
)

// SyncUserHandler projects user.created events into this service's local user
// view. The upsert is keyed by user ID so redeliveries converge.
type SyncUserHandler struct {
	users repositories.ChatUserRepository
	log   logger.Logger
}

// NewSyncUserHandler wires a SyncUserHandler.
func NewSyncUserHandler(users repositories.ChatUserRepository, log logger.Logger) *SyncUserHandler {
	return &SyncUserHandler{users: users, log: log}
}

// Handle implements messaging.HandlerFunc. A returned error makes the consumer
// reject the delivery without requeue.
func (h *SyncUserHandler) Handle(ctx context.Context, env *messaging.Envelope) error {
	if env.Type != domainevents.TypeUserCreated {
		h.log.WarnContext(ctx, "ignoring unexpected event type", "type", env.Type)
		return nil
	}

	var payload domainevents.UserCreatedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return fmt.Errorf("decode user created payload: %w", err)
	}
	if payload.UserID == uuid.Nil || payload.Email == "" {
		return fmt.Errorf("user created payload missing required fields")
	}

	user := &models.ChatUser{
		ID:       payload.UserID,
		Email:    payload.Email,
		Name:     payload.Name,
		SyncedAt: time.Now().UTC(),
	}
	if err := h.users.Upsert(ctx, user); err != nil {
		return fmt.Errorf("upsert chat user %s: %w", user.ID, err)
	}

	h.log.InfoContext(ctx, "user view synced", "user_id", user.ID)
	return nil
}

// NewUserEventsConsumer builds the consumer that feeds SyncUserHandler from
// the user service's exchange.
func NewUserEventsConsumer(a *app.Application) *messaging.Consumer {
	users := postgres.NewChatUserRepository(a.Db)
	handler := NewSyncUserHandler(users, a.Logger)

	return messaging.NewConsumer(a.Broker, messaging.ConsumerConfig{
		Queue:       domainevents.QueueUserEvents,
		Exchange:    domainevents.ExchangeUserEvents,
		RoutingKeys: []string{domainevents.TypeUserCreated},
	}, handler.Handle, a.Logger)
}
