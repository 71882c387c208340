package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/app"
	"github.com/ghuser/chatmesh/pkg/logger"
	"github.com/ghuser/chatmesh/pkg/messaging"
	domainevents "github.com/ghuser/chatmesh/services/user/domain/events"
	"github.com/ghuser/chatmesh/services/user/domain/models"
	"github.com/ghuser/chatmesh/services/user/domain/repositories"
	"github.com/ghuser/chatmesh/services/user/infrastructure/persistence/postgres"
)

// EventPublisher is the messaging seam for derived events.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) bool
}

// SyncUserHandler projects auth.user.registered events into the profile read
// model and re-announces them as user.created. The derived event is published
// only after the row is durably written, so consumers of user.created can rely
// on this service already knowing the user.
//
// The projection is an upsert keyed by user ID: redelivered events converge on
// the same row, which is what makes at-least-once delivery safe here.
type SyncUserHandler struct {
	users     repositories.UserRepository
	publisher EventPublisher
	log       logger.Logger
}

// NewSyncUserHandler wires a SyncUserHandler.
func NewSyncUserHandler(users repositories.UserRepository, publisher EventPublisher, log logger.Logger) *SyncUserHandler {
	return &SyncUserHandler{users: users, publisher: publisher, log: log}
}

// Handle implements messaging.HandlerFunc. A returned error makes the consumer
// reject the delivery without requeue; unknown envelope types are acked with a
// warning since redelivery cannot fix them.
func (h *SyncUserHandler) Handle(ctx context.Context, env *messaging.Envelope) error {
	if env.Type != domainevents.TypeUserRegistered {
		h.log.WarnContext(ctx, "ignoring unexpected event type", "type", env.Type)
		return nil
	}

	var payload domainevents.UserRegisteredPayload
	if err := env.DecodePayload(&payload); err != nil {
		return fmt.Errorf("decode user registered payload: %w", err)
	}
	if payload.UserID == uuid.Nil || payload.Email == "" {
		return fmt.Errorf("user registered payload missing required fields")
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        payload.UserID,
		Email:     payload.Email,
		Name:      payload.Name,
		CreatedAt: payload.RegisteredAt,
		UpdatedAt: now,
	}
	if err := h.users.Upsert(ctx, user); err != nil {
		return fmt.Errorf("upsert user %s: %w", user.ID, err)
	}

	if ok := h.publisher.Publish(ctx, domainevents.TypeUserCreated, domainevents.UserCreatedPayload{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}); !ok {
		// The row is durable; dropping the derived event only delays
		// downstream sync, so the delivery is still acked.
		h.log.WarnContext(ctx, "user created event not published", "user_id", user.ID)
	}

	h.log.InfoContext(ctx, "user synced from registration", "user_id", user.ID)
	return nil
}

// NewAuthEventsConsumer builds the consumer that feeds SyncUserHandler from
// the auth service's exchange.
func NewAuthEventsConsumer(a *app.Application) *messaging.Consumer {
	users := postgres.NewUserRepository(a.Db)
	publisher := messaging.NewPublisher(a.Broker, domainevents.ExchangeUserEvents, a.Logger)
	handler := NewSyncUserHandler(users, publisher, a.Logger)

	return messaging.NewConsumer(a.Broker, messaging.ConsumerConfig{
		Queue:       domainevents.QueueAuthEvents,
		Exchange:    domainevents.ExchangeAuthEvents,
		RoutingKeys: []string{domainevents.TypeUserRegistered},
	}, handler.Handle, a.Logger)
}
