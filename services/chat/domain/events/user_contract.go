package events

import (
	"time"

	"github.com/google/uuid"
)

// Consumed contract. This service keeps its own copy of the user service's
// event shape so producer-side changes surface as decode failures.
const (
	// ExchangeUserEvents is the user service's exchange this service binds to.
	ExchangeUserEvents = "user.events"

	// TypeUserCreated is the envelope type and routing key of synced users.
	TypeUserCreated = "user.created"

	// QueueUserEvents is this service's durable queue bound to the user
	// service's exchange.
	QueueUserEvents = "chat-service.user-events"
)

// UserCreatedPayload mirrors the user service's published payload.
type UserCreatedPayload struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
