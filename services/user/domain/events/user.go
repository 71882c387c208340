package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// ExchangeUserEvents is the topic exchange all user service events are
	// published to.
	ExchangeUserEvents = "user.events"

	// TypeUserCreated is both the envelope type and the routing key for the
	// derived event emitted once a registration has been projected into the
	// profile read model.
	TypeUserCreated = "user.created"

	// QueueAuthEvents is this service's durable queue bound to the auth
	// service's exchange.
	QueueAuthEvents = "user-service.auth-events"
)

// UserCreatedPayload is the envelope payload published after a registration
// has been durably written to the read model. Downstream services (chat)
// consume it instead of the raw auth event.
type UserCreatedPayload struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
