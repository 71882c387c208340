package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// ExchangeAuthEvents is the topic exchange all auth service events are
	// published to.
	ExchangeAuthEvents = "auth.events"

	// TypeUserRegistered is both the envelope type and the routing key for
	// successful registrations.
	TypeUserRegistered = "auth.user.registered"
)

// UserRegisteredPayload is the envelope payload published after a new account
// is persisted. The user service consumes it to build its profile read model.
type UserRegisteredPayload struct {
	UserID       uuid.UUID `json:"userId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registeredAt"`
}
