package events

import (
	"time"

	"github.com/google/uuid"
)

// Consumed contract. This service keeps its own copy of the auth service's
// event shape so a change on the producer side surfaces here as a decode
// failure instead of a silent drift.
const (
	// ExchangeAuthEvents is the auth service's exchange this service binds to.
	ExchangeAuthEvents = "auth.events"

	// TypeUserRegistered is the envelope type and routing key of registrations.
	TypeUserRegistered = "auth.user.registered"
)

// UserRegisteredPayload mirrors the auth service's published payload.
type UserRegisteredPayload struct {
	UserID       uuid.UUID `json:"userId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registeredAt"`
}
