package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the profile read model projected from auth.user.registered events.
// The ID comes from the auth service; this context never generates user IDs.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
