package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatUser is the local user view projected from user.created events. It lets
// participant checks run without a call to the user service.
type ChatUser struct {
	ID       uuid.UUID
	Email    string
	Name     string
	SyncedAt time.Time
}
