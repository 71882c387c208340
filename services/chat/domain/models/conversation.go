package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation groups two or more participants. Messages reference it by ID.
type Conversation struct {
	ID             uuid.UUID
	ParticipantIDs []uuid.UUID
	CreatedAt      time.Time
}

// NewConversation constructs a Conversation with generated ID and current timestamp.
func NewConversation(participantIDs []uuid.UUID) *Conversation {
	return &Conversation{
		ID:             uuid.New(),
		ParticipantIDs: participantIDs,
		CreatedAt:      time.Now().UTC(),
	}
}

// HasParticipant reports whether the user is a member of the conversation.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}
