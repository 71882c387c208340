package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single chat message inside a conversation.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Body           string
	SentAt         time.Time
}

// NewMessage constructs a Message with generated ID and current timestamp.
func NewMessage(conversationID, senderID uuid.UUID, body string) *Message {
	return &Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		SentAt:         time.Now().UTC(),
	}
}
