package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/services/chat/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// ChatUserRepository is the persistence interface for the local user view.
type ChatUserRepository interface {
	// Upsert inserts the user or overwrites an existing row with the same ID.
	// Redelivered user.created events must converge on a single row.
	Upsert(ctx context.Context, user *models.ChatUser) error

	// ExistAll reports whether every given ID is present in the local view.
	ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error)
}

// ConversationRepository is the persistence interface for conversations.
type ConversationRepository interface {
	// Save persists a new conversation together with its participant rows.
	Save(ctx context.Context, conv *models.Conversation) error

	// GetByID retrieves a conversation including all participant IDs.
	// Returns ErrConversationNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)

	// ListByParticipant retrieves the conversations the user belongs to,
	// newest first.
	ListByParticipant(ctx context.Context, userID uuid.UUID, opts QueryOpts) ([]*models.Conversation, error)
}

// MessageRepository is the persistence interface for messages.
type MessageRepository interface {
	Save(ctx context.Context, msg *models.Message) error

	// ListByConversation retrieves a page of messages for a conversation,
	// newest first.
	ListByConversation(ctx context.Context, conversationID uuid.UUID, opts QueryOpts) ([]*models.Message, error)
}
