package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/database"
	"github.com/ghuser/chatmesh/services/chat/domain/models"
	"github.com/ghuser/chatmesh/services/chat/domain/repositories"
)

// MessageRepository implements repositories.MessageRepository against PostgreSQL.
type MessageRepository struct {
	db *database.Database
}

// NewMessageRepository returns a MessageRepository backed by the given pool.
func NewMessageRepository(db *database.Database) *MessageRepository {
	return &MessageRepository{db: db}
}

// Save persists a new message.
func (r *MessageRepository) Save(ctx context.Context, msg *models.Message) error {
	const q = `
		INSERT INTO messages (id, conversation_id, sender_id, body, sent_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.DB().ExecContext(ctx, q,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Body, msg.SentAt,
	); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListByConversation retrieves a page of messages for a conversation,
// newest first, so the first page is the latest activity.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID, opts repositories.QueryOpts) ([]*models.Message, error) {
	const q = `
		SELECT id, conversation_id, sender_id, body, sent_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY sent_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := r.db.DB().QueryContext(ctx, q, conversationID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var msgs []*models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Body, &msg.SentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}
