package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/database"
	chatdomain "github.com/ghuser/chatmesh/services/chat/domain"
	"github.com/ghuser/chatmesh/services/chat/domain/models"
	"github.com/ghuser/chatmesh/services/chat/domain/repositories"
)

// ConversationRepository implements repositories.ConversationRepository
// against PostgreSQL. Participants live in a join table so membership queries
// stay indexable.
type ConversationRepository struct {
	db *database.Database
}

// NewConversationRepository returns a ConversationRepository backed by the given pool.
func NewConversationRepository(db *database.Database) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Save persists the conversation and its participant rows in one transaction.
func (r *ConversationRepository) Save(ctx context.Context, conv *models.Conversation) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO conversations (id, created_at) VALUES ($1, $2)`,
			conv.ID, conv.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert conversation: %w", err)
		}

		for _, userID := range conv.ParticipantIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO conversation_participants (conversation_id, user_id) VALUES ($1, $2)`,
				conv.ID, userID,
			); err != nil {
				return fmt.Errorf("insert participant: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a conversation including all participant IDs.
func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.DB().QueryRowContext(ctx,
		`SELECT id, created_at FROM conversations WHERE id = $1`, id,
	).Scan(&conv.ID, &conv.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, chatdomain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("query conversation: %w", err)
	}

	participants, err := r.participants(ctx, id)
	if err != nil {
		return nil, err
	}
	conv.ParticipantIDs = participants
	return &conv, nil
}

// ListByParticipant retrieves the conversations the user belongs to, newest first.
func (r *ConversationRepository) ListByParticipant(ctx context.Context, userID uuid.UUID, opts repositories.QueryOpts) ([]*models.Conversation, error) {
	const q = `
		SELECT c.id, c.created_at
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id
		WHERE cp.user_id = $1
		ORDER BY c.created_at DESC, c.id
		LIMIT $2 OFFSET $3`

	rows, err := r.db.DB().QueryContext(ctx, q, userID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var convs []*models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(&conv.ID, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, &conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}

	for _, conv := range convs {
		participants, err := r.participants(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		conv.ParticipantIDs = participants
	}
	return convs, nil
}

func (r *ConversationRepository) participants(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT user_id FROM conversation_participants WHERE conversation_id = $1 ORDER BY user_id`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return ids, nil
}
