package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/database"
	"github.com/ghuser/chatmesh/services/chat/domain/models"
)

// ChatUserRepository implements repositories.ChatUserRepository against PostgreSQL.
type ChatUserRepository struct {
	db *database.Database
}

// NewChatUserRepository returns a ChatUserRepository backed by the given pool.
func NewChatUserRepository(db *database.Database) *ChatUserRepository {
	return &ChatUserRepository{db: db}
}

// Upsert inserts or overwrites the user view row keyed by ID.
func (r *ChatUserRepository) Upsert(ctx context.Context, user *models.ChatUser) error {
	const q = `
		INSERT INTO chat_users (id, email, name, synced_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = EXCLUDED.name,
		    synced_at = EXCLUDED.synced_at`

	if _, err := r.db.DB().ExecContext(ctx, q,
		user.ID, user.Email, user.Name, user.SyncedAt,
	); err != nil {
		return fmt.Errorf("upsert chat user: %w", err)
	}
	return nil
}

// ExistAll reports whether every given ID is present in the local view.
func (r *ChatUserRepository) ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}

	const q = `SELECT count(*) FROM chat_users WHERE id = ANY($1::uuid[])`

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	var count int
	if err := r.db.DB().QueryRowContext(ctx, q, strIDs).Scan(&count); err != nil {
		return false, fmt.Errorf("count chat users: %w", err)
	}
	return count == len(ids), nil
}
