package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/database"
	authdomain "github.com/ghuser/chatmesh/services/auth/domain"
	"github.com/ghuser/chatmesh/services/auth/domain/models"
)

// RefreshTokenRepository implements repositories.RefreshTokenRepository
// against PostgreSQL.
type RefreshTokenRepository struct {
	db *database.Database
}

// NewRefreshTokenRepository returns a RefreshTokenRepository backed by the given pool.
func NewRefreshTokenRepository(db *database.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Save persists an issued refresh token record.
func (r *RefreshTokenRepository) Save(ctx context.Context, token *models.RefreshToken) error {
	const q = `
		INSERT INTO refresh_tokens (id, account_id, issued_at, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.DB().ExecContext(ctx, q,
		token.ID, token.AccountID, token.IssuedAt, token.ExpiresAt, token.RevokedAt,
	); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// GetByID retrieves a refresh token record. Returns ErrInvalidRefreshToken
// when the ID is unknown.
func (r *RefreshTokenRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RefreshToken, error) {
	const q = `
		SELECT id, account_id, issued_at, expires_at, revoked_at
		FROM refresh_tokens
		WHERE id = $1`

	var token models.RefreshToken
	if err := r.db.DB().QueryRowContext(ctx, q, id).Scan(
		&token.ID, &token.AccountID, &token.IssuedAt, &token.ExpiresAt, &token.RevokedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authdomain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("query refresh token: %w", err)
	}
	return &token, nil
}

// Revoke marks a token as revoked. Unknown or already revoked tokens are a no-op.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE refresh_tokens
		SET revoked_at = now()
		WHERE id = $1 AND revoked_at IS NULL`

	if _, err := r.db.DB().ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
