package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/database"
	userdomain "github.com/ghuser/chatmesh/services/user/domain"
	"github.com/ghuser/chatmesh/services/user/domain/models"
	"github.com/ghuser/chatmesh/services/user/domain/repositories"
)

// UserRepository implements repositories.UserRepository against PostgreSQL.
type UserRepository struct {
	db *database.Database
}

// NewUserRepository returns a UserRepository backed by the given pool.
func NewUserRepository(db *database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts or overwrites the user row keyed by ID. created_at keeps its
// original value on conflict so replays do not move the registration time.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (id, email, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = EXCLUDED.name,
		    updated_at = EXCLUDED.updated_at`

	if _, err := r.db.DB().ExecContext(ctx, q,
		user.ID, user.Email, user.Name, user.CreatedAt, user.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID. Returns ErrUserNotFound if not found.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `
		SELECT id, email, name, created_at, updated_at
		FROM users
		WHERE id = $1`

	var user models.User
	if err := r.db.DB().QueryRowContext(ctx, q, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userdomain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// UpdateName changes the display name and returns the updated row.
func (r *UserRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	const q = `
		UPDATE users
		SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, email, name, created_at, updated_at`

	var user models.User
	if err := r.db.DB().QueryRowContext(ctx, q, id, name).Scan(
		&user.ID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userdomain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user name: %w", err)
	}
	return &user, nil
}

// List retrieves a paginated list of users, newest registrations first.
func (r *UserRepository) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.User, int, error) {
	const q = `
		SELECT id, email, name, created_at, updated_at
		FROM users
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.DB().QueryContext(ctx, q, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}
