package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/chatmesh/pkg/database"
	authdomain "github.com/ghuser/chatmesh/services/auth/domain"
	"github.com/ghuser/chatmesh/services/auth/domain/models"
)

// AccountRepository implements repositories.AccountRepository against PostgreSQL.
type AccountRepository struct {
	db *database.Database
}

// NewAccountRepository returns an AccountRepository backed by the given pool.
func NewAccountRepository(db *database.Database) *AccountRepository {
	return &AccountRepository{db: db}
}

// Save persists a new account. Returns ErrEmailTaken on the email unique
// constraint.
func (r *AccountRepository) Save(ctx context.Context, account *models.Account) error {
	const q = `
		INSERT INTO accounts (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.DB().ExecContext(ctx, q,
		account.ID, account.Email, account.Name, account.PasswordHash, account.CreatedAt,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return authdomain.ErrEmailTaken
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByEmail retrieves an account by email. Returns ErrInvalidCredentials when
// no account matches, so callers cannot distinguish unknown email from wrong
// password.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	const q = `
		SELECT id, email, name, password_hash, created_at
		FROM accounts
		WHERE email = $1`

	account, err := r.scanAccount(r.db.DB().QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authdomain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("query account by email: %w", err)
	}
	return account, nil
}

// GetByID retrieves an account by ID. Returns ErrAccountNotFound when no
// account matches.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	const q = `
		SELECT id, email, name, password_hash, created_at
		FROM accounts
		WHERE id = $1`

	account, err := r.scanAccount(r.db.DB().QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authdomain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("query account by id: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	var account models.Account
	if err := row.Scan(
		&account.ID, &account.Email, &account.Name, &account.PasswordHash, &account.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
