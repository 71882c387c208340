package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/services/auth/domain/models"
)

// AccountRepository is the persistence interface for the Account aggregate.
// The domain layer owns this interface; infrastructure implements it.
type AccountRepository interface {
	// Save persists a new account. Returns ErrEmailTaken when the email is
	// already registered.
	Save(ctx context.Context, account *models.Account) error

	// GetByEmail retrieves an account by email. Returns ErrInvalidCredentials
	// when no account matches.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetByID retrieves an account by ID. Returns ErrAccountNotFound when no
	// account matches.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// RefreshTokenRepository stores issued refresh tokens for revocation checks.
type RefreshTokenRepository interface {
	Save(ctx context.Context, token *models.RefreshToken) error

	// GetByID retrieves a token record. Returns ErrInvalidRefreshToken when
	// the ID is unknown.
	GetByID(ctx context.Context, id uuid.UUID) (*models.RefreshToken, error)

	// Revoke marks a token as revoked. Revoking an already revoked or unknown
	// token is not an error.
	Revoke(ctx context.Context, id uuid.UUID) error
}
