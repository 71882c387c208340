package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/services/user/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// UserRepository is the persistence interface for the User read model.
// The domain layer owns this interface; infrastructure implements it.
type UserRepository interface {
	// Upsert inserts the user or overwrites an existing row with the same ID.
	// Applying the same user twice must leave a single row, which is what
	// makes redelivered registration events safe.
	Upsert(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// UpdateName changes the display name and returns the updated row.
	// Returns ErrUserNotFound if the user does not exist.
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error)

	// List retrieves a paginated list of users, newest registrations first.
	// Returns the users slice and the total count (ignoring pagination).
	List(ctx context.Context, opts QueryOpts) ([]*models.User, int, error)
}
