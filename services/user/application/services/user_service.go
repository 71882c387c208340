package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/services/user/domain"
	"github.com/ghuser/chatmesh/services/user/domain/models"
	"github.com/ghuser/chatmesh/services/user/domain/repositories"
)

// UserService serves the profile read model. Rows are created by the event
// sync handler; the only write exposed here is the owner's display name.
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService returns a UserService backed by the given repository.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// GetByID retrieves a user profile. Returns ErrUserNotFound when the
// registration event has not been projected yet.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateName changes a user's display name. Only the profile owner may do
// this; any other caller gets ErrNotProfileOwner.
func (s *UserService) UpdateName(ctx context.Context, callerID, id uuid.UUID, name string) (*models.User, error) {
	if callerID != id {
		return nil, domain.ErrNotProfileOwner
	}
	user, err := s.repo.UpdateName(ctx, id, name)
	if err != nil {
		return nil, fmt.Errorf("update user name: %w", err)
	}
	return user, nil
}

// List returns a paginated slice of users plus total count.
func (s *UserService) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.User, int, error) {
	users, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}
