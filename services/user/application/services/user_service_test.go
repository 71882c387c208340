package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/services/user/domain"
	"github.com/ghuser/chatmesh/services/user/domain/models"
	"github.com/ghuser/chatmesh/services/user/domain/repositories"
)

type stubUserRepo struct {
	users map[uuid.UUID]*models.User
}

func (r *stubUserRepo) Upsert(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateName(_ context.Context, id uuid.UUID, name string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Name = name
	return user, nil
}

func (r *stubUserRepo) List(_ context.Context, opts repositories.QueryOpts) ([]*models.User, int, error) {
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	// Contract: newest registrations first.
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	total := len(out)
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, total, nil
}

func seededService(t *testing.T) (*UserService, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	repo := &stubUserRepo{users: map[uuid.UUID]*models.User{
		id: {ID: id, Email: "a@b.com", Name: "Alice", CreatedAt: time.Now()},
	}}
	return NewUserService(repo), id
}

func TestUserService_UpdateName_Owner(t *testing.T) {
	svc, id := seededService(t)

	user, err := svc.UpdateName(context.Background(), id, id, "Alicia")
	if err != nil {
		t.Fatalf("UpdateName() error = %v", err)
	}
	if user.Name != "Alicia" {
		t.Fatalf("name = %q, want %q", user.Name, "Alicia")
	}
}

func TestUserService_UpdateName_OtherProfileForbidden(t *testing.T) {
	svc, id := seededService(t)

	_, err := svc.UpdateName(context.Background(), uuid.New(), id, "Mallory")
	if !errors.Is(err, domain.ErrNotProfileOwner) {
		t.Fatalf("UpdateName() error = %v, want ErrNotProfileOwner", err)
	}
}

func TestUserService_UpdateName_UnknownUser(t *testing.T) {
	svc, _ := seededService(t)

	id := uuid.New()
	_, err := svc.UpdateName(context.Background(), id, id, "Nobody")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("UpdateName() error = %v, want ErrUserNotFound", err)
	}
}

func TestUserService_List_NewestFirst(t *testing.T) {
	base := time.Now()
	repo := &stubUserRepo{users: map[uuid.UUID]*models.User{}}
	names := []string{"first", "second", "third"}
	for i, name := range names {
		id := uuid.New()
		repo.users[id] = &models.User{
			ID: id, Email: name + "@b.com", Name: name,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	svc := NewUserService(repo)

	users, total, err := svc.List(context.Background(), repositories.QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}
	if users[0].Name != "third" || users[1].Name != "second" {
		t.Fatalf("order = [%s %s], want newest first [third second]", users[0].Name, users[1].Name)
	}
}
