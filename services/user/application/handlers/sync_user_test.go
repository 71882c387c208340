package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/config"
	"github.com/ghuser/chatmesh/pkg/logger"
	"github.com/ghuser/chatmesh/pkg/messaging"
	domainevents "github.com/ghuser/chatmesh/services/user/domain/events"
	"github.com/ghuser/chatmesh/services/user/domain/models"
	"github.com/ghuser/chatmesh/services/user/domain/repositories"
)

// memoryUserRepo records operations so tests can assert ordering between the
// durable write and the derived publish.
type memoryUserRepo struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*models.User
	upserts int
	failing bool
	trace   *[]string
}

func newMemoryUserRepo(trace *[]string) *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uuid.UUID]*models.User), trace: trace}
}

func (r *memoryUserRepo) Upsert(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("database unavailable")
	}
	clone := *user
	r.users[user.ID] = &clone
	r.upserts++
	if r.trace != nil {
		*r.trace = append(*r.trace, "upsert")
	}
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, errors.New("not found")
}

func (r *memoryUserRepo) UpdateName(_ context.Context, id uuid.UUID, name string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	user.Name = name
	clone := *user
	return &clone, nil
}

func (r *memoryUserRepo) List(_ context.Context, _ repositories.QueryOpts) ([]*models.User, int, error) {
	return nil, 0, nil
}

type recordedPublish struct {
	routingKey string
	payload    any
}

type recordingPublisher struct {
	mu     sync.Mutex
	ok     bool
	events []recordedPublish
	trace  *[]string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedPublish{routingKey: routingKey, payload: payload})
	if p.trace != nil {
		*p.trace = append(*p.trace, "publish")
	}
	return p.ok
}

func registrationEnvelope(t *testing.T, payload any) *messaging.Envelope {
	t.Helper()
	env, err := messaging.NewEnvelope(domainevents.TypeUserRegistered, payload)
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}
	return env
}

func newTestHandler(repo *memoryUserRepo, pub *recordingPublisher) *SyncUserHandler {
	log := logger.New(&config.Config{LogLevel: "error"})
	return NewSyncUserHandler(repo, pub, log)
}

func TestSyncUser_ProjectsAndPublishesDerived(t *testing.T) {
	var trace []string
	repo := newMemoryUserRepo(&trace)
	pub := &recordingPublisher{ok: true, trace: &trace}
	handler := newTestHandler(repo, pub)

	userID := uuid.New()
	registeredAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env := registrationEnvelope(t, domainevents.UserRegisteredPayload{
		UserID:       userID,
		Email:        "a@b.com",
		Name:         "Alice",
		RegisteredAt: registeredAt,
	})

	if err := handler.Handle(context.Background(), env); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	user, err := repo.GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("user not projected: %v", err)
	}
	if user.Email != "a@b.com" || user.Name != "Alice" || !user.CreatedAt.Equal(registeredAt) {
		t.Errorf("unexpected projection: %+v", user)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d derived events, want 1", len(pub.events))
	}
	if pub.events[0].routingKey != domainevents.TypeUserCreated {
		t.Errorf("routing key = %q, want %q", pub.events[0].routingKey, domainevents.TypeUserCreated)
	}
	derived, ok := pub.events[0].payload.(domainevents.UserCreatedPayload)
	if !ok {
		t.Fatalf("payload type = %T", pub.events[0].payload)
	}
	if derived.UserID != userID || derived.Email != "a@b.com" {
		t.Errorf("unexpected derived payload: %+v", derived)
	}

	// The durable write must precede the derived publish.
	if len(trace) != 2 || trace[0] != "upsert" || trace[1] != "publish" {
		t.Errorf("operation order = %v, want [upsert publish]", trace)
	}
}

func TestSyncUser_RedeliveryConvergesOnSameRow(t *testing.T) {
	repo := newMemoryUserRepo(nil)
	pub := &recordingPublisher{ok: true}
	handler := newTestHandler(repo, pub)

	userID := uuid.New()
	env := registrationEnvelope(t, domainevents.UserRegisteredPayload{
		UserID:       userID,
		Email:        "a@b.com",
		Name:         "Alice",
		RegisteredAt: time.Now().UTC(),
	})

	for i := 0; i < 2; i++ {
		if err := handler.Handle(context.Background(), env); err != nil {
			t.Fatalf("Handle() #%d error = %v", i+1, err)
		}
	}

	if len(repo.users) != 1 {
		t.Fatalf("projected %d rows, want 1", len(repo.users))
	}
	user, err := repo.GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("user not projected: %v", err)
	}
	if user.Email != "a@b.com" || user.Name != "Alice" {
		t.Errorf("row drifted after redelivery: %+v", user)
	}
}

func TestSyncUser_IgnoresUnexpectedType(t *testing.T) {
	repo := newMemoryUserRepo(nil)
	pub := &recordingPublisher{ok: true}
	handler := newTestHandler(repo, pub)

	env, err := messaging.NewEnvelope("auth.password.changed", map[string]string{"userId": uuid.NewString()})
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}

	if err := handler.Handle(context.Background(), env); err != nil {
		t.Fatalf("Handle() error = %v, want nil for unexpected type", err)
	}
	if repo.upserts != 0 || len(pub.events) != 0 {
		t.Error("unexpected type must not touch the read model or publish")
	}
}

func TestSyncUser_MissingRequiredFields(t *testing.T) {
	repo := newMemoryUserRepo(nil)
	pub := &recordingPublisher{ok: true}
	handler := newTestHandler(repo, pub)

	env := registrationEnvelope(t, map[string]string{"name": "Alice"})

	if err := handler.Handle(context.Background(), env); err == nil {
		t.Fatal("Handle() error = nil, want error for incomplete payload")
	}
	if repo.upserts != 0 {
		t.Error("incomplete payload must not be projected")
	}
}

func TestSyncUser_RepositoryErrorPropagates(t *testing.T) {
	repo := newMemoryUserRepo(nil)
	repo.failing = true
	pub := &recordingPublisher{ok: true}
	handler := newTestHandler(repo, pub)

	env := registrationEnvelope(t, domainevents.UserRegisteredPayload{
		UserID:       uuid.New(),
		Email:        "a@b.com",
		Name:         "Alice",
		RegisteredAt: time.Now().UTC(),
	})

	if err := handler.Handle(context.Background(), env); err == nil {
		t.Fatal("Handle() error = nil, want repository error")
	}
	if len(pub.events) != 0 {
		t.Error("failed write must not publish a derived event")
	}
}

func TestSyncUser_FailedDerivedPublishStillSucceeds(t *testing.T) {
	repo := newMemoryUserRepo(nil)
	pub := &recordingPublisher{ok: false}
	handler := newTestHandler(repo, pub)

	env := registrationEnvelope(t, domainevents.UserRegisteredPayload{
		UserID:       uuid.New(),
		Email:        "a@b.com",
		Name:         "Alice",
		RegisteredAt: time.Now().UTC(),
	})

	if err := handler.Handle(context.Background(), env); err != nil {
		t.Fatalf("Handle() error = %v, want nil when only the derived publish fails", err)
	}
	if repo.upserts != 1 {
		t.Error("user must still be projected")
	}
}
