package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ghuser/chatmesh/pkg/config"
	"github.com/ghuser/chatmesh/pkg/logger"
	"github.com/ghuser/chatmesh/pkg/token"
	authdomain "github.com/ghuser/chatmesh/services/auth/domain"
	domainevents "github.com/ghuser/chatmesh/services/auth/domain/events"
	"github.com/ghuser/chatmesh/services/auth/domain/models"
)

type memoryAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*models.Account
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{accounts: make(map[uuid.UUID]*models.Account)}
}

func (r *memoryAccountRepo) Save(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return authdomain.ErrEmailTaken
		}
	}
	r.accounts[account.ID] = account
	return nil
}

func (r *memoryAccountRepo) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, authdomain.ErrInvalidCredentials
}

func (r *memoryAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account, ok := r.accounts[id]; ok {
		return account, nil
	}
	return nil, authdomain.ErrAccountNotFound
}

type memoryTokenRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*models.RefreshToken
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[uuid.UUID]*models.RefreshToken)}
}

func (r *memoryTokenRepo) Save(_ context.Context, t *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *t
	r.tokens[t.ID] = &clone
	return nil
}

func (r *memoryTokenRepo) GetByID(_ context.Context, id uuid.UUID) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[id]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, authdomain.ErrInvalidRefreshToken
}

func (r *memoryTokenRepo) Revoke(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[id]; ok && t.RevokedAt == nil {
		now := time.Now().UTC()
		t.RevokedAt = &now
	}
	return nil
}

type published struct {
	routingKey string
	payload    any
}

type stubPublisher struct {
	mu     sync.Mutex
	ok     bool
	events []published
}

func (p *stubPublisher) Publish(_ context.Context, routingKey string, payload any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{routingKey: routingKey, payload: payload})
	return p.ok
}

func newTestService(t *testing.T, pub *stubPublisher) (*AuthService, *memoryAccountRepo, *memoryTokenRepo) {
	t.Helper()
	cfg := &config.Config{
		LogLevel:           "error",
		AccessTokenSecret:  "0123456789abcdef0123456789abcdef",
		RefreshTokenSecret: "fedcba9876543210fedcba9876543210",
		CookieAuthKey:      "abcdef0123456789abcdef0123456789",
	}
	accounts := newMemoryAccountRepo()
	tokens := newMemoryTokenRepo()
	svc := NewAuthService(accounts, tokens, token.NewManager(cfg), pub, logger.New(cfg))
	return svc, accounts, tokens
}

func TestRegister_HashesPasswordAndPublishes(t *testing.T) {
	pub := &stubPublisher{ok: true}
	svc, _, _ := newTestService(t, pub)

	account, err := svc.Register(context.Background(), "alice@example.com", "Alice", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if account.PasswordHash == "s3cret-pass" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	evt := pub.events[0]
	if evt.routingKey != domainevents.TypeUserRegistered {
		t.Errorf("routing key = %q, want %q", evt.routingKey, domainevents.TypeUserRegistered)
	}
	payload, ok := evt.payload.(domainevents.UserRegisteredPayload)
	if !ok {
		t.Fatalf("payload type = %T", evt.payload)
	}
	if payload.UserID != account.ID || payload.Email != "alice@example.com" || payload.Name != "Alice" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestRegister_SucceedsWhenBrokerDown(t *testing.T) {
	pub := &stubPublisher{ok: false}
	svc, _, _ := newTestService(t, pub)

	if _, err := svc.Register(context.Background(), "alice@example.com", "Alice", "s3cret-pass"); err != nil {
		t.Fatalf("Register() error = %v, want nil despite failed publish", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t, &stubPublisher{ok: true})

	if _, err := svc.Register(context.Background(), "alice@example.com", "Alice", "s3cret-pass"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, err := svc.Register(context.Background(), "alice@example.com", "Someone Else", "other-pass")
	if !errors.Is(err, authdomain.ErrEmailTaken) {
		t.Fatalf("second Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestLogin_IssuesVerifiablePair(t *testing.T) {
	svc, _, tokens := newTestService(t, &stubPublisher{ok: true})
	account, err := svc.Register(context.Background(), "alice@example.com", "Alice", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, pair, err := svc.Login(context.Background(), "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got.ID != account.ID {
		t.Errorf("logged in account = %s, want %s", got.ID, account.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected non-empty token pair")
	}

	claims, err := svc.jwt.VerifyRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("VerifyRefreshToken() error = %v", err)
	}
	tokenID, err := uuid.Parse(claims.TokenID)
	if err != nil {
		t.Fatalf("token id not a uuid: %v", err)
	}
	record, err := tokens.GetByID(context.Background(), tokenID)
	if err != nil {
		t.Fatalf("refresh token record not stored: %v", err)
	}
	if record.AccountID != account.ID {
		t.Errorf("record account = %s, want %s", record.AccountID, account.ID)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService(t, &stubPublisher{ok: true})
	if _, err := svc.Register(context.Background(), "alice@example.com", "Alice", "s3cret-pass"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for name, attempt := range map[string][2]string{
		"wrong password": {"alice@example.com", "wrong-pass"},
		"unknown email":  {"bob@example.com", "s3cret-pass"},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), attempt[0], attempt[1])
			if !errors.Is(err, authdomain.ErrInvalidCredentials) {
				t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, _, _ := newTestService(t, &stubPublisher{ok: true})
	if _, err := svc.Register(context.Background(), "alice@example.com", "Alice", "s3cret-pass"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, pair, err := svc.Login(context.Background(), "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	// The redeemed token is revoked; replaying it must fail.
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, authdomain.ErrInvalidRefreshToken) {
		t.Fatalf("replayed Refresh() error = %v, want ErrInvalidRefreshToken", err)
	}

	// The rotated token still works.
	if _, err := svc.Refresh(context.Background(), next.RefreshToken); err != nil {
		t.Fatalf("rotated Refresh() error = %v", err)
	}
}

func TestRefresh_RejectsGarbage(t *testing.T) {
	svc, _, _ := newTestService(t, &stubPublisher{ok: true})
	if _, err := svc.Refresh(context.Background(), "not-a-jwt"); !errors.Is(err, authdomain.ErrInvalidRefreshToken) {
		t.Fatalf("Refresh() error = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, _, _ := newTestService(t, &stubPublisher{ok: true})
	if _, err := svc.Register(context.Background(), "alice@example.com", "Alice", "s3cret-pass"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, pair, err := svc.Login(context.Background(), "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := svc.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, authdomain.ErrInvalidRefreshToken) {
		t.Fatalf("Refresh() after Logout error = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestLogout_InvalidTokenIsNoop(t *testing.T) {
	svc, _, _ := newTestService(t, &stubPublisher{ok: true})
	if err := svc.Logout(context.Background(), "not-a-jwt"); err != nil {
		t.Fatalf("Logout() error = %v, want nil", err)
	}
}
