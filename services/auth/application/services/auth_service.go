package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ghuser/chatmesh/pkg/logger"
	"github.com/ghuser/chatmesh/pkg/token"
	authdomain "github.com/ghuser/chatmesh/services/auth/domain"
	domainevents "github.com/ghuser/chatmesh/services/auth/domain/events"
	"github.com/ghuser/chatmesh/services/auth/domain/models"
	"github.com/ghuser/chatmesh/services/auth/domain/repositories"
)

// EventPublisher is the messaging seam for this service. Publish reports
// success as a bool so broker trouble never fails the HTTP request.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) bool
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService orchestrates registration, login, and the refresh token
// lifecycle. Registration publishes auth.user.registered best-effort: a
// registration never fails because the broker is down.
type AuthService struct {
	accounts  repositories.AccountRepository
	tokens    repositories.RefreshTokenRepository
	jwt       *token.Manager
	publisher EventPublisher
	log       logger.Logger
	now       func() time.Time
}

// NewAuthService wires an AuthService. publisher may be a disabled publisher
// but must not be nil.
func NewAuthService(
	accounts repositories.AccountRepository,
	tokens repositories.RefreshTokenRepository,
	jwt *token.Manager,
	publisher EventPublisher,
	log logger.Logger,
) *AuthService {
	return &AuthService{
		accounts:  accounts,
		tokens:    tokens,
		jwt:       jwt,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account and announces it on the event bus. The publish
// happens after the account is durably written and its outcome is ignored:
// the user service converges later via reconnect and replay of registrations
// that happen while it is down is not attempted (documented trade-off of
// best-effort publishing).
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := models.NewAccount(email, name, string(hash))
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}

	if ok := s.publisher.Publish(ctx, domainevents.TypeUserRegistered, domainevents.UserRegisteredPayload{
		UserID:       account.ID,
		Email:        account.Email,
		Name:         account.Name,
		RegisteredAt: account.CreatedAt,
	}); !ok {
		s.log.WarnContext(ctx, "user registered event not published", "user_id", account.ID)
	}

	return account, nil
}

// Login verifies credentials and issues a token pair. Unknown email and wrong
// password both map to ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Account, *TokenPair, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, nil, authdomain.ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	return account, pair, nil
}

// Refresh redeems a refresh token for a new pair. The old token is revoked in
// the same call (rotation), so a replayed refresh token fails with
// ErrInvalidRefreshToken.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	record, err := s.redeemable(ctx, rawRefresh)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, record.AccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", authdomain.ErrInvalidRefreshToken, err)
	}

	if err := s.tokens.Revoke(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	return s.issuePair(ctx, account)
}

// Logout revokes the refresh token if it is valid. An invalid token is not an
// error: the cookie gets cleared either way.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string) error {
	record, err := s.redeemable(ctx, rawRefresh)
	if err != nil {
		return nil
	}
	if err := s.tokens.Revoke(ctx, record.ID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// redeemable verifies the JWT and checks the stored record is still active.
func (s *AuthService) redeemable(ctx context.Context, rawRefresh string) (*models.RefreshToken, error) {
	claims, err := s.jwt.VerifyRefreshToken(rawRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", authdomain.ErrInvalidRefreshToken, err)
	}

	tokenID, err := uuid.Parse(claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed token id", authdomain.ErrInvalidRefreshToken)
	}

	record, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}
	if !record.Active(s.now()) {
		return nil, authdomain.ErrInvalidRefreshToken
	}
	return record, nil
}

func (s *AuthService) issuePair(ctx context.Context, account *models.Account) (*TokenPair, error) {
	record := models.NewRefreshToken(account.ID, s.now().Add(token.RefreshTTL))
	if err := s.tokens.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	access, err := s.jwt.SignAccessToken(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.jwt.SignRefreshToken(account.ID, record.ID)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
