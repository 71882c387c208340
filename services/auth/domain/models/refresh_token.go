package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken records an issued refresh token so it can be revoked server-side.
// Only the token ID is stored; the signed JWT itself never touches the database.
type RefreshToken struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// NewRefreshToken constructs a RefreshToken valid until expiresAt.
func NewRefreshToken(accountID uuid.UUID, expiresAt time.Time) *RefreshToken {
	return &RefreshToken{
		ID:        uuid.New(),
		AccountID: accountID,
		IssuedAt:  time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
}

// Active reports whether the token can still be redeemed at the given instant.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
