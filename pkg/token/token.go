// Package token issues and verifies the access/refresh JWT pair used across
// services. Access tokens are short-lived bearer tokens verified by the
// gateway; refresh tokens are long-lived, carry a server-side token ID for
// revocation, and travel only in a signed HttpOnly cookie.
package token

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"github.com/ghuser/chatmesh/pkg/config"
)

const (
	// RefreshCookieName is the cookie carrying the refresh token.
	RefreshCookieName = "chatmesh_refresh"

	// RefreshTTL is the refresh token lifetime; the auth service stores the
	// matching expiry on each issued token record.
	RefreshTTL = 7 * 24 * time.Hour

	accessTTL = 15 * time.Minute
)

// ErrInvalidToken covers expired, malformed, and mis-signed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. TokenID identifies the
// stored refresh-token row so individual tokens can be revoked.
type RefreshClaims struct {
	TokenID string `json:"tokenId"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens and handles the refresh cookie.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	cookie        *securecookie.SecureCookie
	secureCookies bool
}

// NewManager builds a Manager from config. Cookies are marked Secure outside
// development.
func NewManager(cfg *config.Config) *Manager {
	sc := securecookie.New([]byte(cfg.CookieAuthKey), nil)
	sc.MaxAge(int(RefreshTTL / time.Second))
	return &Manager{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		cookie:        sc,
		secureCookies: cfg.Environment == config.EnvProduction,
	}
}

// SignAccessToken issues a 15-minute access token for the user.
func (m *Manager) SignAccessToken(userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken parses and validates an access token.
func (m *Manager) VerifyAccessToken(raw string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := m.verify(raw, &claims, m.accessSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}

// SignRefreshToken issues a 7-day refresh token bound to a stored token row.
func (m *Manager) SignRefreshToken(userID, tokenID uuid.UUID) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		TokenID: tokenID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

// VerifyRefreshToken parses and validates a refresh token.
func (m *Manager) VerifyRefreshToken(raw string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := m.verify(raw, &claims, m.refreshSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (m *Manager) verify(raw string, claims jwt.Claims, secret []byte) error {
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return nil
}

// SetRefreshCookie writes the refresh token as a signed HttpOnly cookie.
func (m *Manager) SetRefreshCookie(w http.ResponseWriter, refreshToken string) error {
	encoded, err := m.cookie.Encode(RefreshCookieName, refreshToken)
	if err != nil {
		return fmt.Errorf("encode refresh cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    encoded,
		Path:     "/api/auth",
		MaxAge:   int(RefreshTTL / time.Second),
		HttpOnly: true,
		Secure:   m.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// RefreshFromCookie extracts and authenticates the refresh token cookie.
func (m *Manager) RefreshFromCookie(r *http.Request) (string, error) {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return "", fmt.Errorf("%w: missing refresh cookie", ErrInvalidToken)
	}
	var raw string
	if err := m.cookie.Decode(RefreshCookieName, c.Value, &raw); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return raw, nil
}

// ClearRefreshCookie expires the refresh cookie.
func (m *Manager) ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
