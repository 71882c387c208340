package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/config"
	"github.com/ghuser/chatmesh/pkg/logger"
	"github.com/ghuser/chatmesh/pkg/token"
)

func testTokenManager(t *testing.T) *token.Manager {
	t.Helper()
	return token.NewManager(&config.Config{
		AccessTokenSecret:  "0123456789abcdef0123456789abcdef",
		RefreshTokenSecret: "fedcba9876543210fedcba9876543210",
		CookieAuthKey:      "abcdef0123456789abcdef0123456789",
	})
}

func identityEcho(t *testing.T) (http.Handler, *uuid.UUID) {
	t.Helper()
	var seen uuid.UUID
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromCtx(r.Context())
		if err != nil {
			t.Errorf("UserIDFromCtx() error = %v", err)
		}
		seen = userID
		w.WriteHeader(http.StatusOK)
	})
	return h, &seen
}

func TestRequireAuth_ValidToken(t *testing.T) {
	tokens := testTokenManager(t)
	log := logger.New(&config.Config{LogLevel: "error"})

	userID := uuid.New()
	access, err := tokens.SignAccessToken(userID, "alice@example.com")
	if err != nil {
		t.Fatalf("SignAccessToken() error = %v", err)
	}

	next, seen := identityEcho(t)
	handler := RequireAuth(tokens, log)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if *seen != userID {
		t.Errorf("user id in context = %s, want %s", *seen, userID)
	}
	if got := req.Header.Get(IdentityHeader); got != userID.String() {
		t.Errorf("%s header = %q, want %q", IdentityHeader, got, userID)
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	tokens := testTokenManager(t)
	log := logger.New(&config.Config{LogLevel: "error"})

	handler := RequireAuth(tokens, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run without credentials")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_RejectsGarbageAndRefreshTokens(t *testing.T) {
	tokens := testTokenManager(t)
	log := logger.New(&config.Config{LogLevel: "error"})

	refresh, err := tokens.SignRefreshToken(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("SignRefreshToken() error = %v", err)
	}

	for name, header := range map[string]string{
		"garbage":       "Bearer not-a-jwt",
		"wrong scheme":  "Basic dXNlcjpwYXNz",
		"refresh token": "Bearer " + refresh,
	} {
		t.Run(name, func(t *testing.T) {
			handler := RequireAuth(tokens, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("next handler should not run")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestTrustIdentityHeader(t *testing.T) {
	userID := uuid.New()
	next, seen := identityEcho(t)
	handler := TrustIdentityHeader()(next)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	req.Header.Set(IdentityHeader, userID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if *seen != userID {
		t.Errorf("user id in context = %s, want %s", *seen, userID)
	}
}

func TestTrustIdentityHeader_MissingHeaderLeavesContextEmpty(t *testing.T) {
	handler := TrustIdentityHeader()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := UserIDFromCtx(r.Context()); err == nil {
			t.Error("expected no user id in context")
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversations", nil))
}
