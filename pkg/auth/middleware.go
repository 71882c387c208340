package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/httpx"
	"github.com/ghuser/chatmesh/pkg/logger"
	"github.com/ghuser/chatmesh/pkg/token"
)

// RequireAuth is a chi middleware that enforces authentication via a Bearer
// access token. On success the user ID is injected into the request context
// and into the X-User-Id header for proxied upstream services.
//
// After this middleware, handlers can safely call auth.UserIDFromCtx(r.Context()).
func RequireAuth(tokens *token.Manager, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := tokens.VerifyAccessToken(raw)
			if err != nil {
				log.WarnContext(r.Context(), "rejected access token", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				log.WarnContext(r.Context(), "invalid subject in access token", "sub", claims.Subject)
				httpx.JSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			r.Header.Set(IdentityHeader, userID.String())
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// TrustIdentityHeader is the upstream-service counterpart of RequireAuth: it
// reads the X-User-Id header set by the gateway and injects it into context.
// Services exposed only behind the gateway use this instead of re-verifying
// the token.
func TrustIdentityHeader() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := r.Header.Get(IdentityHeader); raw != "" {
				if userID, err := uuid.Parse(raw); err == nil {
					r = r.WithContext(WithUserID(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
