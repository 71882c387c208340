package handlers

import (
	"net/http"

	"github.com/ghuser/chatmesh/pkg/errhttp"
	"github.com/ghuser/chatmesh/pkg/httpx"
	"github.com/ghuser/chatmesh/pkg/token"
	appsvcs "github.com/ghuser/chatmesh/services/auth/application/services"
)

// PostLogoutHandler handles POST /auth/logout requests.
type PostLogoutHandler struct {
	svc    *appsvcs.Services
	tokens *token.Manager
}

// NewPostLogoutHandler returns a PostLogoutHandler backed by the given services.
func NewPostLogoutHandler(svc *appsvcs.Services, tokens *token.Manager) *PostLogoutHandler {
	return &PostLogoutHandler{svc: svc, tokens: tokens}
}

// Execute revokes the refresh token and clears the cookie. Succeeds even when
// no valid cookie is present so logout is always safe to call.
func (h *PostLogoutHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if raw, err := h.tokens.RefreshFromCookie(r); err == nil {
		if err := h.svc.Auth.Logout(r.Context(), raw); err != nil {
			errhttp.WriteError(w, err)
			return
		}
	}

	h.tokens.ClearRefreshCookie(w)
	httpx.NoContent(w)
}
