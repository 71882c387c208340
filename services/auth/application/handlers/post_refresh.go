package handlers

import (
	"net/http"

	"github.com/ghuser/chatmesh/pkg/errhttp"
	"github.com/ghuser/chatmesh/pkg/httpx"
	"github.com/ghuser/chatmesh/pkg/token"
	appsvcs "github.com/ghuser/chatmesh/services/auth/application/services"
	authdomain "github.com/ghuser/chatmesh/services/auth/domain"
)

// RefreshResponse is returned on successful token refresh.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// PostRefreshHandler handles POST /auth/refresh requests.
type PostRefreshHandler struct {
	svc    *appsvcs.Services
	tokens *token.Manager
}

// NewPostRefreshHandler returns a PostRefreshHandler backed by the given services.
func NewPostRefreshHandler(svc *appsvcs.Services, tokens *token.Manager) *PostRefreshHandler {
	return &PostRefreshHandler{svc: svc, tokens: tokens}
}

// Execute rotates the refresh token from the cookie and returns a fresh
// access token. A failed rotation clears the cookie so clients stop retrying
// a dead token.
func (h *PostRefreshHandler) Execute(w http.ResponseWriter, r *http.Request) {
	raw, err := h.tokens.RefreshFromCookie(r)
	if err != nil {
		errhttp.WriteError(w, authdomain.ErrInvalidRefreshToken)
		return
	}

	pair, err := h.svc.Auth.Refresh(r.Context(), raw)
	if err != nil {
		h.tokens.ClearRefreshCookie(w)
		errhttp.WriteError(w, err)
		return
	}

	if err := h.tokens.SetRefreshCookie(w, pair.RefreshToken); err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, RefreshResponse{AccessToken: pair.AccessToken})
}
