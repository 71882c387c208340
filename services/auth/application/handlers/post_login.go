package handlers

import (
	"net/http"

	"github.com/ghuser/chatmesh/pkg/errhttp"
	"github.com/ghuser/chatmesh/pkg/httpx"
	"github.com/ghuser/chatmesh/pkg/token"
	pkgvalidator "github.com/ghuser/chatmesh/pkg/validator"
	appsvcs "github.com/ghuser/chatmesh/services/auth/application/services"
)

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful login. The refresh token travels
// only in the HttpOnly cookie, never in the body.
type LoginResponse struct {
	AccessToken string           `json:"accessToken"`
	User        RegisterResponse `json:"user"`
}

// PostLoginHandler handles POST /auth/login requests.
type PostLoginHandler struct {
	svc    *appsvcs.Services
	tokens *token.Manager
}

// NewPostLoginHandler returns a PostLoginHandler backed by the given services.
func NewPostLoginHandler(svc *appsvcs.Services, tokens *token.Manager) *PostLoginHandler {
	return &PostLoginHandler{svc: svc, tokens: tokens}
}

// Execute verifies credentials, sets the refresh cookie, and returns the
// access token.
func (h *PostLoginHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[LoginRequest](w, r)
	if !ok {
		return
	}

	account, pair, err := h.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	if err := h.tokens.SetRefreshCookie(w, pair.RefreshToken); err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, LoginResponse{
		AccessToken: pair.AccessToken,
		User: RegisterResponse{
			ID:        account.ID,
			Email:     account.Email,
			Name:      account.Name,
			CreatedAt: account.CreatedAt,
		},
	})
}
