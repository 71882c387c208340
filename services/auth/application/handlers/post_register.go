package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/errhttp"
	"github.com/ghuser/chatmesh/pkg/httpx"
	pkgvalidator "github.com/ghuser/chatmesh/pkg/validator"
	appsvcs "github.com/ghuser/chatmesh/services/auth/application/services"
)

// RegisterRequest is the request body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostRegisterHandler handles POST /auth/register requests.
type PostRegisterHandler struct {
	svc *appsvcs.Services
}

// NewPostRegisterHandler returns a PostRegisterHandler backed by the given services.
func NewPostRegisterHandler(svc *appsvcs.Services) *PostRegisterHandler {
	return &PostRegisterHandler{svc: svc}
}

// Execute creates a new account. The bcrypt cap of 72 bytes bounds the
// password length.
func (h *PostRegisterHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[RegisterRequest](w, r)
	if !ok {
		return
	}

	account, err := h.svc.Auth.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, RegisterResponse{
		ID:        account.ID,
		Email:     account.Email,
		Name:      account.Name,
		CreatedAt: account.CreatedAt,
	})
}
