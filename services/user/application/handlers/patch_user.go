package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/auth"
	"github.com/ghuser/chatmesh/pkg/errhttp"
	"github.com/ghuser/chatmesh/pkg/httpx"
	pkgvalidator "github.com/ghuser/chatmesh/pkg/validator"
	appsvcs "github.com/ghuser/chatmesh/services/user/application/services"
)

// UpdateUserRequest is the request body for PATCH /users/{id}.
type UpdateUserRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// PatchUserHandler handles PATCH /users/{id} requests.
type PatchUserHandler struct {
	svc *appsvcs.Services
}

// NewPatchUserHandler returns a PatchUserHandler backed by the given services.
func NewPatchUserHandler(svc *appsvcs.Services) *PatchUserHandler {
	return &PatchUserHandler{svc: svc}
}

// Execute updates the caller's own display name.
func (h *PatchUserHandler) Execute(w http.ResponseWriter, r *http.Request) {
	callerID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	req, ok := pkgvalidator.ValidateRequest[UpdateUserRequest](w, r)
	if !ok {
		return
	}

	user, err := h.svc.User.UpdateName(r.Context(), callerID, id, req.Name)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}
