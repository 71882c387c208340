package handlers

import (
	"net/http"
	"strconv"

	"github.com/ghuser/chatmesh/pkg/errhttp"
	"github.com/ghuser/chatmesh/pkg/httpx"
	appsvcs "github.com/ghuser/chatmesh/services/user/application/services"
	"github.com/ghuser/chatmesh/services/user/domain/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListUsersResponse is returned by GET /users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

// ListUsersHandler handles GET /users requests.
type ListUsersHandler struct {
	svc *appsvcs.Services
}

// NewListUsersHandler returns a ListUsersHandler backed by the given services.
func NewListUsersHandler(svc *appsvcs.Services) *ListUsersHandler {
	return &ListUsersHandler{svc: svc}
}

// Execute lists user profiles with limit/offset pagination.
func (h *ListUsersHandler) Execute(w http.ResponseWriter, r *http.Request) {
	opts := parseQueryOpts(r)

	users, total, err := h.svc.User.List(r.Context(), opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := ListUsersResponse{
		Users: make([]UserResponse, len(users)),
		Total: total,
	}
	for i, u := range users {
		resp.Users[i] = toUserResponse(u)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// parseQueryOpts reads limit/offset query params, clamping to sane bounds.
func parseQueryOpts(r *http.Request) repositories.QueryOpts {
	opts := repositories.QueryOpts{Limit: defaultPageSize}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			opts.Limit = min(n, maxPageSize)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			opts.Offset = n
		}
	}
	return opts
}
