package handlers

import (
	"net/http"
	"strconv"

	"github.com/ghuser/chatmesh/pkg/auth"
	"github.com/ghuser/chatmesh/pkg/errhttp"
	"github.com/ghuser/chatmesh/pkg/httpx"
	appsvcs "github.com/ghuser/chatmesh/services/chat/application/services"
	"github.com/ghuser/chatmesh/services/chat/domain/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListConversationsResponse is returned by GET /conversations.
type ListConversationsResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
}

// ListConversationsHandler handles GET /conversations requests.
type ListConversationsHandler struct {
	svc *appsvcs.Services
}

// NewListConversationsHandler returns a ListConversationsHandler backed by the given services.
func NewListConversationsHandler(svc *appsvcs.Services) *ListConversationsHandler {
	return &ListConversationsHandler{svc: svc}
}

// Execute lists the caller's conversations, newest first.
func (h *ListConversationsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	convs, err := h.svc.Conversations.List(r.Context(), userID, parseQueryOpts(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := ListConversationsResponse{Conversations: make([]ConversationResponse, len(convs))}
	for i, c := range convs {
		resp.Conversations[i] = toConversationResponse(c)
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
