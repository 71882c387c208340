package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/auth"
	"github.com/ghuser/chatmesh/pkg/errhttp"
	"github.com/ghuser/chatmesh/pkg/httpx"
	appsvcs "github.com/ghuser/chatmesh/services/chat/application/services"
)

// ListMessagesResponse is returned by GET /conversations/{id}/messages.
type ListMessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// ListMessagesHandler handles GET /conversations/{id}/messages requests.
type ListMessagesHandler struct {
	svc *appsvcs.Services
}

// NewListMessagesHandler returns a ListMessagesHandler backed by the given services.
func NewListMessagesHandler(svc *appsvcs.Services) *ListMessagesHandler {
	return &ListMessagesHandler{svc: svc}
}

// Execute lists messages in one of the caller's conversations, newest first.
func (h *ListMessagesHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	convID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	msgs, err := h.svc.Messages.List(r.Context(), userID, convID, parseQueryOpts(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := ListMessagesResponse{Messages: make([]MessageResponse, len(msgs))}
	for i, m := range msgs {
		resp.Messages[i] = toMessageResponse(m)
	}
	httpx.JSON(w, http.StatusOK, resp)
}
