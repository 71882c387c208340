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

// GetConversationHandler handles GET /conversations/{id} requests.
type GetConversationHandler struct {
	svc *appsvcs.Services
}

// NewGetConversationHandler returns a GetConversationHandler backed by the given services.
func NewGetConversationHandler(svc *appsvcs.Services) *GetConversationHandler {
	return &GetConversationHandler{svc: svc}
}

// Execute retrieves one of the caller's conversations.
func (h *GetConversationHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	conv, err := h.svc.Conversations.Get(r.Context(), userID, convID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toConversationResponse(conv))
}
