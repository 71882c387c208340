package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/auth"
	"github.com/ghuser/chatmesh/pkg/errhttp"
	"github.com/ghuser/chatmesh/pkg/httpx"
	pkgvalidator "github.com/ghuser/chatmesh/pkg/validator"
	appsvcs "github.com/ghuser/chatmesh/services/chat/application/services"
	"github.com/ghuser/chatmesh/services/chat/domain/models"
)

// SendMessageRequest is the request body for POST /conversations/{id}/messages.
type SendMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=4000"`
}

// MessageResponse is the message shape returned by all endpoints.
type MessageResponse struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversationId"`
	SenderID       uuid.UUID `json:"senderId"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sentAt"`
}

func toMessageResponse(m *models.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		SentAt:         m.SentAt,
	}
}

// PostMessageHandler handles POST /conversations/{id}/messages requests.
type PostMessageHandler struct {
	svc *appsvcs.Services
}

// NewPostMessageHandler returns a PostMessageHandler backed by the given services.
func NewPostMessageHandler(svc *appsvcs.Services) *PostMessageHandler {
	return &PostMessageHandler{svc: svc}
}

// Execute sends a message into one of the caller's conversations.
func (h *PostMessageHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	req, ok := pkgvalidator.ValidateRequest[SendMessageRequest](w, r)
	if !ok {
		return
	}

	msg, err := h.svc.Messages.Send(r.Context(), userID, convID, req.Body)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toMessageResponse(msg))
}
