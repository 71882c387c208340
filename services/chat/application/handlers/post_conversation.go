package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/pkg/auth"
	"github.com/ghuser/chatmesh/pkg/errhttp"
	"github.com/ghuser/chatmesh/pkg/httpx"
	pkgvalidator "github.com/ghuser/chatmesh/pkg/validator"
	appsvcs "github.com/ghuser/chatmesh/services/chat/application/services"
	"github.com/ghuser/chatmesh/services/chat/domain/models"
)

// CreateConversationRequest is the request body for POST /conversations.
type CreateConversationRequest struct {
	ParticipantIDs []uuid.UUID `json:"participantIds" validate:"required,min=1,max=50"`
}

// ConversationResponse is the conversation shape returned by all endpoints.
type ConversationResponse struct {
	ID             uuid.UUID   `json:"id"`
	ParticipantIDs []uuid.UUID `json:"participantIds"`
	CreatedAt      time.Time   `json:"createdAt"`
}

func toConversationResponse(c *models.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:             c.ID,
		ParticipantIDs: c.ParticipantIDs,
		CreatedAt:      c.CreatedAt,
	}
}

// PostConversationHandler handles POST /conversations requests.
type PostConversationHandler struct {
	svc *appsvcs.Services
}

// NewPostConversationHandler returns a PostConversationHandler backed by the given services.
func NewPostConversationHandler(svc *appsvcs.Services) *PostConversationHandler {
	return &PostConversationHandler{svc: svc}
}

// Execute starts a conversation between the caller and the listed participants.
func (h *PostConversationHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreateConversationRequest](w, r)
	if !ok {
		return
	}

	conv, err := h.svc.Conversations.Create(r.Context(), userID, req.ParticipantIDs)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toConversationResponse(conv))
}
