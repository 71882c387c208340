package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/chatmesh/services/chat/domain/models"
	"github.com/ghuser/chatmesh/services/chat/domain/repositories"
)

// MessageService orchestrates sending and listing messages. Membership checks
// go through ConversationService so they benefit from the conversation cache.
type MessageService struct {
	messages      repositories.MessageRepository
	conversations *ConversationService
}

// NewMessageService wires a MessageService.
func NewMessageService(messages repositories.MessageRepository, conversations *ConversationService) *MessageService {
	return &MessageService{messages: messages, conversations: conversations}
}

// Send persists a message from the user into the conversation. Returns
// ErrNotParticipant when the sender is not a member.
func (s *MessageService) Send(ctx context.Context, senderID, conversationID uuid.UUID, body string) (*models.Message, error) {
	if err := s.conversations.Membership(ctx, senderID, conversationID); err != nil {
		return nil, err
	}

	msg := models.NewMessage(conversationID, senderID, body)
	if err := s.messages.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

// List returns a page of messages in the conversation, newest first. The caller must be
// a participant.
func (s *MessageService) List(ctx context.Context, userID, conversationID uuid.UUID, opts repositories.QueryOpts) ([]*models.Message, error) {
	if err := s.conversations.Membership(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListByConversation(ctx, conversationID, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}
