package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgcache "github.com/ghuser/chatmesh/pkg/cache"
	"github.com/ghuser/chatmesh/pkg/logger"
	chatdomain "github.com/ghuser/chatmesh/services/chat/domain"
	"github.com/ghuser/chatmesh/services/chat/domain/models"
	"github.com/ghuser/chatmesh/services/chat/domain/repositories"
)

// ConversationService orchestrates conversation creation and retrieval.
// Reads go through the short-lived Redis cache when one is configured.
type ConversationService struct {
	conversations repositories.ConversationRepository
	users         repositories.ChatUserRepository
	cache         *pkgcache.ConversationCache
	log           logger.Logger
}

// NewConversationService wires a ConversationService. cache may be nil.
func NewConversationService(
	conversations repositories.ConversationRepository,
	users repositories.ChatUserRepository,
	convCache *pkgcache.ConversationCache,
	log logger.Logger,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		users:         users,
		cache:         convCache,
		log:           log,
	}
}

// Create starts a conversation between the creator and the given participants.
// Every participant must already exist in the local user view; a participant
// whose user.created event has not arrived yet yields ErrUnknownParticipant.
func (s *ConversationService) Create(ctx context.Context, creatorID uuid.UUID, participantIDs []uuid.UUID) (*models.Conversation, error) {
	members := dedupe(append([]uuid.UUID{creatorID}, participantIDs...))
	if len(members) < 2 {
		return nil, fmt.Errorf("%w: a conversation needs at least one other participant", chatdomain.ErrUnknownParticipant)
	}

	ok, err := s.users.ExistAll(ctx, members)
	if err != nil {
		return nil, fmt.Errorf("check participants: %w", err)
	}
	if !ok {
		return nil, chatdomain.ErrUnknownParticipant
	}

	conv := models.NewConversation(members)
	if err := s.conversations.Save(ctx, conv); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}
	return conv, nil
}

// Get retrieves a conversation the user participates in, using a
// read-through cache:
//  1. Check Redis first.
//  2. On cache miss (or cache error), query Postgres and warm the cache.
//
// Non-participants get ErrNotParticipant regardless of where the hit came from.
func (s *ConversationService) Get(ctx context.Context, userID, conversationID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.lookup(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, chatdomain.ErrNotParticipant
	}
	return conv, nil
}

// List returns the conversations the user belongs to, newest first.
func (s *ConversationService) List(ctx context.Context, userID uuid.UUID, opts repositories.QueryOpts) ([]*models.Conversation, error) {
	convs, err := s.conversations.ListByParticipant(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

// Membership reports whether the user participates in the conversation. Used
// by the message service so sends share the cached lookup.
func (s *ConversationService) Membership(ctx context.Context, userID, conversationID uuid.UUID) error {
	_, err := s.Get(ctx, userID, conversationID)
	return err
}

func (s *ConversationService) lookup(ctx context.Context, conversationID uuid.UUID) (*models.Conversation, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, conversationID); err == nil {
			return &models.Conversation{
				ID:             cached.ID,
				ParticipantIDs: cached.ParticipantIDs,
				CreatedAt:      cached.CreatedAt,
			}, nil
		} else if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "conversation cache read failed", "conversation_id", conversationID, "error", err)
		}
	}

	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, &pkgcache.CachedConversation{
			ID:             conv.ID,
			ParticipantIDs: conv.ParticipantIDs,
			CreatedAt:      conv.CreatedAt,
		}); err != nil {
			s.log.WarnContext(ctx, "conversation cache write failed", "conversation_id", conversationID, "error", err)
		}
	}
	return conv, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
