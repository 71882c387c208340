package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// ConversationCacheTTL is deliberately short: membership checks hit this
	// cache on every message send, and a stale entry self-heals within a minute.
	ConversationCacheTTL = 60 * time.Second

	conversationCacheKeyPrefix = "conversation"
)

// CachedConversation is the denormalized conversation stored in Redis as JSON.
type CachedConversation struct {
	ID             uuid.UUID   `json:"id"`
	ParticipantIDs []uuid.UUID `json:"participantIds"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// ConversationCache provides read/write operations for conversation cache
// entries. Values are JSON blobs keyed "conversation:{conversationID}".
type ConversationCache struct {
	client *RedisClient
}

// NewConversationCache creates a ConversationCache backed by the given RedisClient.
func NewConversationCache(r *RedisClient) *ConversationCache {
	return &ConversationCache{client: r}
}

// Get retrieves a cached conversation by ID.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *ConversationCache) Get(ctx context.Context, conversationID uuid.UUID) (*CachedConversation, error) {
	raw, err := c.client.Client().Get(ctx, c.key(conversationID)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var conv CachedConversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &conv, nil
}

// Set writes a cached conversation with the 60-second TTL.
func (c *ConversationCache) Set(ctx context.Context, conv *CachedConversation) error {
	raw, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Client().Set(ctx, c.key(conv.ID), raw, ConversationCacheTTL).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached conversation.
func (c *ConversationCache) Delete(ctx context.Context, conversationID uuid.UUID) error {
	if err := c.client.Client().Del(ctx, c.key(conversationID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "conversation:{conversationID}"
func (c *ConversationCache) key(conversationID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", conversationCacheKeyPrefix, conversationID)
}
