package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Integration tests — skipped unless REDIS_URL is set.
func TestConversationCacheIntegration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}

	rc, err := NewRedisClient(newTestConfig(redisURL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close() //nolint:errcheck

	cc := NewConversationCache(rc)
	ctx := context.Background()

	t.Run("SetGetRoundTrip", func(t *testing.T) {
		conv := &CachedConversation{
			ID:             uuid.New(),
			ParticipantIDs: []uuid.UUID{uuid.New(), uuid.New()},
			CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
		}
		if err := cc.Set(ctx, conv); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		got, err := cc.Get(ctx, conv.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.ID != conv.ID || len(got.ParticipantIDs) != 2 {
			t.Fatalf("cached conversation mismatch: %+v", got)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := cc.Get(ctx, uuid.New())
		if !errors.Is(err, redis.Nil) {
			t.Fatalf("expected redis.Nil, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		conv := &CachedConversation{ID: uuid.New(), CreatedAt: time.Now().UTC()}
		if err := cc.Set(ctx, conv); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := cc.Delete(ctx, conv.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := cc.Get(ctx, conv.ID); !errors.Is(err, redis.Nil) {
			t.Fatalf("expected redis.Nil after delete, got %v", err)
		}
	})
}
