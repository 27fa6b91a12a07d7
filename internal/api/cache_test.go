package api

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/microscan/microscan/pkg/scoring"
	"github.com/microscan/microscan/pkg/signal"
)

func TestAssessmentCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewAssessmentCache(2)
	c.Put(ctx, "a", signal.Assessment{Reasoning: "a"})
	c.Put(ctx, "b", signal.Assessment{Reasoning: "b"})

	// Touch a so b becomes the oldest.
	if _, ok := c.Get(ctx, "a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.Put(ctx, "c", signal.Assessment{Reasoning: "c"})

	if _, ok := c.Get(ctx, "b"); ok {
		t.Error("expected b to be evicted")
	}
	if got, ok := c.Get(ctx, "a"); !ok || got.Reasoning != "a" {
		t.Error("expected a to survive eviction")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
}

func TestAssessmentCacheReplace(t *testing.T) {
	ctx := context.Background()
	c := NewAssessmentCache(0)
	c.Put(ctx, "k", signal.Assessment{Reasoning: "old"})
	c.Put(ctx, "k", signal.Assessment{Reasoning: "new"})

	got, _ := c.Get(ctx, "k")
	if got.Reasoning != "new" || c.Len() != 1 {
		t.Errorf("expected replaced entry, got %q with %d entries", got.Reasoning, c.Len())
	}
}

func TestImageKey(t *testing.T) {
	a := ImageKey(scoring.VariantAlgae, "aGVsbG8=")
	b := ImageKey(scoring.VariantMicroplastic, "aGVsbG8=")
	if a == b {
		t.Error("expected variant to be part of the key")
	}
	if len(a) != 64 {
		t.Errorf("expected hex sha256, got %q", a)
	}
}

func TestRedisCacheUnavailableIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	c := NewRedisCache(client, time.Minute)
	ctx := context.Background()
	c.Put(ctx, "k", signal.Assessment{Reasoning: "x"})
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected a miss when redis is unreachable")
	}
}
