package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/nkodali/KBaseAPI/internal/config"
	"github.com/nkodali/KBaseAPI/internal/data/redisStore"
	"github.com/nkodali/KBaseAPI/internal/data/store"
	"github.com/nkodali/KBaseAPI/internal/domain/kbModel"
)

func newTestCache(t *testing.T) store.AnswerCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestAnswerCache(redisStore.NewTestStore(client))
}

func TestRedisAnswerCache_Lifecycle(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	result := kbModel.SearchResult{
		Query:      "how does chunking work?",
		Answer:     "documents are split into overlapping word windows",
		Sources:    []string{"handbook.txt"},
		Confidence: 0.81,
		Timestamp:  time.Now().UTC(),
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := cache.SaveAnswer(ctx, result.Query, 5, result); err != nil {
			t.Fatalf("SaveAnswer failed: %v", err)
		}

		got, found := cache.GetAnswer(ctx, result.Query, 5)
		if !found {
			t.Fatal("Answer was saved but not found")
		}
		if got.Answer != result.Answer || got.Confidence != result.Confidence {
			t.Errorf("Data mismatch: got %+v", got)
		}
	})

	t.Run("Normalized Query Key", func(t *testing.T) {
		_, found := cache.GetAnswer(ctx, "  HOW   does chunking WORK?  ", 5)
		if !found {
			t.Error("Whitespace/case variants of the query should hit the same entry")
		}
	})

	t.Run("Miss For Different TopK", func(t *testing.T) {
		if _, found := cache.GetAnswer(ctx, result.Query, 1); found {
			t.Error("Entries are per top-k, expected a miss for a different k")
		}
	})

	t.Run("Miss For Unknown Query", func(t *testing.T) {
		if _, found := cache.GetAnswer(ctx, "something else entirely", 5); found {
			t.Error("Expected a cache miss")
		}
	})

	t.Run("Invalidate Hides Old Entries", func(t *testing.T) {
		if err := cache.Invalidate(ctx); err != nil {
			t.Fatalf("Invalidate failed: %v", err)
		}
		if _, found := cache.GetAnswer(ctx, result.Query, 5); found {
			t.Error("Entry still visible after invalidation")
		}
	})
}

func TestInMemoryAnswerCache_Lifecycle(t *testing.T) {
	cache := store.InitInMemoryAnswerCache()
	ctx := context.Background()

	result := kbModel.SearchResult{Query: "q", Answer: "a"}
	if err := cache.SaveAnswer(ctx, "q", 3, result); err != nil {
		t.Fatalf("SaveAnswer failed: %v", err)
	}
	if _, found := cache.GetAnswer(ctx, "q", 3); !found {
		t.Fatal("Expected hit after save")
	}
	if _, found := cache.GetAnswer(ctx, "q", 1); found {
		t.Error("Expected miss for a different top-k")
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, found := cache.GetAnswer(ctx, "q", 3); found {
		t.Error("Expected miss after invalidation")
	}
}
