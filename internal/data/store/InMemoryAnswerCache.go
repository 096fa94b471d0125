package store

import (
	"context"
	"sync"

	"github.com/nkodali/KBaseAPI/internal/domain/kbModel"
	"github.com/nkodali/KBaseAPI/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem AnswerCache")

// InMemoryAnswerCache is the fallback when Redis is offline.
type InMemoryAnswerCache struct {
	mu      sync.RWMutex
	answers map[string]kbModel.SearchResult
}

func InitInMemoryAnswerCache() *InMemoryAnswerCache {
	return &InMemoryAnswerCache{
		answers: make(map[string]kbModel.SearchResult),
	}
}

func (c *InMemoryAnswerCache) GetAnswer(ctx context.Context, query string, topK int) (kbModel.SearchResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, found := c.answers[cacheKey(query, topK)]
	return result, found
}

func (c *InMemoryAnswerCache) SaveAnswer(ctx context.Context, query string, topK int, result kbModel.SearchResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers[cacheKey(query, topK)] = result
	return nil
}

func (c *InMemoryAnswerCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.answers) > 0 {
		inMemLogger.Debug("Invalidating answer cache", "entries", len(c.answers))
	}
	c.answers = make(map[string]kbModel.SearchResult)
	return nil
}
