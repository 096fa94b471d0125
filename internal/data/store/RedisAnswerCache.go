package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nkodali/KBaseAPI/internal/config"
	"github.com/nkodali/KBaseAPI/internal/data/redisStore"
	"github.com/nkodali/KBaseAPI/internal/domain/kbModel"
	"github.com/nkodali/KBaseAPI/pkg/logger_i"
)

const cacheEpochKey = "answer_cache_epoch"

// RedisAnswerCache namespaces entries under an epoch counter; Invalidate
// just bumps the epoch instead of scanning for keys, and the stale
// generation ages out via TTL.
type RedisAnswerCache struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisAnswerCache(ctx context.Context) *RedisAnswerCache {
	inner := redisStore.GetRedisStore(ctx, config.RedisAnswerCacheDB)
	if inner == nil {
		return nil
	}
	return &RedisAnswerCache{
		store:  inner,
		logger: logger_i.NewLogger("AnswerCache"),
	}
}

// TestAnswerCache builds a cache over an injected store, for miniredis.
func TestAnswerCache(inner *redisStore.Store) *RedisAnswerCache {
	return &RedisAnswerCache{
		store:  inner,
		logger: logger_i.NewLogger("AnswerCache"),
	}
}

func (c *RedisAnswerCache) GetAnswer(ctx context.Context, query string, topK int) (kbModel.SearchResult, bool) {
	var result kbModel.SearchResult
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	val, err := c.store.Get(ctx, c.entryKey(ctx, query, topK))
	if c.store.IsNil(err) {
		return result, false
	} else if err != nil {
		log.Error("Cache lookup failed", "error", err)
		return result, false
	}

	if err := json.Unmarshal([]byte(val), &result); err != nil {
		log.Error("Cache entry corrupt", "error", err)
		return result, false
	}

	log.Debug("Answer cache hit")
	return result, true
}

func (c *RedisAnswerCache) SaveAnswer(ctx context.Context, query string, topK int, result kbModel.SearchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.entryKey(ctx, query, topK), data, config.RedisAnswerCacheTTL)
}

func (c *RedisAnswerCache) Invalidate(ctx context.Context) error {
	_, err := c.store.Incr(ctx, cacheEpochKey)
	if err != nil {
		c.logger.Error("Cache invalidation failed", "error", err)
	}
	return err
}

func (c *RedisAnswerCache) entryKey(ctx context.Context, query string, topK int) string {
	epoch, err := c.store.Get(ctx, cacheEpochKey)
	if err != nil {
		epoch = "0"
	}
	return fmt.Sprintf("ans:%s:%s", epoch, cacheKey(query, topK))
}
