// file: service/cache.go

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"merchant-api/logger"
	"time"

	"github.com/redis/go-redis/v9"
)

const profileCacheTTL = 10 * time.Minute

// ICacheClient is the subset of the Redis client used for user profile caching.
// *redis.Client satisfies it.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

func profileCacheKey(userID int) string {
	return fmt.Sprintf("users:%d", userID)
}

// cacheGet decodes the cached JSON value of key into dst. Misses and decode failures report false.
func cacheGet(ctx context.Context, cache ICacheClient, key string, dst any) bool {
	if cache == nil {
		return false
	}
	cached, err := cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Log.WithError(err).WithField("key", key).Warn("Cache read failed")
		}
		return false
	}
	return json.Unmarshal([]byte(cached), dst) == nil
}

func cacheSet(ctx context.Context, cache ICacheClient, key string, value any) {
	if cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := cache.Set(ctx, key, data, profileCacheTTL).Err(); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

func cacheDel(ctx context.Context, cache ICacheClient, key string) {
	if cache == nil {
		return
	}
	if err := cache.Del(ctx, key).Err(); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Cache invalidation failed")
	}
}
