package search

import (
	"context"
	"crypto/md5"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPageCache backs the fetch unit with a shared page-text cache so
// repeated questions about the same live result skip the fetch entirely.
// Cache failures degrade to a miss; the fetch path stays available.
type RedisPageCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

func NewRedisPageCache(rdb *redis.Client, ttl time.Duration, logger *log.Logger) *RedisPageCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisPageCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *RedisPageCache) Get(ctx context.Context, url string) (string, bool) {
	text, err := c.rdb.Get(ctx, pageKey(url)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.logger.Printf("[DEBUG] page cache get failed for %s: %v", url, err)
		return "", false
	}
	return text, true
}

func (c *RedisPageCache) Set(ctx context.Context, url string, text string) {
	if err := c.rdb.Set(ctx, pageKey(url), text, c.ttl).Err(); err != nil {
		c.logger.Printf("[DEBUG] page cache set failed for %s: %v", url, err)
	}
}

func pageKey(url string) string {
	return fmt.Sprintf("page:%x", md5.Sum([]byte(url)))
}
