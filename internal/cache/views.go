package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// viewKeyPrefix is the key prefix for per-post pending view counters.
	viewKeyPrefix = "views:post:"

	// trendingKey is a sorted set of post slugs scored by total recorded views.
	trendingKey = "views:trending"

	// trendingCap is the maximum number of slugs kept in the trending set.
	trendingCap = 100
)

// ViewCache accumulates post view counts in Redis so the hot read path never
// writes to Postgres. Pending counters are drained into the posts table by a
// background flusher.
type ViewCache interface {
	// Record adds one view for the slug and bumps its trending score.
	Record(ctx context.Context, slug string) error

	// Drain atomically collects and clears all pending counters, returning
	// slug -> view delta. Counters recorded mid-drain land in the next drain.
	Drain(ctx context.Context) (map[string]int64, error)

	// Trending returns up to limit slugs ordered by all-time recorded views.
	Trending(ctx context.Context, limit int) ([]string, error)
}

// RedisViewCache implements ViewCache on plain counters plus a sorted set.
type RedisViewCache struct {
	client *redis.Client
}

func NewViewCache(client *redis.Client) ViewCache {
	return &RedisViewCache{client: client}
}

func viewKey(slug string) string {
	return viewKeyPrefix + slug
}

// Record pipelines INCR on the pending counter with ZINCRBY on the trending
// set, then trims the set to its cap.
func (c *RedisViewCache) Record(ctx context.Context, slug string) error {
	pipe := c.client.Pipeline()
	pipe.Incr(ctx, viewKey(slug))
	pipe.ZIncrBy(ctx, trendingKey, 1, slug)
	pipe.ZRemRangeByRank(ctx, trendingKey, 0, int64(-trendingCap-1))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}

// Drain scans the pending counter keys and consumes each with GETDEL.
func (c *RedisViewCache) Drain(ctx context.Context) (map[string]int64, error) {
	startTime := time.Now()
	counts := make(map[string]int64)

	iter := c.client.Scan(ctx, 0, viewKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		val, err := c.client.GetDel(ctx, key).Result()
		if err == redis.Nil {
			continue // consumed by a concurrent drain
		}
		if err != nil {
			return nil, fmt.Errorf("getdel %s: %w", key, err)
		}

		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			log.Printf("[ViewCache] Dropping malformed counter %s=%q", key, val)
			continue
		}
		counts[key[len(viewKeyPrefix):]] = n
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan view counters: %w", err)
	}

	if len(counts) > 0 {
		log.Printf("[ViewCache] Drained %d counters in %v", len(counts), time.Since(startTime))
	}
	return counts, nil
}

// Trending returns the highest-scored slugs, best first.
func (c *RedisViewCache) Trending(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	slugs, err := c.client.ZRevRange(ctx, trendingKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("trending slugs: %w", err)
	}
	return slugs, nil
}
