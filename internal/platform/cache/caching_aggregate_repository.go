// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"industry_backend/internal/feature/candles/domain/entity"
	"industry_backend/internal/feature/candles/usecase"
)

// CachingAggregateRepository decorates an AggregateRepository with Redis caching.
// Entries are keyed by the full query and dropped as a whole namespace after
// every pipeline run.
type CachingAggregateRepository struct {
	inner     usecase.AggregateRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var (
	_ usecase.AggregateRepository = (*CachingAggregateRepository)(nil)
	_ usecase.CacheInvalidator    = (*CachingAggregateRepository)(nil)
)

// NewCachingAggregateRepository decorates an AggregateRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "aggregates".
func NewCachingAggregateRepository(rdb *redis.Client, ttl time.Duration, inner usecase.AggregateRepository, namespace string) *CachingAggregateRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "aggregates"
	}
	return &CachingAggregateRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Aggregate returns the grouped series, checking the cache first.
func (c *CachingAggregateRepository) Aggregate(ctx context.Context, q entity.AggregateQuery) ([]entity.GroupSeries, error) {
	if c.rdb == nil {
		return c.inner.Aggregate(ctx, q)
	}

	key := c.cacheKey(q)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.GroupSeries
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.Aggregate(ctx, q)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// Invalidate drops every cached aggregate in the namespace.
func (c *CachingAggregateRepository) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	if err := c.deleteByPattern(ctx, c.namespace+":*"); err != nil {
		slog.Warn("aggregate cache invalidation failed", "namespace", c.namespace, "error", err)
		return fmt.Errorf("invalidate %s cache: %w", c.namespace, err)
	}
	return nil
}

func (c *CachingAggregateRepository) cacheKey(q entity.AggregateQuery) string {
	return fmt.Sprintf("%s:%s", c.namespace, digest(q.CacheKey()))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingAggregateRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// digest maps a query key to a fixed-length Redis-safe token.
func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
