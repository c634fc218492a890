package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// defaultOptionTTL bounds how long derived filter option lists stay cached.
const defaultOptionTTL = 5 * time.Minute

// OptionCache derives dynamic filter option lists (distinct values observed
// for a field across a collection) from one-shot store reads, caching the
// result in Redis by (collection, field). Concurrent misses for the same key
// collapse into a single fetch.
type OptionCache struct {
	store  Store
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// OptionCacheOption configures an OptionCache.
type OptionCacheOption func(*OptionCache)

// WithRedis enables Redis caching of option lists. Without it, every call
// falls through to the store.
func WithRedis(rdb *redis.Client) OptionCacheOption {
	return func(c *OptionCache) { c.rdb = rdb }
}

// WithOptionTTL overrides the cache TTL.
func WithOptionTTL(ttl time.Duration) OptionCacheOption {
	return func(c *OptionCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithOptionLogger sets a custom logger. Default is slog.Default().
func WithOptionLogger(logger *slog.Logger) OptionCacheOption {
	return func(c *OptionCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewOptionCache creates an option cache over the given store.
func NewOptionCache(s Store, opts ...OptionCacheOption) *OptionCache {
	c := &OptionCache{
		store:  s,
		ttl:    defaultOptionTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func optionCacheKey(collection, field string) string {
	return "filteropts:" + collection + ":" + field
}

// DistinctValues returns the sorted distinct values of a field across a
// collection. List-valued fields contribute each element. Cache failures are
// logged and bypassed, never surfaced.
func (c *OptionCache) DistinctValues(ctx context.Context, collection, field string) ([]string, error) {
	key := optionCacheKey(collection, field)

	if c.rdb != nil {
		cached, err := c.rdb.Get(ctx, key).Result()
		if err == nil {
			var values []string
			if jsonErr := json.Unmarshal([]byte(cached), &values); jsonErr == nil {
				return values, nil
			}
		} else if err != redis.Nil {
			c.logger.Warn("option cache read failed", "key", key, "err", err)
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.fetchDistinct(ctx, collection, field)
	})
	if err != nil {
		return nil, err
	}
	values := v.([]string)

	if c.rdb != nil {
		encoded, _ := json.Marshal(values)
		if err := c.rdb.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.Warn("option cache write failed", "key", key, "err", err)
		}
	}
	return values, nil
}

func (c *OptionCache) fetchDistinct(ctx context.Context, collection, field string) ([]string, error) {
	records, err := c.store.FetchAll(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to derive options for %s.%s: %w", collection, field, err)
	}

	seen := make(map[string]string)
	for _, r := range records {
		val, ok := r.Field(field)
		if !ok {
			continue
		}
		switch v := val.(type) {
		case string:
			addDistinct(seen, v)
		case []string:
			for _, elem := range v {
				addDistinct(seen, elem)
			}
		}
	}

	values := make([]string, 0, len(seen))
	for _, display := range seen {
		values = append(values, display)
	}
	sort.Strings(values)
	return values, nil
}

// addDistinct dedupes case-insensitively, keeping the first display form seen.
func addDistinct(seen map[string]string, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	lower := strings.ToLower(value)
	if _, ok := seen[lower]; !ok {
		seen[lower] = value
	}
}

// Invalidate drops the cached options for (collection, field).
func (c *OptionCache) Invalidate(ctx context.Context, collection, field string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, optionCacheKey(collection, field)).Err(); err != nil {
		c.logger.Warn("option cache invalidation failed", "collection", collection, "field", field, "err", err)
	}
}
