// Package cache is the read-through cache for derived views (wallets, chore
// lists, family rosters). It never holds the source of truth: every failure
// of the underlying store degrades to a direct load.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/famfin/famfin-api/internal/pkg/metrics"
)

// Cache wraps a Store with fail-open semantics. A nil store or enabled=false
// turns every call into a no-op.
type Cache struct {
	store   Store
	enabled bool
	ttls    TTLs
}

func New(store Store, enabled bool, ttls TTLs) *Cache {
	return &Cache{store: store, enabled: enabled && store != nil, ttls: ttls.withDefaults()}
}

// Disabled returns a cache that always loads from the source.
func Disabled() *Cache {
	return New(nil, false, TTLs{})
}

func (c *Cache) Enabled() bool { return c != nil && c.enabled }

func (c *Cache) TTLs() TTLs {
	if c == nil {
		return TTLs{}.withDefaults()
	}
	return c.ttls
}

// Get decodes the cached value for key into dest. It reports false on a miss
// and on any store or decode error.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.Enabled() {
		metrics.CacheRequests.WithLabelValues("bypass").Inc()
		return false
	}

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		metrics.CacheRequests.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("key", key).Msg("cache get failed, falling back to store")
		return false
	}
	if !ok {
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.CacheRequests.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("key", key).Msg("cache entry undecodable, dropping")
		c.Delete(ctx, key)
		return false
	}

	metrics.CacheRequests.WithLabelValues("hit").Inc()
	return true
}

// Set stores value under key. Failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := c.store.Set(ctx, key, raw, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Delete invalidates keys. Failures are logged and swallowed; the short TTLs
// bound any staleness left behind.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("cache delete failed")
		return
	}
	metrics.CacheInvalidations.Add(float64(len(keys)))
}

// DeletePattern invalidates every key matching a glob such as "user:<id>:*".
func (c *Cache) DeletePattern(ctx context.Context, pattern string) {
	if !c.Enabled() {
		return
	}
	if err := c.store.DeletePattern(ctx, pattern); err != nil {
		log.Warn().Err(err).Str("pattern", pattern).Msg("cache pattern delete failed")
	}
}

// GetOrLoad is the read-through path: return the cached value for key, or run
// load, cache its result for ttl and return it. Load errors are never cached.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	if c.Get(ctx, key, &cached) {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.Set(ctx, key, value, ttl)
	return value, nil
}
