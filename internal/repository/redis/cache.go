// Package redis provides cache-aside decorators over the Postgres
// repositories. Cache failures never fail a request: reads fall through to
// the store and invalidation errors are logged.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "storefront:"

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storefront_cache_lookups_total",
	Help: "Read-cache lookups by entity and result (hit, miss, error).",
}, []string{"entity", "result"})

type cache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// get decodes the value at key into dst and reports whether it was found.
func (c *cache) get(ctx context.Context, entity, key string, dst any) bool {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			cacheLookups.WithLabelValues(entity, "miss").Inc()
			return false
		}
		cacheLookups.WithLabelValues(entity, "error").Inc()
		c.logger.WarnContext(ctx, "redis get failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		cacheLookups.WithLabelValues(entity, "error").Inc()
		c.logger.WarnContext(ctx, "discarding undecodable cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		c.del(ctx, key)
		return false
	}
	cacheLookups.WithLabelValues(entity, "hit").Inc()
	return true
}

func (c *cache) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.WarnContext(ctx, "marshal cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "redis set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func (c *cache) del(ctx context.Context, keys ...string) {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyPrefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		c.logger.WarnContext(ctx, "redis invalidation failed",
			slog.Any("keys", keys),
			slog.String("error", err.Error()),
		)
	}
}
