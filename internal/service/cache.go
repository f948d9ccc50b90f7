package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"movie-recommendation-service/internal/metrics"
)

const recommendationKeyPrefix = "recommendations"

// ResponseCache is a Redis cache-aside store for recommendation responses.
// A nil client disables it.
type ResponseCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewResponseCache(rdb *redis.Client, ttl time.Duration) *ResponseCache {
	return &ResponseCache{rdb: rdb, ttl: ttl}
}

func recommendationKey(userID int, parts ...any) string {
	key := fmt.Sprintf("%s:%d", recommendationKeyPrefix, userID)
	for _, p := range parts {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}

// Get decodes the cached value of key into dst and reports whether it was
// found.
func (c *ResponseCache) Get(ctx context.Context, key string, dst any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	cached, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		metrics.CacheMisses.WithLabelValues(recommendationKeyPrefix).Inc()
		return false
	}
	if err := json.Unmarshal(cached, dst); err != nil {
		slog.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return false
	}
	metrics.CacheHits.WithLabelValues(recommendationKeyPrefix).Inc()
	slog.Debug("cache hit", "key", key)
	return true
}

// Set stores v under key.
func (c *ResponseCache) Set(ctx context.Context, key string, v any) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode cache entry", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}

// InvalidateUser drops every cached recommendation of a user.
func (c *ResponseCache) InvalidateUser(ctx context.Context, userID int) {
	c.deleteMatching(ctx, recommendationKey(userID)+":*")
}

// InvalidateAll drops every cached recommendation.
func (c *ResponseCache) InvalidateAll(ctx context.Context) {
	c.deleteMatching(ctx, recommendationKeyPrefix+":*")
}

func (c *ResponseCache) deleteMatching(ctx context.Context, pattern string) {
	if c == nil || c.rdb == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Error("failed to delete cache entry", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		slog.Error("failed to invalidate cache", "pattern", pattern, "error", err)
	}
}
