package geometry

import (
	"context"
	"log/slog"

	platformredis "georisk/internal/platform/redis"
)

const boundariesKey = "georisk:boundaries:v1"

// RedisCache is a write-through persistent backend for the boundary
// document, so restarts skip the multi-megabyte download. The in-process
// parsed dataset stays authoritative; redis only stores the raw bytes.
type RedisCache struct {
	client *platformredis.Client
	log    *slog.Logger
}

// NewRedisCache wraps an optional redis client. Returns nil when the client
// is nil so callers can pass the result straight to NewResolver.
func NewRedisCache(client *platformredis.Client, log *slog.Logger) *RedisCache {
	if client == nil {
		return nil
	}
	return &RedisCache{client: client, log: log}
}

// Get loads the raw boundary document, if present.
func (c *RedisCache) Get(ctx context.Context) ([]byte, bool) {
	raw, err := c.client.Get(ctx, boundariesKey).Bytes()
	if err != nil {
		return nil, false
	}
	return raw, true
}

// Put stores the raw boundary document with no expiry; the dataset is
// never invalidated within a deployment.
func (c *RedisCache) Put(ctx context.Context, raw []byte) {
	if err := c.client.Set(ctx, boundariesKey, raw, 0).Err(); err != nil {
		c.log.Warn("boundary cache write failed", "error", err)
	}
}
