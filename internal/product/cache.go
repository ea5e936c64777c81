package product

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"velora-api/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a best-effort store of single products. Failures are logged and
// treated as misses.
type Cache interface {
	Get(ctx context.Context, id uuid.UUID) (*Product, bool)
	Set(ctx context.Context, p *Product)
	Delete(ctx context.Context, id uuid.UUID)
}

type noopCache struct{}

func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, uuid.UUID) (*Product, bool) { return nil, false }
func (noopCache) Set(context.Context, *Product)                   {}
func (noopCache) Delete(context.Context, uuid.UUID)               {}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a noop cache when client is nil.
func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	if client == nil {
		return NewNoopCache()
	}
	return &redisCache{client: client, ttl: ttl}
}

func cacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}

func (c *redisCache) Get(ctx context.Context, id uuid.UUID) (*Product, bool) {
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.FromCtx(ctx).Warn("cache: get failed", zap.String("product_id", id.String()), zap.Error(err))
		return nil, false
	}

	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		logger.FromCtx(ctx).Warn("cache: corrupt entry", zap.String("product_id", id.String()), zap.Error(err))
		return nil, false
	}
	return &p, true
}

func (c *redisCache) Set(ctx context.Context, p *Product) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(p.ID), raw, c.ttl).Err(); err != nil {
		logger.FromCtx(ctx).Warn("cache: set failed", zap.String("product_id", p.ID.String()), zap.Error(err))
	}
}

func (c *redisCache) Delete(ctx context.Context, id uuid.UUID) {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		logger.FromCtx(ctx).Warn("cache: delete failed", zap.String("product_id", id.String()), zap.Error(err))
	}
}
