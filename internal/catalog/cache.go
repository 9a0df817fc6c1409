package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache holds read-mostly catalog data. Order placement never reads through it.
type Cache interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	SetProduct(ctx context.Context, p *Product) error
	GetFilters(ctx context.Context) (*Filters, error)
	SetFilters(ctx context.Context, f *Filters) error
	Invalidate(ctx context.Context, productIDs ...int64) error
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = time.Minute
	}
	return &RedisCache{client: client, baseTTL: baseTTL}
}

func (c *RedisCache) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	if err := c.get(ctx, productKey(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *RedisCache) SetProduct(ctx context.Context, p *Product) error {
	return c.set(ctx, productKey(p.ID), p)
}

func (c *RedisCache) GetFilters(ctx context.Context) (*Filters, error) {
	var f Filters
	if err := c.get(ctx, filtersKey, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *RedisCache) SetFilters(ctx context.Context, f *Filters) error {
	return c.set(ctx, filtersKey, f)
}

// Invalidate drops the given products and the brand/type filter list.
func (c *RedisCache) Invalidate(ctx context.Context, productIDs ...int64) error {
	keys := make([]string, 0, len(productIDs)+1)
	keys = append(keys, filtersKey)
	for _, id := range productIDs {
		keys = append(keys, productKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *RedisCache) get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (c *RedisCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	// jitter spreads expiry of hot keys
	jitter := time.Duration(rand.Int63n(int64(c.baseTTL)/4 + 1))
	if err := c.client.Set(ctx, key, data, c.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

const filtersKey = "catalog:filters"

func productKey(id int64) string {
	return fmt.Sprintf("catalog:product:%d", id)
}

// NopCache always misses. Used when no Redis address is configured.
type NopCache struct{}

func (NopCache) GetProduct(context.Context, int64) (*Product, error) { return nil, ErrCacheMiss }
func (NopCache) SetProduct(context.Context, *Product) error          { return nil }
func (NopCache) GetFilters(context.Context) (*Filters, error)        { return nil, ErrCacheMiss }
func (NopCache) SetFilters(context.Context, *Filters) error          { return nil }
func (NopCache) Invalidate(context.Context, ...int64) error          { return nil }
