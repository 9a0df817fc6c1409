package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func TestRedisCacheProductRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupTestRedis(t)

	_, err := cache.GetProduct(ctx, 1)
	require.ErrorIs(t, err, ErrCacheMiss)

	p := &Product{ID: 1, Name: "Hat", Price: 1200, QtyInStock: 3}
	require.NoError(t, cache.SetProduct(ctx, p))
	assert.True(t, mr.Exists("catalog:product:1"))

	ttl := mr.TTL("catalog:product:1")
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.LessOrEqual(t, ttl, time.Minute+15*time.Second)

	got, err := cache.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestRedisCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupTestRedis(t)

	require.NoError(t, cache.SetProduct(ctx, &Product{ID: 1}))
	require.NoError(t, cache.SetProduct(ctx, &Product{ID: 2}))
	require.NoError(t, cache.SetFilters(ctx, &Filters{Brands: []string{"React"}, Types: []string{"Hats"}}))

	require.NoError(t, cache.Invalidate(ctx, 1))

	assert.False(t, mr.Exists("catalog:product:1"))
	assert.True(t, mr.Exists("catalog:product:2"))
	assert.False(t, mr.Exists("catalog:filters"))
}

func TestRedisCacheCorruptEntry(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("catalog:product:9", "{not json"))

	_, err := cache.GetProduct(context.Background(), 9)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCacheServerDown(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()

	_, err := cache.GetFilters(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
