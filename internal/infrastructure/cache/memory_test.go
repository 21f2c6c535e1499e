package cache

import (
	"context"
	"testing"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCacheService(t *testing.T) {
	svc, err := CreateCacheService("memory")
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, svc)

	_, err = CreateCacheService("::not a url::")
	assert.Error(t, err)

	svc, err = CreateCacheService("redis://localhost:6379/0")
	require.NoError(t, err)
	assert.IsType(t, &RedisCache{}, svc)
	_ = svc.Close()
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	value, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, services.ErrCacheMiss)

	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCache_SetNX(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "lock", 1, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "lock", 2, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_IncrementAndExpire(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := c.Increment(ctx, "hits")
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	require.NoError(t, c.Expire(ctx, "hits", time.Second))
	now = now.Add(2 * time.Second)

	n, err := c.Increment(ctx, "hits")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryCache_Hash(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, err := c.HGetAll(ctx, "session:x")
	assert.ErrorIs(t, err, services.ErrCacheMiss)

	require.NoError(t, c.HSet(ctx, "session:x", map[string]string{"user_id": "u1"}))
	require.NoError(t, c.HSet(ctx, "session:x", map[string]string{"refresh_token": "r1"}))

	values, err := c.HGetAll(ctx, "session:x")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user_id": "u1", "refresh_token": "r1"}, values)

	require.NoError(t, c.Delete(ctx, "session:x"))
	_, err = c.HGetAll(ctx, "session:x")
	assert.ErrorIs(t, err, services.ErrCacheMiss)
}
