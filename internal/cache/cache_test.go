package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheLRU(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(2, 0)

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))
	_, err := c.Get(ctx, "a") // a is now most recent
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "c", []byte("3")))

	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)
	v, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)
	assert.Equal(t, 2, c.Len(ctx))
}

func TestMemoryCacheTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 0, c.Len(ctx))
}

func TestMemoryCacheDeleteAndOverwrite(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(4, 0)
	require.NoError(t, c.Set(ctx, "k", []byte("v1")))
	require.NoError(t, c.Set(ctx, "k", []byte("v2")))
	v, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("v2"), v)
	assert.Equal(t, 1, c.Len(ctx))

	require.NoError(t, c.Delete(ctx, "k"))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	c := NewRedis(client, "voice:", time.Minute)

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("audio")))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), v)
	assert.True(t, mr.Exists("voice:k"))
	assert.Equal(t, 1, c.Len(ctx))

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "d", []byte("x")))
	require.NoError(t, c.Delete(ctx, "d"))
	assert.False(t, mr.Exists("voice:d"))
}
