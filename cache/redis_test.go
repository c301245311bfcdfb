package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache_MissThenHit(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got entry
	ok, err := c.Get(ctx, "player:eu:tenz#0001", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "player:eu:tenz#0001", entry{Name: "TenZ", Score: 25}, time.Minute))
	assert.True(t, mr.Exists("arena:player:eu:tenz#0001"))

	ok, err = c.Get(ctx, "player:eu:tenz#0001", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, entry{Name: "TenZ", Score: 25}, got)
}

func TestRedisCache_Expires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", entry{Name: "x"}, 30*time.Second))
	mr.FastForward(31 * time.Second)

	ok, err := c.Get(ctx, "k", &entry{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_CorruptValue(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("arena:k", "{not json"))

	_, err := c.Get(context.Background(), "k", &entry{})
	require.Error(t, err)
}

func TestNewRedisCache_Errors(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "")
	require.Error(t, err)

	_, err = NewRedisCache(context.Background(), "http://localhost:6379")
	require.ErrorContains(t, err, "parse redis url")

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = NewRedisCache(ctx, "redis://"+addr)
	require.ErrorContains(t, err, "redis ping")
}

func TestNopCache(t *testing.T) {
	var c Cache = NopCache{}
	require.NoError(t, c.Set(context.Background(), "k", 1, time.Minute))
	ok, err := c.Get(context.Background(), "k", new(int))
	require.NoError(t, err)
	assert.False(t, ok)
}
