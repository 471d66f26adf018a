package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestCache_SetGet(t *testing.T) {
	c := New(true)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "gamelog:1", []byte(`{"a":1}`), time.Minute)
	data, ok := c.Get(ctx, "gamelog:1")
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(data))

	_, ok = c.Get(ctx, "gamelog:2")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c := New(true)
	defer c.Close()
	ctx := context.Background()

	now := time.Date(2023, time.January, 4, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.Set(ctx, "k", []byte("v"), time.Minute)

	now = now.Add(2 * time.Minute)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, 1, stats["expired_keys"])

	c.evict()
	assert.Equal(t, 0, c.Stats()["total_keys"])
}

func TestCache_Disabled(t *testing.T) {
	c := New(false)
	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"), time.Minute)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, false, c.Stats()["enabled"])
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache("not-a-redis-url", nil)
	assert.Error(t, err)
}

func TestRedisCache_StatsReportPoolCounters(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	rc := NewRedisCacheFromClient(client, nil)
	t.Cleanup(func() { rc.Close() })

	stats := rc.Stats()
	assert.Equal(t, "redis", stats["backend"])
	assert.Contains(t, stats, "pool_hits")
	assert.Contains(t, stats, "pool_misses")
	assert.NotContains(t, stats, "hits")
}

func TestBypass(t *testing.T) {
	ctx := context.Background()
	assert.False(t, Bypassed(ctx))
	assert.True(t, Bypassed(Bypass(ctx)))
}
