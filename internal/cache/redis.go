package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "playbook:"

// RedisCache stores provider responses in Redis so the CLI and the API
// server share one warm cache. Redis errors are logged and treated as a
// miss; the cache never fails a request.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisCache connects to redisURL and verifies the connection.
func NewRedisCache(redisURL string, logger *slog.Logger) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisCacheFromClient(client, logger), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, logger: logger}
}

// Get retrieves a cached value.
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := rc.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			rc.logger.Warn("Redis get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

// Set stores a value with a TTL.
func (rc *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := rc.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		rc.logger.Warn("Redis set failed", "key", key, "error", err)
	}
}

// Stats reports connection pool statistics.
func (rc *RedisCache) Stats() map[string]interface{} {
	ps := rc.client.PoolStats()
	return map[string]interface{}{
		"backend":     "redis",
		"enabled":     true,
		"pool_hits":   ps.Hits,
		"pool_misses": ps.Misses,
		"total_conns": ps.TotalConns,
		"idle_conns":  ps.IdleConns,
	}
}

// HealthCheck pings Redis to verify connection.
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
