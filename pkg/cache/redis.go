package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a TokenCache shared between processes through Redis.
type RedisCache struct {
	client redis.UniversalClient
	prefix string // Optional prefix for keys
	ttl    time.Duration
}

// NewRedisCache creates a RedisCache. Keys are stored as "prefix:key" when
// prefix is set. A zero ttl stores keys without expiry.
func NewRedisCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// redisKey returns the Redis key for a cache key
func (c *RedisCache) redisKey(key string) string {
	if c.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", c.prefix, key)
}

// Get implements auth.TokenCache.Get
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}

	value, err := c.client.Get(ctx, c.redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key from Redis: %w", err)
	}
	return value, true, nil
}

// Set implements auth.TokenCache.Set
func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if err := c.client.Set(ctx, c.redisKey(key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key in Redis: %w", err)
	}
	return nil
}

// SetMulti implements auth.MultiSetter with a MULTI/EXEC transaction
func (c *RedisCache) SetMulti(ctx context.Context, values map[string]string) error {
	for key := range values {
		if err := ValidateKey(key); err != nil {
			return err
		}
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range values {
			pipe.Set(ctx, c.redisKey(key), value, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set keys in Redis: %w", err)
	}
	return nil
}

// Delete removes key
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if err := c.client.Del(ctx, c.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key from Redis: %w", err)
	}
	return nil
}

// Ping checks the connection to Redis
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
