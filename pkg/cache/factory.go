package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/auth"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/config"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/logger"
)

// RedisKeyPrefix namespaces the session token keys in Redis
const RedisKeyPrefix = "ens"

// TokenTTL bounds how long a cached session token is kept. ENS tokens live
// for an hour and the stored expiry decides reuse.
const TokenTTL = time.Hour

// FromConfig creates the session token cache selected by cfg.CacheBackend.
// The returned function releases it.
func FromConfig(ctx context.Context, cfg *config.Config, log *logger.Logger) (auth.TokenCache, func() error, error) {
	if log == nil {
		log = logger.Discard()
	}

	switch cfg.CacheBackend {
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		rc := NewRedisCache(client, RedisKeyPrefix, TokenTTL)

		// Callers see cache errors until Redis is reachable
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn("Redis token cache unreachable", "addr", cfg.RedisAddr, "error", err)
		} else {
			log.Debug("Using Redis token cache", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		}
		return rc, client.Close, nil

	case config.CacheMemory:
		mc := NewMemoryCache(TokenTTL)
		log.Debug("Using in-memory token cache")
		return mc, mc.Close, nil

	case config.CacheNone:
		log.Debug("Token cache disabled")
		return auth.NoopCache{}, func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache backend: %s", cfg.CacheBackend)
	}
}
