package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/auth"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{key: "ens.rest.session_token"},
		{key: "tenant-a.session_expire"},
		{key: "", wantErr: true},
		{key: "a:b", wantErr: true},
		{key: "a/b", wantErr: true},
		{key: "{key}", wantErr: true},
		{key: "user@host", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrInvalidKey)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func newRedisCache(t *testing.T, prefix string, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, prefix, ttl), server
}

// caches runs the shared TokenCache contract against every implementation
func caches(t *testing.T) map[string]auth.TokenCache {
	memory := NewMemoryCache(0)
	t.Cleanup(func() { _ = memory.Close() })
	redisCache, _ := newRedisCache(t, "", 0)

	return map[string]auth.TokenCache{
		"memory": memory,
		"redis":  redisCache,
	}
}

func TestTokenCacheContract(t *testing.T) {
	ctx := context.Background()

	for name, cache := range caches(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := cache.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, cache.Set(ctx, "ens.rest.session_token", "token-1"))
			value, ok, err := cache.Get(ctx, "ens.rest.session_token")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "token-1", value)

			require.NoError(t, cache.Set(ctx, "ens.rest.session_token", "token-2"))
			value, _, err = cache.Get(ctx, "ens.rest.session_token")
			require.NoError(t, err)
			assert.Equal(t, "token-2", value)

			multi, ok := cache.(auth.MultiSetter)
			require.True(t, ok)
			require.NoError(t, multi.SetMulti(ctx, map[string]string{
				"ens.rest.session_token":  "token-3",
				"ens.rest.session_expire": "1714568400",
			}))
			value, _, _ = cache.Get(ctx, "ens.rest.session_token")
			assert.Equal(t, "token-3", value)
			value, _, _ = cache.Get(ctx, "ens.rest.session_expire")
			assert.Equal(t, "1714568400", value)

			err = cache.Set(ctx, "bad:key", "x")
			assert.ErrorIs(t, err, auth.ErrInvalidKey)
			_, _, err = cache.Get(ctx, "")
			assert.ErrorIs(t, err, auth.ErrInvalidKey)
			err = multi.SetMulti(ctx, map[string]string{"good": "1", "bad/key": "2"})
			assert.ErrorIs(t, err, auth.ErrInvalidKey)
		})
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("multi set is all or nothing on invalid keys", func(t *testing.T) {
		cache := NewMemoryCache(0)
		defer cache.Close()

		err := cache.SetMulti(ctx, map[string]string{"good": "1", "bad:key": "2"})
		require.Error(t, err)
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("entries expire after ttl", func(t *testing.T) {
		cache := NewMemoryCache(50 * time.Millisecond)
		defer cache.Close()

		require.NoError(t, cache.Set(ctx, "key", "value"))
		_, ok, _ := cache.Get(ctx, "key")
		assert.True(t, ok)

		assert.Eventually(t, func() bool {
			_, ok, _ := cache.Get(ctx, "key")
			return !ok
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("delete", func(t *testing.T) {
		cache := NewMemoryCache(0)
		defer cache.Close()

		require.NoError(t, cache.Set(ctx, "key", "value"))
		require.NoError(t, cache.Delete(ctx, "key"))
		_, ok, _ := cache.Get(ctx, "key")
		assert.False(t, ok)
	})
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()

	t.Run("keys are prefixed", func(t *testing.T) {
		cache, server := newRedisCache(t, "ens-exporter", 0)

		require.NoError(t, cache.Set(ctx, "ens.rest.session_token", "token"))
		stored, err := server.Get("ens-exporter:ens.rest.session_token")
		require.NoError(t, err)
		assert.Equal(t, "token", stored)
		assert.False(t, server.Exists("ens.rest.session_token"))
	})

	t.Run("ttl is applied", func(t *testing.T) {
		cache, server := newRedisCache(t, "", time.Hour)

		require.NoError(t, cache.SetMulti(ctx, map[string]string{"a": "1", "b": "2"}))
		assert.Equal(t, time.Hour, server.TTL("a"))
		assert.Equal(t, time.Hour, server.TTL("b"))

		server.FastForward(2 * time.Hour)
		_, ok, err := cache.Get(ctx, "a")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete and ping", func(t *testing.T) {
		cache, server := newRedisCache(t, "", 0)

		require.NoError(t, cache.Ping(ctx))
		require.NoError(t, cache.Set(ctx, "key", "value"))
		require.NoError(t, cache.Delete(ctx, "key"))
		assert.False(t, server.Exists("key"))
	})

	t.Run("connection failure is reported", func(t *testing.T) {
		cache, server := newRedisCache(t, "", 0)
		server.Close()

		_, _, err := cache.Get(ctx, "key")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrInvalidKey)
		assert.Error(t, cache.Ping(ctx))
	})
}

func TestRedisCacheWithSessionManager(t *testing.T) {
	ctx := context.Background()
	cache, _ := newRedisCache(t, "ens", 0)
	store := auth.NewTokenStore(cache, "", "")

	require.NoError(t, store.Save(ctx, "shared-token", 1714568400))

	other := auth.NewTokenStore(cache, "", "")
	token, err := other.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "shared-token", token)

	expiry, err := other.Expiry(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1714568400), expiry)
}
