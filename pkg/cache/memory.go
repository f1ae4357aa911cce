package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryCache is an in-process TokenCache backed by ttlcache.
type MemoryCache struct {
	cache *ttlcache.Cache[string, string]
}

// NewMemoryCache creates a MemoryCache. Entries expire after ttl; a zero ttl
// keeps them until overwritten. Call Close to stop the cleanup goroutine.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)

	go cache.Start()

	return &MemoryCache{cache: cache}
}

// Get implements auth.TokenCache.Get
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}

	item := c.cache.Get(key)
	if item == nil {
		return "", false, nil
	}
	return item.Value(), true, nil
}

// Set implements auth.TokenCache.Set
func (c *MemoryCache) Set(_ context.Context, key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	c.cache.Set(key, value, ttlcache.DefaultTTL)
	return nil
}

// SetMulti implements auth.MultiSetter. Keys are validated before anything is written.
func (c *MemoryCache) SetMulti(_ context.Context, values map[string]string) error {
	for key := range values {
		if err := ValidateKey(key); err != nil {
			return err
		}
	}

	for key, value := range values {
		c.cache.Set(key, value, ttlcache.DefaultTTL)
	}
	return nil
}

// Delete removes key
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	c.cache.Delete(key)
	return nil
}

// Len returns the number of stored entries
func (c *MemoryCache) Len() int {
	return c.cache.Len()
}

// Close stops the cleanup goroutine
func (c *MemoryCache) Close() error {
	c.cache.Stop()
	return nil
}
