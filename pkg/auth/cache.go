package auth

import (
	"context"
	"errors"
)

// ErrInvalidKey is returned by a TokenCache that rejects a key.
// A cache reporting it has been misconfigured; the error is never swallowed.
var ErrInvalidKey = errors.New("invalid cache key")

// TokenCache is the narrow key/value capability used to persist the session
// token between client instances. Implementations live in pkg/cache.
type TokenCache interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error
}

// MultiSetter is implemented by caches that can write several keys atomically.
// TokenStore uses it so a token and its expiry are never stored apart.
type MultiSetter interface {
	SetMulti(ctx context.Context, values map[string]string) error
}

// NoopCache never stores anything. Every lookup misses, so a client using it
// authenticates before each request.
type NoopCache struct{}

// Get implements TokenCache.Get
func (NoopCache) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

// Set implements TokenCache.Set
func (NoopCache) Set(context.Context, string, string) error {
	return nil
}
