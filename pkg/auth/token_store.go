package auth

import (
	"context"
	"strconv"
)

// Default cache keys. Clients sharing one cache should use distinct keys.
const (
	DefaultTokenKey  = "ens.rest.session_token"
	DefaultExpireKey = "ens.rest.session_expire"
)

// TokenStore keeps the session token and its expiry under two keys of a TokenCache.
type TokenStore struct {
	cache     TokenCache
	tokenKey  string
	expireKey string
}

// NewTokenStore creates a TokenStore. A nil cache degrades to NoopCache and
// empty keys fall back to the defaults.
func NewTokenStore(cache TokenCache, tokenKey, expireKey string) *TokenStore {
	if cache == nil {
		cache = NoopCache{}
	}
	if tokenKey == "" {
		tokenKey = DefaultTokenKey
	}
	if expireKey == "" {
		expireKey = DefaultExpireKey
	}
	return &TokenStore{
		cache:     cache,
		tokenKey:  tokenKey,
		expireKey: expireKey,
	}
}

// Keys returns the token and expiry keys
func (s *TokenStore) Keys() (tokenKey, expireKey string) {
	return s.tokenKey, s.expireKey
}

// Token returns the stored token, or "" when none is stored
func (s *TokenStore) Token(ctx context.Context) (string, error) {
	value, ok, err := s.cache.Get(ctx, s.tokenKey)
	if err != nil {
		return "", &CacheError{Op: "get", Key: s.tokenKey, Err: err}
	}
	if !ok {
		return "", nil
	}
	return value, nil
}

// Expiry returns the stored expiry in Unix seconds. A missing or unreadable
// value yields 0, which every caller treats as already expired.
func (s *TokenStore) Expiry(ctx context.Context) (int64, error) {
	value, ok, err := s.cache.Get(ctx, s.expireKey)
	if err != nil {
		return 0, &CacheError{Op: "get", Key: s.expireKey, Err: err}
	}
	if !ok {
		return 0, nil
	}
	expiresAt, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, nil
	}
	return expiresAt, nil
}

// Save stores token and expiry together
func (s *TokenStore) Save(ctx context.Context, token string, expiresAt int64) error {
	expiry := strconv.FormatInt(expiresAt, 10)

	if ms, ok := s.cache.(MultiSetter); ok {
		err := ms.SetMulti(ctx, map[string]string{
			s.expireKey: expiry,
			s.tokenKey:  token,
		})
		if err != nil {
			return &CacheError{Op: "set", Key: s.tokenKey, Err: err}
		}
		return nil
	}

	// Token before expiry: a failed expiry write leaves the old expiry next
	// to the new token, which at worst forces another authentication.
	if err := s.cache.Set(ctx, s.tokenKey, token); err != nil {
		return &CacheError{Op: "set", Key: s.tokenKey, Err: err}
	}
	if err := s.cache.Set(ctx, s.expireKey, expiry); err != nil {
		return &CacheError{Op: "set", Key: s.expireKey, Err: err}
	}
	return nil
}

// Expire marks the stored token as expired without removing it
func (s *TokenStore) Expire(ctx context.Context) error {
	if err := s.cache.Set(ctx, s.expireKey, "0"); err != nil {
		return &CacheError{Op: "set", Key: s.expireKey, Err: err}
	}
	return nil
}
