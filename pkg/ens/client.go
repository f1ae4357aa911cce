// Package ens is a client for the Engaging Networks Services (ENS) REST API.
//
// It provides:
//   - Session token handling with a pluggable cache (see pkg/auth and pkg/cache)
//   - Authenticated request dispatch with typed errors
//   - Typed access to pages, page processing, supporters, supporter fields and
//     supporter questions
//
// Every call blocks until ENS answers. The client does not retry, rate limit
// or paginate. A Client is not safe for concurrent use; callers sharing one
// must synchronize.
//
// Example usage:
//
//	client, err := ens.New("https://ca.engagingnetworks.app/ens/service/", apiKey,
//		ens.WithTokenCache(cache.NewMemoryCache()))
//	if err != nil {
//		return err
//	}
//	page, err := client.GetPage(ctx, 112233)
package ens

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/auth"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/logger"
)

// TokenHeader is the request header carrying the session token
const TokenHeader = "ens-auth-token"

// authenticateEndpoint is the token exchange endpoint. It is the only one
// called without a session token.
const authenticateEndpoint = "authenticate"

// Client talks to the ENS REST API
type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
	session    *auth.SessionManager

	cache     auth.TokenCache
	tokenKey  string
	expireKey string
	now       func() time.Time
}

// Option configures a Client
type Option func(c *Client)

// WithHTTPClient sets the HTTP client used for every request
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTokenCache sets the cache persisting the session token
func WithTokenCache(cache auth.TokenCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithCacheKeys sets the cache keys for the token and its expiry
func WithCacheKeys(tokenKey, expireKey string) Option {
	return func(c *Client) {
		c.tokenKey = tokenKey
		c.expireKey = expireKey
	}
}

// WithCacheKeyPrefix derives both cache keys from prefix
func WithCacheKeyPrefix(prefix string) Option {
	return func(c *Client) {
		c.tokenKey = prefix + ".session_token"
		c.expireKey = prefix + ".session_expire"
	}
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithClock sets the time source used for token expiry
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a Client for the API rooted at baseURL
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}
	// Endpoints resolve below the base path, not beside its last segment
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL:    u,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Discard()
	}

	store := auth.NewTokenStore(c.cache, c.tokenKey, c.expireKey)
	c.session = auth.NewSessionManager(store, c, c.log)
	c.session.SetClock(c.now)

	return c, nil
}

// Session returns the session manager. It satisfies oauth2.TokenSource.
func (c *Client) Session() *auth.SessionManager {
	return c.session
}

// Authenticate exchanges the API key for a new session token. It implements
// auth.Authenticator; callers normally rely on the session manager instead.
func (c *Client) Authenticate(ctx context.Context) (string, time.Duration, error) {
	resp, err := c.Send(ctx, http.MethodPost, authenticateEndpoint, WithBody([]byte(c.apiKey)))
	if err != nil {
		return "", 0, err
	}

	var payload struct {
		Token   string  `json:"ens-auth-token"`
		Expires float64 `json:"expires"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return "", 0, fmt.Errorf("failed to decode authentication response: %w", err)
	}

	return payload.Token, time.Duration(payload.Expires * float64(time.Millisecond)), nil
}
