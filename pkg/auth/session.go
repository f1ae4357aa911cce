// Package auth manages the short-lived ENS session token.
//
// It provides:
//   - A narrow TokenCache interface for persisting the token between processes
//   - A TokenStore pairing the token with its expiry under two cache keys
//   - A SessionManager enforcing the refresh policy
//
// A token is reused until it is within RenewalMargin of its expiry. After
// that the SessionManager exchanges the API key for a new token through its
// Authenticator and stores the result. Nothing here retries or refreshes in
// the background.
//
// A SessionManager is not safe for concurrent use.
package auth

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/logger"
)

// RenewalMargin is how long before expiry a token stops being reused
const RenewalMargin = 300 * time.Second

// TokenType is the oauth2.Token type reported for ENS session tokens
const TokenType = "ens-auth-token"

// Authenticator exchanges credentials for a new session token.
type Authenticator interface {
	// Authenticate returns a token and how long it stays valid.
	Authenticate(ctx context.Context) (token string, expiresIn time.Duration, err error)
}

// SessionManager hands out valid session tokens.
type SessionManager struct {
	store         *TokenStore
	authenticator Authenticator
	log           *logger.Logger
	now           func() time.Time
	token         string
}

// NewSessionManager creates a SessionManager
func NewSessionManager(store *TokenStore, authenticator Authenticator, log *logger.Logger) *SessionManager {
	if store == nil {
		store = NewTokenStore(nil, "", "")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &SessionManager{
		store:         store,
		authenticator: authenticator,
		log:           log,
		now:           time.Now,
	}
}

// SetClock replaces the time source
func (m *SessionManager) SetClock(now func() time.Time) {
	m.now = now
}

// ValidToken returns a session token that is not within RenewalMargin of its
// expiry, authenticating when necessary.
func (m *SessionManager) ValidToken(ctx context.Context) (string, error) {
	token, _, err := m.validToken(ctx)
	return token, err
}

// Token implements oauth2.TokenSource. The returned token carries the ENS
// expiry; it must be sent in the ens-auth-token header, not as a bearer token.
func (m *SessionManager) Token() (*oauth2.Token, error) {
	token, expiresAt, err := m.validToken(context.Background())
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: token,
		TokenType:   TokenType,
		Expiry:      time.Unix(expiresAt, 0),
	}, nil
}

// Invalidate forgets the in-memory token and zeroes the stored expiry, so the
// next ValidToken authenticates again. Other clients sharing the cache renew too.
func (m *SessionManager) Invalidate(ctx context.Context) error {
	m.token = ""
	return m.store.Expire(ctx)
}

func (m *SessionManager) validToken(ctx context.Context) (string, int64, error) {
	token := m.token
	if token == "" {
		stored, err := m.store.Token(ctx)
		if err != nil {
			return "", 0, err
		}
		token = stored
	}

	expiresAt, err := m.store.Expiry(ctx)
	if err != nil {
		return "", 0, err
	}

	if m.now().Unix() >= expiresAt-int64(RenewalMargin/time.Second) {
		token = ""
	}

	if token == "" {
		token, expiresAt, err = m.refresh(ctx)
		if err != nil {
			return "", 0, err
		}
	}

	m.token = token
	return token, expiresAt, nil
}

func (m *SessionManager) refresh(ctx context.Context) (string, int64, error) {
	if m.authenticator == nil {
		return "", 0, &AuthenticationError{Reason: "no authenticator configured"}
	}

	m.log.Debug("Requesting new ENS session token")
	token, expiresIn, err := m.authenticator.Authenticate(ctx)
	if err != nil {
		return "", 0, &AuthenticationError{Reason: "token exchange failed", Err: err}
	}
	if token == "" {
		return "", 0, &AuthenticationError{Reason: "response did not contain a session token"}
	}

	// Lifetime counts from receipt of the token
	expiresAt := m.now().Add(expiresIn).Unix()
	if err := m.store.Save(ctx, token, expiresAt); err != nil {
		return "", 0, err
	}

	m.log.Debug("ENS session token refreshed", "expires_at", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
	return token, expiresAt, nil
}
