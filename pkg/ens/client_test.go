package ens

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/auth"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/logger"
)

const (
	testAPIKey   = "test-api-key"
	testToken    = "2d1ba3a2-7d9f-4f5f-b1a4-6c1d4f0e8a01"
	testBasePath = "/ens/service"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeResponse struct {
	status  int
	fixture string
	body    string
}

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// fakeENS serves fixture responses keyed by "METHOD /path" and records every request
type fakeENS struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]fakeResponse
	requests []recordedRequest
}

func newFakeENS(t *testing.T) *fakeENS {
	t.Helper()
	f := &fakeENS{t: t, routes: map[string]fakeResponse{}}
	f.on(http.MethodPost, "/authenticate", http.StatusOK, "postAuthenticate")
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeENS) on(method, path string, status int, fixture string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+testBasePath+path] = fakeResponse{status: status, fixture: fixture}
}

func (f *fakeENS) onRaw(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+testBasePath+path] = fakeResponse{status: status, body: body}
}

func (f *fakeENS) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	resp, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.Error(w, "unexpected request "+r.Method+" "+r.URL.Path, http.StatusInternalServerError)
		return
	}

	payload := []byte(resp.body)
	if resp.fixture != "" {
		payload = loadFixture(f.t, resp.fixture)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write(payload)
}

func (f *fakeENS) requestsTo(path string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []recordedRequest
	for _, r := range f.requests {
		if r.Path == testBasePath+path {
			matched = append(matched, r)
		}
	}
	return matched
}

func (f *fakeENS) lastRequest() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *fakeENS) client(opts ...Option) *Client {
	f.t.Helper()
	opts = append([]Option{
		WithHTTPClient(f.server.Client()),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	client, err := New(f.server.URL+testBasePath, testAPIKey, opts...)
	require.NoError(f.t, err)
	return client
}

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name+".json"))
	require.NoError(t, err)
	return data
}

// memoryCache is a minimal TokenCache for client tests
type memoryCache struct {
	values map[string]string
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key, value string) error {
	c.values[key] = value
	return nil
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		apiKey  string
		wantErr string
	}{
		{name: "valid", baseURL: "https://ca.engagingnetworks.app/ens/service", apiKey: "key"},
		{name: "missing api key", baseURL: "https://ca.engagingnetworks.app/ens/service", wantErr: "api key is required"},
		{name: "missing scheme", baseURL: "ca.engagingnetworks.app/ens/service", apiKey: "key", wantErr: "scheme and host are required"},
		{name: "unparsable", baseURL: "http://[::1", apiKey: "key", wantErr: "invalid base URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.baseURL, tt.apiKey)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "/ens/service/", client.baseURL.Path)
			assert.NotNil(t, client.Session())
		})
	}
}

func TestAuthenticateRequest(t *testing.T) {
	f := newFakeENS(t)
	f.on(http.MethodGet, "/page/112233", http.StatusOK, "getPage")
	client := f.client()

	_, err := client.GetPage(context.Background(), 112233)
	require.NoError(t, err)

	authRequests := f.requestsTo("/authenticate")
	require.Len(t, authRequests, 1)
	assert.Equal(t, testAPIKey, string(authRequests[0].Body))
	assert.Empty(t, authRequests[0].Header.Get(TokenHeader), "authenticate must not carry a token")

	pageRequests := f.requestsTo("/page/112233")
	require.Len(t, pageRequests, 1)
	assert.Equal(t, testToken, pageRequests[0].Header.Get(TokenHeader))
	assert.Equal(t, "application/json", pageRequests[0].Header.Get("Accept"))
}

func TestAuthenticateExpiry(t *testing.T) {
	f := newFakeENS(t)
	client := f.client()

	token, expiresIn, err := client.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testToken, token)
	assert.Equal(t, time.Hour, expiresIn)
}

func TestTokenCaching(t *testing.T) {
	t.Run("cached token is reused across calls", func(t *testing.T) {
		f := newFakeENS(t)
		f.on(http.MethodGet, "/page/112233", http.StatusOK, "getPage")
		cache := &memoryCache{values: map[string]string{}}
		client := f.client(WithTokenCache(cache))

		for i := 0; i < 3; i++ {
			_, err := client.GetPage(context.Background(), 112233)
			require.NoError(t, err)
		}

		assert.Len(t, f.requestsTo("/authenticate"), 1)
		assert.Equal(t, testToken, cache.values[auth.DefaultTokenKey])
		assert.Equal(t, "1714568400", cache.values[auth.DefaultExpireKey])
	})

	t.Run("token is shared between clients through the cache", func(t *testing.T) {
		f := newFakeENS(t)
		f.on(http.MethodGet, "/page/112233", http.StatusOK, "getPage")
		cache := &memoryCache{values: map[string]string{}}

		_, err := f.client(WithTokenCache(cache)).GetPage(context.Background(), 112233)
		require.NoError(t, err)
		_, err = f.client(WithTokenCache(cache)).GetPage(context.Background(), 112233)
		require.NoError(t, err)

		assert.Len(t, f.requestsTo("/authenticate"), 1)
	})

	t.Run("custom key prefix", func(t *testing.T) {
		f := newFakeENS(t)
		f.on(http.MethodGet, "/page/112233", http.StatusOK, "getPage")
		cache := &memoryCache{values: map[string]string{}}
		client := f.client(WithTokenCache(cache), WithCacheKeyPrefix("tenant-a"))

		_, err := client.GetPage(context.Background(), 112233)
		require.NoError(t, err)

		assert.Equal(t, testToken, cache.values["tenant-a.session_token"])
		assert.Contains(t, cache.values, "tenant-a.session_expire")
	})

	t.Run("without a cache every call authenticates", func(t *testing.T) {
		f := newFakeENS(t)
		f.on(http.MethodGet, "/page/112233", http.StatusOK, "getPage")
		client := f.client()

		for i := 0; i < 2; i++ {
			_, err := client.GetPage(context.Background(), 112233)
			require.NoError(t, err)
		}

		assert.Len(t, f.requestsTo("/authenticate"), 2)
	})

	t.Run("expired cached token is renewed", func(t *testing.T) {
		f := newFakeENS(t)
		f.on(http.MethodGet, "/page/112233", http.StatusOK, "getPage")
		cache := &memoryCache{values: map[string]string{
			auth.DefaultTokenKey:  "stale-token",
			auth.DefaultExpireKey: "1714565000",
		}}
		client := f.client(WithTokenCache(cache))

		_, err := client.GetPage(context.Background(), 112233)
		require.NoError(t, err)

		assert.Len(t, f.requestsTo("/authenticate"), 1)
		assert.Equal(t, testToken, f.requestsTo("/page/112233")[0].Header.Get(TokenHeader))
	})

	t.Run("oauth2 token source", func(t *testing.T) {
		f := newFakeENS(t)
		client := f.client()

		token, err := client.Session().Token()
		require.NoError(t, err)
		assert.Equal(t, testToken, token.AccessToken)
		assert.Equal(t, fixedNow.Add(time.Hour).Unix(), token.Expiry.Unix())
	})
}

func TestAuthenticationFailure(t *testing.T) {
	f := newFakeENS(t)
	f.onRaw(http.MethodPost, "/authenticate", http.StatusUnauthorized, `{"messageId": 401, "message": "Invalid API key"}`)
	client := f.client()

	_, err := client.GetPage(context.Background(), 112233)
	require.Error(t, err)

	var authErr *auth.AuthenticationError
	require.ErrorAs(t, err, &authErr)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, "Invalid API key", reqErr.Message)

	assert.Empty(t, f.requestsTo("/page/112233"), "no request is sent without a token")
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		fixture     string
		wantNotFnd  bool
		wantMessage string
		wantDevMsg  string
		wantID      *int
	}{
		{
			name:        "404 with JSON details",
			status:      http.StatusNotFound,
			fixture:     "getPage-notFound",
			wantNotFnd:  true,
			wantMessage: "Page not found",
			wantDevMsg:  "No page with id 999999 for this client",
			wantID:      intPtr(1001),
		},
		{
			name:       "204 is not found",
			status:     http.StatusNoContent,
			wantNotFnd: true,
		},
		{
			name:        "400 with JSON details",
			status:      http.StatusBadRequest,
			fixture:     "getPages-error",
			wantMessage: "Invalid page type",
			wantDevMsg:  "Query parameter type must be a valid page type",
			wantID:      intPtr(2002),
		},
		{
			name:        "500 with a plain text body",
			status:      http.StatusInternalServerError,
			body:        "upstream exploded",
			wantMessage: "upstream exploded",
		},
		{
			name:        "503 with a partial JSON body",
			status:      http.StatusServiceUnavailable,
			body:        `{"message": "maintenance", "messageId": "soon"}`,
			wantMessage: "maintenance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeENS(t)
			if tt.fixture != "" {
				f.on(http.MethodGet, "/page/999999", tt.status, tt.fixture)
			} else {
				f.onRaw(http.MethodGet, "/page/999999", tt.status, tt.body)
			}
			client := f.client()

			page, err := client.GetPage(context.Background(), 999999)
			require.Error(t, err)
			assert.Nil(t, page)

			var details ErrorDetails
			if tt.wantNotFnd {
				var notFound *NotFoundError
				require.ErrorAs(t, err, &notFound)
				assert.ErrorIs(t, err, ErrNotFound)
				assert.Equal(t, tt.status, notFound.StatusCode)
				details = notFound.ErrorDetails
			} else {
				var reqErr *RequestError
				require.ErrorAs(t, err, &reqErr)
				assert.NotErrorIs(t, err, ErrNotFound)
				assert.Equal(t, tt.status, reqErr.StatusCode)
				details = reqErr.ErrorDetails
			}

			assert.Equal(t, tt.wantMessage, details.Message)
			assert.Equal(t, tt.wantDevMsg, details.DeveloperMessage)
			assert.Equal(t, tt.wantID, details.MessageID)
		})
	}
}

func TestTransportError(t *testing.T) {
	f := newFakeENS(t)
	client := f.client()
	f.server.Close()

	_, err := client.GetPage(context.Background(), 112233)
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.MethodPost, transportErr.Method)
	assert.Equal(t, "authenticate", transportErr.Endpoint)
}

func TestSendLogsRequestFields(t *testing.T) {
	f := newFakeENS(t)
	out := &bytes.Buffer{}
	log, err := logger.NewWithWriter("debug", logger.FormatJSON, out)
	require.NoError(t, err)
	client := f.client(WithLogger(log))
	f.server.Close()

	_, err = client.GetPage(context.Background(), 112233)
	require.Error(t, err)

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry[logger.FieldEndpoint] == "authenticate" {
			entries = append(entries, entry)
		}
	}
	require.Len(t, entries, 2, "sent and failed")

	requestID, ok := entries[0][logger.FieldRequestID].(string)
	require.True(t, ok)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, requestID, entries[1][logger.FieldRequestID])
	assert.Equal(t, http.MethodPost, entries[1][logger.FieldMethod])
	assert.NotEmpty(t, entries[1][logger.FieldError])
}

func TestSendCancelledContext(t *testing.T) {
	f := newFakeENS(t)
	client := f.client()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Send(ctx, http.MethodGet, "page/112233")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve(t *testing.T) {
	client, err := New("https://ca.engagingnetworks.app/ens/service", testAPIKey)
	require.NoError(t, err)

	tests := []struct {
		endpoint string
		query    url.Values
		want     string
	}{
		{endpoint: "page/1", want: "https://ca.engagingnetworks.app/ens/service/page/1"},
		{endpoint: "/page/1", want: "https://ca.engagingnetworks.app/ens/service/page/1"},
		{endpoint: "page", query: url.Values{"type": {"dcf"}}, want: "https://ca.engagingnetworks.app/ens/service/page?type=dcf"},
		{endpoint: "supporter?email=a%40b.c", query: url.Values{"includeQuestions": {"true"}}, want: "https://ca.engagingnetworks.app/ens/service/supporter?email=a%40b.c&includeQuestions=true"},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			got, err := client.resolve(tt.endpoint, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func intPtr(v int) *int {
	return &v
}
