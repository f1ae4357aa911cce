package ens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/logger"
)

// Response is a successful (200) API response with its body read
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

type request struct {
	query    url.Values
	header   http.Header
	body     []byte
	jsonBody any
	hasJSON  bool
}

// RequestOption customizes a single request
type RequestOption func(r *request)

// WithQuery adds query string parameters
func WithQuery(query url.Values) RequestOption {
	return func(r *request) {
		for k, vs := range query {
			for _, v := range vs {
				r.query.Add(k, v)
			}
		}
	}
}

// WithBody sends body as is
func WithBody(body []byte) RequestOption {
	return func(r *request) {
		r.body = body
		r.hasJSON = false
	}
}

// WithJSON sends v encoded as JSON
func WithJSON(v any) RequestOption {
	return func(r *request) {
		r.jsonBody = v
		r.hasJSON = true
	}
}

// WithHeader sets a request header
func WithHeader(key, value string) RequestOption {
	return func(r *request) {
		r.header.Set(key, value)
	}
}

// Send performs a request against endpoint, relative to the base URL.
//
// Endpoints other than authenticate carry a valid session token. A 404 or 204
// yields *NotFoundError, any other non-200 status *RequestError and transport
// failures *TransportError. Authentication failures are returned as
// *auth.AuthenticationError.
func (c *Client) Send(ctx context.Context, method, endpoint string, opts ...RequestOption) (*Response, error) {
	r := &request{query: url.Values{}, header: http.Header{}}
	for _, opt := range opts {
		opt(r)
	}

	requestID := uuid.NewString()
	log := c.log.WithRequestID(requestID).WithFields(logrus.Fields{
		logger.FieldMethod:   method,
		logger.FieldEndpoint: endpoint,
	})

	if !strings.HasPrefix(endpoint, authenticateEndpoint) {
		token, err := c.session.ValidToken(ctx)
		if err != nil {
			return nil, err
		}
		r.header.Set(TokenHeader, token)
	}

	target, err := c.resolve(endpoint, r.query)
	if err != nil {
		return nil, &TransportError{Method: method, Endpoint: endpoint, Err: err}
	}

	var body io.Reader
	switch {
	case r.hasJSON:
		encoded, err := json.Marshal(r.jsonBody)
		if err != nil {
			return nil, &TransportError{Method: method, Endpoint: endpoint, Err: fmt.Errorf("failed to encode request body: %w", err)}
		}
		body = bytes.NewReader(encoded)
		r.header.Set("Content-Type", "application/json")
	case r.body != nil:
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &TransportError{Method: method, Endpoint: endpoint, Err: err}
	}
	for k, vs := range r.header {
		req.Header[k] = vs
	}
	req.Header.Set("Accept", "application/json")

	log.Debug("Sending ENS request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithField(logger.FieldError, err.Error()).Debug("ENS request failed")
		return nil, &TransportError{Method: method, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Endpoint: endpoint, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	log.WithField("status", resp.StatusCode).Debug("ENS response received")

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return nil, &NotFoundError{StatusCode: resp.StatusCode, ErrorDetails: parseErrorDetails(data)}
	case resp.StatusCode != http.StatusOK:
		return nil, &RequestError{StatusCode: resp.StatusCode, Status: resp.Status, ErrorDetails: parseErrorDetails(data)}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Get sends a GET request and decodes the JSON response into out
func (c *Client) Get(ctx context.Context, endpoint string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, endpoint, out, opts...)
}

// Post sends a POST request and decodes the JSON response into out
func (c *Client) Post(ctx context.Context, endpoint string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, endpoint, out, opts...)
}

func (c *Client) do(ctx context.Context, method, endpoint string, out any, opts ...RequestOption) error {
	resp, err := c.Send(ctx, method, endpoint, opts...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}

func (c *Client) resolve(endpoint string, query url.Values) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	u := c.baseURL.ResolveReference(ref)

	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
