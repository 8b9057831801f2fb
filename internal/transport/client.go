// Package transport is the authenticated JSON HTTP layer shared by remote
// catalog clients.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/agentstation/feedsync/pkg/constants"
	"github.com/agentstation/feedsync/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication.
type Client struct {
	http    *http.Client
	auth    Authenticator
	apiKey  string
	service string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New creates a transport client. service names the remote side in errors.
func New(service string, auth Authenticator, apiKey string, opts ...Option) *Client {
	if auth == nil {
		auth = NoAuth
	}
	c := &Client{
		http:    &http.Client{Timeout: DefaultHTTPTimeout},
		auth:    auth,
		apiKey:  apiKey,
		service: service,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the name used in errors.
func (c *Client) Service() string {
	return c.service
}

// Do performs an HTTP request with authentication and common headers applied.
// Network failures are returned as *errors.APIError without a status code.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.apiKey != "" {
		c.auth.Apply(req, c.apiKey)
	}

	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &errors.APIError{
			Service:  c.service,
			Endpoint: req.Method + " " + req.URL.Path,
			Message:  err.Error(),
			Err:      err,
		}
	}
	return resp, nil
}

// JSON sends body (when non-nil) encoded as JSON and decodes a 2xx response
// into target (when non-nil). It returns the response headers so callers can
// read pagination links.
func (c *Client) JSON(ctx context.Context, method, url string, body, target any) (http.Header, error) {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.WrapResource("encode", "request", method+" "+url, err)
		}
		payload = bytes.NewReader(data)
	}

	var req *http.Request
	var err error
	if payload != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, payload)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, errors.WrapResource("create", "request", method+" "+url, err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	if err := DecodeResponse(resp, c.service, target); err != nil {
		return resp.Header, err
	}
	return resp.Header, nil
}
