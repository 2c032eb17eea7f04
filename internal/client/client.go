// Package client talks to the club board API over HTTP and WebSocket. A
// Client satisfies every gateway the view package needs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"clubboard/internal/models"
	"clubboard/internal/view"
)

// TokenKey is the LocalStore key of the saved access token.
const TokenKey = "access_token"

const (
	memberHeader   = "X-Member-ID"
	defaultTimeout = 15 * time.Second
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Unwrap lets callers match a conflict with view.ErrDuplicate.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusConflict {
		return view.ErrDuplicate
	}
	return nil
}

// Client is safe for concurrent use.
type Client struct {
	base   *url.URL
	http   *http.Client
	tokens view.LocalStore

	mu       sync.RWMutex
	token    string
	memberID string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client with its 15s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLocalIdentity sends id as the device identity when no token is held.
func WithLocalIdentity(id string) Option {
	return func(c *Client) { c.memberID = id }
}

// WithTokenStore persists the access token across runs.
func WithTokenStore(store view.LocalStore) Option {
	return func(c *Client) { c.tokens = store }
}

// New returns a client for the API at baseURL, e.g. "http://localhost:8375".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url must be http or https, got %q", baseURL)
	}
	c := &Client{base: u, http: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens != nil {
		if tok, ok, err := c.tokens.Get(TokenKey); err != nil {
			return nil, err
		} else if ok {
			c.token = tok
		}
	}
	return c, nil
}

// Token returns the held access token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(tok string) error {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
	if c.tokens == nil {
		return nil
	}
	if tok == "" {
		return c.tokens.Delete(TokenKey)
	}
	return c.tokens.Set(TokenKey, tok)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/api" + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) authorize(h http.Header) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.token != "":
		h.Set("Authorization", "Bearer "+c.token)
	case c.memberID != "":
		h.Set(memberHeader, c.memberID)
	}
}

// do sends a request and decodes a JSON response into out when it is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	switch v := in.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(v)
		contentType = "application/octet-stream"
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var payload models.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if len(raw) > 0 && json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Code = payload.Code
	}
	return apiErr
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
