package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// ErrUnauthorized is wrapped by every [Error] carrying a 401 status.
var ErrUnauthorized = errors.New("unauthorized")

const maxErrorBody = 64 << 10

// TokenSource supplies the bearer token attached to requests. An empty token
// means the request is sent without an Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to [TokenSource].
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// UnauthorizedFunc is called once per 401 response, before the request
// returns.
type UnauthorizedFunc func(ctx context.Context)

// Error is returned for non-2xx responses.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Unwrap exposes [ErrUnauthorized] for 401 responses.
func (e *Error) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets the bearer token source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// Client sends JSON requests relative to a base URL.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource

	mu        sync.RWMutex
	listeners []UnauthorizedFunc
}

// NewClient creates a [Client] for baseURL (for example "https://app.example.com/api").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnUnauthorized registers fn for the unauthorized event and returns a
// function that removes it.
func (c *Client) OnUnauthorized(fn UnauthorizedFunc) (remove func()) {
	if fn == nil {
		return func() {}
	}

	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	idx := len(c.listeners) - 1
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.listeners[idx] = nil
			c.mu.Unlock()
		})
	}
}

func (c *Client) emitUnauthorized(ctx context.Context) {
	c.mu.RLock()
	listeners := make([]UnauthorizedFunc, 0, len(c.listeners))
	for _, fn := range c.listeners {
		if fn != nil {
			listeners = append(listeners, fn)
		}
	}
	c.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx)
	}
}

// Do sends method to path with body encoded as JSON (nil for no body) and
// decodes a successful response into out (nil to discard it).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("api: token source: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.emitUnauthorized(ctx)
		}
		return &Error{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func errorMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || json.Unmarshal(raw, &payload) != nil || payload.Message == "" {
		return "request failed"
	}
	return payload.Message
}

// Get sends a GET request and decodes the response into T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Post sends data as a JSON POST body and decodes the response into T.
func Post[T any](ctx context.Context, c *Client, path string, data any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPost, path, data, &out)
	return out, err
}

// Put sends data as a JSON PUT body and decodes the response into T.
func Put[T any](ctx context.Context, c *Client, path string, data any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPut, path, data, &out)
	return out, err
}

// Patch sends data as a JSON PATCH body and decodes the response into T.
func Patch[T any](ctx context.Context, c *Client, path string, data any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPatch, path, data, &out)
	return out, err
}

// Delete sends a DELETE request and decodes the response into T.
func Delete[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodDelete, path, nil, &out)
	return out, err
}
