// ABOUTME: JSON-over-HTTP client for the test-management REST API
// ABOUTME: Builds bearer-authenticated requests against one base URL and decodes raw records

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Record is one JSON object exactly as the server returned it.
type Record = json.RawMessage

// TokenSource supplies the bearer token for a request. An empty string
// means the request is sent without an Authorization header.
type TokenSource func() string

// StaticToken returns a TokenSource that always yields tok.
func StaticToken(tok string) TokenSource {
	return func() string { return tok }
}

// Client communicates with the test-management REST API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	token   TokenSource
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithTokenSource sets where the bearer token comes from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client rooted at baseURL, e.g. http://localhost:5000/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	c.logger = c.logger.With("component", "api")
	return c
}

// BaseURL returns the REST root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithToken returns a shallow copy of the client bound to tok.
func (c *Client) WithToken(tok string) *Client {
	cp := *c
	cp.token = StaticToken(tok)
	return &cp
}

func (c *Client) anonymous() *Client {
	cp := *c
	cp.token = nil
	return &cp
}

func (c *Client) currentToken() string {
	if c.token == nil {
		return ""
	}
	return c.token()
}

// NewRequest builds the HTTP request for one API call. The result depends
// only on its arguments and the client's token.
func (c *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimPrefix(path, "/"), reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := c.currentToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// do performs one call. On a non-2xx status the body is only inspected
// for an error message and out is left untouched.
func (c *Client) do(ctx context.Context, op, resource, method, path string, body, out any) error {
	req, err := c.NewRequest(ctx, method, path, body)
	if err != nil {
		return &RequestError{Op: op, Resource: resource, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "error", err)
		return &RequestError{Op: op, Resource: resource, Err: fmt.Errorf("sending request: %w", err)}
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(op, resource, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &RequestError{
			Op:         op,
			Resource:   resource,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decoding response: %w", err),
		}
	}
	return nil
}

// errorBody covers the error shapes the API and common frameworks emit.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// handleErrorResponse extracts a server message from non-2xx responses.
func (c *Client) handleErrorResponse(op, resource string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	rerr := &RequestError{Op: op, Resource: resource, StatusCode: resp.StatusCode}

	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		var detail string
		if len(eb.Detail) > 0 && json.Unmarshal(eb.Detail, &detail) == nil && detail != "" {
			rerr.Message = detail
		} else if eb.Message != "" {
			rerr.Message = eb.Message
		} else if eb.Error != "" {
			rerr.Message = eb.Error
		}
	}
	return rerr
}
