// Package api is the client for the remote budgeting API.
//
// The client is stateless: the bearer token comes from an injected TokenStore
// on every call. Calls are not retried; any transport error or non-2xx status
// is returned to the caller, which shows it to the user as is.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"maplebudget/internal/log"
	"maplebudget/internal/middleware/trace"
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenStore
	Logger     *log.Logger
}

// Client calls the budgeting API on behalf of one token store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	logger     *log.Logger
}

// New builds a Client. A nil HTTPClient uses http.DefaultClient and a nil
// token store sends no Authorization header.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = NewMemoryTokenStore("")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: hc,
		tokens:     tokens,
		logger:     logger.WithComponent(log.ComponentAPI),
	}
}

// WithTokens returns a client sharing c's transport but reading tokens from t.
func (c *Client) WithTokens(t TokenStore) *Client {
	cp := *c
	cp.tokens = t
	return &cp
}

// Tokens returns the client's token store.
func (c *Client) Tokens() TokenStore { return c.tokens }

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if id := trace.GetRequestID(ctx); id != "" {
		req.Header.Set(trace.HeaderRequestID, id)
	}
	if tok, ok := c.tokens.Get(ctx); ok && tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	return c.send(req, out, unauthorizedMessage)
}

// send executes req and decodes a JSON response into out. Non-2xx statuses
// become *Error; a 401 carries msg401.
func (c *Client) send(req *http.Request, out any, msg401 string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(req.Context(), "API request failed",
			log.FieldMethod, req.Method, log.FieldEndpoint, req.URL.Path, log.FieldError, err)
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newError(resp.StatusCode, string(data), msg401)
		c.logger.DebugContext(req.Context(), "API returned an error",
			log.FieldMethod, req.Method, log.FieldEndpoint, req.URL.Path,
			log.FieldStatusCode, resp.StatusCode)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if s, ok := out.(*string); ok && !isJSON(resp.Header) {
		*s = string(data)
		return nil
	}
	if !isJSON(resp.Header) {
		return fmt.Errorf("%s %s: unexpected content type %q", req.Method, req.URL.Path, resp.Header.Get("Content-Type"))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func isJSON(h http.Header) bool {
	return strings.Contains(h.Get("Content-Type"), "application/json")
}

func withQuery(path string, q url.Values) string {
	if enc := q.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}
