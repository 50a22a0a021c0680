// Package api is the single gateway to the remote commerce REST API.
// Every outbound call goes through Client, which attaches the current
// bearer token, issues exactly one HTTP request, and normalizes the
// outcome into a Result.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies the current access token at call time, so a login
// or logout between two requests is reflected on the very next one.
// An empty string means no token.
type TokenSource interface {
	Token(ctx context.Context) string
}

// Options shapes a single request. The zero value issues a GET with no
// body and no extra headers.
type Options struct {
	// Method defaults to GET.
	Method string

	// Headers are merged over the default Content-Type and can override
	// it. The Authorization header is appended after them whenever a
	// token exists, so callers cannot suppress it except by there being
	// no token. (A caller-supplied Authorization survives only when no
	// token is present; the server logout call relies on this.)
	Headers map[string]string

	// Body, when non-nil, is JSON-encoded into the request body.
	Body any
}

// ClientOptions groups dependencies for NewClient.
type ClientOptions struct {
	// BaseURL is the API root, without a trailing slash.
	BaseURL string

	// HTTPClient defaults to a client with no timeout: a hung upstream
	// request stays in flight indefinitely, matching the consumed API's
	// historical client behavior.
	HTTPClient *http.Client

	// Tokens is consulted on every call. Optional; without it every
	// request is anonymous.
	Tokens TokenSource

	Logger *slog.Logger
}

// Client issues authenticated requests against the commerce API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
}

// NewClient constructs a Client.
func NewClient(opts ClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     opts.Tokens,
		logger:     logger,
	}
}

// HTTPClientWithTimeout builds an http.Client with the given per-request
// timeout; zero means no timeout at all.
func HTTPClientWithTimeout(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Do issues one request and reports the outcome as a Result. It never
// panics and issues no retries; a failure is terminal for this call.
func (c *Client) Do(ctx context.Context, path string, opts Options) Result {
	start := time.Now()
	requestID := uuid.NewString()

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = c.baseURL + path
	}

	var body io.Reader
	if opts.Body != nil {
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return c.fail(ctx, requestID, method, path, Result{Err: fmt.Errorf("encode request body: %w", err)}, start)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return c.fail(ctx, requestID, method, path, Result{Err: fmt.Errorf("build request: %w", err)}, start)
	}

	// Header precedence: default Content-Type, then caller headers, then
	// the bearer token appended last.
	req.Header.Set("Content-Type", "application/json")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(ctx, requestID, method, path, Result{Err: fmt.Errorf("%s %s: %w", method, path, err)}, start)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(ctx, requestID, method, path, Result{Status: resp.StatusCode, Err: fmt.Errorf("read response body: %w", err)}, start)
	}

	var doc any
	if len(bytes.TrimSpace(payload)) > 0 {
		if err := json.Unmarshal(payload, &doc); err != nil {
			if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
				return c.fail(ctx, requestID, method, path, Result{Status: resp.StatusCode, Err: fmt.Errorf("decode response body: %w", err)}, start)
			}
			doc = nil
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		res := Result{Status: resp.StatusCode, Data: doc, Message: Message(doc)}
		if res.Message == "" {
			res.Message = fmt.Sprintf("%s %s: %s", method, path, resp.Status)
		}
		return c.fail(ctx, requestID, method, path, res, start)
	}

	c.logger.DebugContext(ctx, "api request",
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return Result{OK: true, Status: resp.StatusCode, Data: doc, Message: Message(doc)}
}

// Request is the null-collapsing convenience over Do: any failure yields
// nil, a success yields the decoded JSON document verbatim. Callers that
// need to distinguish failure kinds use Do instead.
func (c *Client) Request(ctx context.Context, path string, opts Options) any {
	res := c.Do(ctx, path, opts)
	if !res.OK {
		return nil
	}
	return res.Data
}

func (c *Client) fail(ctx context.Context, requestID, method, path string, res Result, start time.Time) Result {
	attrs := []any{
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("path", path),
		slog.Duration("duration", time.Since(start)),
	}
	if res.Status != 0 {
		attrs = append(attrs, slog.Int("status", res.Status))
	}
	if res.Message != "" {
		attrs = append(attrs, slog.String("message", res.Message))
	}
	if res.Err != nil {
		attrs = append(attrs, slog.Any("error", res.Err))
	}
	c.logger.ErrorContext(ctx, "api request failed", attrs...)
	return res
}
