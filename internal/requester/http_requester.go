package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brizzai/auth-profile/internal/logger"
	"go.uber.org/zap"
)

// HTTPRequester executes JSON requests against one base URL
type HTTPRequester struct {
	client  *http.Client
	baseURL string
	authMgr AuthManager
	headers map[string]string
}

// Option configures an HTTPRequester
type Option func(*HTTPRequester)

// WithTimeout sets the client timeout. Zero means none.
func WithTimeout(timeout time.Duration) Option {
	return func(r *HTTPRequester) { r.client.Timeout = timeout }
}

// WithHTTPClient replaces the underlying client
func WithHTTPClient(c *http.Client) Option {
	return func(r *HTTPRequester) {
		if c != nil {
			r.client = c
		}
	}
}

// WithHeader adds a header sent on every request
func WithHeader(key, value string) Option {
	return func(r *HTTPRequester) { r.headers[key] = value }
}

// NewHTTPRequester creates a requester. A nil AuthManager means NoAuth.
func NewHTTPRequester(baseURL string, authMgr AuthManager, opts ...Option) *HTTPRequester {
	if authMgr == nil {
		authMgr = NoAuth{}
	}
	r := &HTTPRequester{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		authMgr: authMgr,
		headers: map[string]string{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BaseURL returns the URL every path is resolved against
func (r *HTTPRequester) BaseURL() string {
	return r.baseURL
}

// Do sends body as JSON (when non-nil) and decodes a 2xx response into out (when non-nil).
// Non-2xx responses return *StatusError.
func (r *HTTPRequester) Do(ctx context.Context, method, path string, query url.Values, body, out any) (*Response, error) {
	req, err := r.buildRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	logger.Debug("request route", zap.String("method", method), zap.String("path", path))

	resp, err := r.execute(req)
	if err != nil {
		logger.Error("failed to execute request", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, &StatusError{
			Method:     method,
			URL:        r.baseURL + path,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		}
	}

	if out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return resp, fmt.Errorf("failed to decode response body: %w", err)
		}
	}
	return resp, nil
}

func (r *HTTPRequester) buildRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u, err := url.Parse(r.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if err := r.authMgr.ApplyAuth(req); err != nil {
		return nil, fmt.Errorf("failed to apply authentication: %w", err)
	}
	return req, nil
}

// execute performs the actual HTTP request execution
func (r *HTTPRequester) execute(req *http.Request) (*Response, error) {
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Headers:    resp.Header,
	}, nil
}
