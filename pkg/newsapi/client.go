package newsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/me/newsletter/internal/logging"
	"github.com/me/newsletter/pkg/model"
)

// TokenSource yields the bearer token to attach, or "" to send the
// request unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) string
}

// StaticToken is a TokenSource that always yields the same token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context) string { return string(s) }

// Client provides methods to interact with the newsletter backend.
type Client struct {
	httpClient *http.Client
	config     Config
	tokens     TokenSource
	logger     *slog.Logger
}

// NewClient creates a new API client. tokens may be nil for an
// unauthenticated client.
func NewClient(config Config, tokens TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
		tokens: tokens,
		logger: logger.With("component", "newsapi"),
	}
}

// WithTokenSource returns a shallow copy bound to another token source.
// The web front uses it to bind one browser's store per request.
func (c *Client) WithTokenSource(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// request describes one API call.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	retry  bool // reads only
}

// call executes req, retrying transient failures of read requests, and
// decodes the JSON response into out (when non-nil).
func (c *Client) call(ctx context.Context, req request, out any) error {
	logger := c.logger.With("op", req.op, "method", req.method, "path", req.path)

	var payload []byte
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return WrapError(req.op, fmt.Errorf("marshaling request: %w", err))
		}
		payload = data
	}

	attempts := 1
	if req.retry {
		attempts += max(c.config.MaxRetries, 0)
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := c.config.RetryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			logger.Debug("retrying after delay", "attempt", attempt, "delay", delay)

			select {
			case <-ctx.Done():
				return WrapError(req.op, ctx.Err())
			case <-time.After(delay):
			}
		}

		respBody, err := c.doRequest(ctx, req, payload)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil || !IsRetryable(err) {
				return WrapError(req.op, err)
			}
			logger.Debug("request failed, will retry", "error", err, "attempt", attempt)
			continue
		}

		if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return WrapError(req.op, fmt.Errorf("unmarshaling response: %w", err))
			}
		}
		return nil
	}

	return WrapError(req.op, fmt.Errorf("all retries exhausted: %w", lastErr))
}

// doRequest performs a single HTTP exchange and maps the status code.
func (c *Client) doRequest(ctx context.Context, req request, payload []byte) ([]byte, error) {
	target := c.config.BaseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	reqID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	httpReq.Header.Set("X-Request-ID", reqID)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Debug("HTTP request", "method", req.method, "url", target, "request_id", reqID)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("reading response: %w", err)}
	}

	c.logger.Debug("HTTP response",
		"status", httpResp.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start).String(),
	)

	switch {
	case httpResp.StatusCode == http.StatusUnauthorized:
		return nil, &UnauthorizedError{Body: model.ParseAPIError(httpResp.StatusCode, respBody)}
	case httpResp.StatusCode < 200 || httpResp.StatusCode > 299:
		return nil, &HTTPError{
			StatusCode: httpResp.StatusCode,
			Body:       model.ParseAPIError(httpResp.StatusCode, respBody),
		}
	}
	return respBody, nil
}
