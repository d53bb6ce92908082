package newsapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/me/newsletter/pkg/model"
)

// UnauthorizedError is returned for every 401 response. It is the tagged
// "credential became invalid" result handled once at the top level.
type UnauthorizedError struct {
	Body *model.APIError
}

// Error implements the error interface.
func (e *UnauthorizedError) Error() string {
	if e.Body != nil && e.Body.Text() != "" {
		return "unauthorized: " + e.Body.Text()
	}
	return "unauthorized"
}

// HTTPError represents any other non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       *model.APIError
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Body != nil && e.Body.Text() != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body.Text())
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// IsRetryable returns true if the HTTP error is retryable.
func (e *HTTPError) IsRetryable() bool {
	// 5xx errors are generally retryable (server issues)
	// 429 Too Many Requests is retryable after delay
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// NetworkError means the backend could not be reached or the exchange broke.
type NetworkError struct {
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Error wraps an API failure with the operation that produced it.
type Error struct {
	// Op is the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with operation context.
func WrapError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// ErrEmptyToken is returned when the login response carries no token.
var ErrEmptyToken = errors.New("login response carried no token")

// IsUnauthorized reports whether err carries an authorization failure.
func IsUnauthorized(err error) bool {
	var u *UnauthorizedError
	return errors.As(err, &u)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if IsUnauthorized(err) {
		return http.StatusUnauthorized
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsRetryable returns true if the error is likely transient and a read
// request should be retried.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsRetryable()
	}
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
