// Package newsapi is a Go client for the newsletter REST backend.
//
// Every request carries the bearer token of the configured TokenSource.
// Authorization failures come back as *UnauthorizedError so a single
// top-level handler can drop the credential; the client itself never
// touches persisted state.
package newsapi

import "time"

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:3333"

// Default client settings.
const (
	DefaultTimeout    = 15 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 500 * time.Millisecond
	DefaultUserAgent  = "newsletter-go"
)

// Config holds all configuration for the API client.
type Config struct {
	// BaseURL is the backend root, e.g. https://api.example.com.
	BaseURL string

	// Timeout is the HTTP client timeout for each request.
	Timeout time.Duration

	// MaxRetries bounds retries of read endpoints. Mutations and
	// authentication calls are never retried.
	MaxRetries int

	// RetryDelay is the initial delay between retries (exponential backoff applied).
	RetryDelay time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultConfig returns a Config with default settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
		UserAgent:  DefaultUserAgent,
	}
}

// WithBaseURL returns a copy of the config pointing at another backend.
func (c Config) WithBaseURL(u string) Config {
	c.BaseURL = u
	return c
}

// WithTimeout returns a copy of the config with the specified timeout.
func (c Config) WithTimeout(timeout time.Duration) Config {
	c.Timeout = timeout
	return c
}

// WithRetries returns a copy of the config with the specified retry settings.
func (c Config) WithRetries(maxRetries int, retryDelay time.Duration) Config {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
	return c
}
