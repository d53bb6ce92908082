// Package store persists the web front's browser sessions and the
// per-browser Token Store entries in SQLite.
package store

import (
	"context"
	"time"

	"github.com/me/newsletter/internal/session"
)

// BrowserSession is one cookie-identified browser.
type BrowserSession struct {
	ID         string
	UserAgent  string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// Store defines the persistence layer for browser sessions.
type Store interface {
	// Browser sessions
	CreateBrowserSession(ctx context.Context, userAgent string) (*BrowserSession, error)
	GetBrowserSession(ctx context.Context, id string) (*BrowserSession, error)
	TouchBrowserSession(ctx context.Context, id string) error
	DeleteBrowserSession(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, idle time.Duration) (int64, error)

	// Values
	GetValue(ctx context.Context, sessionID, key string) (string, bool, error)
	SetValue(ctx context.Context, sessionID, key, value string) error
	DeleteValues(ctx context.Context, sessionID string, keys ...string) error

	// KV binds the values of one browser session to session.KV.
	KV(sessionID string) session.KV

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
