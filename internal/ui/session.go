package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/me/newsletter/internal/session"
	"github.com/me/newsletter/internal/store"
)

const (
	// SessionCookieName is the name of the browser session cookie.
	SessionCookieName = "newsletter_session"
	// SessionDuration is the default idle lifetime of a browser session.
	SessionDuration = 7 * 24 * time.Hour
)

// browserSession returns the browser session named by the request cookie,
// creating one (and setting the cookie) when it is missing or idle too long.
func (ui *UI) browserSession(w http.ResponseWriter, r *http.Request) (*store.BrowserSession, error) {
	ctx := r.Context()
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		bs, err := ui.store.GetBrowserSession(ctx, cookie.Value)
		if err != nil {
			return nil, err
		}
		if bs != nil && time.Since(bs.LastSeenAt) < ui.sessionTTL {
			if err := ui.store.TouchBrowserSession(ctx, bs.ID); err != nil {
				ui.logger.Warn("touch browser session failed", "error", err)
			}
			SetSessionCookie(w, bs.ID, ui.sessionTTL, ui.secure)
			return bs, nil
		}
		if bs != nil {
			ui.logger.Debug("browser session idle, replacing", "session", bs.ID)
			_ = ui.store.DeleteBrowserSession(ctx, bs.ID)
		}
	}

	bs, err := ui.store.CreateBrowserSession(ctx, r.UserAgent())
	if err != nil {
		return nil, err
	}
	ui.logger.Debug("browser session created", "session", bs.ID)
	SetSessionCookie(w, bs.ID, ui.sessionTTL, ui.secure)
	return bs, nil
}

// managerFor binds a session manager to one browser's Token Store.
func (ui *UI) managerFor(bs *store.BrowserSession) *session.Manager {
	tokens := session.NewStore(ui.store.KV(bs.ID), ui.logger)
	return session.NewManager(tokens, ui.api, ui.logger)
}

// CleanupExpiredSessions removes idle browser sessions from the store.
func (ui *UI) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return ui.store.DeleteExpired(ctx, ui.sessionTTL)
}

// SetSessionCookie sets the session cookie on the response. The lifetime
// slides with activity.
func SetSessionCookie(w http.ResponseWriter, id string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
