package ui

import (
	"context"
	"net/http"

	"github.com/me/newsletter/internal/session"
)

// Context keys for per-request session data.
type contextKey string

const managerContextKey contextKey = "session-manager"

// ManagerFromContext retrieves the browser's session manager.
func ManagerFromContext(ctx context.Context) *session.Manager {
	mgr, _ := ctx.Value(managerContextKey).(*session.Manager)
	return mgr
}

// BrowserSessionMiddleware resolves the browser session cookie and binds a
// session manager over that browser's Token Store.
func (ui *UI) BrowserSessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bs, err := ui.browserSession(w, r)
		if err != nil {
			ui.renderError(w, r, "Session storage is unavailable.", err)
			return
		}
		ctx := context.WithValue(r.Context(), managerContextKey, ui.managerFor(bs))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GuardMiddleware runs a route guard before protected pages. An
// unauthenticated browser is redirected to sign-in. When the request goes
// away before the verdict, nothing is written.
func (ui *UI) GuardMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mgr := ManagerFromContext(r.Context())
		if mgr == nil {
			http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
			return
		}

		guard := mgr.NewGuard(func() {
			http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
		})
		res, err := guard.Resolve(r.Context())
		if err != nil {
			ui.logger.Debug("request ended before session verdict", "path", r.URL.Path, "error", err)
			return
		}
		if res.Verdict != session.Authenticated {
			ui.logger.Debug("guard redirect", "path", r.URL.Path, "reason", res.Reason)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RedirectIfSignedIn sends browsers with a valid session from the auth
// pages to the dashboard.
func (ui *UI) RedirectIfSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mgr := ManagerFromContext(r.Context())
		if mgr != nil && mgr.Token(r.Context()) != "" {
			if res := mgr.Validator().Validate(r.Context()); res.Verdict == session.Authenticated {
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
