package ui

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/me/newsletter/internal/store"
	"github.com/me/newsletter/pkg/model"
	"github.com/me/newsletter/pkg/newsapi"
)

// UI handles the web user interface.
type UI struct {
	store      store.Store
	api        *newsapi.Client
	logger     *slog.Logger
	secure     bool          // Use secure cookies (HTTPS)
	sessionTTL time.Duration // Browser sessions idle longer than this are replaced
}

// Config holds UI configuration.
type Config struct {
	Secure     bool // Use secure cookies for HTTPS
	SessionTTL time.Duration
}

// New creates a new UI handler. api carries no token of its own; each
// request binds it to the browser's Token Store.
func New(st store.Store, api *newsapi.Client, logger *slog.Logger, cfg Config) *UI {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = SessionDuration
	}
	return &UI{
		store:      st,
		api:        api,
		logger:     logger.With("component", "ui"),
		secure:     cfg.Secure,
		sessionTTL: ttl,
	}
}

// pageData starts the template data shared by every page.
func (ui *UI) pageData(r *http.Request, title string) map[string]any {
	data := map[string]any{
		"Title":  title + " - Newsletter",
		"Notice": r.URL.Query().Get("notice"),
		"Error":  r.URL.Query().Get("error"),
	}
	if mgr := ManagerFromContext(r.Context()); mgr != nil {
		if u := mgr.User(r.Context()); u != nil {
			data["User"] = u
		}
	}
	return data
}

// handleUnauthorized reports whether err meant the credential is gone. In
// that case the store has been cleared and the response is a redirect to
// sign-in.
func (ui *UI) handleUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	mgr := ManagerFromContext(r.Context())
	if mgr == nil || !mgr.HandleUnauthorized(r.Context(), err) {
		return false
	}
	http.Redirect(w, r, "/sign-in?notice="+url.QueryEscape("Your session has ended. Please sign in again."), http.StatusSeeOther)
	return true
}

// handleAPIError maps a backend failure to a response.
func (ui *UI) handleAPIError(w http.ResponseWriter, r *http.Request, what string, err error) {
	if ui.handleUnauthorized(w, r, err) {
		return
	}
	switch newsapi.StatusCode(err) {
	case http.StatusNotFound:
		ui.renderNotFound(w, r, what+" not found")
	case http.StatusForbidden:
		ui.renderForbidden(w, r)
	default:
		ui.renderError(w, r, "Could not load "+what+". Try again later.", err)
	}
}

// apiMessage returns the backend's message for err, or fallback.
func apiMessage(err error, fallback string) string {
	var httpErr *newsapi.HTTPError
	if errors.As(err, &httpErr) && httpErr.Body != nil && httpErr.Body.Text() != "" {
		return httpErr.Body.Text()
	}
	return fallback
}

func validationMessage(err error) string {
	var verr *model.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		f := verr.Fields[0]
		return f.Field + " " + f.Message
	}
	return err.Error()
}

func (ui *UI) render(w http.ResponseWriter, template string, data map[string]any) {
	ui.renderStatus(w, http.StatusOK, template, data)
}

func (ui *UI) renderStatus(w http.ResponseWriter, status int, template string, data map[string]any) {
	var buf bytes.Buffer
	if err := renderTemplate(&buf, template, data); err != nil {
		ui.logger.Error("template render failed", "template", template, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (ui *UI) renderError(w http.ResponseWriter, r *http.Request, message string, err error) {
	ui.logger.Error(message, "error", err, "path", r.URL.Path)
	data := ui.pageData(r, "Server error")
	data["Heading"] = "Something went wrong"
	data["Message"] = message
	ui.renderStatus(w, http.StatusInternalServerError, "error", data)
}

func (ui *UI) renderNotFound(w http.ResponseWriter, r *http.Request, message string) {
	data := ui.pageData(r, "Not found")
	data["Heading"] = "Page not found"
	data["Message"] = message
	ui.renderStatus(w, http.StatusNotFound, "error", data)
}

func (ui *UI) renderForbidden(w http.ResponseWriter, r *http.Request) {
	data := ui.pageData(r, "Access denied")
	data["Heading"] = "Access denied"
	data["Message"] = "You do not have permission to view this page."
	ui.renderStatus(w, http.StatusForbidden, "error", data)
}

// HandleNotFound renders the 404 page for unknown routes.
func (ui *UI) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	ui.renderNotFound(w, r, "The page you are looking for does not exist.")
}
