package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/newsletter/internal/config"
	"github.com/me/newsletter/internal/store"
	"github.com/me/newsletter/internal/ui"
	"github.com/me/newsletter/pkg/newsapi"
)

// DefaultJanitorInterval is how often idle browser sessions are purged.
const DefaultJanitorInterval = time.Hour

// Server is the newsletter web server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.WebConfig
	startTime time.Time
	store     store.Store
	api       *newsapi.Client
	ui        *ui.UI
}

// New creates a new Server with all routes registered.
func New(cfg config.WebConfig, st store.Store, api *newsapi.Client, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		store:     st,
		api:       api,
	}
	s.ui = ui.New(st, api, logger, ui.Config{
		Secure:     cfg.SecureCookies,
		SessionTTL: cfg.SessionTTL,
	})

	s.routes()
	return s
}

// StartJanitor purges idle browser sessions every interval until ctx ends.
func (s *Server) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.ui.CleanupExpiredSessions(ctx)
				if err != nil {
					s.logger.Error("purge browser sessions", "error", err)
					continue
				}
				if n > 0 {
					s.logger.Info("purged idle browser sessions", "count", n)
				}
			}
		}
	}()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Get("/healthz", s.handleHealth)

	// UI routes (HTML)
	s.ui.RegisterRoutes(r)
}
