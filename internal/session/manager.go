package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/me/newsletter/internal/logging"
	"github.com/me/newsletter/pkg/model"
	"github.com/me/newsletter/pkg/newsapi"
)

// Manager is the single owned session object handed to a front-end. It is
// the only path to the Store: the API client reads the token through it,
// and credential invalidation happens here.
type Manager struct {
	store     Store
	api       *newsapi.Client
	validator *Validator
	logger    *slog.Logger
}

// NewManager binds api to store. The returned manager's API() attaches the
// stored token to every request.
func NewManager(store Store, api *newsapi.Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	m := &Manager{
		store:  store,
		logger: logger.With("component", "session"),
	}
	m.api = api.WithTokenSource(m)
	m.validator = NewValidator(store, m.api, logger)
	return m
}

// Token implements newsapi.TokenSource.
func (m *Manager) Token(ctx context.Context) string {
	token, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("token unavailable", "error", err)
		return ""
	}
	return token
}

// API returns the client bound to this session.
func (m *Manager) API() *newsapi.Client {
	return m.api
}

// Validator returns the session validator.
func (m *Manager) Validator() *Validator {
	return m.validator
}

// NewGuard returns a fresh guard over this session's validator.
func (m *Manager) NewGuard(redirect func()) *Guard {
	return NewGuard(m.validator, redirect)
}

// Current returns the stored session. The cached user is dropped when no
// token is present.
func (m *Manager) Current(ctx context.Context) *model.Session {
	sess := &model.Session{Token: m.Token(ctx)}
	if sess.Token != "" {
		sess.User = m.store.LoadUser(ctx)
	}
	return sess
}

// User returns the cached user for display, or nil.
func (m *Manager) User(ctx context.Context) *model.User {
	return m.Current(ctx).DisplayUser()
}

// Login signs in and persists the credential. Any previous credential and
// cached user are replaced. An authorization failure from the sign-in call
// also drops the stored credential, as it would from any other endpoint.
func (m *Manager) Login(ctx context.Context, in model.SignInRequest) (*model.SignInResponse, error) {
	resp, err := m.api.SignIn(ctx, in)
	if err != nil {
		m.HandleUnauthorized(ctx, err)
		return nil, err
	}
	if err := m.store.Clear(ctx); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, resp.Token, resp.User); err != nil {
		return nil, fmt.Errorf("persist credential: %w", err)
	}
	m.logger.Info("signed in")
	m.logger.Debug("sign-in account", "email", in.Email)
	return resp, nil
}

// Logout drops the credential.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return err
	}
	m.logger.Info("signed out")
	return nil
}

// HandleUnauthorized is the one place that reacts to a credential the
// backend stopped accepting. When err carries an authorization failure it
// clears the store and returns true; the caller then sends the user to
// sign-in. Other errors are left alone.
func (m *Manager) HandleUnauthorized(ctx context.Context, err error) bool {
	if err == nil || !newsapi.IsUnauthorized(err) {
		return false
	}
	if clearErr := m.store.Clear(context.WithoutCancel(ctx)); clearErr != nil {
		m.logger.Error("clear credential failed", "error", clearErr)
	}
	m.logger.Info("credential rejected, signed out")
	return true
}
