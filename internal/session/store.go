// Package session owns the client's authentication state: the persisted
// credential, the validity check run before protected views, and the
// guard that turns that check into render-or-redirect.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/me/newsletter/internal/logging"
	"github.com/me/newsletter/pkg/model"
)

// Persisted keys. The user value is JSON {id, name, email}.
const (
	TokenKey = "@newsletter:token"
	UserKey  = "@newsletter:user"
)

// ErrNoCredential reports that no token is stored.
var ErrNoCredential = errors.New("no credential stored")

// Store persists the bearer token and a cached copy of the user.
type Store interface {
	// Save persists token, and user only when non-nil.
	Save(ctx context.Context, token string, user *model.User) error
	// Load returns the token, or "" when none is stored.
	Load(ctx context.Context) (string, error)
	// LoadUser returns the cached user, or nil when absent or unreadable.
	LoadUser(ctx context.Context) *model.User
	// Clear removes token and user. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}

// KVStore implements Store over a KV.
type KVStore struct {
	kv     KV
	logger *slog.Logger
}

// NewStore returns a Store over kv.
func NewStore(kv KV, logger *slog.Logger) *KVStore {
	if logger == nil {
		logger = logging.Discard()
	}
	return &KVStore{kv: kv, logger: logger.With("component", "token-store")}
}

func (s *KVStore) Save(ctx context.Context, token string, user *model.User) error {
	if err := s.kv.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if user != nil {
		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshal user: %w", err)
		}
		if err := s.kv.Set(ctx, UserKey, string(data)); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
	}
	s.logger.Debug("credential saved", "with_user", user != nil)
	return nil
}

func (s *KVStore) Load(ctx context.Context) (string, error) {
	token, _, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

func (s *KVStore) LoadUser(ctx context.Context) *model.User {
	raw, ok, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		s.logger.Debug("cached user unreadable", "error", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Debug("cached user malformed", "error", err)
		return nil
	}
	return &user
}

func (s *KVStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	s.logger.Debug("credential cleared")
	return nil
}
