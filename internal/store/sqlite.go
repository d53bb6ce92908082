package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/me/newsletter/internal/session"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if dbPath == ":memory:" {
		// Every connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    time.Now,
	}, nil
}

// WithClock overrides the time source.
func (s *SQLiteStore) WithClock(now func() time.Time) *SQLiteStore {
	s.now = now
	return s
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Browser sessions ---

func (s *SQLiteStore) CreateBrowserSession(ctx context.Context, userAgent string) (*BrowserSession, error) {
	now := s.now().UTC().Truncate(time.Millisecond)
	bs := &BrowserSession{
		ID:         uuid.NewString(),
		UserAgent:  userAgent,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	s.logger.Debug("sql", "op", "insert", "table", "browser_sessions", "id", bs.ID)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO browser_sessions (id, user_agent, created_at, last_seen_at) VALUES (?, ?, ?, ?)`,
		bs.ID, bs.UserAgent, now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("create browser session: %w", err)
	}
	return bs, nil
}

func (s *SQLiteStore) GetBrowserSession(ctx context.Context, id string) (*BrowserSession, error) {
	s.logger.Debug("sql", "op", "select", "table", "browser_sessions", "id", id)

	var bs BrowserSession
	var createdAt, lastSeenAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_agent, created_at, last_seen_at FROM browser_sessions WHERE id = ?`, id,
	).Scan(&bs.ID, &bs.UserAgent, &createdAt, &lastSeenAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	bs.CreatedAt = time.UnixMilli(createdAt).UTC()
	bs.LastSeenAt = time.UnixMilli(lastSeenAt).UTC()
	return &bs, nil
}

func (s *SQLiteStore) TouchBrowserSession(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "touch", "table", "browser_sessions", "id", id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE browser_sessions SET last_seen_at = ? WHERE id = ?`,
		s.now().UnixMilli(), id,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("browser session %s not found", id)
	}
	return nil
}

func (s *SQLiteStore) DeleteBrowserSession(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "browser_sessions", "id", id)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_values WHERE session_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM browser_sessions WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteExpired removes browser sessions idle for longer than idle, along
// with their values, and returns how many were removed.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, idle time.Duration) (int64, error) {
	cutoff := s.now().Add(-idle).UnixMilli()
	s.logger.Debug("sql", "op", "delete_expired", "table", "browser_sessions", "cutoff", cutoff)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM session_values WHERE session_id IN
		 (SELECT id FROM browser_sessions WHERE last_seen_at < ?)`, cutoff,
	); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM browser_sessions WHERE last_seen_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}

// --- Values ---

func (s *SQLiteStore) GetValue(ctx context.Context, sessionID, key string) (string, bool, error) {
	s.logger.Debug("sql", "op", "select", "table", "session_values", "session_id", sessionID, "key", key)

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_values WHERE session_id = ? AND key = ?`, sessionID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) SetValue(ctx context.Context, sessionID, key, value string) error {
	s.logger.Debug("sql", "op", "upsert", "table", "session_values", "session_id", sessionID, "key", key)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_values (session_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value`,
		sessionID, key, value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteValues(ctx context.Context, sessionID string, keys ...string) error {
	s.logger.Debug("sql", "op", "delete", "table", "session_values", "session_id", sessionID, "keys", len(keys))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM session_values WHERE session_id = ? AND key = ?`, sessionID, key,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// KV returns a session.KV over the values of one browser session.
func (s *SQLiteStore) KV(sessionID string) session.KV {
	return &browserKV{store: s, id: sessionID}
}

type browserKV struct {
	store *SQLiteStore
	id    string
}

func (k *browserKV) Get(ctx context.Context, key string) (string, bool, error) {
	return k.store.GetValue(ctx, k.id, key)
}

func (k *browserKV) Set(ctx context.Context, key, value string) error {
	return k.store.SetValue(ctx, k.id, key, value)
}

func (k *browserKV) Delete(ctx context.Context, keys ...string) error {
	return k.store.DeleteValues(ctx, k.id, keys...)
}
