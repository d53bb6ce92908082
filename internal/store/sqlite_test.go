package store

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/me/newsletter/internal/session"
	"github.com/me/newsletter/pkg/model"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestMigrateIdempotent(t *testing.T) {
	st := testStore(t)
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	ok, err := hasColumn(context.Background(), st.db, "browser_sessions", "user_agent")
	if err != nil || !ok {
		t.Errorf("user_agent column missing: %v", err)
	}
}

func TestBrowserSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)

	bs, err := st.CreateBrowserSession(ctx, "curl/8")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if bs.ID == "" {
		t.Fatal("empty id")
	}

	got, err := st.GetBrowserSession(ctx, bs.ID)
	if err != nil || got == nil {
		t.Fatalf("get: %v, %v", got, err)
	}
	if got.UserAgent != "curl/8" || !got.CreatedAt.Equal(bs.CreatedAt) {
		t.Errorf("got %+v, want %+v", got, bs)
	}

	if err := st.TouchBrowserSession(ctx, bs.ID); err != nil {
		t.Errorf("touch: %v", err)
	}
	if err := st.TouchBrowserSession(ctx, "missing"); err == nil {
		t.Error("touch of a missing session should fail")
	}

	if err := st.DeleteBrowserSession(ctx, bs.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := st.GetBrowserSession(ctx, bs.ID); got != nil {
		t.Errorf("session survived delete: %+v", got)
	}
}

func TestGetBrowserSession_NotFound(t *testing.T) {
	got, err := testStore(t).GetBrowserSession(context.Background(), "nope")
	if err != nil || got != nil {
		t.Errorf("got %v, %v; want nil, nil", got, err)
	}
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	st := testStore(t).WithClock(func() time.Time { return now })

	old, _ := st.CreateBrowserSession(ctx, "")
	st.SetValue(ctx, old.ID, session.TokenKey, "old-token")

	now = now.Add(48 * time.Hour)
	fresh, _ := st.CreateBrowserSession(ctx, "")

	n, err := st.DeleteExpired(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d, want 1", n)
	}
	if got, _ := st.GetBrowserSession(ctx, old.ID); got != nil {
		t.Error("idle session should be gone")
	}
	if _, ok, _ := st.GetValue(ctx, old.ID, session.TokenKey); ok {
		t.Error("idle session values should be gone")
	}
	if got, _ := st.GetBrowserSession(ctx, fresh.ID); got == nil {
		t.Error("fresh session should survive")
	}
}

func TestKV_BacksTokenStore(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)
	a, _ := st.CreateBrowserSession(ctx, "")
	b, _ := st.CreateBrowserSession(ctx, "")

	storeA := session.NewStore(st.KV(a.ID), nil)
	storeB := session.NewStore(st.KV(b.ID), nil)

	user := &model.User{ID: "1", Name: "Ana", Email: "ana@example.com"}
	if err := storeA.Save(ctx, "token-a", user); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := storeA.Save(ctx, "token-a2", nil); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	if tok, _ := storeA.Load(ctx); tok != "token-a2" {
		t.Errorf("A token = %q", tok)
	}
	if u := storeA.LoadUser(ctx); u == nil || *u != *user {
		t.Errorf("A user = %+v", u)
	}
	if tok, _ := storeB.Load(ctx); tok != "" {
		t.Errorf("B sees A's token: %q", tok)
	}

	for i := 0; i < 2; i++ {
		if err := storeA.Clear(ctx); err != nil {
			t.Fatalf("clear #%d: %v", i+1, err)
		}
	}
	if tok, _ := storeA.Load(ctx); tok != "" {
		t.Errorf("A token after clear = %q", tok)
	}
}
