package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/me/newsletter/internal/session"
	"github.com/me/newsletter/pkg/model"
)

const goodToken = "good-token"

// backend is a minimal newsletter API.
type backend struct {
	*httptest.Server
	calls    atomic.Int32
	revoked  atomic.Bool // every protected call answers 401
	newsAuth atomic.Bool // GET /news with limit != 1 answers 401

	mu    sync.Mutex
	prefs []int
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	authed := func(w http.ResponseWriter, r *http.Request) bool {
		if b.revoked.Load() || r.Header.Get("Authorization") != "Bearer "+goodToken {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid token"})
			return false
		}
		return true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": goodToken,
			"user":  map[string]any{"id": 1, "name": "Ana Souza", "email": in.Email},
		})
	})
	mux.HandleFunc("POST /users", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Email string }
		json.NewDecoder(r.Body).Decode(&in)
		switch in.Email {
		case "blank@example.com":
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		case "locked@example.com":
			w.WriteHeader(http.StatusUnauthorized)
			return
		case "taken@example.com":
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": "Email already registered"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 2, "name": "New", "email": in.Email})
	})
	mux.HandleFunc("GET /news", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		if r.URL.Query().Get("limit") != "1" && b.newsAuth.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"news": []map[string]any{{
				"id": 7, "title": "Go 1.24 released", "content": "Full text.",
				"publishedAt": time.Now().Add(-3 * time.Hour).Format(time.RFC3339),
				"categories":  []map[string]any{{"id": 1, "name": "tecnologia"}},
			}},
			"pagination": map[string]any{"currentPage": 1, "totalPages": 12, "totalCount": 120, "limit": 10},
		})
	})
	mux.HandleFunc("GET /news/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		if r.PathValue("id") != "7" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "News not found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": 7, "title": "Go 1.24 released", "content": "First.\nSecond."})
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"categories": []map[string]any{{"id": 1, "name": "tecnologia"}, {"id": 2, "name": "saude"}}})
	})
	mux.HandleFunc("GET /users/me/preferences", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"preferences": []int{2}})
	})
	mux.HandleFunc("PUT /users/me/preferences", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		var in struct {
			UserID      string `json:"userId"`
			CategoryIDs []int  `json:"categoryIds"`
		}
		json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		b.prefs = in.CategoryIDs
		b.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"success": true, "updatedPreferences": len(in.CategoryIDs)})
	})
	mux.HandleFunc("GET /user/profile", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user":        map[string]any{"id": "1", "name": "Ana Souza", "email": "ana@example.com", "createdAt": "2024-05-01T10:00:00Z"},
			"preferences": []map[string]any{{"id": "2", "name": "saude"}},
		})
	})

	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

type env struct {
	backend  *backend
	stateDir string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("NEWSLETTER_API_URL", "")
	t.Setenv("NEWSLETTER_STATE_DIR", "")
	return &env{backend: newBackend(t), stateDir: t.TempDir()}
}

func (e *env) flags() []string {
	return []string{"--api", e.backend.URL, "--state-dir", e.stateDir, "--retries", "0", "--log-level", "error"}
}

// run executes the CLI and returns stdout, stderr and the exit code.
func (e *env) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), append(args, e.flags()...), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func (e *env) login(t *testing.T) {
	t.Helper()
	out, errOut, code := e.run(t, "login", "--email", "ana@example.com", "--password", "secret1")
	if code != 0 {
		t.Fatalf("login exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Signed in as Ana Souza") {
		t.Fatalf("login output = %q", out)
	}
}

func (e *env) sessionPath() string {
	return filepath.Join(e.stateDir, "session.json")
}

func TestProtectedCommandWithoutSession(t *testing.T) {
	e := newEnv(t)

	for _, args := range [][]string{{"news"}, {"news", "show", "7"}, {"categories"}, {"profile"}, {"preferences"}} {
		_, errOut, code := e.run(t, args...)
		if code != 1 {
			t.Errorf("%v: exit = %d, want 1", args, code)
		}
		if !strings.Contains(errOut, "not signed in: run `newsletter login`") {
			t.Errorf("%v: stderr = %q", args, errOut)
		}
	}
	if n := e.backend.calls.Load(); n != 0 {
		t.Errorf("backend calls = %d, want 0", n)
	}
}

func TestSessionErrorIs(t *testing.T) {
	err := &SessionError{Reason: session.ReasonNoCredential, Err: session.ErrNoCredential}
	if !errors.Is(err, ErrNotSignedIn) || !errors.Is(err, session.ErrNoCredential) {
		t.Errorf("no-credential error should match ErrNotSignedIn and ErrNoCredential")
	}
	transient := &SessionError{Reason: session.ReasonTransientFailure, Err: errors.New("down")}
	if errors.Is(transient, ErrNotSignedIn) {
		t.Errorf("transient failure should not read as signed out")
	}
	if !strings.Contains(transient.Error(), "try again later") {
		t.Errorf("transient message = %q", transient.Error())
	}
}

func TestLoginNewsLogout(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	info, err := os.Stat(e.sessionPath())
	if err != nil {
		t.Fatalf("session file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("session file mode = %o, want 600", perm)
	}

	out, _, _ := e.run(t, "whoami")
	if strings.TrimSpace(out) != "Ana Souza <ana@example.com>" {
		t.Errorf("whoami = %q", out)
	}

	out, errOut, code := e.run(t, "news")
	if code != 0 {
		t.Fatalf("news exit %d: %s", code, errOut)
	}
	for _, want := range []string{
		"#7     Go 1.24 released",
		"tecnologia · 3 hours ago",
		"Any time · 120 articles found",
		"Page 1 of 12",
		"Pages: [1] 2 3 … 12",
		"Next:  newsletter news --page 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("news output missing %q:\n%s", want, out)
		}
	}

	out, _, _ = e.run(t, "status")
	if !strings.Contains(out, "Session: authenticated (valid)") {
		t.Errorf("status = %q", out)
	}

	out, _, code = e.run(t, "logout")
	if code != 0 || !strings.Contains(out, "Signed out.") {
		t.Errorf("logout = %d %q", code, out)
	}
	out, _, _ = e.run(t, "whoami")
	if strings.TrimSpace(out) != "Not signed in." {
		t.Errorf("whoami after logout = %q", out)
	}
	if _, err := os.Stat(e.sessionPath()); !os.IsNotExist(err) {
		t.Errorf("session file should be gone, stat err = %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	e := newEnv(t)

	_, errOut, code := e.run(t, "login", "--email", "ana@example.com", "--password", "wrong-one")
	if code != 1 || !strings.Contains(errOut, "invalid email or password") {
		t.Errorf("exit %d, stderr %q", code, errOut)
	}
	if _, err := os.Stat(e.sessionPath()); !os.IsNotExist(err) {
		t.Errorf("no session should be written")
	}
}

func TestLoginValidation(t *testing.T) {
	e := newEnv(t)

	_, errOut, code := e.run(t, "login", "--email", "not-an-email", "--password", "123")
	if code != 1 {
		t.Fatalf("exit = %d", code)
	}
	for _, want := range []string{"email: must be a valid email address", "password: must be at least 6 characters"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q: %q", want, errOut)
		}
	}
	if n := e.backend.calls.Load(); n != 0 {
		t.Errorf("backend calls = %d, want 0", n)
	}
}

func TestLoginPrompted(t *testing.T) {
	e := newEnv(t)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetArgs(append([]string{"login"}, e.flags()...))
	root.SetIn(strings.NewReader("ana@example.com\nsecret1\n"))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out.String(), "Signed in as Ana Souza") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRegister(t *testing.T) {
	e := newEnv(t)

	out, errOut, code := e.run(t, "register", "--name", "New Reader", "--email", "new@example.com",
		"--password", "secret1", "--confirm-password", "secret1")
	if code != 0 || !strings.Contains(out, "Account created for new@example.com") {
		t.Errorf("register = %d %q %q", code, out, errOut)
	}

	_, errOut, code = e.run(t, "register", "--name", "Taken", "--email", "taken@example.com",
		"--password", "secret1", "--confirm-password", "secret1")
	if code != 1 || !strings.Contains(errOut, "Email already registered") {
		t.Errorf("conflict = %d %q", code, errOut)
	}

	before := e.backend.calls.Load()
	_, errOut, _ = e.run(t, "register", "--name", "Mismatch", "--email", "m@example.com",
		"--password", "secret1", "--confirm-password", "secret2")
	if !strings.Contains(errOut, "passwords do not match") {
		t.Errorf("mismatch stderr = %q", errOut)
	}
	if e.backend.calls.Load() != before {
		t.Errorf("mismatched passwords should not reach the backend")
	}
}

func TestRevokedSessionClearedByGuard(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.backend.revoked.Store(true)

	_, errOut, code := e.run(t, "categories")
	if code != 1 || !strings.Contains(errOut, "session rejected by the server") {
		t.Errorf("categories = %d %q", code, errOut)
	}
	out, _, _ := e.run(t, "whoami")
	if strings.TrimSpace(out) != "Not signed in." {
		t.Errorf("whoami after rejection = %q", out)
	}
}

func TestUnauthorizedHandledAtTop(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.backend.newsAuth.Store(true)

	_, errOut, code := e.run(t, "news")
	if code != 1 || !strings.Contains(errOut, "session is no longer valid") {
		t.Errorf("news = %d %q", code, errOut)
	}
	out, _, _ := e.run(t, "whoami")
	if strings.TrimSpace(out) != "Not signed in." {
		t.Errorf("whoami after 401 = %q", out)
	}
}

func TestExpiredTokenSkipsBackend(t *testing.T) {
	e := newEnv(t)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("not-our-secret"))
	if err != nil {
		t.Fatal(err)
	}
	st := session.NewStore(session.NewFileKV(e.sessionPath()), nil)
	if err := st.Save(context.Background(), tok, &model.User{ID: "1", Name: "Ana"}); err != nil {
		t.Fatal(err)
	}

	out, _, code := e.run(t, "status")
	if code != 0 {
		t.Fatalf("status exit = %d", code)
	}
	if !strings.Contains(out, "Session: unauthenticated (expired-credential)") ||
		!strings.Contains(out, "The stored credential was removed.") {
		t.Errorf("status = %q", out)
	}
	if n := e.backend.calls.Load(); n != 0 {
		t.Errorf("backend calls = %d, want 0", n)
	}
}

func TestNewsShow(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, _, code := e.run(t, "news", "show", "7")
	if code != 0 || !strings.Contains(out, "Go 1.24 released") || !strings.Contains(out, "First.\nSecond.") {
		t.Errorf("show = %d %q", code, out)
	}

	_, errOut, code := e.run(t, "news", "show", "9")
	if code != 1 || !strings.Contains(errOut, "News not found") {
		t.Errorf("missing item = %d %q", code, errOut)
	}

	before := e.backend.calls.Load()
	_, errOut, _ = e.run(t, "news", "show", "abc")
	if !strings.Contains(errOut, `invalid news id "abc"`) || e.backend.calls.Load() != before {
		t.Errorf("bad id = %q", errOut)
	}
}

func TestNewsPeriodWindow(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, errOut, code := e.run(t, "news", "--period", "week")
	if code != 0 {
		t.Fatalf("news exit %d: %s", code, errOut)
	}
	want := "This week (since " + time.Now().AddDate(0, 0, -7).Format("Jan 2") + ") · 120 articles found"
	if !strings.Contains(out, want) {
		t.Errorf("news output missing %q:\n%s", want, out)
	}
}

func TestNewsBadPeriod(t *testing.T) {
	e := newEnv(t)

	_, errOut, code := e.run(t, "news", "--period", "year")
	if code != 1 || !strings.Contains(errOut, "invalid period") {
		t.Errorf("period = %d %q", code, errOut)
	}
}

func TestProfileAndPreferences(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, _, code := e.run(t, "profile")
	if code != 0 {
		t.Fatalf("profile exit = %d", code)
	}
	for _, want := range []string{"Name:    Ana Souza", "Email:   ana@example.com", "Topics:  saude"} {
		if !strings.Contains(out, want) {
			t.Errorf("profile missing %q:\n%s", want, out)
		}
	}

	out, _, _ = e.run(t, "preferences")
	if !strings.Contains(out, "[ ] 1    tecnologia") || !strings.Contains(out, "[x] 2    saude") {
		t.Errorf("preferences =\n%s", out)
	}

	out, errOut, code := e.run(t, "preferences", "set", "2", "1")
	if code != 0 || !strings.Contains(out, "Preferences saved (2 categories).") {
		t.Errorf("set = %d %q %q", code, out, errOut)
	}
	e.backend.mu.Lock()
	got := e.backend.prefs
	e.backend.mu.Unlock()
	if len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Errorf("backend prefs = %v, want [2 1]", got)
	}

	before := e.backend.calls.Load()
	_, errOut, _ = e.run(t, "preferences", "set", "1", "1")
	if !strings.Contains(errOut, "must not repeat") || e.backend.calls.Load() != before {
		t.Errorf("duplicate ids = %q", errOut)
	}
}

func TestLoginRejectedClearsSession(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	_, errOut, code := e.run(t, "login", "--email", "ana@example.com", "--password", "wrong-one")
	if code != 1 || !strings.Contains(errOut, "invalid email or password") {
		t.Errorf("exit %d, stderr %q", code, errOut)
	}
	out, _, _ := e.run(t, "whoami")
	if strings.TrimSpace(out) != "Not signed in." {
		t.Errorf("whoami after rejected login = %q", out)
	}
}

func TestRegisterEmptyErrorBody(t *testing.T) {
	e := newEnv(t)

	_, errOut, code := e.run(t, "register", "--name", "Blank", "--email", "blank@example.com",
		"--password", "secret1", "--confirm-password", "secret1")
	if code != 1 || !strings.Contains(errOut, "Error: HTTP 422") {
		t.Errorf("register = %d %q", code, errOut)
	}
}

func TestRegisterUnauthorizedClearsSession(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	_, errOut, code := e.run(t, "register", "--name", "Locked", "--email", "locked@example.com",
		"--password", "secret1", "--confirm-password", "secret1")
	if code != 1 || !strings.Contains(errOut, "session is no longer valid") {
		t.Errorf("register = %d %q", code, errOut)
	}
	out, _, _ := e.run(t, "whoami")
	if strings.TrimSpace(out) != "Not signed in." {
		t.Errorf("whoami after 401 = %q", out)
	}
}
