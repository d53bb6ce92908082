package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

type checkerFunc func(ctx context.Context) Result

func (f checkerFunc) Validate(ctx context.Context) Result { return f(ctx) }

func TestGuard_NoTokenRedirectsOnce(t *testing.T) {
	prober := &fakeProber{}
	v := NewValidator(seededStore(t, ""), prober, nil)

	var redirects int
	g := NewGuard(v, func() { redirects++ })
	if g.State() != Pending {
		t.Fatalf("initial state = %v, want pending", g.State())
	}

	res, err := g.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Verdict != Unauthenticated || g.State() != Unauthenticated {
		t.Errorf("verdict = %v, state = %v", res.Verdict, g.State())
	}
	if prober.calls.Load() != 0 {
		t.Errorf("probe calls = %d, want 0", prober.calls.Load())
	}

	// Later resolutions reuse the verdict.
	g.Resolve(context.Background())
	if redirects != 1 {
		t.Errorf("redirects = %d, want 1", redirects)
	}
	select {
	case <-g.Done():
	default:
		t.Error("Done should be closed")
	}
}

func TestGuard_AuthenticatedNoRedirect(t *testing.T) {
	prober := &fakeProber{}
	v := NewValidator(seededStore(t, "abc.def.ghi"), prober, nil)

	redirected := false
	g := NewGuard(v, func() { redirected = true })
	for i := 0; i < 3; i++ {
		res, err := g.Resolve(context.Background())
		if err != nil || res.Verdict != Authenticated {
			t.Fatalf("Resolve #%d = %v, %v", i+1, res.Verdict, err)
		}
	}
	if redirected {
		t.Error("redirect must not run for an authenticated session")
	}
	if prober.calls.Load() != 1 {
		t.Errorf("probe calls = %d, want 1", prober.calls.Load())
	}
}

func TestGuard_ConcurrentResolveChecksOnce(t *testing.T) {
	var checks, redirects atomic.Int32
	g := NewGuard(checkerFunc(func(context.Context) Result {
		checks.Add(1)
		return Result{Verdict: Unauthenticated, Reason: ReasonRejected}
	}), func() { redirects.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Resolve(context.Background())
		}()
	}
	wg.Wait()

	if checks.Load() != 1 || redirects.Load() != 1 {
		t.Errorf("checks = %d, redirects = %d, want 1 and 1", checks.Load(), redirects.Load())
	}
}

func TestGuard_CancelledBeforeVerdict(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	redirected := false
	g := NewGuard(checkerFunc(func(context.Context) Result {
		cancel() // view torn down while the check is in flight
		return Result{Verdict: Unauthenticated, Reason: ReasonTransientFailure}
	}), func() { redirected = true })

	res, err := g.Resolve(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res.Verdict != Pending || g.State() != Pending {
		t.Errorf("verdict = %v, state = %v, want pending", res.Verdict, g.State())
	}
	if redirected {
		t.Error("abandoned guard must not redirect")
	}

	if _, err := g.Resolve(context.Background()); !errors.Is(err, ErrGuardAbandoned) {
		t.Errorf("second Resolve err = %v, want ErrGuardAbandoned", err)
	}
}

func TestGuard_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	g := NewGuard(checkerFunc(func(context.Context) Result {
		called = true
		return Result{Verdict: Authenticated}
	}), nil)

	if _, err := g.Resolve(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if called {
		t.Error("check must not start on a cancelled context")
	}
}
