package session

import (
	"context"
	"errors"
	"sync"
)

// ErrGuardAbandoned is returned by Resolve after an earlier resolution was
// cancelled. The guard never transitions once abandoned.
var ErrGuardAbandoned = errors.New("guard abandoned before a verdict")

// Guard gates a protected view. It starts Pending and moves exactly once
// to Authenticated or Unauthenticated. On Unauthenticated the redirect
// callback runs once.
type Guard struct {
	checker  Checker
	redirect func()

	resolving sync.Mutex // serializes Resolve

	mu        sync.Mutex // guards the fields below
	state     Verdict
	result    Result
	abandoned bool
	done      chan struct{}
}

// NewGuard returns a Pending guard. redirect may be nil.
func NewGuard(checker Checker, redirect func()) *Guard {
	return &Guard{
		checker:  checker,
		redirect: redirect,
		state:    Pending,
		done:     make(chan struct{}),
	}
}

// State returns the current state. It does not block on a running check.
func (g *Guard) State() Verdict {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Done is closed when the guard reaches a terminal state.
func (g *Guard) Done() <-chan struct{} {
	return g.done
}

// Resolve runs the check on first call and returns the cached result on
// later calls. Concurrent callers wait for the first one.
//
// When ctx ends before the verdict, the guard stays Pending, the redirect
// does not run, and the guard is abandoned.
func (g *Guard) Resolve(ctx context.Context) (Result, error) {
	g.resolving.Lock()
	defer g.resolving.Unlock()

	g.mu.Lock()
	switch {
	case g.abandoned:
		g.mu.Unlock()
		return Result{Verdict: Pending}, ErrGuardAbandoned
	case g.state != Pending:
		res := g.result
		g.mu.Unlock()
		return res, nil
	}
	g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		g.abandon()
		return Result{Verdict: Pending}, err
	}

	res := g.checker.Validate(ctx)
	if err := ctx.Err(); err != nil {
		g.abandon()
		return Result{Verdict: Pending}, err
	}

	g.mu.Lock()
	g.state = res.Verdict
	g.result = res
	close(g.done)
	g.mu.Unlock()

	if res.Verdict == Unauthenticated && g.redirect != nil {
		g.redirect()
	}
	return res, nil
}

func (g *Guard) abandon() {
	g.mu.Lock()
	g.abandoned = true
	g.mu.Unlock()
}
