package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/me/newsletter/internal/logging"
	"github.com/me/newsletter/pkg/newsapi"
)

// Verdict is the tri-state outcome consumed by route guarding.
type Verdict int

const (
	Pending Verdict = iota
	Authenticated
	Unauthenticated
)

func (v Verdict) String() string {
	switch v {
	case Pending:
		return "pending"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Reason says why a verdict was reached.
type Reason string

const (
	ReasonValid            Reason = "valid"
	ReasonNoCredential     Reason = "no-credential"
	ReasonExpired          Reason = "expired-credential"
	ReasonRejected         Reason = "rejected-credential"
	ReasonTransientFailure Reason = "transient-failure"
)

// Cleared reports whether the reason destroys the stored credential.
func (r Reason) Cleared() bool {
	return r == ReasonExpired || r == ReasonRejected
}

// Result is one validation outcome.
type Result struct {
	Verdict Verdict
	Reason  Reason
	Err     error // probe or storage failure, if any
}

// Prober issues the lightweight protected request used to confirm a
// credential. *newsapi.Client implements it.
type Prober interface {
	Probe(ctx context.Context) error
}

// Checker produces a validation result. *Validator implements it.
type Checker interface {
	Validate(ctx context.Context) Result
}

// Validator decides whether the stored session is usable: a local expiry
// check first, then a single probe request.
type Validator struct {
	store  Store
	prober Prober
	now    func() time.Time
	logger *slog.Logger
}

// NewValidator creates a Validator.
func NewValidator(store Store, prober Prober, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Validator{
		store:  store,
		prober: prober,
		now:    time.Now,
		logger: logger.With("component", "session-validator"),
	}
}

// WithClock overrides the time source.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// Validate runs the check. It never returns Pending.
//
//   - no token: Unauthenticated, no network call
//   - decodable exp in the past: Unauthenticated, store cleared, no network call
//   - otherwise one probe: success is Authenticated; 401 is Unauthenticated
//     and clears the store; any other failure is Unauthenticated and keeps
//     the credential
func (v *Validator) Validate(ctx context.Context) Result {
	token, err := v.store.Load(ctx)
	if err != nil {
		v.logger.Warn("token store unreadable", "error", err)
		return Result{Verdict: Unauthenticated, Reason: ReasonTransientFailure, Err: err}
	}
	if token == "" {
		v.logger.Debug("no token stored")
		return Result{Verdict: Unauthenticated, Reason: ReasonNoCredential, Err: ErrNoCredential}
	}

	if exp, ok := ExpiryClaim(token); ok && exp.Before(v.now()) {
		v.logger.Info("token expired", "exp", exp)
		v.clear(ctx)
		return Result{Verdict: Unauthenticated, Reason: ReasonExpired}
	}

	if err := v.prober.Probe(ctx); err != nil {
		if newsapi.IsUnauthorized(err) {
			v.logger.Info("token rejected by backend")
			v.clear(ctx)
			return Result{Verdict: Unauthenticated, Reason: ReasonRejected, Err: err}
		}
		v.logger.Warn("session probe failed", "error", err)
		return Result{Verdict: Unauthenticated, Reason: ReasonTransientFailure, Err: err}
	}

	v.logger.Debug("token valid")
	return Result{Verdict: Authenticated, Reason: ReasonValid}
}

func (v *Validator) clear(ctx context.Context) {
	// The credential is dropped even when the caller's context is done.
	if err := v.store.Clear(context.WithoutCancel(ctx)); err != nil {
		v.logger.Error("clear credential failed", "error", err)
	}
}
