package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/newsletter/internal/session"
)

// ErrNotSignedIn is returned by protected commands when no usable session
// exists.
var ErrNotSignedIn = errors.New("not signed in: run `newsletter login`")

// SessionError explains why a protected command refused to run.
type SessionError struct {
	Reason session.Reason
	Err    error
}

func (e *SessionError) Error() string {
	switch e.Reason {
	case session.ReasonExpired:
		return ErrNotSignedIn.Error() + " (session expired)"
	case session.ReasonRejected:
		return ErrNotSignedIn.Error() + " (session rejected by the server)"
	case session.ReasonTransientFailure:
		return fmt.Sprintf("could not verify session, try again later: %v", e.Err)
	default:
		return ErrNotSignedIn.Error()
	}
}

// Is matches ErrNotSignedIn unless the session was only unverifiable.
func (e *SessionError) Is(target error) bool {
	return target == ErrNotSignedIn && e.Reason != session.ReasonTransientFailure
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// requireSession runs the route guard for a protected command. Commands
// that get an error back must not contact the backend.
func requireSession(cmd *cobra.Command) error {
	guard := mgr.NewGuard(nil)
	res, err := guard.Resolve(cmd.Context())
	if err != nil {
		return err
	}
	if res.Verdict == session.Authenticated {
		return nil
	}
	logger.Debug("guard refused", "command", cmd.CommandPath(), "reason", res.Reason)
	return &SessionError{Reason: res.Reason, Err: res.Err}
}
