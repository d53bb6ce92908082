package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/newsletter/internal/config"
	"github.com/me/newsletter/internal/logging"
	"github.com/me/newsletter/internal/session"
	"github.com/me/newsletter/pkg/newsapi"
)

var (
	flagAPI       string
	flagStateDir  string
	flagRetries   int
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	mgr    *session.Manager
)

// NewRootCmd creates the root cobra command for the newsletter CLI.
// Flag defaults come from the config file, .env and NEWSLETTER_* variables.
func NewRootCmd() *cobra.Command {
	cfg, loadErr := config.NewLoader().Client()
	if loadErr != nil {
		cfg = config.DefaultClientConfig()
	}

	root := &cobra.Command{
		Use:   "newsletter",
		Short: "Newsletter reader",
		Long:  "Sign in to the newsletter backend and read the news from your terminal.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if loadErr != nil {
				return loadErr
			}
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(flagLogLevel), flagLogFormat, cmd.ErrOrStderr())

			cfg.APIURL = flagAPI
			cfg.StateDir = flagStateDir
			cfg.MaxRetries = flagRetries

			api := newsapi.NewClient(cfg.API(), nil, logger)
			kv := session.NewFileKV(cfg.SessionPath())
			mgr = session.NewManager(session.NewStore(kv, logger), api, logger)
			logger.Debug("session bound", "api", cfg.APIURL, "state", kv.Path())
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagAPI, "api", cfg.APIURL, "Backend URL (or "+config.EnvAPIURL+" env)")
	root.PersistentFlags().StringVar(&flagStateDir, "state-dir", cfg.StateDir, "Directory holding the session file (or "+config.EnvStateDir+" env)")
	root.PersistentFlags().IntVar(&flagRetries, "retries", cfg.MaxRetries, "Retries for read requests")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")

	root.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newStatusCmd(),
		newNewsCmd(),
		newCategoriesCmd(),
		newProfileCmd(),
		newPreferencesCmd(),
	)

	return root
}

// Execute runs the command tree and returns the process exit code. It is
// the only place that reacts to the backend rejecting the credential: the
// stored session is dropped and the user is told to sign in again. Guard
// refusals already carry their own explanation and are printed as is.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	mgr = nil
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var sessErr *SessionError
	if errors.As(err, &sessErr) {
		fmt.Fprintln(stderr, "Error:", sessErr)
		return 1
	}
	if mgr != nil && mgr.HandleUnauthorized(ctx, err) {
		fmt.Fprintln(stderr, "Your session is no longer valid. Run `newsletter login` to sign in again.")
		return 1
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

// Main is the entry point used by cmd/cli.
func Main(ctx context.Context) int {
	return Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
