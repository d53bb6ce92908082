package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/me/newsletter/internal/session"
	"github.com/me/newsletter/internal/validate"
	"github.com/me/newsletter/pkg/model"
	"github.com/me/newsletter/pkg/newsapi"
)

// prompter reads missing form values from the command's stdin. Labels are
// only printed when stdin is a terminal.
type prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &prompter{in: bufio.NewReader(in), out: cmd.ErrOrStderr(), interactive: interactive}
}

// fill sets *value from stdin when it is empty.
func (p *prompter) fill(label string, value *string) error {
	if *value != "" {
		return nil
	}
	if p.interactive {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	*value = strings.TrimRight(line, "\r\n")
	return nil
}

func newLoginCmd() *cobra.Command {
	var form validate.SignInForm

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the newsletter",
		Long:  "Sign in with email and password. The token and user are stored in the state directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			if err := p.fill("Email", &form.Email); err != nil {
				return err
			}
			if err := p.fill("Password", &form.Password); err != nil {
				return err
			}
			if err := validate.Struct(&form); err != nil {
				return err
			}

			resp, err := mgr.Login(cmd.Context(), model.SignInRequest{Email: form.Email, Password: form.Password})
			if err != nil {
				switch newsapi.StatusCode(err) {
				case 400, 401:
					return errors.New("invalid email or password")
				}
				return fmt.Errorf("sign in: %w", err)
			}

			name := form.Email
			if resp.User != nil {
				name = resp.User.DisplayName()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Email, "email", "", "Account email (prompted if omitted)")
	cmd.Flags().StringVar(&form.Password, "password", "", "Account password (prompted if omitted)")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var form validate.SignUpForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			for _, f := range []struct {
				label string
				value *string
			}{
				{"Name", &form.Name},
				{"Email", &form.Email},
				{"Password", &form.Password},
				{"Confirm password", &form.ConfirmPassword},
			} {
				if err := p.fill(f.label, f.value); err != nil {
					return err
				}
			}
			if err := validate.Struct(&form); err != nil {
				return err
			}

			user, err := mgr.API().SignUp(cmd.Context(), model.SignUpRequest{
				Name:     form.Name,
				Email:    form.Email,
				Password: form.Password,
			})
			if err != nil {
				var httpErr *newsapi.HTTPError
				if errors.As(err, &httpErr) && httpErr.StatusCode < 500 {
					if httpErr.Body != nil && httpErr.Body.Text() != "" {
						return errors.New(httpErr.Body.Text())
					}
					return httpErr
				}
				return fmt.Errorf("create account: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s. Run `newsletter login` to sign in.\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (at least 6 characters)")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "Password again")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := mgr.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("sign out: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the cached user (no network)",
		RunE: func(cmd *cobra.Command, args []string) error {
			user := mgr.User(cmd.Context())
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.DisplayName(), user.Email)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the stored session is still valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := mgr.Validator().Validate(cmd.Context())
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Session: %s (%s)\n", res.Verdict, res.Reason)
			if res.Reason.Cleared() {
				fmt.Fprintln(out, "  The stored credential was removed.")
			}
			if user := mgr.User(cmd.Context()); user != nil {
				fmt.Fprintf(out, "  User:   %s <%s>\n", user.DisplayName(), user.Email)
			}
			if res.Err != nil && res.Reason == session.ReasonTransientFailure {
				fmt.Fprintf(out, "  Error:  %v\n", res.Err)
			}
			return nil
		},
	}
}
