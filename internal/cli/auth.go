package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

func newLoginCmd(opts *options) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session",
		Long: `Log in with username and password. The access token is kept in the
configured token store so later commands run as the same user.

Missing credentials are prompted for when stdin is a terminal.

Examples:
  feedbackctl login --username amy
  feedbackctl login --username amy --password password123`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (username == "" || password == "") && interactive() {
				if err := promptCredentials(&username, &password); err != nil {
					return err
				}
			}
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				user, err := a.session.Login(ctx, username, password)
				if err != nil {
					var ae *domain.AuthError
					if errors.As(err, &ae) {
						return fmt.Errorf("login failed: %s", ae.Reason)
					}
					return err
				}
				return render(out(cmd), opts.output, user, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s %s (%s)\n", successStyle.Render("Logged in as"), user.Username, user.Role)
					return err
				})
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				a.session.Logout(ctx)
				_, err := fmt.Fprintln(out(cmd), "Logged out")
				return err
			})
		},
	}
}

func newDeleteAccountCmd(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-account",
		Short: "Delete your account and log out",
		Long: `Delete the logged-in account on the backend, together with the feedback
that names it, and forget the stored session. This cannot be undone.

Examples:
  feedbackctl delete-account --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				user, err := a.requireUser(ctx)
				if err != nil {
					return err
				}
				if !yes {
					if !interactive() {
						return errors.New("refusing to delete the account without --yes")
					}
					if yes, err = confirmDeletion(user.Username); err != nil {
						return err
					}
					if !yes {
						_, err := fmt.Fprintln(out(cmd), "Account kept")
						return err
					}
				}
				if err := a.session.DeleteAccount(ctx); err != nil {
					return err
				}
				_, err = fmt.Fprintf(out(cmd), "%s %s\n", successStyle.Render("Deleted account"), user.Username)
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newWhoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				user, err := a.requireUser(ctx)
				if err != nil {
					return err
				}
				return render(out(cmd), opts.output, user, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, userCard(user))
					return err
				})
			})
		},
	}
}

func newRegisterCmd(opts *options) *cobra.Command {
	var in domain.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account on the backend. Registering does not log in; run
'feedbackctl login' afterwards.

Examples:
  feedbackctl register --name "Dana Lee" --username dana --email dana@example.com --role employee`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interactive() {
				if err := promptRegistration(&in); err != nil {
					return err
				}
			}
			if in.Role == "" {
				in.Role = domain.RoleEmployee
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				user, err := a.session.Register(ctx, in)
				if err != nil {
					var ae *domain.AuthError
					if errors.As(err, &ae) {
						return fmt.Errorf("registration failed: %s", ae.Reason)
					}
					return err
				}
				return render(out(cmd), opts.output, user, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s %s; log in with 'feedbackctl login -u %s'\n",
						successStyle.Render("Registered"), user.Username, user.Username)
					return err
				})
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "full name")
	f.StringVarP(&in.Username, "username", "u", "", "username (3-20 characters, no spaces)")
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVarP(&in.Password, "password", "p", "", "password (prompted when omitted)")
	f.StringVar(&in.Role, "role", "", "manager or employee (default employee)")
	return cmd
}
