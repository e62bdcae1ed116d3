// Package cli implements the feedbackctl command tree.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/feedbackhub/feedback-client/internal/pkg/config"
	"github.com/feedbackhub/feedback-client/pkg/logger"
)

// options are the global flags shared by every command.
type options struct {
	cfg    *config.Config
	output string
	log    zerolog.Logger
}

// NewRootCmd builds the feedbackctl command tree over cfg. Flags override
// the matching environment settings.
func NewRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{cfg: cfg, log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "feedbackctl",
		Short: "Client for the feedback service",
		Long: `feedbackctl talks to the feedback backend on behalf of one user.

It keeps the login session in a token store (a local file by default, or
Redis/MongoDB), lists and acknowledges feedback, follows notifications, and
can serve a local portal that exposes the same session over HTTP.

Examples:
  feedbackctl login --username amy
  feedbackctl feedback list --tab pending
  feedbackctl notifications --watch
  feedbackctl serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch opts.output {
			case outputText, outputJSON, outputYAML:
			default:
				return fmt.Errorf("--output must be one of text, json, yaml; got %q", opts.output)
			}
			opts.log = logger.Init(logger.Options{
				Level:   cfg.LogLevel,
				Pretty:  cfg.LogPretty,
				Output:  cmd.ErrOrStderr(),
				Service: "feedbackctl",
			})
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "backend base address (FEEDBACK_API_URL)")
	pf.StringVar(&cfg.Token.Store, "token-store", cfg.Token.Store, "where the session is kept: file, redis or mongo (TOKEN_STORE)")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn or error (LOG_LEVEL)")
	pf.StringVarP(&opts.output, "output", "o", outputText, "output format: text, json or yaml")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newRegisterCmd(opts),
		newDeleteAccountCmd(opts),
		newFeedbackCmd(opts),
		newNotificationsCmd(opts),
		newServeCmd(opts),
		newDevBackendCmd(opts),
	)
	return root
}

// ExecuteContext runs the command tree with ctx as the root context.
func ExecuteContext(ctx context.Context, cfg *config.Config) error {
	return NewRootCmd(cfg).ExecuteContext(ctx)
}

// withApp wires the services for one command run and closes them afterwards.
func withApp(cmd *cobra.Command, opts *options, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if opts.cfg.Token.Store != config.StoreFile && opts.cfg.Token.Store != config.StoreRedis && opts.cfg.Token.Store != config.StoreMongo {
		return fmt.Errorf("--token-store must be one of file, redis, mongo; got %q", opts.cfg.Token.Store)
	}
	a, err := newApp(ctx, opts.cfg, opts.log)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
