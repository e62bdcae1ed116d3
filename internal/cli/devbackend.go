package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/feedbackhub/feedback-client/internal/devbackend"
)

func newDevBackendCmd(opts *options) *cobra.Command {
	var (
		addr     string
		tokenTTL time.Duration
		noSeed   bool
	)

	cmd := &cobra.Command{
		Use:   "dev-backend",
		Short: "Run an in-memory backend for local development",
		Long: fmt.Sprintf(`Run an in-memory stand-in for the feedback backend. It speaks the same
HTTP contract and forgets everything on exit.

Unless --no-seed is given it starts with a manager (amy) and two employees
(bob, carol), all with password %q.

Examples:
  feedbackctl dev-backend
  FEEDBACK_API_URL=http://127.0.0.1:8000 feedbackctl login -u amy`, devbackend.SeedPassword),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = opts.cfg.Dev.Addr
			}
			srv, err := devbackend.New(devbackend.Config{
				JWTSecret: opts.cfg.Dev.JWTSecret,
				TokenTTL:  tokenTTL,
				Seed:      !noSeed,
			}, opts.log)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			serverErr := make(chan error, 1)
			go func() {
				if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()
			fmt.Fprintf(out(cmd), "Dev backend listening on http://%s\n", addr)

			select {
			case err := <-serverErr:
				return fmt.Errorf("dev backend: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default DEV_BACKEND_ADDR)")
	cmd.Flags().DurationVar(&tokenTTL, "token-ttl", 0, "access token lifetime (default 24h)")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "start without demo accounts")
	return cmd
}
