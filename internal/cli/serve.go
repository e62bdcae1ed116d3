package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/feedbackhub/feedback-client/internal/api"
	"github.com/feedbackhub/feedback-client/internal/core/service"
	"github.com/feedbackhub/feedback-client/internal/infrastructure/http/handlers"
	"github.com/feedbackhub/feedback-client/internal/infrastructure/poll"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		addr            string
		shutdownTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local portal",
		Long: `Serve the local portal: guarded page view models, a JSON API over the
stored session, health probes, metrics and API docs.

The session is validated in the background; pages answer with a
placeholder until that check completes.

Endpoints:
  /                 Dashboard for the logged-in role
  /api/...          Session and feature API
  /health           Liveness probe
  /health/ready     Token store and backend reachability
  /metrics          Prometheus metrics
  /swagger/         API documentation

Examples:
  feedbackctl serve
  feedbackctl serve --addr 127.0.0.1:4000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = opts.cfg.Portal.Addr
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return runPortal(ctx, cmd, opts, a, addr, shutdownTimeout)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default PORTAL_ADDR)")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown")
	return cmd
}

func runPortal(ctx context.Context, cmd *cobra.Command, opts *options, a *app, addr string, shutdownTimeout time.Duration) error {
	log := opts.log.With().Str("component", "portal").Logger()

	e := api.NewRouter(api.Deps{
		Session:       a.session,
		Guard:         service.NewGuard(service.DefaultRoutes()),
		Feedback:      a.feedback,
		Notifications: a.notifications,
		Checks: map[string]handlers.Pinger{
			"token_store": a.tokens,
			"backend":     a.gateway,
		},
		Log: log,
	})

	go a.session.Bootstrap(ctx)

	sched := poll.NewScheduler(opts.log,
		poll.Task{Name: "notifications", Interval: opts.cfg.Poll.Notifications, Run: a.notifications.Poll},
		poll.Task{Name: "feedback_requests", Interval: opts.cfg.Poll.Requests, Run: a.feedback.PollRequests},
	)
	go func() {
		select {
		case <-a.session.Ready():
			sched.Start(ctx)
		case <-ctx.Done():
		}
	}()
	defer sched.Stop()

	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	fmt.Fprintf(out(cmd), "Portal listening on http://%s (backend %s)\n", addr, a.gateway.BaseURL())

	select {
	case err := <-serverErr:
		return fmt.Errorf("portal: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("portal shutdown: %w", err)
	}
	return nil
}
