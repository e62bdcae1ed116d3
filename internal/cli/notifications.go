package cli

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/infrastructure/poll"
)

func newNotificationsCmd(opts *options) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "Show your notifications",
		Long: `Show your notifications. With --watch the inbox is polled until
interrupted and printed whenever the unread count changes.

Examples:
  feedbackctl notifications
  feedbackctl notifications --watch --interval 10s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.requireUser(ctx); err != nil {
					return err
				}
				if err := a.notifications.Poll(ctx); err != nil {
					return err
				}
				inbox := a.notifications.Inbox()
				if err := printInbox(cmd, opts, inbox); err != nil {
					return err
				}
				if !watch {
					return nil
				}
				return watchInbox(ctx, cmd, opts, a, interval, inbox.Unread)
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep polling until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default NOTIFICATION_POLL_INTERVAL)")
	cmd.AddCommand(newNotificationReadCmd(opts), newNotificationReadAllCmd(opts))
	return cmd
}

func printInbox(cmd *cobra.Command, opts *options, inbox domain.Inbox) error {
	return render(out(cmd), opts.output, inbox, func(w io.Writer) error {
		return writeInbox(w, inbox)
	})
}

func watchInbox(ctx context.Context, cmd *cobra.Command, opts *options, a *app, interval time.Duration, lastUnread int) error {
	if interval <= 0 {
		interval = opts.cfg.Poll.Notifications
	}

	var (
		mu      sync.Mutex
		printed error
	)
	sched := poll.NewScheduler(opts.log, poll.Task{
		Name:     "notifications",
		Interval: interval,
		Run: func(ctx context.Context) error {
			if err := a.notifications.Poll(ctx); err != nil {
				return err
			}
			inbox := a.notifications.Inbox()

			mu.Lock()
			defer mu.Unlock()
			if inbox.Unread == lastUnread || printed != nil {
				return nil
			}
			lastUnread = inbox.Unread
			printed = printInbox(cmd, opts, inbox)
			return nil
		},
	})
	sched.Start(ctx)
	<-ctx.Done()
	sched.Stop()

	mu.Lock()
	defer mu.Unlock()
	return printed
}

func newNotificationReadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "read ID",
		Short: "Mark one notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.requireUser(ctx); err != nil {
					return err
				}
				inbox, err := a.notifications.MarkRead(ctx, id)
				if err != nil {
					return err
				}
				return printInbox(cmd, opts, inbox)
			})
		},
	}
}

func newNotificationReadAllCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.requireUser(ctx); err != nil {
					return err
				}
				inbox, err := a.notifications.MarkAllRead(ctx)
				if err != nil {
					return err
				}
				return printInbox(cmd, opts, inbox)
			})
		},
	}
}
