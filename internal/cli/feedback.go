package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/core/service"
)

func newFeedbackCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Work with feedback",
		Long: `List feedback and, as an employee, acknowledge or comment on it.

Subcommands:
  list            List the feedback visible to you
  show            Show one piece of feedback
  edit            Change feedback you gave
  ack             Acknowledge feedback
  unack           Withdraw an acknowledgement
  comment         Comment on feedback
  comment-edit    Replace your comment
  comment-delete  Remove your comment
  tags            List the known tags
  stats           Show dashboard counts
  managers        List the managers you can ask
  request         Ask a manager for feedback`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newFeedbackListCmd(opts),
		newFeedbackShowCmd(opts),
		newFeedbackEditCmd(opts),
		newFeedbackMutateCmd(opts, "ack", "Acknowledge feedback", (*service.FeedbackService).Acknowledge),
		newFeedbackMutateCmd(opts, "unack", "Withdraw an acknowledgement", (*service.FeedbackService).Unacknowledge),
		newFeedbackCommentCmd(opts, "comment", "Comment on feedback you received", (*service.FeedbackService).Comment),
		newFeedbackCommentCmd(opts, "comment-edit", "Replace your comment on feedback", (*service.FeedbackService).UpdateComment),
		newFeedbackMutateCmd(opts, "comment-delete", "Remove your comment from feedback", (*service.FeedbackService).DeleteComment),
		newFeedbackTagsCmd(opts),
		newFeedbackStatsCmd(opts),
		newFeedbackManagersCmd(opts),
		newFeedbackRequestCmd(opts),
	)
	return cmd
}

// parseFilter checks the list flags the same way the portal checks its query.
func parseFilter(tab, sentiment string, employeeID int64, search string, tags []string) (service.Filter, error) {
	f := service.Filter{
		Tab:        service.Tab(tab),
		Sentiment:  domain.Sentiment(sentiment),
		EmployeeID: employeeID,
		Search:     search,
		Tags:       tags,
	}
	switch f.Tab {
	case "", service.TabAll, service.TabPending, service.TabAcknowledged:
	default:
		return f, fmt.Errorf("--tab must be one of all, pending, acknowledged; got %q", tab)
	}
	if err := checkSentiment(f.Sentiment); err != nil {
		return f, err
	}
	return f, nil
}

func checkSentiment(s domain.Sentiment) error {
	switch s {
	case "", domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative:
		return nil
	}
	return fmt.Errorf("--sentiment must be one of positive, neutral, negative; got %q", s)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func newFeedbackListCmd(opts *options) *cobra.Command {
	var (
		tab, sentiment, search string
		employeeID             int64
		tags                   []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the feedback visible to you",
		Long: `List feedback, newest first. Managers see what they gave, employees
see what they received.

Employees also see anonymous feedback addressed to others. Repeating --tag
keeps only feedback carrying every tag given.

Examples:
  feedbackctl feedback list --tab pending
  feedbackctl feedback list --tag delivery --tag growth
  feedbackctl feedback list --sentiment negative -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseFilter(tab, sentiment, employeeID, search, tags)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.requireUser(ctx); err != nil {
					return err
				}
				list, err := a.feedback.List(ctx, f)
				if err != nil {
					return err
				}
				return render(out(cmd), opts.output, list, func(w io.Writer) error {
					return writeFeedback(w, list)
				})
			})
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&tab, "tab", "", "all, pending or acknowledged")
	fl.StringVar(&sentiment, "sentiment", "", "positive, neutral or negative")
	fl.Int64Var(&employeeID, "employee", 0, "only feedback for this employee id")
	fl.StringVarP(&search, "search", "q", "", "free-text search over strengths and improvements")
	fl.StringArrayVar(&tags, "tag", nil, "only feedback carrying this tag (repeatable)")
	return cmd
}

func newFeedbackShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one piece of feedback",
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
				fb, err := a.feedback.Get(ctx, id)
				if err != nil {
					return err
				}
				return render(out(cmd), opts.output, fb, func(w io.Writer) error {
					return writeFeedback(w, []domain.Feedback{*fb})
				})
			})
		},
	}
}

func newFeedbackEditCmd(opts *options) *cobra.Command {
	var (
		in        domain.FeedbackInput
		sentiment string
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change feedback you gave",
		Long: `Change feedback you gave. Only the fields passed as flags change; --tag
replaces the whole tag set.

Examples:
  feedbackctl feedback edit 3 --sentiment neutral
  feedbackctl feedback edit 3 --tag delivery --tag growth`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in.Sentiment = domain.Sentiment(sentiment)
			if err := checkSentiment(in.Sentiment); err != nil {
				return err
			}
			fl := cmd.Flags()
			if !fl.Changed("strengths") && !fl.Changed("improvements") && !fl.Changed("sentiment") && !fl.Changed("tag") {
				return fmt.Errorf("nothing to change; pass --strengths, --improvements, --sentiment or --tag")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.requireUser(ctx); err != nil {
					return err
				}
				fb, err := a.feedback.Update(ctx, id, in)
				if err != nil {
					return err
				}
				return render(out(cmd), opts.output, fb, func(w io.Writer) error {
					return writeFeedback(w, []domain.Feedback{*fb})
				})
			})
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&in.Strengths, "strengths", "", "new strengths text")
	fl.StringVar(&in.Improvements, "improvements", "", "new improvements text")
	fl.StringVar(&sentiment, "sentiment", "", "positive, neutral or negative")
	fl.StringArrayVar(&in.Tags, "tag", nil, "tag to set (repeatable)")
	return cmd
}

type mutateFunc func(s *service.FeedbackService, ctx context.Context, id int64) ([]domain.Feedback, error)

func newFeedbackMutateCmd(opts *options, use, short string, mutate mutateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
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
				list, err := mutate(a.feedback, ctx, id)
				if err != nil {
					return err
				}
				return render(out(cmd), opts.output, list, func(w io.Writer) error {
					return writeFeedback(w, list)
				})
			})
		},
	}
}

type commentFunc func(s *service.FeedbackService, ctx context.Context, id int64, comment string) ([]domain.Feedback, error)

func newFeedbackCommentCmd(opts *options, use, short string, comment commentFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID TEXT...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.requireUser(ctx); err != nil {
					return err
				}
				list, err := comment(a.feedback, ctx, id, text)
				if err != nil {
					return err
				}
				return render(out(cmd), opts.output, list, func(w io.Writer) error {
					return writeFeedback(w, list)
				})
			})
		},
	}
}

func newFeedbackTagsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the known tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.requireUser(ctx); err != nil {
					return err
				}
				tags, err := a.feedback.Tags(ctx)
				if err != nil {
					return err
				}
				return render(out(cmd), opts.output, tags, func(w io.Writer) error {
					return writeTags(w, tags)
				})
			})
		},
	}
}

func newFeedbackManagersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "managers",
		Short: "List the managers you can ask for feedback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.requireUser(ctx); err != nil {
					return err
				}
				list, err := a.feedback.Managers(ctx)
				if err != nil {
					return err
				}
				return render(out(cmd), opts.output, list, func(w io.Writer) error {
					return writeUsers(w, list)
				})
			})
		},
	}
}

func newFeedbackStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.requireUser(ctx); err != nil {
					return err
				}
				stats, err := a.feedback.Stats(ctx)
				if err != nil {
					return err
				}
				return render(out(cmd), opts.output, stats, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s %d  %s %d  %s %d  %s %d  %s %d\n",
						labelStyle.Render("total"), stats.Total,
						labelStyle.Render("positive"), stats.Positive,
						labelStyle.Render("neutral"), stats.Neutral,
						labelStyle.Render("negative"), stats.Negative,
						labelStyle.Render("acknowledged"), stats.Acknowledged)
					return err
				})
			})
		},
	}
}

func newFeedbackRequestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "request MANAGER_ID",
		Short: "Ask a manager for feedback",
		Long: `Ask a manager for feedback. Only one request may be pending at a time.

Examples:
  feedbackctl feedback request 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			managerID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.requireUser(ctx); err != nil {
					return err
				}
				req, err := a.feedback.RequestFeedback(ctx, managerID)
				if err != nil {
					return err
				}
				return render(out(cmd), opts.output, req, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s #%d to manager %d\n", successStyle.Render("Requested"), req.ID, req.ManagerID)
					return err
				})
			})
		},
	}
}
