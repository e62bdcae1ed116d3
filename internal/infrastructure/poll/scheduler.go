package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/pkg/metrics"
)

const defaultInterval = 30 * time.Second

// Task is one periodic job. Run returning domain.ErrSkipped counts as a skip,
// not a failure.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
	// Immediate runs the task once at start instead of waiting a full interval.
	Immediate bool
}

// Scheduler runs each task on its own fixed-interval ticker. Tasks never
// overlap with themselves; a slow run delays that task's next tick only.
type Scheduler struct {
	tasks []Task
	log   zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a Scheduler for tasks. A non-positive Interval uses
// defaultInterval.
func NewScheduler(log zerolog.Logger, tasks ...Task) *Scheduler {
	normalized := make([]Task, len(tasks))
	for i, t := range tasks {
		if t.Interval <= 0 {
			t.Interval = defaultInterval
		}
		normalized[i] = t
	}
	return &Scheduler{
		tasks: normalized,
		log:   log.With().Str("component", "poller").Logger(),
	}
}

// Start launches one goroutine per task. Tasks stop when ctx is cancelled or
// Stop is called. Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.runTask(ctx, t)
	}
}

// Stop cancels all tasks and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}

func (s *Scheduler) runTask(ctx context.Context, t Task) {
	defer s.wg.Done()

	if t.Immediate {
		s.runOnce(ctx, t)
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, t)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, t Task) {
	err := t.Run(ctx)
	switch {
	case err == nil:
		metrics.PollsTotal.WithLabelValues(t.Name, "ok").Inc()
	case errors.Is(err, domain.ErrSkipped):
		metrics.PollsTotal.WithLabelValues(t.Name, "skipped").Inc()
	case ctx.Err() != nil:
		// shutting down
	default:
		metrics.PollsTotal.WithLabelValues(t.Name, "error").Inc()
		s.log.Warn().Err(err).Str("task", t.Name).Msg("poll failed")
	}
}
