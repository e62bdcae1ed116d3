package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/core/ports"
	"github.com/feedbackhub/feedback-client/internal/pkg/metrics"
)

// NotificationService keeps the latest inbox for the logged-in user.
type NotificationService struct {
	api     ports.NotificationAPI
	session SnapshotSource
	log     zerolog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	inbox domain.Inbox
	owner int64
}

func NewNotificationService(api ports.NotificationAPI, session SnapshotSource, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		api:     api,
		session: session,
		log:     log.With().Str("component", "notifications").Logger(),
		now:     time.Now,
	}
}

// Poll refreshes the inbox. With nobody logged in the inbox is emptied and
// domain.ErrSkipped is returned without contacting the backend.
func (s *NotificationService) Poll(ctx context.Context) error {
	u := s.session.Snapshot().User
	if u == nil {
		s.store(0, domain.Inbox{})
		return domain.ErrSkipped
	}

	items, err := s.api.ListNotifications(ctx)
	if err != nil {
		return fmt.Errorf("poll notifications: %w", err)
	}
	inbox := domain.NewInbox(items, s.now())
	s.store(u.ID, inbox)
	s.log.Debug().Int("unread", inbox.Unread).Int("total", len(items)).Msg("notifications refreshed")
	return nil
}

// Inbox returns the last polled inbox. It is empty when the session user has
// changed since that poll.
func (s *NotificationService) Inbox() domain.Inbox {
	u := s.session.Snapshot().User

	s.mu.RLock()
	defer s.mu.RUnlock()
	if u == nil || u.ID != s.owner {
		return domain.Inbox{Items: []domain.Notification{}}
	}
	items := make([]domain.Notification, len(s.inbox.Items))
	copy(items, s.inbox.Items)
	return domain.Inbox{Items: items, Unread: s.inbox.Unread, FetchedAt: s.inbox.FetchedAt}
}

// MarkRead marks one notification read and refreshes the inbox.
func (s *NotificationService) MarkRead(ctx context.Context, id int64) (domain.Inbox, error) {
	if s.session.Snapshot().User == nil {
		return domain.Inbox{}, domain.ErrNotAuthenticated
	}
	if _, err := s.api.MarkRead(ctx, id); err != nil {
		return domain.Inbox{}, fmt.Errorf("mark notification %d read: %w", id, err)
	}
	if err := s.Poll(ctx); err != nil {
		return domain.Inbox{}, err
	}
	return s.Inbox(), nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context) (domain.Inbox, error) {
	if s.session.Snapshot().User == nil {
		return domain.Inbox{}, domain.ErrNotAuthenticated
	}
	if err := s.api.MarkAllRead(ctx); err != nil {
		return domain.Inbox{}, fmt.Errorf("mark all notifications read: %w", err)
	}
	if err := s.Poll(ctx); err != nil {
		return domain.Inbox{}, err
	}
	return s.Inbox(), nil
}

func (s *NotificationService) store(owner int64, inbox domain.Inbox) {
	s.mu.Lock()
	s.owner = owner
	s.inbox = inbox
	s.mu.Unlock()
	metrics.UnreadNotifications.Set(float64(inbox.Unread))
}
