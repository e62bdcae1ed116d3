package ports

import (
	"context"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

// NotificationAPI covers the notification endpoints polled by the bell.
type NotificationAPI interface {
	ListNotifications(ctx context.Context) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id int64) (*domain.Notification, error)
	MarkAllRead(ctx context.Context) error
}
