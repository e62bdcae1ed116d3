package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

func (c *Client) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	var list []domain.Notification
	if err := c.Do(ctx, http.MethodGet, "/notifications/", nil, &list); err != nil {
		return nil, err
	}
	if err := checkEach(c, "notifications", list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) MarkRead(ctx context.Context, id int64) (*domain.Notification, error) {
	var n domain.Notification
	if err := c.Do(ctx, http.MethodPost, fmt.Sprintf("/notifications/%d/read", id), nil, &n); err != nil {
		return nil, err
	}
	if err := c.check("notification", &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkAllRead expects 204 No Content.
func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/notifications/read-all", nil, nil)
}
