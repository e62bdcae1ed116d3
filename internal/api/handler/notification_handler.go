package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

// Inbox is the notification poller's read and write surface.
type Inbox interface {
	Inbox() domain.Inbox
	Poll(ctx context.Context) error
	MarkRead(ctx context.Context, id int64) (domain.Inbox, error)
	MarkAllRead(ctx context.Context) (domain.Inbox, error)
}

type NotificationHandler struct {
	inbox Inbox
}

func NewNotificationHandler(inbox Inbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

// List returns the last polled inbox; ?refresh=true polls first.
//
// @Summary      Notifications
// @Tags         notifications
// @Produce      json
// @Param        refresh  query     bool  false  "Poll the backend before answering"
// @Success      200      {object}  domain.Inbox
// @Failure      401      {object}  failureResponse
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	if c.QueryParam("refresh") == "true" {
		if err := h.inbox.Poll(c.Request().Context()); err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, h.inbox.Inbox())
}

// MarkRead marks one notification as read and returns the refreshed inbox.
//
// @Summary      Mark notification read
// @Tags         notifications
// @Produce      json
// @Param        id   path      int  true  "Notification ID"
// @Success      200  {object}  domain.Inbox
// @Failure      404  {object}  failureResponse
// @Router       /api/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	inbox, err := h.inbox.MarkRead(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inbox)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	inbox, err := h.inbox.MarkAllRead(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inbox)
}
