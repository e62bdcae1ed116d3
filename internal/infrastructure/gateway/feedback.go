package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

const (
	feedbackPath = "/feedback/"
	requestsPath = "/feedback/feedback-requests/"
	tagsPath     = "/feedback/tags/"
)

func feedbackItem(id int64, suffix string) string {
	return fmt.Sprintf("/feedback/%d%s", id, suffix)
}

func (c *Client) ListFeedback(ctx context.Context) ([]domain.Feedback, error) {
	var list []domain.Feedback
	if err := c.Do(ctx, http.MethodGet, feedbackPath, nil, &list); err != nil {
		return nil, err
	}
	if err := checkEach(c, "feedback", list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetFeedback(ctx context.Context, id int64) (*domain.Feedback, error) {
	return c.feedbackCall(ctx, http.MethodGet, feedbackItem(id, ""), nil)
}

func (c *Client) CreateFeedback(ctx context.Context, in domain.FeedbackInput) (*domain.Feedback, error) {
	return c.feedbackCall(ctx, http.MethodPost, feedbackPath, in)
}

func (c *Client) UpdateFeedback(ctx context.Context, id int64, in domain.FeedbackInput) (*domain.Feedback, error) {
	return c.feedbackCall(ctx, http.MethodPut, feedbackItem(id, ""), in)
}

func (c *Client) DeleteFeedback(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, feedbackItem(id, ""), nil, nil)
}

func (c *Client) Acknowledge(ctx context.Context, id int64) (*domain.Feedback, error) {
	return c.feedbackCall(ctx, http.MethodPost, feedbackItem(id, "/acknowledge"), nil)
}

func (c *Client) Unacknowledge(ctx context.Context, id int64) (*domain.Feedback, error) {
	return c.feedbackCall(ctx, http.MethodPost, feedbackItem(id, "/unacknowledge"), nil)
}

type commentBody struct {
	Comment string `json:"comment"`
}

func (c *Client) Comment(ctx context.Context, id int64, comment string) (*domain.Feedback, error) {
	return c.feedbackCall(ctx, http.MethodPost, feedbackItem(id, "/comment"), commentBody{Comment: comment})
}

func (c *Client) UpdateComment(ctx context.Context, id int64, comment string) (*domain.Feedback, error) {
	return c.feedbackCall(ctx, http.MethodPut, feedbackItem(id, "/comment"), commentBody{Comment: comment})
}

func (c *Client) DeleteComment(ctx context.Context, id int64) (*domain.Feedback, error) {
	return c.feedbackCall(ctx, http.MethodDelete, feedbackItem(id, "/comment"), nil)
}

// Tags lists every tag known to the backend.
func (c *Client) Tags(ctx context.Context) ([]domain.Tag, error) {
	var list []domain.Tag
	if err := c.Do(ctx, http.MethodGet, tagsPath, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) feedbackCall(ctx context.Context, method, path string, in any) (*domain.Feedback, error) {
	var fb domain.Feedback
	if err := c.Do(ctx, method, path, in, &fb); err != nil {
		return nil, err
	}
	if err := c.check("feedback", &fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

func (c *Client) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	var s domain.DashboardStats
	if err := c.Do(ctx, http.MethodGet, "/feedback/dashboard/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) ListRequests(ctx context.Context) ([]domain.FeedbackRequest, error) {
	var list []domain.FeedbackRequest
	if err := c.Do(ctx, http.MethodGet, requestsPath, nil, &list); err != nil {
		return nil, err
	}
	if err := checkEach(c, "feedback requests", list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateRequest(ctx context.Context, managerID int64) (*domain.FeedbackRequest, error) {
	body := struct {
		ManagerID int64 `json:"manager_id"`
	}{ManagerID: managerID}
	return c.requestCall(ctx, http.MethodPost, requestsPath, body)
}

func (c *Client) CompleteRequest(ctx context.Context, id int64) (*domain.FeedbackRequest, error) {
	return c.requestCall(ctx, http.MethodPatch, fmt.Sprintf("%s%d/complete", requestsPath, id), nil)
}

func (c *Client) requestCall(ctx context.Context, method, path string, in any) (*domain.FeedbackRequest, error) {
	var r domain.FeedbackRequest
	if err := c.Do(ctx, method, path, in, &r); err != nil {
		return nil, err
	}
	if err := c.check("feedback request", &r); err != nil {
		return nil, err
	}
	return &r, nil
}
