package ports

import (
	"context"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

// FeedbackAPI covers the feedback, feedback-request and user-directory endpoints.
type FeedbackAPI interface {
	ListFeedback(ctx context.Context) ([]domain.Feedback, error)
	GetFeedback(ctx context.Context, id int64) (*domain.Feedback, error)
	CreateFeedback(ctx context.Context, in domain.FeedbackInput) (*domain.Feedback, error)
	UpdateFeedback(ctx context.Context, id int64, in domain.FeedbackInput) (*domain.Feedback, error)
	DeleteFeedback(ctx context.Context, id int64) error
	Acknowledge(ctx context.Context, id int64) (*domain.Feedback, error)
	Unacknowledge(ctx context.Context, id int64) (*domain.Feedback, error)
	Comment(ctx context.Context, id int64, comment string) (*domain.Feedback, error)
	UpdateComment(ctx context.Context, id int64, comment string) (*domain.Feedback, error)
	DeleteComment(ctx context.Context, id int64) (*domain.Feedback, error)
	Tags(ctx context.Context) ([]domain.Tag, error)
	Stats(ctx context.Context) (*domain.DashboardStats, error)

	ListRequests(ctx context.Context) ([]domain.FeedbackRequest, error)
	CreateRequest(ctx context.Context, managerID int64) (*domain.FeedbackRequest, error)
	CompleteRequest(ctx context.Context, id int64) (*domain.FeedbackRequest, error)

	Employees(ctx context.Context) ([]domain.User, error)
	Managers(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, in domain.ProfileUpdate) (*domain.User, error)
}
