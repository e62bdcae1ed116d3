package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/core/ports"
)

// SnapshotSource is the read side of the session, as needed by services that
// behave differently per role.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
}

// Tab splits the feedback list the way the dashboards do.
type Tab string

const (
	TabAll          Tab = "all"
	TabPending      Tab = "pending"
	TabAcknowledged Tab = "acknowledged"
)

// Filter narrows a feedback list. Zero values match everything.
type Filter struct {
	Tab        Tab
	Sentiment  domain.Sentiment
	EmployeeID int64
	Search     string
	// Tags keeps items carrying every listed tag.
	Tags []string
}

// Apply returns the items of list that match f, newest first.
func (f Filter) Apply(list []domain.Feedback) []domain.Feedback {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Feedback, 0, len(list))
	for _, fb := range list {
		switch f.Tab {
		case TabPending:
			if fb.Acknowledged {
				continue
			}
		case TabAcknowledged:
			if !fb.Acknowledged {
				continue
			}
		}
		if f.Sentiment != "" && fb.Sentiment != f.Sentiment {
			continue
		}
		if f.EmployeeID != 0 && fb.EmployeeID != f.EmployeeID {
			continue
		}
		if !fb.HasTags(f.Tags) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(fb.Strengths), search) &&
			!strings.Contains(strings.ToLower(fb.Improvements), search) {
			continue
		}
		out = append(out, fb)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ComputeStats derives dashboard counters from a list.
func ComputeStats(list []domain.Feedback) domain.DashboardStats {
	var s domain.DashboardStats
	for _, fb := range list {
		s.Total++
		switch fb.Sentiment {
		case domain.SentimentPositive:
			s.Positive++
		case domain.SentimentNeutral:
			s.Neutral++
		case domain.SentimentNegative:
			s.Negative++
		}
		if fb.Acknowledged {
			s.Acknowledged++
		}
	}
	return s
}

// FeedbackService wraps the feedback endpoints with the dashboard behaviour:
// role checks, filtering, refresh after mutation and the pending-request cache.
type FeedbackService struct {
	api     ports.FeedbackAPI
	session SnapshotSource
	log     zerolog.Logger

	mu      sync.RWMutex
	pending []domain.FeedbackRequest
}

func NewFeedbackService(api ports.FeedbackAPI, session SnapshotSource, log zerolog.Logger) *FeedbackService {
	return &FeedbackService{
		api:     api,
		session: session,
		log:     log.With().Str("component", "feedback").Logger(),
	}
}

func (s *FeedbackService) currentUser() (*domain.User, error) {
	u := s.session.Snapshot().User
	if u == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return u, nil
}

// List fetches the feedback visible to the current user and applies f.
func (s *FeedbackService) List(ctx context.Context, f Filter) ([]domain.Feedback, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	list, err := s.api.ListFeedback(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return f.Apply(visibleTo(u, list)), nil
}

// visibleTo drops items an employee should not see: only anonymous feedback
// and their own are shown. Managers see whatever the backend returned.
func visibleTo(u *domain.User, list []domain.Feedback) []domain.Feedback {
	if u.IsManager() {
		return list
	}
	out := list[:0]
	for _, fb := range list {
		if fb.Anonymous || fb.EmployeeID == u.ID {
			out = append(out, fb)
		}
	}
	return out
}

// Get returns one item, subject to the same visibility as List.
func (s *FeedbackService) Get(ctx context.Context, id int64) (*domain.Feedback, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	fb, err := s.api.GetFeedback(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get feedback %d: %w", id, err)
	}
	if len(visibleTo(u, []domain.Feedback{*fb})) == 0 {
		return nil, fmt.Errorf("%w: feedback %d", domain.ErrNotFound, id)
	}
	return fb, nil
}

// Tags lists the tags available for labelling and filtering feedback.
func (s *FeedbackService) Tags(ctx context.Context) ([]domain.Tag, error) {
	if _, err := s.currentUser(); err != nil {
		return nil, err
	}
	tags, err := s.api.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// Stats returns the backend's dashboard counters, falling back to counting
// the list when the stats endpoint fails.
func (s *FeedbackService) Stats(ctx context.Context) (domain.DashboardStats, error) {
	if _, err := s.currentUser(); err != nil {
		return domain.DashboardStats{}, err
	}
	stats, err := s.api.Stats(ctx)
	if err == nil {
		return *stats, nil
	}
	s.log.Warn().Err(err).Msg("stats endpoint failed, counting locally")

	list, lerr := s.api.ListFeedback(ctx)
	if lerr != nil {
		return domain.DashboardStats{}, fmt.Errorf("dashboard stats: %w", err)
	}
	return ComputeStats(list), nil
}

// Create records feedback for an employee. A positive requestID marks that
// feedback request as completed once the feedback exists.
func (s *FeedbackService) Create(ctx context.Context, in domain.FeedbackInput, requestID int64) (*domain.Feedback, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if !u.IsManager() {
		return nil, domain.ErrForbidden
	}
	if in.EmployeeID == 0 {
		return nil, fmt.Errorf("%w: employee is required", domain.ErrInvalidInput)
	}

	fb, err := s.api.CreateFeedback(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	if requestID > 0 {
		if _, err := s.api.CompleteRequest(ctx, requestID); err != nil {
			s.log.Warn().Err(err).Int64("request_id", requestID).Msg("feedback saved but request not completed")
		} else {
			s.dropPending(requestID)
		}
	}
	s.log.Info().Int64("feedback_id", fb.ID).Int64("employee_id", fb.EmployeeID).Msg("feedback created")
	return fb, nil
}

// Update rewrites feedback the manager wrote. Empty text fields and an empty
// sentiment keep their current values.
func (s *FeedbackService) Update(ctx context.Context, id int64, in domain.FeedbackInput) (*domain.Feedback, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if !u.IsManager() {
		return nil, domain.ErrForbidden
	}
	switch in.Sentiment {
	case "", domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative:
	default:
		return nil, fmt.Errorf("%w: unknown sentiment %q", domain.ErrInvalidInput, in.Sentiment)
	}
	fb, err := s.api.UpdateFeedback(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update feedback %d: %w", id, err)
	}
	s.log.Info().Int64("feedback_id", fb.ID).Msg("feedback updated")
	return fb, nil
}

func (s *FeedbackService) Delete(ctx context.Context, id int64) error {
	u, err := s.currentUser()
	if err != nil {
		return err
	}
	if !u.IsManager() {
		return domain.ErrForbidden
	}
	if err := s.api.DeleteFeedback(ctx, id); err != nil {
		return fmt.Errorf("delete feedback %d: %w", id, err)
	}
	return nil
}

// Acknowledge marks feedback as read by the employee and returns the refreshed list.
func (s *FeedbackService) Acknowledge(ctx context.Context, id int64) ([]domain.Feedback, error) {
	return s.mutateAndRefresh(ctx, "acknowledge", func() error {
		_, err := s.api.Acknowledge(ctx, id)
		return err
	})
}

func (s *FeedbackService) Unacknowledge(ctx context.Context, id int64) ([]domain.Feedback, error) {
	return s.mutateAndRefresh(ctx, "unacknowledge", func() error {
		_, err := s.api.Unacknowledge(ctx, id)
		return err
	})
}

// Comment attaches the employee's comment and returns the refreshed list.
func (s *FeedbackService) Comment(ctx context.Context, id int64, comment string) ([]domain.Feedback, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, fmt.Errorf("%w: comment is empty", domain.ErrInvalidInput)
	}
	return s.mutateAndRefresh(ctx, "comment", func() error {
		_, err := s.api.Comment(ctx, id, comment)
		return err
	})
}

// UpdateComment replaces the employee's comment and returns the refreshed list.
func (s *FeedbackService) UpdateComment(ctx context.Context, id int64, comment string) ([]domain.Feedback, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, fmt.Errorf("%w: comment is empty", domain.ErrInvalidInput)
	}
	return s.mutateAndRefresh(ctx, "update comment on", func() error {
		_, err := s.api.UpdateComment(ctx, id, comment)
		return err
	})
}

func (s *FeedbackService) DeleteComment(ctx context.Context, id int64) ([]domain.Feedback, error) {
	return s.mutateAndRefresh(ctx, "delete comment on", func() error {
		_, err := s.api.DeleteComment(ctx, id)
		return err
	})
}

func (s *FeedbackService) mutateAndRefresh(ctx context.Context, op string, mutate func() error) ([]domain.Feedback, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if u.IsManager() {
		return nil, domain.ErrForbidden
	}
	if err := mutate(); err != nil {
		return nil, fmt.Errorf("%s feedback: %w", op, err)
	}
	return s.List(ctx, Filter{})
}

// Employees lists the manager's team.
func (s *FeedbackService) Employees(ctx context.Context) ([]domain.User, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if !u.IsManager() {
		return nil, domain.ErrForbidden
	}
	return s.api.Employees(ctx)
}

// Managers lists who an employee can ask for feedback.
func (s *FeedbackService) Managers(ctx context.Context) ([]domain.User, error) {
	if _, err := s.currentUser(); err != nil {
		return nil, err
	}
	list, err := s.api.Managers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	return list, nil
}

func (s *FeedbackService) Requests(ctx context.Context) ([]domain.FeedbackRequest, error) {
	if _, err := s.currentUser(); err != nil {
		return nil, err
	}
	return s.api.ListRequests(ctx)
}

// HasPendingRequest reports whether any request in list is still pending.
func HasPendingRequest(list []domain.FeedbackRequest) bool {
	for _, r := range list {
		if r.Status == domain.RequestPending {
			return true
		}
	}
	return false
}

// RequestFeedback asks managerID for feedback. An employee may only have one
// pending request at a time.
func (s *FeedbackService) RequestFeedback(ctx context.Context, managerID int64) (*domain.FeedbackRequest, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if u.IsManager() {
		return nil, domain.ErrForbidden
	}

	existing, err := s.api.ListRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feedback requests: %w", err)
	}
	if HasPendingRequest(existing) {
		return nil, domain.ErrPendingRequest
	}

	req, err := s.api.CreateRequest(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("request feedback: %w", err)
	}
	s.log.Info().Int64("request_id", req.ID).Msg("feedback requested")
	return req, nil
}

// PollRequests refreshes the manager's pending-request cache. It is a no-op
// returning domain.ErrSkipped for anyone who is not a logged-in manager.
func (s *FeedbackService) PollRequests(ctx context.Context) error {
	u := s.session.Snapshot().User
	if u == nil || !u.IsManager() {
		s.setPending(nil)
		return domain.ErrSkipped
	}

	list, err := s.api.ListRequests(ctx)
	if err != nil {
		return fmt.Errorf("poll feedback requests: %w", err)
	}
	pending := make([]domain.FeedbackRequest, 0, len(list))
	for _, r := range list {
		if r.Status == domain.RequestPending {
			pending = append(pending, r)
		}
	}
	s.setPending(pending)
	return nil
}

// PendingRequests returns the last polled pending requests.
func (s *FeedbackService) PendingRequests() []domain.FeedbackRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.FeedbackRequest, len(s.pending))
	copy(out, s.pending)
	return out
}

func (s *FeedbackService) setPending(list []domain.FeedbackRequest) {
	s.mu.Lock()
	s.pending = list
	s.mu.Unlock()
}

func (s *FeedbackService) dropPending(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.pending[:0]
	for _, r := range s.pending {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.pending = kept
}

// UpdateProfile saves profile changes for the current user.
func (s *FeedbackService) UpdateProfile(ctx context.Context, in domain.ProfileUpdate) (*domain.User, error) {
	if _, err := s.currentUser(); err != nil {
		return nil, err
	}
	return s.api.UpdateProfile(ctx, in)
}
