package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

type staticSession struct {
	user *domain.User
}

func (s *staticSession) Snapshot() domain.Snapshot {
	return domain.Snapshot{User: s.user, Phase: domain.PhaseResolved}
}

type stubFeedbackAPI struct {
	feedback  []domain.Feedback
	requests  []domain.FeedbackRequest
	employees []domain.User
	managers  []domain.User
	tags      []domain.Tag
	statsErr  error
	listErr   error

	acknowledged []int64
	completed    []int64
	created      []domain.FeedbackInput
	requestedFor []int64
}

func (a *stubFeedbackAPI) ListFeedback(context.Context) ([]domain.Feedback, error) {
	if a.listErr != nil {
		return nil, a.listErr
	}
	out := make([]domain.Feedback, len(a.feedback))
	copy(out, a.feedback)
	return out, nil
}

func (a *stubFeedbackAPI) find(id int64) *domain.Feedback {
	for i := range a.feedback {
		if a.feedback[i].ID == id {
			return &a.feedback[i]
		}
	}
	return nil
}

func (a *stubFeedbackAPI) GetFeedback(_ context.Context, id int64) (*domain.Feedback, error) {
	if fb := a.find(id); fb != nil {
		return fb, nil
	}
	return nil, domain.ErrNotFound
}

func (a *stubFeedbackAPI) CreateFeedback(_ context.Context, in domain.FeedbackInput) (*domain.Feedback, error) {
	a.created = append(a.created, in)
	fb := domain.Feedback{ID: int64(len(a.feedback) + 1), EmployeeID: in.EmployeeID, Sentiment: in.Sentiment}
	a.feedback = append(a.feedback, fb)
	return &fb, nil
}

func (a *stubFeedbackAPI) UpdateFeedback(_ context.Context, id int64, in domain.FeedbackInput) (*domain.Feedback, error) {
	fb := a.find(id)
	if fb == nil {
		return nil, domain.ErrNotFound
	}
	fb.Strengths = in.Strengths
	return fb, nil
}

func (a *stubFeedbackAPI) DeleteFeedback(_ context.Context, id int64) error {
	if a.find(id) == nil {
		return domain.ErrNotFound
	}
	return nil
}

func (a *stubFeedbackAPI) Acknowledge(_ context.Context, id int64) (*domain.Feedback, error) {
	fb := a.find(id)
	if fb == nil {
		return nil, domain.ErrNotFound
	}
	a.acknowledged = append(a.acknowledged, id)
	fb.Acknowledged = true
	return fb, nil
}

func (a *stubFeedbackAPI) Unacknowledge(_ context.Context, id int64) (*domain.Feedback, error) {
	fb := a.find(id)
	if fb == nil {
		return nil, domain.ErrNotFound
	}
	fb.Acknowledged = false
	return fb, nil
}

func (a *stubFeedbackAPI) Comment(_ context.Context, id int64, comment string) (*domain.Feedback, error) {
	fb := a.find(id)
	if fb == nil {
		return nil, domain.ErrNotFound
	}
	fb.Comment = comment
	return fb, nil
}

func (a *stubFeedbackAPI) UpdateComment(ctx context.Context, id int64, comment string) (*domain.Feedback, error) {
	return a.Comment(ctx, id, comment)
}

func (a *stubFeedbackAPI) DeleteComment(ctx context.Context, id int64) (*domain.Feedback, error) {
	return a.Comment(ctx, id, "")
}

func (a *stubFeedbackAPI) Tags(context.Context) ([]domain.Tag, error) {
	return a.tags, nil
}

func (a *stubFeedbackAPI) Managers(context.Context) ([]domain.User, error) {
	return a.managers, nil
}

func (a *stubFeedbackAPI) Stats(context.Context) (*domain.DashboardStats, error) {
	if a.statsErr != nil {
		return nil, a.statsErr
	}
	return &domain.DashboardStats{Total: 42}, nil
}

func (a *stubFeedbackAPI) ListRequests(context.Context) ([]domain.FeedbackRequest, error) {
	return a.requests, nil
}

func (a *stubFeedbackAPI) CreateRequest(_ context.Context, managerID int64) (*domain.FeedbackRequest, error) {
	a.requestedFor = append(a.requestedFor, managerID)
	r := domain.FeedbackRequest{ID: 50, ManagerID: managerID, Status: domain.RequestPending}
	return &r, nil
}

func (a *stubFeedbackAPI) CompleteRequest(_ context.Context, id int64) (*domain.FeedbackRequest, error) {
	a.completed = append(a.completed, id)
	return &domain.FeedbackRequest{ID: id, Status: domain.RequestCompleted}, nil
}

func (a *stubFeedbackAPI) Employees(context.Context) ([]domain.User, error) {
	return a.employees, nil
}

func (a *stubFeedbackAPI) UpdateProfile(_ context.Context, in domain.ProfileUpdate) (*domain.User, error) {
	return &domain.User{ID: 8, Name: in.Name, Username: "bob", Role: domain.RoleEmployee}, nil
}

func sampleFeedback() []domain.Feedback {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return []domain.Feedback{
		{ID: 1, EmployeeID: 8, Strengths: "Clear writing", Improvements: "Estimates", Sentiment: domain.SentimentPositive, CreatedAt: base,
			Tags: []domain.Tag{{ID: 1, Name: "delivery"}, {ID: 2, Name: "growth"}}},
		{ID: 2, EmployeeID: 8, Strengths: "Reliable", Improvements: "Code review depth", Sentiment: domain.SentimentNeutral, Acknowledged: true, CreatedAt: base.Add(time.Hour),
			Tags: []domain.Tag{{ID: 1, Name: "delivery"}}},
		{ID: 3, EmployeeID: 9, Strengths: "Mentoring", Improvements: "Writing tests", Sentiment: domain.SentimentNegative, CreatedAt: base.Add(2 * time.Hour)},
	}
}

func TestFilter_Apply(t *testing.T) {
	list := sampleFeedback()

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"all newest first", Filter{}, []int64{3, 2, 1}},
		{"pending tab", Filter{Tab: TabPending}, []int64{3, 1}},
		{"acknowledged tab", Filter{Tab: TabAcknowledged}, []int64{2}},
		{"sentiment", Filter{Sentiment: domain.SentimentPositive}, []int64{1}},
		{"employee", Filter{EmployeeID: 9}, []int64{3}},
		{"search is case insensitive", Filter{Search: "WRITING"}, []int64{3, 1}},
		{"combined", Filter{Tab: TabPending, Search: "writing", EmployeeID: 8}, []int64{1}},
		{"single tag", Filter{Tags: []string{"delivery"}}, []int64{2, 1}},
		{"every tag must match", Filter{Tags: []string{"delivery", "growth"}}, []int64{1}},
		{"unknown tag", Filter{Tags: []string{"sales"}}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(list)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d items, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("position %d: expected id %d, got %d", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	got := ComputeStats(sampleFeedback())
	want := domain.DashboardStats{Total: 3, Positive: 1, Neutral: 1, Negative: 1, Acknowledged: 1}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestFeedbackService_RequiresSession(t *testing.T) {
	svc := NewFeedbackService(&stubFeedbackAPI{}, &staticSession{}, zerolog.Nop())

	if _, err := svc.List(context.Background(), Filter{}); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestFeedbackService_Stats_FallsBackToLocalCount(t *testing.T) {
	api := &stubFeedbackAPI{feedback: sampleFeedback(), statsErr: errors.New("500")}
	svc := NewFeedbackService(api, &staticSession{user: amy}, zerolog.Nop())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 3 || stats.Acknowledged != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestFeedbackService_Stats_FromBackend(t *testing.T) {
	svc := NewFeedbackService(&stubFeedbackAPI{}, &staticSession{user: amy}, zerolog.Nop())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 42 {
		t.Fatalf("expected backend stats, got %+v", stats)
	}
}

func TestFeedbackService_Acknowledge_RefreshesList(t *testing.T) {
	api := &stubFeedbackAPI{feedback: sampleFeedback()}
	svc := NewFeedbackService(api, &staticSession{user: bob}, zerolog.Nop())

	list, err := svc.Acknowledge(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, fb := range list {
		if fb.ID == 1 && !fb.Acknowledged {
			t.Fatalf("expected refreshed list to show acknowledgement")
		}
	}
	if len(api.acknowledged) != 1 {
		t.Fatalf("expected one acknowledge call")
	}
}

func TestFeedbackService_Acknowledge_ManagerForbidden(t *testing.T) {
	svc := NewFeedbackService(&stubFeedbackAPI{feedback: sampleFeedback()}, &staticSession{user: amy}, zerolog.Nop())

	if _, err := svc.Acknowledge(context.Background(), 1); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestFeedbackService_Comment(t *testing.T) {
	api := &stubFeedbackAPI{feedback: sampleFeedback()}
	svc := NewFeedbackService(api, &staticSession{user: bob}, zerolog.Nop())

	if _, err := svc.Comment(context.Background(), 1, "   "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank comment, got %v", err)
	}

	list, err := svc.Comment(context.Background(), 2, " Thanks! ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, fb := range list {
		if fb.ID == 2 && fb.Comment != "Thanks!" {
			t.Fatalf("expected trimmed comment, got %q", fb.Comment)
		}
	}
}

func TestFeedbackService_Create(t *testing.T) {
	api := &stubFeedbackAPI{
		requests: []domain.FeedbackRequest{{ID: 11, EmployeeID: 8, Status: domain.RequestPending}},
	}
	svc := NewFeedbackService(api, &staticSession{user: amy}, zerolog.Nop())
	if err := svc.PollRequests(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}

	in := domain.FeedbackInput{EmployeeID: 8, Strengths: "a", Improvements: "b", Sentiment: domain.SentimentPositive}
	fb, err := svc.Create(context.Background(), in, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.EmployeeID != 8 {
		t.Fatalf("unexpected feedback: %+v", fb)
	}
	if len(api.completed) != 1 || api.completed[0] != 11 {
		t.Fatalf("expected request 11 completed, got %v", api.completed)
	}
	if len(svc.PendingRequests()) != 0 {
		t.Fatalf("expected completed request dropped from pending cache")
	}
}

func TestFeedbackService_Create_Validation(t *testing.T) {
	mgr := NewFeedbackService(&stubFeedbackAPI{}, &staticSession{user: amy}, zerolog.Nop())
	if _, err := mgr.Create(context.Background(), domain.FeedbackInput{}, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	emp := NewFeedbackService(&stubFeedbackAPI{}, &staticSession{user: bob}, zerolog.Nop())
	if _, err := emp.Create(context.Background(), domain.FeedbackInput{EmployeeID: 8}, 0); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestFeedbackService_RequestFeedback(t *testing.T) {
	api := &stubFeedbackAPI{}
	svc := NewFeedbackService(api, &staticSession{user: bob}, zerolog.Nop())

	req, err := svc.RequestFeedback(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != domain.RequestPending || len(api.requestedFor) != 1 {
		t.Fatalf("unexpected request: %+v", req)
	}

	api.requests = []domain.FeedbackRequest{*req}
	if _, err := svc.RequestFeedback(context.Background(), 7); !errors.Is(err, domain.ErrPendingRequest) {
		t.Fatalf("expected ErrPendingRequest, got %v", err)
	}
}

func TestFeedbackService_PollRequests(t *testing.T) {
	api := &stubFeedbackAPI{
		requests: []domain.FeedbackRequest{
			{ID: 1, Status: domain.RequestPending},
			{ID: 2, Status: domain.RequestCompleted},
		},
	}
	session := &staticSession{user: amy}
	svc := NewFeedbackService(api, session, zerolog.Nop())

	if err := svc.PollRequests(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := svc.PendingRequests(); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only pending request, got %+v", got)
	}

	session.user = bob
	if err := svc.PollRequests(context.Background()); !errors.Is(err, domain.ErrSkipped) {
		t.Fatalf("expected ErrSkipped for employees, got %v", err)
	}
	if len(svc.PendingRequests()) != 0 {
		t.Fatalf("expected cache emptied once the manager is gone")
	}
}

func TestFeedbackService_List_EmployeeVisibility(t *testing.T) {
	list := sampleFeedback()
	list = append(list, domain.Feedback{ID: 4, EmployeeID: 9, Sentiment: domain.SentimentPositive, Anonymous: true})
	api := &stubFeedbackAPI{feedback: list}

	emp := NewFeedbackService(api, &staticSession{user: bob}, zerolog.Nop())
	got, err := emp.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := map[int64]bool{}
	for _, fb := range got {
		ids[fb.ID] = true
	}
	if len(got) != 3 || !ids[1] || !ids[2] || !ids[4] {
		t.Fatalf("expected bob's own and anonymous feedback, got %v", ids)
	}

	mgr := NewFeedbackService(api, &staticSession{user: amy}, zerolog.Nop())
	got, err = mgr.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("managers see everything the backend returns, got %d items", len(got))
	}
}

func TestFeedbackService_Get(t *testing.T) {
	api := &stubFeedbackAPI{feedback: sampleFeedback()}
	svc := NewFeedbackService(api, &staticSession{user: bob}, zerolog.Nop())

	fb, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.ID != 1 {
		t.Fatalf("expected feedback 1, got %+v", fb)
	}
	if _, err := svc.Get(context.Background(), 3); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for someone else's feedback, got %v", err)
	}
	if _, err := svc.Get(context.Background(), 99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFeedbackService_Update(t *testing.T) {
	api := &stubFeedbackAPI{feedback: sampleFeedback()}
	mgr := NewFeedbackService(api, &staticSession{user: amy}, zerolog.Nop())

	fb, err := mgr.Update(context.Background(), 1, domain.FeedbackInput{Strengths: "Sharper estimates"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.Strengths != "Sharper estimates" {
		t.Fatalf("expected updated strengths, got %q", fb.Strengths)
	}
	if _, err := mgr.Update(context.Background(), 1, domain.FeedbackInput{Sentiment: "ecstatic"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	emp := NewFeedbackService(api, &staticSession{user: bob}, zerolog.Nop())
	if _, err := emp.Update(context.Background(), 1, domain.FeedbackInput{Strengths: "x"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestFeedbackService_UpdateAndDeleteComment(t *testing.T) {
	api := &stubFeedbackAPI{feedback: sampleFeedback()}
	svc := NewFeedbackService(api, &staticSession{user: bob}, zerolog.Nop())

	if _, err := svc.UpdateComment(context.Background(), 1, " "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank comment, got %v", err)
	}

	list, err := svc.UpdateComment(context.Background(), 1, " Revised ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb := findIn(list, 1); fb == nil || fb.Comment != "Revised" {
		t.Fatalf("expected revised comment in refreshed list, got %+v", fb)
	}

	list, err = svc.DeleteComment(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb := findIn(list, 1); fb == nil || fb.Comment != "" {
		t.Fatalf("expected comment removed, got %+v", fb)
	}

	mgr := NewFeedbackService(api, &staticSession{user: amy}, zerolog.Nop())
	if _, err := mgr.DeleteComment(context.Background(), 1); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for managers, got %v", err)
	}
}

func TestFeedbackService_TagsAndManagers(t *testing.T) {
	api := &stubFeedbackAPI{
		tags:     []domain.Tag{{ID: 2, Name: "growth"}, {ID: 1, Name: "delivery"}},
		managers: []domain.User{*amy},
	}
	svc := NewFeedbackService(api, &staticSession{user: bob}, zerolog.Nop())

	tags, err := svc.Tags(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "delivery" {
		t.Fatalf("expected tags sorted by name, got %+v", tags)
	}

	managers, err := svc.Managers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(managers) != 1 || managers[0].ID != amy.ID {
		t.Fatalf("unexpected managers: %+v", managers)
	}

	anon := NewFeedbackService(api, &staticSession{}, zerolog.Nop())
	if _, err := anon.Managers(context.Background()); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func findIn(list []domain.Feedback, id int64) *domain.Feedback {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}
