package devbackend

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

// Messages are sent verbatim as the response detail.
var (
	errUserExists      = errors.New("Username or email already registered")
	errBadCredentials  = errors.New("Invalid credentials")
	errFeedbackMissing = errors.New("Feedback not found")
	errRequestMissing  = errors.New("Feedback request not found")
	errNoteMissing     = errors.New("Notification not found")
	errUserMissing     = errors.New("User not found")
	errAccessDenied    = errors.New("Access denied")
	errUnknownEmployee = errors.New("Employee not found")
	errUnknownManager  = errors.New("Manager not found")
	errNoComment       = errors.New("Comment not found")
)

type account struct {
	user domain.User
	hash []byte
}

type notification struct {
	domain.Notification
	userID int64
}

// Store is the in-memory state of the development backend.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users         map[int64]*account
	feedback      map[int64]*domain.Feedback
	requests      map[int64]*domain.FeedbackRequest
	notifications map[int64]*notification
	tags          map[string]domain.Tag

	nextUser, nextFeedback, nextRequest, nextNote, nextTag int64
}

func NewStore() *Store {
	return &Store{
		now:           time.Now,
		users:         make(map[int64]*account),
		feedback:      make(map[int64]*domain.Feedback),
		requests:      make(map[int64]*domain.FeedbackRequest),
		notifications: make(map[int64]*notification),
		tags:          make(map[string]domain.Tag),
	}
}

// CreateUser registers an account. Usernames and emails are unique.
func (s *Store) CreateUser(in domain.Registration) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.users {
		if a.user.Username == in.Username || strings.EqualFold(a.user.Email, in.Email) {
			return nil, errUserExists
		}
	}

	s.nextUser++
	a := &account{
		user: domain.User{
			ID:       s.nextUser,
			Name:     in.Name,
			Username: in.Username,
			Email:    in.Email,
			Role:     in.Role,
		},
		hash: hash,
	}
	s.users[a.user.ID] = a
	u := a.user
	return &u, nil
}

// Authenticate returns the user for valid credentials.
func (s *Store) Authenticate(username, password string) (*domain.User, error) {
	s.mu.RLock()
	var found *account
	for _, a := range s.users {
		if a.user.Username == username {
			found = a
			break
		}
	}
	s.mu.RUnlock()

	if found == nil {
		return nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(found.hash, []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	u := found.user
	return &u, nil
}

func (s *Store) User(id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.users[id]
	if !ok {
		return nil, errUserMissing
	}
	u := a.user
	return &u, nil
}

func (s *Store) UpdateUser(id int64, in domain.ProfileUpdate) (*domain.User, error) {
	var hash []byte
	if in.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[id]
	if !ok {
		return nil, errUserMissing
	}
	if in.Email != "" {
		for _, other := range s.users {
			if other.user.ID != id && strings.EqualFold(other.user.Email, in.Email) {
				return nil, errUserExists
			}
		}
		a.user.Email = in.Email
	}
	if in.Name != "" {
		a.user.Name = in.Name
	}
	if hash != nil {
		a.hash = hash
	}
	u := a.user
	return &u, nil
}

// DeleteUser removes the account with the feedback, requests and
// notifications that name it.
func (s *Store) DeleteUser(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return errUserMissing
	}
	for fid, fb := range s.feedback {
		if fb.ManagerID == id || fb.EmployeeID == id {
			delete(s.feedback, fid)
		}
	}
	for rid, r := range s.requests {
		if r.ManagerID == id || r.EmployeeID == id {
			delete(s.requests, rid)
		}
	}
	for nid, n := range s.notifications {
		if n.userID == id {
			delete(s.notifications, nid)
		}
	}
	delete(s.users, id)
	return nil
}

// Employees lists every employee account.
func (s *Store) Employees() []domain.User {
	return s.usersWithRole(domain.RoleEmployee)
}

// Managers lists every manager account.
func (s *Store) Managers() []domain.User {
	return s.usersWithRole(domain.RoleManager)
}

func (s *Store) usersWithRole(role string) []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, a := range s.users {
		if a.user.Role == role {
			out = append(out, a.user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Tags lists every tag ever attached to feedback.
func (s *Store) Tags() []domain.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) CreateFeedback(managerID int64, in domain.FeedbackInput) (*domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp, ok := s.users[in.EmployeeID]
	if !ok || emp.user.Role != domain.RoleEmployee {
		return nil, errUnknownEmployee
	}
	mgr := s.users[managerID]

	s.nextFeedback++
	fb := &domain.Feedback{
		ID:               s.nextFeedback,
		ManagerID:        managerID,
		EmployeeID:       in.EmployeeID,
		Strengths:        in.Strengths,
		Improvements:     in.Improvements,
		Sentiment:        in.Sentiment,
		Tags:             s.tagsLocked(in.Tags),
		Anonymous:        in.Anonymous,
		VisibleToManager: in.VisibleToManager,
		CreatedAt:        s.now().UTC(),
	}
	s.feedback[fb.ID] = fb
	s.notifyLocked(in.EmployeeID, "New feedback from "+displayName(mgr), "/feedback")
	return s.expandLocked(fb), nil
}

func (s *Store) UpdateFeedback(managerID, id int64, in domain.FeedbackInput) (*domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fb, ok := s.feedback[id]
	if !ok {
		return nil, errFeedbackMissing
	}
	if fb.ManagerID != managerID {
		return nil, errAccessDenied
	}
	if in.Strengths != "" {
		fb.Strengths = in.Strengths
	}
	if in.Improvements != "" {
		fb.Improvements = in.Improvements
	}
	if in.Sentiment != "" {
		fb.Sentiment = in.Sentiment
	}
	if in.Tags != nil {
		fb.Tags = s.tagsLocked(in.Tags)
	}
	now := s.now().UTC()
	fb.UpdatedAt = &now
	return s.expandLocked(fb), nil
}

func (s *Store) DeleteFeedback(managerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fb, ok := s.feedback[id]
	if !ok {
		return errFeedbackMissing
	}
	if fb.ManagerID != managerID {
		return errAccessDenied
	}
	delete(s.feedback, id)
	return nil
}

// Feedback returns one item if user may see it.
func (s *Store) Feedback(user *domain.User, id int64) (*domain.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fb, ok := s.feedback[id]
	if !ok {
		return nil, errFeedbackMissing
	}
	if !visible(user, fb) {
		return nil, errAccessDenied
	}
	return s.expandLocked(fb), nil
}

// ListFeedback returns what the manager wrote or what the employee received.
func (s *Store) ListFeedback(user *domain.User) []domain.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Feedback, 0)
	for _, fb := range s.feedback {
		if visible(user, fb) {
			out = append(out, *s.expandLocked(fb))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Stats(user *domain.User) domain.DashboardStats {
	var st domain.DashboardStats
	for _, fb := range s.ListFeedback(user) {
		st.Total++
		switch fb.Sentiment {
		case domain.SentimentPositive:
			st.Positive++
		case domain.SentimentNeutral:
			st.Neutral++
		case domain.SentimentNegative:
			st.Negative++
		}
		if fb.Acknowledged {
			st.Acknowledged++
		}
	}
	return st
}

// SetAcknowledged flips the acknowledgement on the employee's own feedback.
func (s *Store) SetAcknowledged(employeeID, id int64, ack bool) (*domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fb, ok := s.feedback[id]
	if !ok {
		return nil, errFeedbackMissing
	}
	if fb.EmployeeID != employeeID {
		return nil, errAccessDenied
	}
	fb.Acknowledged = ack
	if ack {
		now := s.now().UTC()
		fb.AcknowledgedAt = &now
		s.notifyLocked(fb.ManagerID, displayName(s.users[employeeID])+" acknowledged your feedback", "/feedback")
	} else {
		fb.AcknowledgedAt = nil
	}
	return s.expandLocked(fb), nil
}

func (s *Store) SetComment(employeeID, id int64, comment string) (*domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fb, err := s.ownFeedbackLocked(employeeID, id)
	if err != nil {
		return nil, err
	}
	fb.Comment = comment
	if comment != "" {
		s.notifyLocked(fb.ManagerID, displayName(s.users[employeeID])+" commented on your feedback", "/feedback")
	}
	return s.expandLocked(fb), nil
}

// UpdateComment replaces an existing comment without notifying the manager.
func (s *Store) UpdateComment(employeeID, id int64, comment string) (*domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fb, err := s.ownFeedbackLocked(employeeID, id)
	if err != nil {
		return nil, err
	}
	if fb.Comment == "" {
		return nil, errNoComment
	}
	fb.Comment = comment
	return s.expandLocked(fb), nil
}

func (s *Store) DeleteComment(employeeID, id int64) (*domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fb, err := s.ownFeedbackLocked(employeeID, id)
	if err != nil {
		return nil, err
	}
	fb.Comment = ""
	return s.expandLocked(fb), nil
}

func (s *Store) ownFeedbackLocked(employeeID, id int64) (*domain.Feedback, error) {
	fb, ok := s.feedback[id]
	if !ok {
		return nil, errFeedbackMissing
	}
	if fb.EmployeeID != employeeID {
		return nil, errAccessDenied
	}
	return fb, nil
}

func (s *Store) CreateRequest(employeeID, managerID int64) (*domain.FeedbackRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mgr, ok := s.users[managerID]
	if !ok || mgr.user.Role != domain.RoleManager {
		return nil, errUnknownManager
	}
	s.nextRequest++
	r := &domain.FeedbackRequest{
		ID:         s.nextRequest,
		EmployeeID: employeeID,
		ManagerID:  managerID,
		Status:     domain.RequestPending,
		CreatedAt:  s.now().UTC(),
	}
	s.requests[r.ID] = r
	s.notifyLocked(managerID, displayName(s.users[employeeID])+" requested feedback", "/requests")
	return s.expandRequestLocked(r), nil
}

func (s *Store) ListRequests(user *domain.User) []domain.FeedbackRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.FeedbackRequest, 0)
	for _, r := range s.requests {
		if (user.IsManager() && r.ManagerID == user.ID) || (!user.IsManager() && r.EmployeeID == user.ID) {
			out = append(out, *s.expandRequestLocked(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) CompleteRequest(managerID, id int64) (*domain.FeedbackRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, errRequestMissing
	}
	if r.ManagerID != managerID {
		return nil, errAccessDenied
	}
	if r.Status != domain.RequestCompleted {
		now := s.now().UTC()
		r.Status = domain.RequestCompleted
		r.CompletedAt = &now
	}
	return s.expandRequestLocked(r), nil
}

func (s *Store) Notifications(userID int64) []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Notification, 0)
	for _, n := range s.notifications {
		if n.userID == userID {
			out = append(out, n.Notification)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *Store) MarkRead(userID, id int64) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.userID != userID {
		return nil, errNoteMissing
	}
	n.Read = true
	out := n.Notification
	return &out, nil
}

func (s *Store) MarkAllRead(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.userID == userID {
			n.Read = true
		}
	}
}

func (s *Store) notifyLocked(userID int64, msg, link string) {
	s.nextNote++
	s.notifications[s.nextNote] = &notification{
		Notification: domain.Notification{
			ID:        s.nextNote,
			Message:   msg,
			Link:      link,
			CreatedAt: s.now().UTC(),
		},
		userID: userID,
	}
}

func (s *Store) expandLocked(fb *domain.Feedback) *domain.Feedback {
	out := *fb
	out.Tags = append([]domain.Tag(nil), fb.Tags...)
	if a, ok := s.users[fb.ManagerID]; ok {
		u := a.user
		out.Manager = &u
	}
	if a, ok := s.users[fb.EmployeeID]; ok {
		u := a.user
		out.Employee = &u
	}
	return &out
}

func (s *Store) expandRequestLocked(r *domain.FeedbackRequest) *domain.FeedbackRequest {
	out := *r
	if a, ok := s.users[r.ManagerID]; ok {
		u := a.user
		out.Manager = &u
	}
	if a, ok := s.users[r.EmployeeID]; ok {
		u := a.user
		out.Employee = &u
	}
	return &out
}

func visible(user *domain.User, fb *domain.Feedback) bool {
	if user.IsManager() {
		return fb.ManagerID == user.ID
	}
	return fb.EmployeeID == user.ID
}

// tagsLocked resolves names to tags, registering unknown names. IDs are
// stable across feedback items.
func (s *Store) tagsLocked(names []string) []domain.Tag {
	if len(names) == 0 {
		return nil
	}
	out := make([]domain.Tag, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		t, ok := s.tags[n]
		if !ok {
			s.nextTag++
			t = domain.Tag{ID: s.nextTag, Name: n}
			s.tags[n] = t
		}
		out = append(out, t)
	}
	return out
}

func displayName(a *account) string {
	if a == nil {
		return "someone"
	}
	if a.user.Name != "" {
		return a.user.Name
	}
	return a.user.Username
}
