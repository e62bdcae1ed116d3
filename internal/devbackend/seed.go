package devbackend

import (
	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "password123"

// Seed loads a manager, two employees and a little history.
func Seed(s *Store) error {
	accounts := []domain.Registration{
		{Name: "Amy Manager", Username: "amy", Email: "amy@example.com", Role: domain.RoleManager},
		{Name: "Bob Builder", Username: "bob", Email: "bob@example.com", Role: domain.RoleEmployee},
		{Name: "Carol Coder", Username: "carol", Email: "carol@example.com", Role: domain.RoleEmployee},
	}
	users := make([]*domain.User, 0, len(accounts))
	for _, a := range accounts {
		a.Password = SeedPassword
		u, err := s.CreateUser(a)
		if err != nil {
			return err
		}
		users = append(users, u)
	}
	amy, bob, carol := users[0], users[1], users[2]

	if _, err := s.CreateFeedback(amy.ID, domain.FeedbackInput{
		EmployeeID:   bob.ID,
		Strengths:    "Ships reliably and reviews carefully.",
		Improvements: "Share progress earlier in the sprint.",
		Sentiment:    domain.SentimentPositive,
		Tags:         []string{"delivery", "communication"},
	}); err != nil {
		return err
	}
	fb, err := s.CreateFeedback(amy.ID, domain.FeedbackInput{
		EmployeeID:   carol.ID,
		Strengths:    "Strong debugging instincts.",
		Improvements: "Write down design decisions.",
		Sentiment:    domain.SentimentNeutral,
	})
	if err != nil {
		return err
	}
	if _, err := s.SetAcknowledged(carol.ID, fb.ID, true); err != nil {
		return err
	}
	return nil
}
