package ports

import (
	"context"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

// AuthAPI is the slice of the backend the Session Store depends on.
type AuthAPI interface {
	// Login exchanges credentials for an access token. The response is treated
	// as token-only; any user payload the backend adds is ignored.
	Login(ctx context.Context, username, password string) (string, error)
	// Profile fetches the profile of whoever the persisted token belongs to.
	Profile(ctx context.Context) (*domain.User, error)
	Register(ctx context.Context, in domain.Registration) (*domain.User, error)
	// DeleteAccount removes the account the persisted token belongs to.
	DeleteAccount(ctx context.Context) error
}
