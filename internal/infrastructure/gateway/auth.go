package gateway

import (
	"context"
	"net/http"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token" validate:"required"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user,omitempty" validate:"-"`
}

type registrationResponse struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
}

// Login exchanges credentials for an access token. The user echoed in the
// response is ignored; identity comes from Profile.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	if err := c.Do(credentialsCall(ctx), http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, &resp); err != nil {
		return "", err
	}
	if err := c.check("login response", &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Profile returns the user the current credential belongs to.
func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.Do(ctx, http.MethodGet, "/users/profile", nil, &u); err != nil {
		return nil, err
	}
	if err := c.check("profile", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Register creates an account. It does not log the new user in.
func (c *Client) Register(ctx context.Context, in domain.Registration) (*domain.User, error) {
	var resp registrationResponse
	if err := c.Do(credentialsCall(ctx), http.MethodPost, "/auth/register", in, &resp); err != nil {
		return nil, err
	}
	if err := c.check("registered user", &resp.User); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, in domain.ProfileUpdate) (*domain.User, error) {
	var u domain.User
	if err := c.Do(ctx, http.MethodPut, "/users/profile", in, &u); err != nil {
		return nil, err
	}
	if err := c.check("profile", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Employees lists the users a manager can write feedback for.
func (c *Client) Employees(ctx context.Context) ([]domain.User, error) {
	var list []domain.User
	if err := c.Do(ctx, http.MethodGet, "/users/employees", nil, &list); err != nil {
		return nil, err
	}
	if err := checkEach(c, "employees", list); err != nil {
		return nil, err
	}
	return list, nil
}

// Managers lists the managers an employee can ask for feedback.
func (c *Client) Managers(ctx context.Context) ([]domain.User, error) {
	var list []domain.User
	if err := c.Do(ctx, http.MethodGet, "/users/managers", nil, &list); err != nil {
		return nil, err
	}
	if err := checkEach(c, "managers", list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteAccount removes the account the current credential belongs to.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.Do(ctx, http.MethodDelete, "/users/profile", nil, nil)
}
