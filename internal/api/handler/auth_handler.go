package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

// Session is the part of the session store the portal drives.
type Session interface {
	Snapshot() domain.Snapshot
	Login(ctx context.Context, username, password string) (*domain.User, error)
	Logout(ctx context.Context)
	Register(ctx context.Context, in domain.Registration) (*domain.User, error)
	DeleteAccount(ctx context.Context) error
}

type AuthHandler struct {
	session Session
}

func NewAuthHandler(session Session) *AuthHandler {
	return &AuthHandler{session: session}
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Username string `json:"username" validate:"required,nospace,min=3,max=20"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"required,oneof=manager employee"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	User *domain.User `json:"user,omitempty"`
}

type failureResponse struct {
	Error string `json:"error"`
}

// Register creates a new account on the backend. It does not log in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  failureResponse
// @Failure      422   {object}  failureResponse
// @Router       /api/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failureResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.session.Register(c.Request().Context(), domain.Registration{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, failureResponse{Error: domain.Reason(err)})
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates against the backend and establishes the session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  failureResponse
// @Failure      401   {object}  failureResponse
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failureResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.session.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, failureResponse{Error: domain.Reason(err)})
	}

	return c.JSON(http.StatusOK, authResponse{User: user})
}

// Logout forgets the session. It always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /api/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.session.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Session returns the current session snapshot.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200   {object}  domain.Snapshot
// @Router       /api/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session.Snapshot())
}

// DeleteAccount removes the logged-in user's account and ends the session.
//
// @Summary      Delete account
// @Tags         auth
// @Success      204
// @Failure      401  {object}  failureResponse
// @Router       /api/account [delete]
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	if err := h.session.DeleteAccount(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
