package devbackend

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

// fieldError is a single-field validation failure rendered in the detail list.
type fieldError struct {
	field string
	msg   string
}

func (e *fieldError) Error() string {
	return e.field + ": " + e.msg
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

type registrationResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type requestInput struct {
	ManagerID int64 `json:"manager_id" validate:"required"`
}

type commentInput struct {
	Comment string `json:"comment"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func forbidden(msg string) error {
	return echo.NewHTTPError(http.StatusForbidden, msg)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &fieldError{field: "id", msg: "value is not a valid integer"}
	}
	return id, nil
}

func (s *Server) bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	return s.validate.Struct(v)
}

func (s *Server) register(c echo.Context) error {
	var in domain.Registration
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if strings.Contains(in.Username, " ") {
		return &fieldError{field: "username", msg: "Username cannot contain spaces"}
	}
	if err := s.validate.Struct(&in); err != nil {
		return err
	}

	u, err := s.store.CreateUser(in)
	if err != nil {
		return err
	}
	s.log.Info().Int64("user_id", u.ID).Str("role", u.Role).Msg("user registered")
	return c.JSON(http.StatusOK, registrationResponse{Message: "User registered successfully", User: u})
}

func (s *Server) login(c echo.Context) error {
	var in loginRequest
	if err := s.bind(c, &in); err != nil {
		return err
	}
	u, err := s.store.Authenticate(in.Username, in.Password)
	if err != nil {
		return err
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer", User: u})
}

func (s *Server) profile(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) updateProfile(c echo.Context) error {
	var in domain.ProfileUpdate
	if err := s.bind(c, &in); err != nil {
		return err
	}
	u, err := s.store.UpdateUser(currentUser(c).ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) deleteProfile(c echo.Context) error {
	u := currentUser(c)
	if err := s.store.DeleteUser(u.ID); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", u.ID).Msg("account deleted")
	return c.JSON(http.StatusOK, messageResponse{Message: "Account deleted successfully"})
}

func (s *Server) managers(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Managers())
}

func (s *Server) tags(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Tags())
}

func (s *Server) employees(c echo.Context) error {
	if !currentUser(c).IsManager() {
		return forbidden("Only managers can view employees")
	}
	return c.JSON(http.StatusOK, s.store.Employees())
}

func (s *Server) listFeedback(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.ListFeedback(currentUser(c)))
}

func (s *Server) createFeedback(c echo.Context) error {
	u := currentUser(c)
	if !u.IsManager() {
		return forbidden("Only managers can create feedback")
	}
	var in domain.FeedbackInput
	if err := s.bind(c, &in); err != nil {
		return err
	}
	if in.EmployeeID == 0 {
		return &fieldError{field: "employee_id", msg: "field required"}
	}
	fb, err := s.store.CreateFeedback(u.ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fb)
}

func (s *Server) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Stats(currentUser(c)))
}

func (s *Server) getFeedback(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	fb, err := s.store.Feedback(currentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fb)
}

func (s *Server) updateFeedback(c echo.Context) error {
	u := currentUser(c)
	if !u.IsManager() {
		return forbidden("Only managers can update feedback")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in domain.FeedbackInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if in.Sentiment != "" {
		if err := s.validate.Var(in.Sentiment, "oneof=positive neutral negative"); err != nil {
			return &fieldError{field: "sentiment", msg: "must be one of: positive neutral negative"}
		}
	}
	fb, err := s.store.UpdateFeedback(u.ID, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fb)
}

func (s *Server) deleteFeedback(c echo.Context) error {
	u := currentUser(c)
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if !u.IsManager() {
		return forbidden("Only managers can delete feedback")
	}
	if err := s.store.DeleteFeedback(u.ID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Feedback deleted successfully"})
}

func (s *Server) acknowledge(c echo.Context) error {
	return s.setAcknowledged(c, true)
}

func (s *Server) unacknowledge(c echo.Context) error {
	return s.setAcknowledged(c, false)
}

func (s *Server) setAcknowledged(c echo.Context, ack bool) error {
	u := currentUser(c)
	if u.IsManager() {
		if ack {
			return forbidden("Only employees can acknowledge feedback")
		}
		return forbidden("Only employees can unacknowledge feedback")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	fb, err := s.store.SetAcknowledged(u.ID, id, ack)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fb)
}

func (s *Server) comment(c echo.Context) error {
	u := currentUser(c)
	if u.IsManager() {
		return forbidden("Only employees can comment on feedback.")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in commentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	fb, err := s.store.SetComment(u.ID, id, strings.TrimSpace(in.Comment))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fb)
}

func (s *Server) updateComment(c echo.Context) error {
	u := currentUser(c)
	if u.IsManager() {
		return forbidden("Only employees can edit comments.")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in commentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return &fieldError{field: "comment", msg: "field required"}
	}
	fb, err := s.store.UpdateComment(u.ID, id, comment)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fb)
}

func (s *Server) deleteComment(c echo.Context) error {
	u := currentUser(c)
	if u.IsManager() {
		return forbidden("Only employees can delete comments.")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	fb, err := s.store.DeleteComment(u.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fb)
}

func (s *Server) listRequests(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.ListRequests(currentUser(c)))
}

func (s *Server) createRequest(c echo.Context) error {
	u := currentUser(c)
	if u.IsManager() {
		return forbidden("Only employees can request feedback")
	}
	var in requestInput
	if err := s.bind(c, &in); err != nil {
		return err
	}
	r, err := s.store.CreateRequest(u.ID, in.ManagerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) completeRequest(c echo.Context) error {
	u := currentUser(c)
	if !u.IsManager() {
		return forbidden("Only managers can complete feedback requests")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	r, err := s.store.CompleteRequest(u.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) listNotifications(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Notifications(currentUser(c).ID))
}

func (s *Server) readNotification(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	n, err := s.store.MarkRead(currentUser(c).ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (s *Server) readAll(c echo.Context) error {
	s.store.MarkAllRead(currentUser(c).ID)
	return c.NoContent(http.StatusNoContent)
}
