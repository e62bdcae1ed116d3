package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/core/service"
)

// FeedbackService is the feedback use-case surface the portal exposes.
type FeedbackService interface {
	List(ctx context.Context, f service.Filter) ([]domain.Feedback, error)
	Get(ctx context.Context, id int64) (*domain.Feedback, error)
	Tags(ctx context.Context) ([]domain.Tag, error)
	Stats(ctx context.Context) (domain.DashboardStats, error)
	Create(ctx context.Context, in domain.FeedbackInput, requestID int64) (*domain.Feedback, error)
	Update(ctx context.Context, id int64, in domain.FeedbackInput) (*domain.Feedback, error)
	Delete(ctx context.Context, id int64) error
	Acknowledge(ctx context.Context, id int64) ([]domain.Feedback, error)
	Unacknowledge(ctx context.Context, id int64) ([]domain.Feedback, error)
	Comment(ctx context.Context, id int64, comment string) ([]domain.Feedback, error)
	UpdateComment(ctx context.Context, id int64, comment string) ([]domain.Feedback, error)
	DeleteComment(ctx context.Context, id int64) ([]domain.Feedback, error)
	Employees(ctx context.Context) ([]domain.User, error)
	Managers(ctx context.Context) ([]domain.User, error)
	Requests(ctx context.Context) ([]domain.FeedbackRequest, error)
	RequestFeedback(ctx context.Context, managerID int64) (*domain.FeedbackRequest, error)
	PendingRequests() []domain.FeedbackRequest
	UpdateProfile(ctx context.Context, in domain.ProfileUpdate) (*domain.User, error)
}

type FeedbackHandler struct {
	feedback FeedbackService
}

func NewFeedbackHandler(feedback FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

type createFeedbackRequest struct {
	EmployeeID       int64            `json:"employee_id"  validate:"required,gt=0"`
	Strengths        string           `json:"strengths"    validate:"required"`
	Improvements     string           `json:"improvements" validate:"required"`
	Sentiment        domain.Sentiment `json:"sentiment"    validate:"required,oneof=positive neutral negative"`
	Tags             []string         `json:"tags,omitempty"`
	Anonymous        bool             `json:"anonymous,omitempty"`
	VisibleToManager bool             `json:"visible_to_manager,omitempty"`
	// RequestID, when set, marks that feedback request as answered.
	RequestID int64 `json:"request_id,omitempty"`
}

// updateFeedbackRequest fields left empty keep their current value.
type updateFeedbackRequest struct {
	Strengths        string           `json:"strengths,omitempty"`
	Improvements     string           `json:"improvements,omitempty"`
	Sentiment        domain.Sentiment `json:"sentiment,omitempty" validate:"omitempty,oneof=positive neutral negative"`
	Tags             []string         `json:"tags,omitempty"`
	Anonymous        bool             `json:"anonymous,omitempty"`
	VisibleToManager bool             `json:"visible_to_manager,omitempty"`
}

type commentRequest struct {
	Comment string `json:"comment" validate:"required"`
}

type requestFeedbackRequest struct {
	ManagerID int64 `json:"manager_id" validate:"required,gt=0"`
}

type profileRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"    validate:"omitempty,email"`
	Password string `json:"password,omitempty"`
}

// filterFromQuery reads ?tab=&sentiment=&employee_id=&q=&tag=; tag repeats.
func filterFromQuery(c echo.Context) (service.Filter, error) {
	f := service.Filter{
		Tab:       service.Tab(c.QueryParam("tab")),
		Sentiment: domain.Sentiment(c.QueryParam("sentiment")),
		Search:    c.QueryParam("q"),
		Tags:      c.QueryParams()["tag"],
	}
	switch f.Tab {
	case "", service.TabAll, service.TabPending, service.TabAcknowledged:
	default:
		return f, echo.NewHTTPError(http.StatusBadRequest, "tab must be one of: all pending acknowledged")
	}
	if raw := c.QueryParam("employee_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "employee_id must be an integer")
		}
		f.EmployeeID = id
	}
	return f, nil
}

// List returns the feedback visible to the session user.
//
// @Summary      List feedback
// @Tags         feedback
// @Produce      json
// @Param        tab          query     string  false  "all, pending or acknowledged"
// @Param        sentiment    query     string  false  "positive, neutral or negative"
// @Param        employee_id  query     int     false  "Only feedback for this employee"
// @Param        q            query     string  false  "Free-text search"
// @Param        tag          query     []string  false  "Only feedback carrying every tag"  collectionFormat(multi)
// @Success      200          {array}   domain.Feedback
// @Failure      401          {object}  failureResponse
// @Router       /api/feedback [get]
func (h *FeedbackHandler) List(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	list, err := h.feedback.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Create records new feedback (managers only).
//
// @Summary      Create feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        body  body      createFeedbackRequest  true  "Feedback"
// @Success      201   {object}  domain.Feedback
// @Failure      403   {object}  failureResponse
// @Failure      422   {object}  failureResponse
// @Router       /api/feedback [post]
func (h *FeedbackHandler) Create(c echo.Context) error {
	var req createFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failureResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	fb, err := h.feedback.Create(c.Request().Context(), domain.FeedbackInput{
		EmployeeID:       req.EmployeeID,
		Strengths:        req.Strengths,
		Improvements:     req.Improvements,
		Sentiment:        req.Sentiment,
		Tags:             req.Tags,
		Anonymous:        req.Anonymous,
		VisibleToManager: req.VisibleToManager,
	}, req.RequestID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, fb)
}

// Get returns a single piece of feedback.
//
// @Summary      Get feedback
// @Tags         feedback
// @Produce      json
// @Param        id   path      int  true  "Feedback ID"
// @Success      200  {object}  domain.Feedback
// @Failure      404  {object}  failureResponse
// @Router       /api/feedback/{id} [get]
func (h *FeedbackHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	fb, err := h.feedback.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fb)
}

// Update edits feedback the manager wrote (managers only).
//
// @Summary      Update feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Feedback ID"
// @Param        body  body      updateFeedbackRequest  true  "Changed fields"
// @Success      200   {object}  domain.Feedback
// @Failure      403   {object}  failureResponse
// @Failure      404   {object}  failureResponse
// @Failure      422   {object}  failureResponse
// @Router       /api/feedback/{id} [put]
func (h *FeedbackHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failureResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	fb, err := h.feedback.Update(c.Request().Context(), id, domain.FeedbackInput{
		Strengths:        req.Strengths,
		Improvements:     req.Improvements,
		Sentiment:        req.Sentiment,
		Tags:             req.Tags,
		Anonymous:        req.Anonymous,
		VisibleToManager: req.VisibleToManager,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fb)
}

func (h *FeedbackHandler) Tags(c echo.Context) error {
	tags, err := h.feedback.Tags(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *FeedbackHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.feedback.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Acknowledge marks feedback as read and returns the refreshed list.
//
// @Summary      Acknowledge feedback
// @Tags         feedback
// @Produce      json
// @Param        id   path      int  true  "Feedback ID"
// @Success      200  {array}   domain.Feedback
// @Failure      403  {object}  failureResponse
// @Failure      404  {object}  failureResponse
// @Router       /api/feedback/{id}/acknowledge [post]
func (h *FeedbackHandler) Acknowledge(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	list, err := h.feedback.Acknowledge(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *FeedbackHandler) Unacknowledge(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	list, err := h.feedback.Unacknowledge(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Comment attaches the employee's comment and returns the refreshed list.
//
// @Summary      Comment on feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Feedback ID"
// @Param        body  body      commentRequest  true  "Comment"
// @Success      200   {array}   domain.Feedback
// @Failure      422   {object}  failureResponse
// @Router       /api/feedback/{id}/comment [post]
func (h *FeedbackHandler) Comment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failureResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	list, err := h.feedback.Comment(c.Request().Context(), id, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// UpdateComment replaces the employee's comment and returns the refreshed list.
//
// @Summary      Edit comment
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Feedback ID"
// @Param        body  body      commentRequest  true  "Comment"
// @Success      200   {array}   domain.Feedback
// @Failure      422   {object}  failureResponse
// @Router       /api/feedback/{id}/comment [put]
func (h *FeedbackHandler) UpdateComment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failureResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	list, err := h.feedback.UpdateComment(c.Request().Context(), id, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *FeedbackHandler) DeleteComment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	list, err := h.feedback.DeleteComment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Stats returns the dashboard counters.
//
// @Summary      Dashboard stats
// @Tags         feedback
// @Produce      json
// @Success      200  {object}  domain.DashboardStats
// @Router       /api/stats [get]
func (h *FeedbackHandler) Stats(c echo.Context) error {
	stats, err := h.feedback.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *FeedbackHandler) Employees(c echo.Context) error {
	list, err := h.feedback.Employees(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Managers lists who an employee can ask for feedback.
//
// @Summary      List managers
// @Tags         users
// @Produce      json
// @Success      200  {array}   domain.User
// @Router       /api/managers [get]
func (h *FeedbackHandler) Managers(c echo.Context) error {
	list, err := h.feedback.Managers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *FeedbackHandler) Requests(c echo.Context) error {
	list, err := h.feedback.Requests(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// RequestFeedback asks a manager for feedback (employees only, one pending
// request at a time).
//
// @Summary      Request feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        body  body      requestFeedbackRequest  true  "Manager"
// @Success      201   {object}  domain.FeedbackRequest
// @Failure      409   {object}  failureResponse
// @Router       /api/requests [post]
func (h *FeedbackHandler) RequestFeedback(c echo.Context) error {
	var req requestFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failureResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.feedback.RequestFeedback(c.Request().Context(), req.ManagerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *FeedbackHandler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failureResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	u, err := h.feedback.UpdateProfile(c.Request().Context(), domain.ProfileUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}
