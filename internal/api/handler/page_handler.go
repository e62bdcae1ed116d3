package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/feedbackhub/feedback-client/internal/api/middleware"
	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/core/service"
)

// PageHandler renders the view model of whichever view the Guard chose.
type PageHandler struct {
	feedback FeedbackService
	inbox    Inbox
}

func NewPageHandler(feedback FeedbackService, inbox Inbox) *PageHandler {
	return &PageHandler{feedback: feedback, inbox: inbox}
}

type pageResponse struct {
	View string       `json:"view"`
	User *domain.User `json:"user,omitempty"`
	Data any          `json:"data,omitempty"`
}

type managerDashboard struct {
	Stats           domain.DashboardStats    `json:"stats"`
	Recent          []domain.Feedback        `json:"recent"`
	PendingRequests []domain.FeedbackRequest `json:"pending_requests"`
	Unread          int                      `json:"unread"`
}

type employeeDashboard struct {
	Stats             domain.DashboardStats `json:"stats"`
	Pending           []domain.Feedback     `json:"pending"`
	Acknowledged      []domain.Feedback     `json:"acknowledged"`
	HasPendingRequest bool                  `json:"has_pending_request"`
	Unread            int                   `json:"unread"`
}

type feedbackForm struct {
	Employees []domain.User `json:"employees"`
	// Prefill comes from ?employee_id= and ?request_id= when answering a request.
	EmployeeID int64 `json:"employee_id,omitempty"`
	RequestID  int64 `json:"request_id,omitempty"`
}

const recentLimit = 5

// Render is mounted behind middleware.Guard on every page path.
//
// @Summary      Page view model
// @Description  Returns the view chosen by the route guard and its data. Pending sessions get the placeholder; unauthorised ones a 302.
// @Tags         pages
// @Produce      json
// @Success      200  {object}  pageResponse
// @Success      302
// @Router       / [get]
func (h *PageHandler) Render(c echo.Context) error {
	view := middleware.ViewFrom(c)
	user := middleware.UserFrom(c)
	ctx := c.Request().Context()

	var data any
	switch view {
	case service.ViewManagerDashboard:
		stats, err := h.feedback.Stats(ctx)
		if err != nil {
			return err
		}
		list, err := h.feedback.List(ctx, service.Filter{})
		if err != nil {
			return err
		}
		if len(list) > recentLimit {
			list = list[:recentLimit]
		}
		data = managerDashboard{
			Stats:           stats,
			Recent:          list,
			PendingRequests: h.feedback.PendingRequests(),
			Unread:          h.inbox.Inbox().Unread,
		}

	case service.ViewEmployeeDashboard:
		stats, err := h.feedback.Stats(ctx)
		if err != nil {
			return err
		}
		list, err := h.feedback.List(ctx, service.Filter{})
		if err != nil {
			return err
		}
		requests, err := h.feedback.Requests(ctx)
		if err != nil {
			return err
		}
		data = employeeDashboard{
			Stats:             stats,
			Pending:           service.Filter{Tab: service.TabPending}.Apply(list),
			Acknowledged:      service.Filter{Tab: service.TabAcknowledged}.Apply(list),
			HasPendingRequest: service.HasPendingRequest(requests),
			Unread:            h.inbox.Inbox().Unread,
		}

	case service.ViewFeedbackList:
		f, err := filterFromQuery(c)
		if err != nil {
			return err
		}
		list, err := h.feedback.List(ctx, f)
		if err != nil {
			return err
		}
		data = list

	case service.ViewFeedbackForm:
		employees, err := h.feedback.Employees(ctx)
		if err != nil {
			return err
		}
		form := feedbackForm{Employees: employees}
		form.EmployeeID, _ = strconv.ParseInt(c.QueryParam("employee_id"), 10, 64)
		form.RequestID, _ = strconv.ParseInt(c.QueryParam("request_id"), 10, 64)
		data = form

	case service.ViewRequests:
		list, err := h.feedback.Requests(ctx)
		if err != nil {
			return err
		}
		data = list

	case service.ViewNotifications:
		data = h.inbox.Inbox()

	case service.ViewProfile:
		data = user
	}

	return c.JSON(http.StatusOK, pageResponse{View: view, User: user, Data: data})
}
