package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/feedbackhub/feedback-client/docs"
	"github.com/feedbackhub/feedback-client/internal/api/handler"
	"github.com/feedbackhub/feedback-client/internal/api/middleware"
	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/core/service"
	infrahttp "github.com/feedbackhub/feedback-client/internal/infrastructure/http"
	"github.com/feedbackhub/feedback-client/internal/infrastructure/http/handlers"
)

// Deps are the services the portal is built over.
type Deps struct {
	Session       handler.Session
	Guard         *service.Guard
	Feedback      handler.FeedbackService
	Notifications handler.Inbox
	// Checks are pinged by /health/ready, keyed by dependency name.
	Checks map[string]handlers.Pinger
	Log    zerolog.Logger
	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry, which can only be instrumented once per process.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:                 "feedback_portal",
		Registerer:                registerer,
		DoNotUseRequestPathFor404: true,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Session)
	feedbackHandler := handler.NewFeedbackHandler(d.Feedback)
	notificationHandler := handler.NewNotificationHandler(d.Notifications)
	pageHandler := handler.NewPageHandler(d.Feedback, d.Notifications)

	// --- Pages (route guard) ---
	guard := middleware.Guard(d.Guard, d.Session)
	for _, r := range d.Guard.Routes() {
		e.GET(r.Path, pageHandler.Render, guard)
	}

	// --- Session API ---
	e.POST("/api/login", authHandler.Login)
	e.POST("/api/logout", authHandler.Logout)
	e.POST("/api/register", authHandler.Register)
	e.GET("/api/session", authHandler.Session)

	// --- Feature API (session required) ---
	authed := e.Group("/api", middleware.Auth(d.Session))
	managers := middleware.RBAC(domain.RoleManager)
	employees := middleware.RBAC(domain.RoleEmployee)

	authed.DELETE("/account", authHandler.DeleteAccount)

	authed.GET("/feedback", feedbackHandler.List)
	authed.POST("/feedback", feedbackHandler.Create, managers)
	authed.GET("/feedback/:id", feedbackHandler.Get)
	authed.PUT("/feedback/:id", feedbackHandler.Update, managers)
	authed.DELETE("/feedback/:id", feedbackHandler.Delete, managers)
	authed.POST("/feedback/:id/acknowledge", feedbackHandler.Acknowledge, employees)
	authed.POST("/feedback/:id/unacknowledge", feedbackHandler.Unacknowledge, employees)
	authed.POST("/feedback/:id/comment", feedbackHandler.Comment, employees)
	authed.PUT("/feedback/:id/comment", feedbackHandler.UpdateComment, employees)
	authed.DELETE("/feedback/:id/comment", feedbackHandler.DeleteComment, employees)
	authed.GET("/tags", feedbackHandler.Tags)
	authed.GET("/stats", feedbackHandler.Stats)
	authed.GET("/employees", feedbackHandler.Employees, managers)
	authed.GET("/managers", feedbackHandler.Managers)
	authed.GET("/requests", feedbackHandler.Requests)
	authed.POST("/requests", feedbackHandler.RequestFeedback, employees)
	authed.PUT("/profile", feedbackHandler.UpdateProfile)

	authed.GET("/notifications", notificationHandler.List)
	authed.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	authed.POST("/notifications/:id/read", notificationHandler.MarkRead)

	// --- Health probes, metrics and docs (no session required) ---
	infrahttp.RegisterHealth(e, d.Checks)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
