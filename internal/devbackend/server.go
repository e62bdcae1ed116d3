// Package devbackend is an in-memory stand-in for the feedback backend. It
// speaks the same HTTP contract (JWT bearer auth, {"detail": ...} errors) and
// is used for local development and end-to-end tests of the client.
package devbackend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

const defaultTokenTTL = 24 * time.Hour

type Config struct {
	JWTSecret string
	// TokenTTL of zero means 24h; negative issues tokens without exp.
	TokenTTL time.Duration
	// Seed loads the demo accounts and feedback.
	Seed bool
}

// Server is the development backend.
type Server struct {
	echo     *echo.Echo
	store    *Store
	tokens   *tokenIssuer
	validate *validator.Validate
	log      zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("devbackend: JWT secret is required")
	}
	ttl := cfg.TokenTTL
	switch {
	case ttl == 0:
		ttl = defaultTokenTTL
	case ttl < 0:
		ttl = 0
	}

	s := &Server{
		echo:     echo.New(),
		store:    NewStore(),
		tokens:   &tokenIssuer{secret: []byte(cfg.JWTSecret), ttl: ttl, now: time.Now},
		validate: validator.New(),
		log:      log.With().Str("component", "devbackend").Logger(),
	}
	if cfg.Seed {
		if err := Seed(s.store); err != nil {
			return nil, fmt.Errorf("devbackend: seed: %w", err)
		}
	}
	s.routes()
	return s, nil
}

// Store exposes the backing state, mostly for tests.
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("dev backend listening")
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) routes() {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			s.log.Debug().Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Msg("request")
			return nil
		},
	}))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Feedback API (development)"})
	})

	e.POST("/auth/register", s.register)
	e.POST("/auth/login", s.login)

	users := e.Group("/users", s.requireUser)
	users.GET("/profile", s.profile)
	users.PUT("/profile", s.updateProfile)
	users.DELETE("/profile", s.deleteProfile)
	users.GET("/employees", s.employees)
	users.GET("/managers", s.managers)

	e.GET("/feedback/tags/", s.tags)

	fb := e.Group("/feedback", s.requireUser)
	fb.GET("/", s.listFeedback)
	fb.POST("/", s.createFeedback)
	fb.GET("/dashboard/stats", s.stats)
	fb.GET("/feedback-requests/", s.listRequests)
	fb.POST("/feedback-requests/", s.createRequest)
	fb.PATCH("/feedback-requests/:id/complete", s.completeRequest)
	fb.GET("/:id", s.getFeedback)
	fb.PUT("/:id", s.updateFeedback)
	fb.DELETE("/:id", s.deleteFeedback)
	fb.POST("/:id/acknowledge", s.acknowledge)
	fb.POST("/:id/unacknowledge", s.unacknowledge)
	fb.POST("/:id/comment", s.comment)
	fb.PUT("/:id/comment", s.updateComment)
	fb.DELETE("/:id/comment", s.deleteComment)

	notes := e.Group("/notifications", s.requireUser)
	notes.GET("/", s.listNotifications)
	notes.POST("/read-all", s.readAll)
	notes.POST("/:id/read", s.readNotification)
}

type detailResponse struct {
	Detail any `json:"detail"`
}

type validationItem struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// errorHandler renders every failure as {"detail": ...}.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		items := make([]validationItem, 0, len(ve))
		for _, fe := range ve {
			items = append(items, validationItem{
				Loc:  []string{"body", strings.ToLower(fe.Field())},
				Msg:  validationMessage(fe),
				Type: "value_error",
			})
		}
		_ = c.JSON(http.StatusUnprocessableEntity, detailResponse{Detail: items})
		return
	}
	var fe *fieldError
	if errors.As(err, &fe) {
		_ = c.JSON(http.StatusUnprocessableEntity, detailResponse{Detail: []validationItem{{
			Loc:  []string{"body", fe.field},
			Msg:  fe.msg,
			Type: "value_error",
		}}})
		return
	}

	code, msg := s.resolveError(err, c)
	_ = c.JSON(code, detailResponse{Detail: msg})
}

func (s *Server) resolveError(err error, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, errBadCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, errUserExists):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errAccessDenied):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, errFeedbackMissing),
		errors.Is(err, errRequestMissing),
		errors.Is(err, errNoteMissing),
		errors.Is(err, errUserMissing),
		errors.Is(err, errNoComment),
		errors.Is(err, errUnknownEmployee),
		errors.Is(err, errUnknownManager):
		return http.StatusNotFound, err.Error()
	}

	s.log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("unhandled error")
	return http.StatusInternalServerError, "Internal Server Error"
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "excludes":
		return "must not contain spaces"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
