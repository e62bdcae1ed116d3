package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/core/service"
)

// ContextUser is the echo context key holding the *domain.User of the session.
const ContextUser = "user"

// Auth rejects the request unless the session holds a validated user, and
// injects that user into the context. The portal carries no credential of
// its own; the session is the only source of identity.
func Auth(session service.SnapshotSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snap := session.Snapshot()
			if !snap.Resolved() {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session is still being restored")
			}
			if snap.User == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
			}

			c.Set(ContextUser, snap.User)
			return next(c)
		}
	}
}

// UserFrom returns the user injected by Auth, or nil.
func UserFrom(c echo.Context) *domain.User {
	u, _ := c.Get(ContextUser).(*domain.User)
	return u
}
