package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

// RBAC lets the request through only for users holding one of roles. It reads
// the user injected by Auth, so it must be mounted after it. A refusal wraps
// domain.ErrForbidden and is rendered by the portal error handler.
func RBAC(roles ...string) echo.MiddlewareFunc {
	allowed := slices.Clone(roles)
	who := strings.Join(allowed, " or ")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := UserFrom(c)
			if u == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
			}
			if !slices.Contains(allowed, u.Role) {
				return fmt.Errorf("%w: %s %s is not a %s", domain.ErrForbidden, u.Role, u.Username, who)
			}
			return next(c)
		}
	}
}
