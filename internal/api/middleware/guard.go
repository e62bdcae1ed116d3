package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/feedbackhub/feedback-client/internal/core/service"
)

// ContextView is the echo context key holding the view chosen by Guard.
const ContextView = "view"

// Guard applies the route guard to page requests. A pending session renders
// the placeholder, redirects become 302s, and rendered routes continue to the
// page handler with the chosen view (and the user, when present) in context.
// Paths outside the route table pass through untouched.
func Guard(g *service.Guard, session service.SnapshotSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snap := session.Snapshot()
			d, ok := g.Decide(c.Request().URL.Path, snap)
			if !ok {
				return next(c)
			}

			switch d.Action {
			case service.ActionPlaceholder:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusOK, map[string]string{
					"view":  string(service.ActionPlaceholder),
					"phase": string(snap.Phase),
				})
			case service.ActionRedirect:
				return c.Redirect(http.StatusFound, d.Location)
			}

			c.Set(ContextView, d.View)
			if snap.User != nil {
				c.Set(ContextUser, snap.User)
			}
			return next(c)
		}
	}
}

// ViewFrom returns the view chosen by Guard.
func ViewFrom(c echo.Context) string {
	v, _ := c.Get(ContextView).(string)
	return v
}
