package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/feedbackhub/feedback-client/internal/api/middleware"
	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

// ctxUser returns the user injected by the Auth or Guard middleware, failing
// fast when neither ran.
func ctxUser(c echo.Context) (*domain.User, error) {
	u := middleware.UserFrom(c)
	if u == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
	}
	return u, nil
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
