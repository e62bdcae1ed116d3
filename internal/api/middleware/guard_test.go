package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/core/service"
)

type fixedSession struct {
	snap domain.Snapshot
}

func (f fixedSession) Snapshot() domain.Snapshot { return f.snap }

func resolvedAs(u *domain.User) fixedSession {
	return fixedSession{snap: domain.Snapshot{User: u, Phase: domain.PhaseResolved}}
}

func runGuard(t *testing.T, path string, session service.SnapshotSource) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), rec)

	reached := false
	h := Guard(service.NewGuard(service.DefaultRoutes()), session)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, c, reached
}

func TestGuard_PendingRendersPlaceholder(t *testing.T) {
	rec, _, reached := runGuard(t, "/", fixedSession{snap: domain.Snapshot{Phase: domain.PhasePending}})

	assert.False(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"view":"placeholder","phase":"pending"}`, rec.Body.String())
}

func TestGuard_AnonymousRedirectsToLogin(t *testing.T) {
	rec, _, reached := runGuard(t, "/feedback", resolvedAs(nil))

	assert.False(t, reached)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, service.LoginPath, rec.Header().Get(echo.HeaderLocation))
}

func TestGuard_EmployeeOnManagerRouteGoesHome(t *testing.T) {
	rec, _, reached := runGuard(t, "/feedback/new", resolvedAs(&domain.User{ID: 2, Role: domain.RoleEmployee}))

	assert.False(t, reached)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, service.HomePath, rec.Header().Get(echo.HeaderLocation))
}

func TestGuard_RenderSetsViewAndUser(t *testing.T) {
	amy := &domain.User{ID: 1, Username: "amy", Role: domain.RoleManager}
	_, c, reached := runGuard(t, "/", resolvedAs(amy))

	assert.True(t, reached)
	assert.Equal(t, service.ViewManagerDashboard, ViewFrom(c))
	assert.Equal(t, amy, UserFrom(c))
}

func TestGuard_UnknownPathPassesThrough(t *testing.T) {
	_, c, reached := runGuard(t, "/api/session", resolvedAs(nil))

	assert.True(t, reached)
	assert.Empty(t, ViewFrom(c))
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name string
		snap domain.Snapshot
		code int
	}{
		{"pending", domain.Snapshot{Phase: domain.PhasePending}, http.StatusServiceUnavailable},
		{"anonymous", domain.Snapshot{Phase: domain.PhaseResolved}, http.StatusUnauthorized},
		{"logged in", domain.Snapshot{Phase: domain.PhaseResolved, User: &domain.User{ID: 1, Role: domain.RoleEmployee}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/notifications", nil), httptest.NewRecorder())

			var seen *domain.User
			err := Auth(fixedSession{snap: tt.snap})(func(c echo.Context) error {
				seen = UserFrom(c)
				return nil
			})(c)

			if tt.code == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.snap.User, seen)
				return
			}
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.code, he.Code)
		})
	}
}
