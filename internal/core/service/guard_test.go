package service

import (
	"context"
	"testing"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

func resolved(u *domain.User) domain.Snapshot {
	return domain.Snapshot{User: u, Phase: domain.PhaseResolved}
}

func TestGuard_Decide(t *testing.T) {
	g := NewGuard(DefaultRoutes())

	tests := []struct {
		name string
		path string
		snap domain.Snapshot
		want Decision
	}{
		{"pending renders nothing", "/", domain.Snapshot{Phase: domain.PhasePending}, Decision{Action: ActionPlaceholder}},
		{"pending on public route", "/login", domain.Snapshot{Phase: domain.PhasePending}, Decision{Action: ActionPlaceholder}},
		{"anonymous to dashboard", "/", resolved(nil), Decision{Action: ActionRedirect, Location: "/login"}},
		{"anonymous to profile", "/profile", resolved(nil), Decision{Action: ActionRedirect, Location: "/login"}},
		{"anonymous to login", "/login", resolved(nil), Decision{Action: ActionRender, View: ViewLogin}},
		{"anonymous to register", "/register", resolved(nil), Decision{Action: ActionRender, View: ViewRegister}},
		{"manager dashboard", "/", resolved(amy), Decision{Action: ActionRender, View: ViewManagerDashboard}},
		{"employee dashboard", "/", resolved(bob), Decision{Action: ActionRender, View: ViewEmployeeDashboard}},
		{"manager on login goes home", "/login", resolved(amy), Decision{Action: ActionRedirect, Location: "/"}},
		{"employee on register goes home", "/register", resolved(bob), Decision{Action: ActionRedirect, Location: "/"}},
		{"employee on manager route", "/feedback/new", resolved(bob), Decision{Action: ActionRedirect, Location: "/"}},
		{"manager on manager route", "/feedback/new", resolved(amy), Decision{Action: ActionRender, View: ViewFeedbackForm}},
		{"trailing slash", "/feedback/", resolved(bob), Decision{Action: ActionRender, View: ViewFeedbackList}},
		{"notifications", "/notifications", resolved(bob), Decision{Action: ActionRender, View: ViewNotifications}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.Decide(tt.path, tt.snap)
			if !ok {
				t.Fatalf("route %s not found", tt.path)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestGuard_UnknownRoute(t *testing.T) {
	g := NewGuard(DefaultRoutes())

	if _, ok := g.Decide("/admin", resolved(amy)); ok {
		t.Fatalf("expected unknown route to be reported")
	}
}

func TestGuard_UnknownRoleGetsDefaultView(t *testing.T) {
	g := NewGuard(DefaultRoutes())
	intern := &domain.User{ID: 3, Username: "ivy", Role: "intern"}

	got, _ := g.Decide("/", resolved(intern))
	if got.View != ViewEmployeeDashboard {
		t.Fatalf("expected employee dashboard for non-manager, got %s", got.View)
	}
}

// Expired token at startup: the user lands on the login page once bootstrap
// resolves, and the stale token is gone.
func TestGuard_ExpiredTokenAtStartup(t *testing.T) {
	store, _, tokens := newSessionFixture("tok-expired")
	g := NewGuard(DefaultRoutes())

	if d, _ := g.Decide("/", store.Snapshot()); d.Action != ActionPlaceholder {
		t.Fatalf("expected placeholder before bootstrap, got %+v", d)
	}

	store.Bootstrap(context.Background())

	d, _ := g.Decide("/", store.Snapshot())
	if d.Action != ActionRedirect || d.Location != "/login" {
		t.Fatalf("expected redirect to /login, got %+v", d)
	}
	if tokens.current() != "" {
		t.Fatalf("expected stale token removed")
	}
}

func TestGuard_EmployeeOnManagerRouteAfterLogin(t *testing.T) {
	store, _, _ := newSessionFixture("")
	store.Bootstrap(context.Background())
	g := NewGuard(DefaultRoutes())

	if _, err := store.Login(context.Background(), "bob", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	d, _ := g.Decide("/feedback/new", store.Snapshot())
	if d.Action != ActionRedirect || d.Location != "/" {
		t.Fatalf("expected redirect home, got %+v", d)
	}
	d, _ = g.Decide("/", store.Snapshot())
	if d.View != ViewEmployeeDashboard {
		t.Fatalf("expected employee dashboard, got %+v", d)
	}
}
