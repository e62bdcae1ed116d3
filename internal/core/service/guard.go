package service

import (
	"strings"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/pkg/metrics"
)

// Action is what the navigation layer should do with a route.
type Action string

const (
	ActionRender      Action = "render"
	ActionPlaceholder Action = "placeholder"
	ActionRedirect    Action = "redirect"
)

// Landing locations used by redirects.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Views rendered by the default route table.
const (
	ViewLogin             = "login"
	ViewRegister          = "register"
	ViewManagerDashboard  = "manager_dashboard"
	ViewEmployeeDashboard = "employee_dashboard"
	ViewProfile           = "profile"
	ViewFeedbackList      = "feedback_list"
	ViewFeedbackForm      = "feedback_form"
	ViewRequests          = "requests"
	ViewNotifications     = "notifications"
)

// Route describes one navigable location.
type Route struct {
	Path string
	// Public routes render without a session.
	Public bool
	// GuestOnly routes send an authenticated user home.
	GuestOnly bool
	// Roles restricts access; empty means any authenticated role.
	Roles []string
	View  string
	// RoleViews overrides View per role.
	RoleViews map[string]string
}

func (r Route) allows(role string) bool {
	if len(r.Roles) == 0 {
		return true
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

func (r Route) viewFor(role string) string {
	if v, ok := r.RoleViews[role]; ok {
		return v
	}
	return r.View
}

// Decision is the outcome of guarding one route.
type Decision struct {
	Action   Action
	Location string
	View     string
}

// Guard maps a path and a session snapshot to a navigation decision. It holds
// no state beyond its route table.
type Guard struct {
	routes map[string]Route
}

// DefaultRoutes is the route table of the feedback portal.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/login", Public: true, GuestOnly: true, View: ViewLogin},
		{Path: "/register", Public: true, GuestOnly: true, View: ViewRegister},
		{
			Path: "/",
			View: ViewEmployeeDashboard,
			RoleViews: map[string]string{
				domain.RoleManager: ViewManagerDashboard,
			},
		},
		{Path: "/profile", View: ViewProfile},
		{Path: "/feedback", View: ViewFeedbackList},
		{Path: "/feedback/new", Roles: []string{domain.RoleManager}, View: ViewFeedbackForm},
		{Path: "/requests", View: ViewRequests},
		{Path: "/notifications", View: ViewNotifications},
	}
}

// NewGuard builds a guard over routes. Later entries replace earlier ones with
// the same path.
func NewGuard(routes []Route) *Guard {
	g := &Guard{routes: make(map[string]Route, len(routes))}
	for _, r := range routes {
		g.routes[normalizePath(r.Path)] = r
	}
	return g
}

// Routes returns the guarded paths.
func (g *Guard) Routes() []Route {
	out := make([]Route, 0, len(g.routes))
	for _, r := range g.routes {
		out = append(out, r)
	}
	return out
}

// Decide returns the decision for path under snap. The bool is false when
// path is not in the route table.
func (g *Guard) Decide(path string, snap domain.Snapshot) (Decision, bool) {
	route, ok := g.routes[normalizePath(path)]
	if !ok {
		return Decision{}, false
	}
	d := decide(route, snap)
	metrics.GuardDecisionsTotal.WithLabelValues(string(d.Action)).Inc()
	return d, true
}

func decide(route Route, snap domain.Snapshot) Decision {
	if !snap.Resolved() {
		return Decision{Action: ActionPlaceholder}
	}

	user := snap.User
	switch {
	case route.GuestOnly && user != nil:
		return Decision{Action: ActionRedirect, Location: HomePath}
	case route.Public:
		return Decision{Action: ActionRender, View: route.View}
	case user == nil:
		return Decision{Action: ActionRedirect, Location: LoginPath}
	case !route.allows(user.Role):
		return Decision{Action: ActionRedirect, Location: HomePath}
	}
	return Decision{Action: ActionRender, View: route.viewFor(user.Role)}
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}
