// Package metrics defines and registers all custom Prometheus metrics for the
// feedback client. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry on import; the portal
// exposes them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "feedback_client"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state changes.
// Label:
//   - event: "bootstrap_authenticated", "bootstrap_anonymous", "bootstrap_invalidated",
//     "login", "login_failed", "logout", "invalidated"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by event.",
	},
	[]string{"event"},
)

// SessionAuthenticated is 1 while a validated user is present, 0 otherwise.
var SessionAuthenticated = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_authenticated",
		Help:      "Whether the session currently holds a validated user (1) or not (0).",
	},
)

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayRequestsTotal counts outbound backend requests.
// Labels:
//   - method: HTTP method
//   - code: response status code, or "error" on transport failure
//   - auth: "bearer" when a credential was attached, "none" otherwise
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of outbound backend requests.",
	},
	[]string{"method", "code", "auth"},
)

// GatewayRequestDuration measures outbound request latency.
var GatewayRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of outbound backend requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// ── Poller metrics ────────────────────────────────────────────────────────────

// PollsTotal counts background poll runs.
// Labels:
//   - task: poller name (e.g. "notifications", "feedback_requests")
//   - result: "ok", "error", or "skipped" (no user present)
var PollsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polls_total",
		Help:      "Total number of background poll runs, by task and result.",
	},
	[]string{"task", "result"},
)

// UnreadNotifications tracks the unread count seen by the last notification poll.
var UnreadNotifications = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "unread_notifications",
		Help:      "Unread notifications reported by the most recent poll.",
	},
)

// ── Route guard metrics ───────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - action: "render", "placeholder", "redirect"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by action.",
	},
	[]string{"action"},
)
