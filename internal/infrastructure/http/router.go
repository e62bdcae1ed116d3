package http

import (
	"github.com/labstack/echo/v4"

	"github.com/feedbackhub/feedback-client/internal/infrastructure/http/handlers"
)

// RegisterHealth mounts the liveness and readiness probes on e.
func RegisterHealth(e *echo.Echo, deps map[string]handlers.Pinger) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – can we reach the store and backend?
}
