// Package http serves the operational sidecar: probes and counters for the
// bot process. It carries no ticket functionality; all user-facing work goes
// through the gateway.
package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Metrics *handlers.MetricsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Counters)
}
