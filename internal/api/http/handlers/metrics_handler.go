package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/observability"
)

// MetricsHandler exposes the interaction counters.
type MetricsHandler struct {
	metrics *observability.Metrics
}

// NewMetricsHandler returns a new handler instance.
func NewMetricsHandler(metrics *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Counters dumps per-action and per-failure counts.
func (h *MetricsHandler) Counters(c *fiber.Ctx) error {
	actions, failures := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"actions":  actions,
		"failures": failures,
	})
}
