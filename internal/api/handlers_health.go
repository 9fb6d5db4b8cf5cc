// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/label-designer/backend/internal/driver"
	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version  string
	registry *driver.Registry
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, registry *driver.Registry) HealthHandler {
	return &HealthHandlerImpl{
		version:  version,
		registry: registry,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	names := make([]string, 0)
	for _, d := range h.registry.Drivers() {
		names = append(names, d.Name())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"drivers": names,
	})
}
