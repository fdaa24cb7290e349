// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version    string
	model      string
	extraction string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, model, extraction string) HealthHandler {
	return &HealthHandlerImpl{
		version:    version,
		model:      model,
		extraction: extraction,
	}
}

// HandleHealth returns server health status. It does not call the model.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"version":    h.version,
		"model":      h.model,
		"extraction": h.extraction,
	})
}
