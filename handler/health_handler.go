package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HealthHandler answers liveness probes.
type HealthHandler struct {
	serviceName string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(serviceName string) *HealthHandler {
	return &HealthHandler{serviceName: serviceName}
}

// HandleHealth handles GET /api/v1/health.
func (h *HealthHandler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Service: h.serviceName})
}
