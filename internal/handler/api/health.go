package api

import (
	"github.com/labstack/echo/v4"

	xhttp "PriceCast/pkg/http"
)

// HealthHandler reports liveness and the active pipeline components.
type HealthHandler struct {
	info xhttp.HealthResponse
}

func NewHealthHandler(info xhttp.HealthResponse) *HealthHandler {
	info.Status = "ok"
	return &HealthHandler{info: info}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
}

func (h *HealthHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.info)
}
