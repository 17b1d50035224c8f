package api

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"PriceCast/internal/domain/models"
	xhttp "PriceCast/pkg/http"
	xlogger "PriceCast/pkg/logger"
)

// Forecaster produces a forecast for a single symbol.
type Forecaster interface {
	Forecast(ctx context.Context, symbol string) (*models.Forecast, error)
}

// ForecastEchoHandler serves the JSON forecast API.
type ForecastEchoHandler struct {
	logger  *xlogger.Logger
	svc     Forecaster
	limiter echo.MiddlewareFunc
}

// NewForecastEchoHandler builds the handler. limiter may be nil.
func NewForecastEchoHandler(logger *xlogger.Logger, svc Forecaster, limiter echo.MiddlewareFunc) *ForecastEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ForecastEchoHandler{logger: logger, svc: svc, limiter: limiter}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	if h.limiter != nil {
		g.Use(h.limiter)
	}
	g.GET("/forecast", h.Forecast)
	g.POST("/forecast", h.Forecast)
}

// Forecast serves GET and POST /api/forecast. A missing prediction is still
// a 200 with data.prediction == null.
func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.Forecast(c.Request().Context(), req.Symbol)
	if err != nil {
		return xhttp.AppErrorResponse(c, h.mapError(req.Symbol, err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) mapError(symbol string, err error) error {
	switch {
	case errors.Is(err, models.ErrProvider):
		h.logger.Warn("forecast provider error", xlogger.Symbol(symbol), xlogger.Error(err))
		return xhttp.UpstreamError("price provider unavailable").WithParam("symbol", symbol).WithError(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("forecast canceled", xlogger.Symbol(symbol), xlogger.Error(err))
		return xhttp.InternalError("forecast timed out").WithError(err)
	default:
		h.logger.Error("forecast usecase error", xlogger.Symbol(symbol), xlogger.Error(err))
		return xhttp.InternalError("forecast failed").WithError(err)
	}
}
