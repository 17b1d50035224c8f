package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"PriceCast/internal/domain/models"
	xhttp "PriceCast/pkg/http"
	xlogger "PriceCast/pkg/logger"
)

// HistoryReader returns recorded forecasts, newest first.
type HistoryReader interface {
	Recent(ctx context.Context, symbol string, limit int) ([]*models.Forecast, error)
}

type HistoryHandler struct {
	logger *xlogger.Logger
	reader HistoryReader
}

func NewHistoryHandler(logger *xlogger.Logger, reader HistoryReader) *HistoryHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &HistoryHandler{logger: logger, reader: reader}
}

func (h *HistoryHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/forecasts/recent", h.Recent)
}

// Recent serves GET /api/forecasts/recent?symbol=AAPL&limit=10.
func (h *HistoryHandler) Recent(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.reader.Recent(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		h.logger.Error("read forecast history", xlogger.Symbol(req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("history unavailable").WithError(err))
	}
	if rows == nil {
		rows = []*models.Forecast{}
	}
	return xhttp.SuccessResponse(c, rows)
}
