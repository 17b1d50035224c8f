package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"PriceCast/internal/domain/models"
	xhttp "PriceCast/pkg/http"
	xlogger "PriceCast/pkg/logger"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Ticker   string
	Forecast *models.Forecast
	Error    string
}

// PageHandler renders the ticker form and its result.
type PageHandler struct {
	logger  *xlogger.Logger
	svc     Forecaster
	limiter echo.MiddlewareFunc
}

func NewPageHandler(logger *xlogger.Logger, svc Forecaster, limiter echo.MiddlewareFunc) *PageHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &PageHandler{logger: logger, svc: svc, limiter: limiter}
}

func (h *PageHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	if h.limiter != nil {
		e.POST("/", h.Submit, h.limiter)
		return
	}
	e.POST("/", h.Submit)
}

func (h *PageHandler) Index(c echo.Context) error {
	return h.render(c, http.StatusOK, pageData{})
}

func (h *PageHandler) Submit(c echo.Context) error {
	req := &models.PageRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.render(c, http.StatusBadRequest, pageData{
			Ticker: c.FormValue("ticker"),
			Error:  verr.Error(),
		})
	}

	data := pageData{Ticker: req.Ticker}
	f, err := h.svc.Forecast(c.Request().Context(), req.Ticker)
	if err != nil {
		status := http.StatusInternalServerError
		data.Error = "Forecast failed, try again later."
		if errors.Is(err, models.ErrProvider) {
			status = http.StatusBadGateway
			data.Error = "Price data is unavailable right now, try again later."
		}
		h.logger.Warn("page forecast failed", xlogger.Symbol(req.Ticker), xlogger.Error(err))
		return h.render(c, status, data)
	}
	data.Forecast = f
	return h.render(c, http.StatusOK, data)
}

func (h *PageHandler) render(c echo.Context, status int, data pageData) error {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		h.logger.Error("render index", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return c.HTMLBlob(status, buf.Bytes())
}
