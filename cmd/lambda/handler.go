package main

import (
	"context"
	"fmt"

	"PriceCast/internal/domain/models"
	"PriceCast/internal/domain/repository"
	xhttp "PriceCast/pkg/http"
	applogger "PriceCast/pkg/logger"
)

type forecaster interface {
	Run(ctx context.Context, symbol string) (*models.Forecast, error)
}

type handler struct {
	pipeline forecaster
	recorder repository.ForecastRecorder
	logger   *applogger.Logger
}

func newHandler(p forecaster, rec repository.ForecastRecorder, l *applogger.Logger) *handler {
	if l == nil {
		l = applogger.Nop()
	}
	return &handler{pipeline: p, recorder: rec, logger: l}
}

// Handle runs one forecast. A recorder failure is logged and does not fail
// the invocation.
func (h *handler) Handle(ctx context.Context, ev models.LambdaEvent) (*models.Forecast, error) {
	if verr := xhttp.ValidateStruct(ctx, &ev); verr != nil {
		return nil, fmt.Errorf("invalid event: %w", verr)
	}

	f, err := h.pipeline.Run(ctx, ev.Symbol)
	if err != nil {
		h.logger.Error("lambda forecast failed", applogger.Symbol(ev.Symbol), applogger.Error(err))
		return nil, err
	}

	if h.recorder != nil {
		if err := h.recorder.Record(ctx, f); err != nil {
			h.logger.Warn("lambda record failed",
				applogger.String("recorder", h.recorder.Name()),
				applogger.Symbol(f.Symbol),
				applogger.Error(err),
			)
		}
	}
	return f, nil
}
