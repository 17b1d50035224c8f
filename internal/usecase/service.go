package usecase

import (
	"context"
	"time"

	"PriceCast/internal/domain/models"
	applogger "PriceCast/pkg/logger"
)

// Sink accepts finished forecasts for asynchronous delivery.
// Submit must not block the caller.
type Sink interface {
	Submit(f *models.Forecast) bool
}

// ForecastService runs the pipeline and hands every finished forecast,
// with or without a value, to the sink.
type ForecastService struct {
	pipeline *Pipeline
	sink     Sink
	timeout  time.Duration
	logger   *applogger.Logger
}

// NewForecastService bounds every run by timeout. A non-positive timeout
// leaves the caller's context as is.
func NewForecastService(p *Pipeline, sink Sink, timeout time.Duration, l *applogger.Logger) *ForecastService {
	if l == nil {
		l = applogger.Nop()
	}
	return &ForecastService{pipeline: p, sink: sink, timeout: timeout, logger: l}
}

// Forecast runs one forecast for symbol.
func (s *ForecastService) Forecast(ctx context.Context, symbol string) (*models.Forecast, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	f, err := s.pipeline.Run(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if s.sink != nil && !s.sink.Submit(f) {
		s.logger.Warn("forecast sink full, dropped", applogger.Symbol(f.Symbol))
	}
	return f, nil
}

// Pipeline exposes the underlying pipeline for health reporting.
func (s *ForecastService) Pipeline() *Pipeline { return s.pipeline }
