package repository

import (
	"context"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
)

// NoopRecorder discards forecasts.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (NoopRecorder) Name() string                                   { return "noop" }
func (NoopRecorder) Record(context.Context, *models.Forecast) error { return nil }
func (NoopRecorder) Close() error                                   { return nil }

func (NoopRecorder) Recent(context.Context, string, int) ([]*models.Forecast, error) {
	return nil, nil
}

var _ domrepo.ForecastRecorder = NoopRecorder{}
