package repository

import (
	"context"

	"PriceCast/internal/domain/models"
)

// PriceProvider retrieves a chronological price series for a symbol over a lookback period.
type PriceProvider interface {
	Fetch(ctx context.Context, symbol string, period Period) (models.PriceSeries, error)
	Name() string
}

// ForecastRecorder persists finished forecasts.
type ForecastRecorder interface {
	Record(ctx context.Context, f *models.Forecast) error
	Recent(ctx context.Context, symbol string, limit int) ([]*models.Forecast, error)
	Name() string
	Close() error
}

// ForecastPublisher fans finished forecasts out to subscribers.
type ForecastPublisher interface {
	Publish(ctx context.Context, f *models.Forecast) error
	Name() string
	Close() error
}

type Metrics interface {
	RecordForecast(symbol, outcome string)
	RecordStage(stage models.Stage, seconds float64)
	RecordLastForecast(symbol string, value float64)
	RecordNegativeForecast(symbol string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
