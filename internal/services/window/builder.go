package window

import (
	"fmt"

	"PriceCast/internal/domain/models"
	domsvc "PriceCast/internal/domain/service"
)

// Builder extracts the trailing model window from a close series.
type Builder struct {
	scaler domsvc.Scaler
}

// NewBuilder creates a window builder over a fitted scaler.
func NewBuilder(scaler domsvc.Scaler) *Builder {
	return &Builder{scaler: scaler}
}

// Build returns the last steps values of series, normalized, oldest first.
// The result has steps rows of one feature each.
func (b *Builder) Build(series []float64, steps int) ([][]float64, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("window: steps must be positive, got %d", steps)
	}
	if len(series) < steps {
		return nil, &models.InsufficientHistoryError{Have: len(series), Need: steps}
	}

	tail := series[len(series)-steps:]
	rows := make([][]float64, steps)
	for i, v := range tail {
		rows[i] = []float64{v}
	}

	scaled, err := b.scaler.Transform(rows)
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	return scaled, nil
}

var _ domsvc.WindowBuilder = (*Builder)(nil)
