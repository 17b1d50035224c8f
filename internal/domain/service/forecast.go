package service

import "context"

// Scaler converts between raw prices and the model's normalized domain.
type Scaler interface {
	Features() int
	Transform(rows [][]float64) ([][]float64, error)
	Inverse(rows [][]float64) ([][]float64, error)
	TransformValue(v float64) (float64, error)
	InverseValue(v float64) (float64, error)
}

// SequenceModel is a trained regressor over a (1, steps, features) window.
type SequenceModel interface {
	InputSteps() int
	Features() int
	Name() string
	Predict(ctx context.Context, window [][]float64) (float64, error)
}

// WindowBuilder selects and normalizes the trailing model input.
type WindowBuilder interface {
	Build(series []float64, steps int) ([][]float64, error)
}
