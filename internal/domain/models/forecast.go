package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stage is a state of the forecast pipeline.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageFetching   Stage = "fetching"
	StagePreparing  Stage = "preparing"
	StagePredicting Stage = "predicting"
	StageDone       Stage = "done"
	StageError      Stage = "error"
)

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool { return s == StageDone || s == StageError }

const (
	ReasonEmptyHistory        = "empty_history"
	ReasonInsufficientHistory = "insufficient_history"
	ReasonDimensionMismatch   = "dimension_mismatch"
)

// Forecast is the outcome of one pipeline run. Value is nil when no prediction
// is available, in which case Reason says why.
type Forecast struct {
	Symbol      string     `json:"symbol"`
	Period      string     `json:"period"`
	Steps       int        `json:"steps"`
	Value       *float64   `json:"prediction"`
	Display     string     `json:"display,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	Detail      string     `json:"detail,omitempty"`
	Stage       Stage      `json:"stage"`
	Observed    int        `json:"observed"`
	LastClose   float64    `json:"last_close,omitempty"`
	AsOf        *time.Time `json:"as_of,omitempty"`
	Source      string     `json:"source,omitempty"`
	Model       string     `json:"model,omitempty"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// HasPrediction reports whether the forecast carries a value.
func (f *Forecast) HasPrediction() bool { return f != nil && f.Value != nil }

// SetValue stores the raw prediction and its two-decimal presentation.
func (f *Forecast) SetValue(v float64) {
	f.Value = &v
	f.Display = decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

// Rounded returns the prediction rounded to places decimals. Zero when absent.
func (f *Forecast) Rounded(places int32) decimal.Decimal {
	if !f.HasPrediction() {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*f.Value).Round(places)
}
