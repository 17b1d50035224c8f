package repository

import (
	"database/sql"
	"time"

	"PriceCast/internal/domain/models"
)

// forecastRow is the flat storage shape shared by the SQL recorders.
type forecastRow struct {
	GeneratedAt time.Time
	Symbol      string
	Period      string
	Steps       int
	Prediction  sql.NullFloat64
	Reason      string
	Detail      string
	Stage       string
	Observed    int
	LastClose   float64
	AsOf        sql.NullTime
	Source      string
	Model       string
}

func toRow(f *models.Forecast) forecastRow {
	r := forecastRow{
		GeneratedAt: f.GeneratedAt.UTC(),
		Symbol:      f.Symbol,
		Period:      f.Period,
		Steps:       f.Steps,
		Reason:      f.Reason,
		Detail:      f.Detail,
		Stage:       string(f.Stage),
		Observed:    f.Observed,
		LastClose:   f.LastClose,
		Source:      f.Source,
		Model:       f.Model,
	}
	if f.Value != nil {
		r.Prediction = sql.NullFloat64{Float64: *f.Value, Valid: true}
	}
	if f.AsOf != nil {
		r.AsOf = sql.NullTime{Time: f.AsOf.UTC(), Valid: true}
	}
	return r
}

func (r forecastRow) toForecast() *models.Forecast {
	f := &models.Forecast{
		Symbol:      r.Symbol,
		Period:      r.Period,
		Steps:       r.Steps,
		Reason:      r.Reason,
		Detail:      r.Detail,
		Stage:       models.Stage(r.Stage),
		Observed:    r.Observed,
		LastClose:   r.LastClose,
		Source:      r.Source,
		Model:       r.Model,
		GeneratedAt: r.GeneratedAt.UTC(),
	}
	if r.Prediction.Valid {
		f.SetValue(r.Prediction.Float64)
	}
	if r.AsOf.Valid {
		asOf := r.AsOf.Time.UTC()
		f.AsOf = &asOf
	}
	return f
}
