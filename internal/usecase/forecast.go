package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	domsvc "PriceCast/internal/domain/service"
	applogger "PriceCast/pkg/logger"
)

// Pipeline runs one forecast: fetch, prepare window, predict, inverse-scale.
// Scaler and model are read-only after construction and shared across calls.
type Pipeline struct {
	provider domrepo.PriceProvider
	scaler   domsvc.Scaler
	builder  domsvc.WindowBuilder
	model    domsvc.SequenceModel
	metrics  domrepo.Metrics
	logger   *applogger.Logger
	steps    int
	period   domrepo.Period
	now      func() time.Time
}

// NewPipeline checks that steps and feature counts agree across the scaler,
// model and configuration.
func NewPipeline(
	provider domrepo.PriceProvider,
	scaler domsvc.Scaler,
	builder domsvc.WindowBuilder,
	model domsvc.SequenceModel,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	steps int,
	period domrepo.Period,
) (*Pipeline, error) {
	if provider == nil || scaler == nil || builder == nil || model == nil {
		return nil, fmt.Errorf("pipeline: provider, scaler, builder and model are required")
	}
	if steps != model.InputSteps() {
		return nil, &models.DimensionMismatchError{What: "model input steps", Expected: steps, Got: model.InputSteps()}
	}
	if scaler.Features() != 1 {
		return nil, &models.DimensionMismatchError{What: "scaler features", Expected: 1, Got: scaler.Features()}
	}
	if model.Features() != 1 {
		return nil, &models.DimensionMismatchError{What: "model features", Expected: 1, Got: model.Features()}
	}
	if !domrepo.IsValidPeriod(period) {
		return nil, fmt.Errorf("pipeline: unsupported period %q", period)
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Pipeline{
		provider: provider,
		scaler:   scaler,
		builder:  builder,
		model:    model,
		metrics:  metrics,
		logger:   logger,
		steps:    steps,
		period:   period,
		now:      time.Now,
	}, nil
}

func (p *Pipeline) Steps() int             { return p.steps }
func (p *Pipeline) Period() domrepo.Period { return p.period }
func (p *Pipeline) ProviderName() string   { return p.provider.Name() }
func (p *Pipeline) ModelName() string      { return p.model.Name() }

// run tracks the current stage of a single forecast.
type run struct {
	p       *Pipeline
	f       *models.Forecast
	started time.Time
}

func (r *run) enter(next models.Stage) {
	now := r.p.now()
	if r.f.Stage != models.StageIdle {
		r.p.metrics.RecordStage(r.f.Stage, now.Sub(r.started).Seconds())
	}
	r.p.logger.Debug("forecast stage",
		applogger.Symbol(r.f.Symbol),
		applogger.String("from", string(r.f.Stage)),
		applogger.String("to", string(next)),
	)
	r.f.Stage = next
	r.started = now
}

// Run produces a forecast for symbol. Empty or short history and shape
// mismatches give a Forecast without a value and a nil error. Provider,
// model and context failures are returned as errors.
func (p *Pipeline) Run(ctx context.Context, symbol string) (*models.Forecast, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("forecast: symbol required")
	}

	r := &run{p: p, f: &models.Forecast{
		Symbol:      symbol,
		Period:      string(p.period),
		Steps:       p.steps,
		Stage:       models.StageIdle,
		Source:      p.provider.Name(),
		Model:       p.model.Name(),
		GeneratedAt: p.now().UTC(),
	}}

	r.enter(models.StageFetching)
	fetchStart := p.now()
	series, err := p.provider.Fetch(ctx, symbol, p.period)
	p.metrics.RecordLatency("fetch", p.now().Sub(fetchStart).Seconds())
	if err != nil {
		return r.fail(fmt.Errorf("fetch: %w", err))
	}
	if series.Empty() {
		return r.fail(&models.EmptyHistoryError{Symbol: symbol})
	}
	r.f.Observed = series.Len()
	if last, ok := series.Last(); ok {
		r.f.LastClose = last.Close
		asOf := last.Time.UTC()
		r.f.AsOf = &asOf
	}

	r.enter(models.StagePreparing)
	window, err := p.builder.Build(series.Closes(), p.steps)
	if err != nil {
		return r.fail(fmt.Errorf("prepare: %w", err))
	}

	r.enter(models.StagePredicting)
	predictStart := p.now()
	normalized, err := p.model.Predict(ctx, window)
	p.metrics.RecordLatency("predict", p.now().Sub(predictStart).Seconds())
	if err != nil {
		return r.fail(fmt.Errorf("predict: %w", err))
	}
	value, err := p.scaler.InverseValue(normalized)
	if err != nil {
		return r.fail(fmt.Errorf("inverse scale: %w", err))
	}

	r.enter(models.StageDone)
	r.f.SetValue(value)
	p.metrics.RecordForecast(symbol, "ok")
	p.metrics.RecordLastForecast(symbol, value)
	if value < 0 {
		p.metrics.RecordNegativeForecast(symbol)
		p.logger.Warn("negative forecast",
			applogger.Symbol(symbol),
			applogger.Float64("prediction", value),
			applogger.Float64("last_close", r.f.LastClose),
		)
	}
	return r.f, nil
}

func (r *run) fail(err error) (*models.Forecast, error) {
	r.enter(models.StageError)
	p := r.p

	if reason, ok := models.NoPredictionReason(err); ok {
		r.f.Reason = reason
		r.f.Detail = err.Error()
		p.metrics.RecordForecast(r.f.Symbol, "no_prediction")
		p.logger.Info("no prediction",
			applogger.Symbol(r.f.Symbol),
			applogger.String("reason", reason),
			applogger.Int("observed", r.f.Observed),
		)
		return r.f, nil
	}

	kind := errorKind(err)
	p.metrics.RecordForecast(r.f.Symbol, "error")
	p.metrics.RecordError(kind)
	return nil, fmt.Errorf("forecast %s: %w", r.f.Symbol, err)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, models.ErrProvider):
		return "provider"
	default:
		return "model"
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordForecast(string, string)      {}
func (nopMetrics) RecordStage(models.Stage, float64)  {}
func (nopMetrics) RecordLastForecast(string, float64) {}
func (nopMetrics) RecordNegativeForecast(string)      {}
func (nopMetrics) RecordError(string)                 {}
func (nopMetrics) RecordLatency(string, float64)      {}
