package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"PriceCast/internal/domain/models"
	applogger "PriceCast/pkg/logger"
)

// Forecaster is satisfied by ForecastService.
type Forecaster interface {
	Forecast(ctx context.Context, symbol string) (*models.Forecast, error)
}

// Scheduler runs forecasts for a fixed symbol list on a cron spec.
type Scheduler struct {
	cron       *cron.Cron
	forecaster Forecaster
	symbols    []string
	timeout    time.Duration
	logger     *applogger.Logger
}

// NewScheduler registers one job on spec (six fields, with seconds).
func NewScheduler(f Forecaster, spec string, symbols []string, timeout time.Duration, l *applogger.Logger) (*Scheduler, error) {
	if l == nil {
		l = applogger.Nop()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	s := &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		forecaster: f,
		symbols:    normalizeSymbols(symbols),
		timeout:    timeout,
		logger:     l,
	}
	if len(s.symbols) == 0 {
		return nil, fmt.Errorf("scheduler: no symbols")
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("register forecast job: %w", err)
	}
	return s, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", applogger.Strings("symbols", s.symbols))
}

// Stop stops the scheduler and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.logger.Info("scheduler stopped")
}

// RunOnce forecasts every symbol sequentially. A failure for one symbol does
// not stop the others. It returns the number of forecasts with a value.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	predicted := 0
	for _, sym := range s.symbols {
		if ctx.Err() != nil {
			break
		}
		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		f, err := s.forecaster.Forecast(runCtx, sym)
		cancel()
		if err != nil {
			s.logger.Error("scheduled forecast failed", applogger.Symbol(sym), applogger.Error(err))
			continue
		}
		if f.HasPrediction() {
			predicted++
			s.logger.Info("scheduled forecast",
				applogger.Symbol(sym),
				applogger.String("prediction", f.Display),
			)
		} else {
			s.logger.Info("scheduled forecast without prediction",
				applogger.Symbol(sym),
				applogger.String("reason", f.Reason),
			)
		}
	}
	return predicted
}

func normalizeSymbols(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
