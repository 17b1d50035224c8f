package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"PriceCast/internal/di"
	domrepo "PriceCast/internal/domain/repository"
	"PriceCast/internal/services/scaling"
	"PriceCast/internal/services/sequence"
	"PriceCast/pkg/config"
	applogger "PriceCast/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	symbols := flag.String("symbols", "", "comma separated tickers to fit on (default scheduler.symbols)")
	baseline := flag.Bool("baseline", false, "also write a persistence baseline model to model.path")
	flag.Parse()

	if err := run(*configPath, *symbols, *baseline); err != nil {
		fmt.Fprintf(os.Stderr, "pricecast-fit: %v\n", err)
		os.Exit(1)
	}
}

// run fits the scaler on the configured lookback of every symbol and writes
// it to forecast.scaler_path.
func run(configPath, symbolList string, baseline bool) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}
	l, err := di.ProvideLogger(cfg)
	if err != nil {
		return err
	}
	l = l.Component("fit")

	syms := cfg.Scheduler.Symbols
	if symbolList != "" {
		syms = strings.Split(symbolList, ",")
	}

	provider := di.ProvidePriceProvider(cfg, nil, l)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Forecast.Timeout*time.Duration(1+len(syms)))
	defer cancel()

	s, n, err := fitScaler(ctx, provider, syms, domrepo.Period(cfg.Forecast.Period), l)
	if err != nil {
		return err
	}
	if err := writeArtifact(cfg.Forecast.ScalerPath, s.Save); err != nil {
		return err
	}
	a := s.Artifact()
	l.Info("scaler written",
		applogger.String("path", cfg.Forecast.ScalerPath),
		applogger.Int("closes", n),
		applogger.Float64("data_min", a.DataMin[0]),
		applogger.Float64("data_max", a.DataMax[0]),
	)

	if baseline {
		spec := sequence.PersistenceSpec(cfg.Forecast.Steps)
		save := func(path string) error { return sequence.SaveSpec(path, spec) }
		if err := writeArtifact(cfg.Model.Path, save); err != nil {
			return err
		}
		l.Info("baseline model written", applogger.String("path", cfg.Model.Path), applogger.Int("steps", spec.InputSteps))
	}
	return nil
}

// fitScaler fits one feature over the closes of every symbol. Symbols with
// no history are skipped; a provider error stops the fit.
func fitScaler(ctx context.Context, p domrepo.PriceProvider, symbols []string, period domrepo.Period, l *applogger.Logger) (*scaling.MinMax, int, error) {
	var rows [][]float64
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		series, err := p.Fetch(ctx, sym, period)
		if err != nil {
			return nil, 0, fmt.Errorf("fetch %s: %w", sym, err)
		}
		if series.Empty() {
			l.Warn("no history, skipped", applogger.Symbol(sym))
			continue
		}
		for _, c := range series.Closes() {
			rows = append(rows, []float64{c})
		}
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no closes fetched for %v", symbols)
	}
	s, err := scaling.Fit(rows, 0, 1)
	if err != nil {
		return nil, 0, err
	}
	return s, len(rows), nil
}

func writeArtifact(path string, save func(string) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	return save(path)
}
