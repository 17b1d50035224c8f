package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"PriceCast/internal/domain/models"
	drepo "PriceCast/internal/domain/repository"
	"PriceCast/pkg/util"
)

const alpacaName = "alpaca"

// BarsClient is the part of the Alpaca market data client used here.
type BarsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// Alpaca fetches daily bars from Alpaca market data.
type Alpaca struct {
	client BarsClient
	feed   marketdata.Feed
	now    func() time.Time
}

// AlpacaConfig configures the Alpaca provider.
type AlpacaConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Feed      string
}

// NewAlpaca creates an Alpaca provider with its own data client.
func NewAlpaca(cfg AlpacaConfig) *Alpaca {
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		BaseURL:   cfg.BaseURL,
	})
	return NewAlpacaWithClient(client, cfg.Feed)
}

// NewAlpacaWithClient wraps an existing bars client.
func NewAlpacaWithClient(client BarsClient, feed string) *Alpaca {
	f := marketdata.IEX
	if strings.EqualFold(feed, "sip") {
		f = marketdata.SIP
	}
	return &Alpaca{client: client, feed: f, now: time.Now}
}

func (a *Alpaca) Name() string { return alpacaName }

// Fetch returns daily bars from the start of the period until now.
func (a *Alpaca) Fetch(ctx context.Context, symbol string, period drepo.Period) (models.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	series := models.PriceSeries{Symbol: symbol, Period: string(period), Source: alpacaName}

	if err := ctx.Err(); err != nil {
		return series, err
	}

	end := a.now().UTC()
	start, err := util.PeriodStart(end, string(period))
	if err != nil {
		return series, fmt.Errorf("alpaca period: %w", err)
	}

	bars, err := a.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
		Feed:      a.feed,
	})
	if err != nil {
		return series, &models.ProviderError{Provider: alpacaName, Symbol: symbol, Err: err}
	}

	series.Bars = make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		series.Bars = append(series.Bars, models.Bar{
			Time:   b.Timestamp.UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	return series, nil
}
