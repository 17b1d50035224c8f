package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"PriceCast/internal/domain/models"
	drepo "PriceCast/internal/domain/repository"
	xhttp "PriceCast/pkg/http"
)

const yahooName = "yahoo"

// Yahoo fetches daily bars from the public Yahoo Finance chart API.
type Yahoo struct {
	client    *xhttp.Client
	baseURL   string
	symbolMap map[string]string
}

// YahooConfig configures the Yahoo provider.
type YahooConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RPS       float64
	Burst     int
	UserAgent string
}

// NewYahoo creates a Yahoo chart provider.
func NewYahoo(cfg YahooConfig) *Yahoo {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0"
	}
	return &Yahoo{
		client: xhttp.NewClient(
			xhttp.WithTimeout(cfg.Timeout),
			xhttp.WithRateLimit(cfg.RPS, cfg.Burst),
			xhttp.WithUserAgent(cfg.UserAgent),
		),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		symbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (y *Yahoo) Name() string { return yahooName }

func (y *Yahoo) yahooSymbol(symbol string) string {
	if mapped, ok := y.symbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
// Quote arrays carry nulls for holidays and halted sessions.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns daily bars for the lookback period. An unknown symbol yields
// an empty series rather than an error.
func (y *Yahoo) Fetch(ctx context.Context, symbol string, period drepo.Period) (models.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	series := models.PriceSeries{Symbol: symbol, Period: string(period), Source: yahooName}

	var chart yahooChart
	err := y.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", y.baseURL, url.PathEscape(y.yahooSymbol(symbol))),
		QueryParams: map[string][]string{
			"interval": {"1d"},
			"range":    {string(period)},
		},
	}, &chart)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return series, nil
		}
		return series, &models.ProviderError{Provider: yahooName, Symbol: symbol, Err: err}
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return series, nil
		}
		return series, &models.ProviderError{
			Provider: yahooName,
			Symbol:   symbol,
			Err:      fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description),
		}
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return series, nil
	}

	series.Bars = parseBars(chart)
	return series, nil
}

func parseBars(chart yahooChart) []models.Bar {
	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]models.Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == nil {
			continue // null bar
		}
		bars = append(bars, models.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   deref(at(quote.Open, i)),
			High:   deref(at(quote.High, i)),
			Low:    deref(at(quote.Low, i)),
			Close:  *c,
			Volume: deref(at(quote.Volume, i)),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars
}

func at(vs []*float64, i int) *float64 {
	if i < len(vs) {
		return vs[i]
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
