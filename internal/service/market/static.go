package market

import (
	"context"
	"strings"
	"time"

	"PriceCast/internal/domain/models"
	drepo "PriceCast/internal/domain/repository"
)

const staticName = "static"

// Static serves the same closing prices for every symbol. Bars are dated one
// day apart ending at the construction day.
type Static struct {
	bars []models.Bar
}

// NewStatic builds a static provider from chronological closes.
func NewStatic(closes []float64) *Static {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Time:  end.AddDate(0, 0, i-len(closes)+1),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	return &Static{bars: bars}
}

func (s *Static) Name() string { return staticName }

func (s *Static) Fetch(ctx context.Context, symbol string, period drepo.Period) (models.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return models.PriceSeries{}, err
	}
	bars := make([]models.Bar, len(s.bars))
	copy(bars, s.bars)
	return models.PriceSeries{
		Symbol: strings.ToUpper(strings.TrimSpace(symbol)),
		Period: string(period),
		Source: staticName,
		Bars:   bars,
	}, nil
}
