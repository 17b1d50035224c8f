package market

import (
	"context"
	"errors"
	"time"

	"PriceCast/internal/domain/models"
	drepo "PriceCast/internal/domain/repository"
	"PriceCast/pkg/cache"
	applogger "PriceCast/pkg/logger"
)

// Cached decorates a provider with a read-through series cache.
type Cached struct {
	next   drepo.PriceProvider
	cache  cache.Service
	ttl    time.Duration
	logger *applogger.Logger
}

// NewCached wraps next. Cache failures are logged and fall through to next.
func NewCached(next drepo.PriceProvider, c cache.Service, ttl time.Duration, l *applogger.Logger) *Cached {
	if l == nil {
		l = applogger.Nop()
	}
	return &Cached{next: next, cache: c, ttl: ttl, logger: l}
}

func (c *Cached) Name() string { return c.next.Name() }

func (c *Cached) Fetch(ctx context.Context, symbol string, period drepo.Period) (models.PriceSeries, error) {
	key := cache.SeriesKey(c.next.Name(), symbol, string(period))

	var series models.PriceSeries
	err := c.cache.Get(ctx, key, &series)
	if err == nil && !series.Empty() {
		return series, nil
	}
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn("series cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	series, err = c.next.Fetch(ctx, symbol, period)
	if err != nil {
		return series, err
	}

	// empty series are never cached so a listing that appears later is seen
	if !series.Empty() {
		if err := c.cache.Set(ctx, key, series, c.ttl); err != nil {
			c.logger.Warn("series cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return series, nil
}
