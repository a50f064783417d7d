package collector

import (
	"context"
	"time"

	"StockDash/internal/logger"
	"StockDash/internal/model"
	"StockDash/internal/store"
)

// CachedFetcher serves symbols from a BarCache and fetches the rest from Inner.
// Cache failures degrade to a plain fetch.
type CachedFetcher struct {
	Inner Fetcher
	Cache store.BarCache
	TTL   time.Duration
	Log   *logger.Logger
}

func NewCachedFetcher(inner Fetcher, cache store.BarCache, ttl time.Duration, log *logger.Logger) *CachedFetcher {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedFetcher{Inner: inner, Cache: cache, TTL: ttl, Log: log}
}

func (c *CachedFetcher) Name() string { return c.Inner.Name() + "+cache" }

func (c *CachedFetcher) Fetch(ctx context.Context, symbols []string, start, end time.Time) (*model.Table, error) {
	start, end = model.DateOf(start), model.DateOf(end)
	series := make(map[string][]model.OHLCV, len(symbols))
	var missing []string

	for _, sym := range symbols {
		bars, ok, err := c.Cache.Load(ctx, store.Key{Symbol: sym, Start: start, End: end}, c.TTL)
		if err != nil {
			c.Log.Warn("cache load failed", logger.String("symbol", sym), logger.Error(err))
		}
		if ok {
			series[sym] = bars
			continue
		}
		missing = append(missing, sym)
	}

	if len(missing) > 0 {
		fresh, err := c.Inner.Fetch(ctx, missing, start, end)
		if err != nil {
			return nil, err
		}
		for _, sym := range missing {
			bars := fresh.Series(sym)
			series[sym] = bars
			if len(bars) == 0 {
				continue
			}
			if err := c.Cache.Save(ctx, store.Key{Symbol: sym, Start: start, End: end}, bars); err != nil {
				c.Log.Warn("cache save failed", logger.String("symbol", sym), logger.Error(err))
			}
		}
	}
	c.Log.Debug("fetch served",
		logger.Int("cached", len(symbols)-len(missing)),
		logger.Int("fetched", len(missing)))
	return model.NewTable(symbols, series), nil
}
