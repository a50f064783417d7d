package store

import (
	"context"
	"time"

	"StockDash/internal/model"
)

// Key identifies one cached fetch: a symbol over a closed date range.
type Key struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// BarCache keeps fetched bars so that repeated passes over the same range
// do not hit the upstream data source.
type BarCache interface {
	// Load returns the bars stored under key if they are younger than maxAge.
	Load(ctx context.Context, key Key, maxAge time.Duration) ([]model.OHLCV, bool, error)
	Save(ctx context.Context, key Key, bars []model.OHLCV) error
	Close() error
}
