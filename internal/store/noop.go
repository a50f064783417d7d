package store

import (
	"context"
	"time"

	"StockDash/internal/model"
)

// NoopCache is a no-op implementation used when SQLite is not configured.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (n *NoopCache) Load(_ context.Context, _ Key, _ time.Duration) ([]model.OHLCV, bool, error) {
	return nil, false, nil
}
func (n *NoopCache) Save(_ context.Context, _ Key, _ []model.OHLCV) error { return nil }
func (n *NoopCache) Close() error                                         { return nil }
