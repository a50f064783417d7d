package collector

import (
	"context"
	"errors"
	"time"

	"StockDash/internal/model"
)

// ErrNoData marks a symbol for which the source returned no bars.
var ErrNoData = errors.New("no data returned")

// Fetcher returns the daily OHLCV data of symbols over the closed range [start, end],
// aligned on a shared ascending date axis.
type Fetcher interface {
	Fetch(ctx context.Context, symbols []string, start, end time.Time) (*model.Table, error)
	Name() string
}

// inRange reports whether the calendar day of t falls in [start, end].
func inRange(t, start, end time.Time) bool {
	d := model.DateOf(t)
	return !d.Before(model.DateOf(start)) && !d.After(model.DateOf(end))
}

func filterRange(bars []model.OHLCV, start, end time.Time) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if inRange(b.Time, start, end) {
			out = append(out, b)
		}
	}
	return out
}
