package collector

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"StockDash/internal/export"
	"StockDash/internal/model"
)

// FileFetcher serves data from a CSV previously written by export.WriteCSV
// (or any file with a Date column and <Field>_<Symbol> columns).
type FileFetcher struct {
	Path string
}

func NewFileFetcher(path string) *FileFetcher { return &FileFetcher{Path: path} }

func (f *FileFetcher) Name() string { return "file" }

func (f *FileFetcher) Fetch(_ context.Context, symbols []string, start, end time.Time) (*model.Table, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer file.Close()

	frame, err := export.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read data file %s: %w", f.Path, err)
	}

	series := make(map[string][]model.OHLCV, len(symbols))
	for _, sym := range symbols {
		closes, ok := frame.Column(model.FieldClose, sym)
		if !ok {
			continue
		}
		pick := func(field string) []float64 {
			if c, ok := frame.Column(field, sym); ok {
				return c.Values
			}
			return nil
		}
		opens, highs, lows, vols := pick(model.FieldOpen), pick(model.FieldHigh), pick(model.FieldLow), pick(model.FieldVolume)

		var bars []model.OHLCV
		for i, d := range frame.Dates {
			if !inRange(d, start, end) || math.IsNaN(closes.Values[i]) {
				continue
			}
			bars = append(bars, model.OHLCV{
				Time:   d,
				Open:   at(opens, i),
				High:   at(highs, i),
				Low:    at(lows, i),
				Close:  closes.Values[i],
				Volume: at(vols, i),
			})
		}
		series[sym] = bars
	}
	return model.NewTable(symbols, series), nil
}

func at(vs []float64, i int) float64 {
	if i < len(vs) {
		return vs[i]
	}
	return math.NaN()
}
