package collector

import (
	"context"
	"hash/fnv"
	"math"
	"time"

	"StockDash/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without an entry in Data get generated weekday bars.
type MockFetcher struct {
	Price float64
	Data  map[string][]model.OHLCV
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, symbols []string, start, end time.Time) (*model.Table, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	series := make(map[string][]model.OHLCV, len(symbols))
	for _, sym := range symbols {
		if bars, ok := m.Data[sym]; ok {
			series[sym] = filterRange(bars, start, end)
			continue
		}
		series[sym] = generateMockBars(sym, m.basePrice(sym), start, end)
	}
	return model.NewTable(symbols, series), nil
}

func (m *MockFetcher) basePrice(symbol string) float64 {
	if m.Price > 0 {
		return m.Price
	}
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return 50 + float64(h.Sum32()%400)
}

// generateMockBars walks a deterministic sine-shaped path over the weekdays of [start, end].
func generateMockBars(symbol string, basePrice float64, start, end time.Time) []model.OHLCV {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	phase := float64(h.Sum32()%628) / 100

	var bars []model.OHLCV
	i := 0
	for d := model.DateOf(start); !d.After(model.DateOf(end)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + 0.05*math.Sin(phase+float64(i)/9) + float64(i)*0.0005)
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   p * 0.998,
			High:   p * 1.01,
			Low:    p * 0.99,
			Close:  p,
			Volume: 1000000 + float64((i*7919)%250000),
		})
		i++
	}
	return bars
}
