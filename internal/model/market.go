package model

import (
	"math"
	"sort"
	"time"
)

// OHLCV represents a single daily bar as returned by a data source.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Bar is one symbol's values on one date of a Table. Missing fields are NaN.
type Bar struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// MissingBar is the placeholder for a date on which a symbol did not trade.
func MissingBar() Bar {
	nan := math.NaN()
	return Bar{Open: nan, High: nan, Low: nan, Close: nan, Volume: nan}
}

// Table is the time-aligned OHLCV data of several symbols.
// Dates are ascending and unique; every slice in Bars has len(Dates) entries.
type Table struct {
	Dates   []time.Time
	Symbols []string
	Bars    map[string][]Bar
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewTable outer-joins per-symbol bars on their calendar date.
// Symbols keep the given order; a symbol absent from series gets an all-missing column.
// When a symbol has several bars on the same date, the last one wins.
func NewTable(symbols []string, series map[string][]OHLCV) *Table {
	seen := make(map[time.Time]struct{})
	for _, sym := range symbols {
		for _, b := range series[sym] {
			seen[DateOf(b.Time)] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}

	t := &Table{
		Dates:   dates,
		Symbols: append([]string(nil), symbols...),
		Bars:    make(map[string][]Bar, len(symbols)),
	}
	for _, sym := range symbols {
		bars := make([]Bar, len(dates))
		for i := range bars {
			bars[i] = MissingBar()
		}
		for _, b := range series[sym] {
			bars[index[DateOf(b.Time)]] = Bar{Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
		}
		t.Bars[sym] = bars
	}
	return t
}

// Len returns the number of dates.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Dates)
}

// Empty reports whether the table holds no rows.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Has reports whether the table carries a column for symbol.
func (t *Table) Has(symbol string) bool {
	_, ok := t.Bars[symbol]
	return ok
}

func (t *Table) field(symbol string, pick func(Bar) float64) []float64 {
	bars := t.Bars[symbol]
	out := make([]float64, t.Len())
	for i := range out {
		if i < len(bars) {
			out[i] = pick(bars[i])
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Opens returns the Open column of symbol.
func (t *Table) Opens(symbol string) []float64 {
	return t.field(symbol, func(b Bar) float64 { return b.Open })
}

// Highs returns the High column of symbol.
func (t *Table) Highs(symbol string) []float64 {
	return t.field(symbol, func(b Bar) float64 { return b.High })
}

// Lows returns the Low column of symbol.
func (t *Table) Lows(symbol string) []float64 {
	return t.field(symbol, func(b Bar) float64 { return b.Low })
}

// Closes returns the Close column of symbol.
func (t *Table) Closes(symbol string) []float64 {
	return t.field(symbol, func(b Bar) float64 { return b.Close })
}

// Volumes returns the Volume column of symbol.
func (t *Table) Volumes(symbol string) []float64 {
	return t.field(symbol, func(b Bar) float64 { return b.Volume })
}

// Series returns the traded bars of symbol, skipping dates without a close.
func (t *Table) Series(symbol string) []OHLCV {
	bars := t.Bars[symbol]
	out := make([]OHLCV, 0, len(bars))
	for i, b := range bars {
		if math.IsNaN(b.Close) {
			continue
		}
		out = append(out, OHLCV{Time: t.Dates[i], Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume})
	}
	return out
}
