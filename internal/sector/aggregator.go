package sector

import (
	"math"

	"StockDash/internal/calculator"
	"StockDash/internal/model"
)

// Group is one sector with its member symbols in request order.
type Group struct {
	Sector  string
	Members []string
}

// GroupSymbols buckets symbols by sector. Sectors appear in order of first encounter
// and duplicate symbols are ignored.
func GroupSymbols(symbols []string, sectors Map) []Group {
	var groups []Group
	index := make(map[string]int)
	seen := make(map[string]bool)
	for _, sym := range symbols {
		if seen[sym] {
			continue
		}
		seen[sym] = true
		sec := sectors.Lookup(sym)
		i, ok := index[sec]
		if !ok {
			i = len(groups)
			index[sec] = i
			groups = append(groups, Group{Sector: sec})
		}
		groups[i].Members = append(groups[i].Members, sym)
	}
	return groups
}

// DailySeries returns, per date, the mean of the members' finite percentage changes.
// A date on which no member has a finite value is NaN.
func DailySeries(members []string, pctChange map[string][]float64) []float64 {
	n := 0
	for _, sym := range members {
		if l := len(pctChange[sym]); l > n {
			n = l
		}
	}
	out := make([]float64, n)
	row := make([]float64, len(members))
	for i := 0; i < n; i++ {
		for j, sym := range members {
			series := pctChange[sym]
			if i < len(series) {
				row[j] = series[i]
			} else {
				row[j] = math.NaN()
			}
		}
		out[i] = calculator.NanMean(row)
	}
	return out
}

// Averages reduces each sector's per-date mean change to a single average daily
// percentage change. pctChange holds percent values as produced by
// calculator.DailyPercentChange.
func Averages(symbols []string, sectors Map, pctChange map[string][]float64) []model.SectorAverageRecord {
	groups := GroupSymbols(symbols, sectors)
	out := make([]model.SectorAverageRecord, 0, len(groups))
	for _, g := range groups {
		daily := DailySeries(g.Members, pctChange)
		out = append(out, model.SectorAverageRecord{
			Sector:            g.Sector,
			Members:           g.Members,
			AvgDailyPctChange: calculator.RoundPercent(calculator.NanMean(daily)),
		})
	}
	return out
}
