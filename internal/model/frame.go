package model

import "time"

// Frame is the flat export table: one row per date, one named column per series.
type Frame struct {
	Dates   []time.Time
	Columns []Column
}

// Column returns the column with the given field and symbol.
func (f *Frame) Column(field, symbol string) (Column, bool) {
	for _, c := range f.Columns {
		if c.Field == field && c.Symbol == symbol {
			return c, true
		}
	}
	return Column{}, false
}

// Symbols returns the distinct symbols in column order.
func (f *Frame) Symbols() []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range f.Columns {
		if !seen[c.Symbol] {
			seen[c.Symbol] = true
			out = append(out, c.Symbol)
		}
	}
	return out
}

// RawColumns returns the OHLCV columns of symbol in t, in export order.
func RawColumns(t *Table, symbol string) []Column {
	return []Column{
		{Symbol: symbol, Field: FieldOpen, Values: t.Opens(symbol)},
		{Symbol: symbol, Field: FieldHigh, Values: t.Highs(symbol)},
		{Symbol: symbol, Field: FieldLow, Values: t.Lows(symbol)},
		{Symbol: symbol, Field: FieldClose, Values: t.Closes(symbol)},
		{Symbol: symbol, Field: FieldVolume, Values: t.Volumes(symbol)},
	}
}
