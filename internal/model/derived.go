package model

import (
	"fmt"
	"sort"
)

// Column field names used for derived and raw columns.
const (
	FieldOpen      = "Open"
	FieldHigh      = "High"
	FieldLow       = "Low"
	FieldClose     = "Close"
	FieldVolume    = "Volume"
	FieldChange    = "Change"
	FieldPctChange = "PctChange"
)

// MAField returns the column field name of a moving average over window days.
func MAField(window int) string { return fmt.Sprintf("MA%d", window) }

// Column is one named per-symbol sequence aligned on a Table's dates.
type Column struct {
	Symbol string
	Field  string
	Values []float64
}

// Header is the flat name used at the export boundary, e.g. "Close_AAPL".
func (c Column) Header() string { return c.Field + "_" + c.Symbol }

// Derived holds the computed sequences of one symbol.
type Derived struct {
	Symbol         string
	MovingAverages map[int][]float64
	Change         []float64
	PctChange      []float64
}

// Windows returns the moving-average windows in ascending order.
func (d *Derived) Windows() []int {
	ws := make([]int, 0, len(d.MovingAverages))
	for w := range d.MovingAverages {
		ws = append(ws, w)
	}
	sort.Ints(ws)
	return ws
}

// Columns returns the derived columns in export order: MA<w> ascending, Change, PctChange.
func (d *Derived) Columns() []Column {
	var cols []Column
	for _, w := range d.Windows() {
		cols = append(cols, Column{Symbol: d.Symbol, Field: MAField(w), Values: d.MovingAverages[w]})
	}
	cols = append(cols,
		Column{Symbol: d.Symbol, Field: FieldChange, Values: d.Change},
		Column{Symbol: d.Symbol, Field: FieldPctChange, Values: d.PctChange},
	)
	return cols
}
