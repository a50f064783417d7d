package pipeline

import (
	"time"

	"StockDash/internal/model"
)

// Result is everything one pass computed. It is discarded after rendering.
type Result struct {
	PassID    string
	Request   Request
	Source    string
	Table     *model.Table
	Derived   map[string]*model.Derived
	Summaries []model.SummaryRecord
	Sectors   []model.SectorAverageRecord
	Warnings  []string
	Elapsed   time.Duration
}

// Frame flattens the raw and derived columns for export: per symbol Open, High,
// Low, Close, Volume, MA<w> ascending, Change, PctChange.
func (r *Result) Frame() *model.Frame {
	f := &model.Frame{Dates: r.Table.Dates}
	for _, sym := range r.Table.Symbols {
		f.Columns = append(f.Columns, model.RawColumns(r.Table, sym)...)
		if d, ok := r.Derived[sym]; ok {
			f.Columns = append(f.Columns, d.Columns()...)
		}
	}
	return f
}
