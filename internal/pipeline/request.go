package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"StockDash/internal/calculator"
	"StockDash/internal/model"
)

// Request selects the symbols, closed date range and moving-average windows of one pass.
type Request struct {
	Symbols []string
	Start   time.Time
	End     time.Time
	Windows []int
}

// Normalize cleans the request: symbols are trimmed, upper-cased and deduplicated
// in order, dates truncated to days, windows sorted and deduplicated.
func (r Request) Normalize() (Request, error) {
	out := Request{Start: model.DateOf(r.Start), End: model.DateOf(r.End)}
	seen := make(map[string]bool, len(r.Symbols))
	for _, s := range r.Symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out.Symbols = append(out.Symbols, s)
	}
	if len(out.Symbols) == 0 {
		return out, ErrEmptySelection
	}
	if out.Start.After(out.End) {
		return out, fmt.Errorf("%w: %s > %s", ErrInvalidRange,
			out.Start.Format("2006-01-02"), out.End.Format("2006-01-02"))
	}
	ws, err := calculator.NormalizeWindows(r.Windows)
	if err != nil {
		return out, err
	}
	out.Windows = ws
	return out, nil
}

// ParseSymbols splits a comma or whitespace separated list of tickers.
func ParseSymbols(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == ';'
	})
}

// ParseWindows reads a comma or space separated list of moving-average windows.
// Every entry must be a whole number; range checks happen in Normalize.
func ParseWindows(s string) ([]int, error) {
	var out []int
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		w, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a whole number", calculator.ErrInvalidWindow, part)
		}
		out = append(out, w)
	}
	return out, nil
}
