// Package export serializes the derived table for download.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"StockDash/internal/model"
)

// DateLayout is the date format of the Date column.
const DateLayout = "2006-01-02"

// ErrBadHeader is returned when a CSV header does not describe a frame.
var ErrBadHeader = errors.New("bad header")

// WriteCSV writes frame as comma-separated values: a header row naming every
// column, then one row per date. Missing values are written as empty cells.
func WriteCSV(w io.Writer, frame *model.Frame) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(frame.Columns)+1)
	header = append(header, "Date")
	for _, c := range frame.Columns {
		header = append(header, c.Header())
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rec := make([]string, len(header))
	for i, d := range frame.Dates {
		rec[0] = d.Format(DateLayout)
		for j, c := range frame.Columns {
			rec[j+1] = FormatValue(valueAt(c.Values, i))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses output of WriteCSV back into a frame.
func ReadCSV(r io.Reader) (*model.Frame, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrBadHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 || strings.TrimPrefix(header[0], "\ufeff") != "Date" {
		return nil, fmt.Errorf("%w: first column must be Date", ErrBadHeader)
	}

	frame := &model.Frame{Columns: make([]model.Column, len(header)-1)}
	for i, h := range header[1:] {
		field, symbol, ok := strings.Cut(h, "_")
		if !ok || field == "" || symbol == "" {
			return nil, fmt.Errorf("%w: column %q is not <Field>_<Symbol>", ErrBadHeader, h)
		}
		frame.Columns[i] = model.Column{Field: field, Symbol: symbol}
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		d, err := time.Parse(DateLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: parse date: %w", line, err)
		}
		frame.Dates = append(frame.Dates, d)
		for j := range frame.Columns {
			v, err := ParseValue(rec[j+1])
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, frame.Columns[j].Header(), err)
			}
			frame.Columns[j].Values = append(frame.Columns[j].Values, v)
		}
	}
	return frame, nil
}

// FormatValue renders v in its shortest exact form, or "" when missing.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseValue is the inverse of FormatValue.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func valueAt(vs []float64, i int) float64 {
	if i < len(vs) {
		return vs[i]
	}
	return math.NaN()
}
