package export

import (
	"fmt"
	"io"
	"math"

	"StockDash/internal/model"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook written by WriteXLSX.
const (
	SheetData    = "Data"
	SheetSummary = "Summary"
	SheetSectors = "Sectors"
)

// WriteXLSX writes the derived table and the summary records as an Excel workbook.
func WriteXLSX(w io.Writer, frame *model.Frame, summaries []model.SummaryRecord, sectors []model.SectorAverageRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetData); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []interface{}{"Date"}
	for _, c := range frame.Columns {
		header = append(header, c.Header())
	}
	rows := [][]interface{}{header}
	for i, d := range frame.Dates {
		row := make([]interface{}, 0, len(header))
		row = append(row, d.Format(DateLayout))
		for _, c := range frame.Columns {
			row = append(row, cellValue(valueAt(c.Values, i)))
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, SheetData, rows); err != nil {
		return err
	}

	rows = [][]interface{}{{"Symbol", "Min", "Max", "Mean", "Last"}}
	for _, s := range summaries {
		rows = append(rows, []interface{}{s.Symbol, cellValue(s.Min), cellValue(s.Max), cellValue(s.Mean), cellValue(s.Last)})
	}
	if err := newSheet(f, SheetSummary, rows); err != nil {
		return err
	}

	rows = [][]interface{}{{"Sector", "Members", "Avg Daily % Change"}}
	for _, s := range sectors {
		rows = append(rows, []interface{}{s.Sector, len(s.Members), cellValue(s.AvgDailyPctChange)})
	}
	if err := newSheet(f, SheetSectors, rows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func newSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// Missing values become empty cells.
func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
