// Package render turns a pipeline result into terminal tables and an HTML dashboard.
// Nothing here computes; values arrive rounded from the pipeline.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"StockDash/internal/model"
	"StockDash/internal/pipeline"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Missing is how an undefined value is shown in tables.
const Missing = "n/a"

// FormatFloat prints v with the given decimals, or Missing when v is not finite.
func FormatFloat(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return strconv.FormatFloat(v, 'f', places, 64)
}

// SummaryTable lists min, max, mean and last close per symbol.
func SummaryTable(records []model.SummaryRecord) table.Writer {
	t := table.NewWriter()
	t.SetTitle("Summary (Close)")
	t.AppendHeader(table.Row{"Symbol", "Min", "Max", "Mean", "Last"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.Symbol,
			FormatFloat(r.Min, 2),
			FormatFloat(r.Max, 2),
			FormatFloat(r.Mean, 2),
			FormatFloat(r.Last, 2),
		})
	}
	alignNumbers(t, 2, 3, 4, 5)
	return t
}

// SectorTable lists the average daily percentage change per sector.
func SectorTable(records []model.SectorAverageRecord) table.Writer {
	t := table.NewWriter()
	t.SetTitle("Sector average daily % change")
	t.AppendHeader(table.Row{"Sector", "Members", "Avg daily % change"})
	for _, r := range records {
		t.AppendRow(table.Row{r.Sector, strings.Join(r.Members, ", "), FormatFloat(r.AvgDailyPctChange, 4)})
	}
	alignNumbers(t, 3)
	return t
}

func alignNumbers(t table.Writer, cols ...int) {
	configs := make([]table.ColumnConfig, 0, len(cols))
	for _, c := range cols {
		configs = append(configs, table.ColumnConfig{Number: c, Align: text.AlignRight})
	}
	t.SetColumnConfigs(configs)
}

// WriteText writes the summary and sector tables of res for a terminal.
func WriteText(w io.Writer, res *pipeline.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s .. %s  source=%s  rows=%d\n\n",
		res.Request.Start.Format("2006-01-02"), res.Request.End.Format("2006-01-02"),
		res.Source, res.Table.Len())
	for _, msg := range res.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", msg)
	}
	if len(res.Warnings) > 0 {
		b.WriteString("\n")
	}

	summary := SummaryTable(res.Summaries)
	summary.SetStyle(table.StyleLight)
	b.WriteString(summary.Render())
	b.WriteString("\n\n")

	sectors := SectorTable(res.Sectors)
	sectors.SetStyle(table.StyleLight)
	b.WriteString(sectors.Render())
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
