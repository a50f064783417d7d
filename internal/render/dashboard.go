package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"math"
	"net/url"

	"StockDash/internal/calculator"
	"StockDash/internal/model"
	"StockDash/internal/pipeline"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// chartMissing is the ECharts marker for a gap in a series.
const chartMissing = "-"

// lightTheme is the ECharts built-in default theme.
const lightTheme = "white"

// Form holds the dashboard controls as the user typed them.
type Form struct {
	Symbols string
	Start   string
	End     string
	MA      string
	Theme   string
}

// Themes are the accepted values of Form.Theme.
var Themes = []string{"light", "dark"}

// chartTheme maps a form theme to an ECharts theme.
func chartTheme(theme string) string {
	if theme == "dark" {
		return types.ThemeChalk
	}
	return lightTheme
}

// Query encodes the form as URL parameters.
func (f Form) Query() string {
	q := url.Values{}
	q.Set("symbols", f.Symbols)
	q.Set("start", f.Start)
	q.Set("end", f.End)
	q.Set("ma", f.MA)
	if f.Theme != "" {
		q.Set("theme", f.Theme)
	}
	return q.Encode()
}

// View is everything one dashboard page shows. Result is nil when the pass
// produced nothing to chart; Warnings then explain why.
type View struct {
	Form     Form
	Result   *pipeline.Result
	Warnings []string
}

var headerTmpl = template.Must(template.New("header").Parse(`
<style>
  body { font-family: sans-serif; margin: 0 24px; }
  .controls form { display: flex; gap: 12px; align-items: end; flex-wrap: wrap; margin: 12px 0; }
  .controls label { display: flex; flex-direction: column; font-size: 13px; }
  .warning { background: #fff4e5; border-left: 4px solid #f0a020; padding: 8px 12px; }
  .go-pretty-table { border-collapse: collapse; margin: 8px 24px 16px 0; display: inline-table; }
  .go-pretty-table td, .go-pretty-table th { border: 1px solid #ddd; padding: 4px 10px; }
</style>
{{if eq .Form.Theme "dark"}}<style>
  body { background: #293441; color: #eee; }
  .warning { background: #3a3a2a; }
  a { color: #9cf; }
</style>{{end}}
<div class="controls">
  <h1>Stock Dashboard</h1>
  <form method="get" action="/">
    <label>Symbols <input name="symbols" value="{{.Form.Symbols}}" size="40"></label>
    <label>Start <input type="date" name="start" value="{{.Form.Start}}"></label>
    <label>End <input type="date" name="end" value="{{.Form.End}}"></label>
    <label>MA windows <input name="ma" value="{{.Form.MA}}" size="10"></label>
    <label>Theme <select name="theme">
      {{range .Themes}}<option value="{{.}}"{{if eq . $.Form.Theme}} selected{{end}}>{{.}}</option>
      {{end}}</select></label>
    <button type="submit">Update</button>
  </form>
  {{range .Warnings}}<p class="warning">{{.}}</p>
  {{end}}
  {{if .HasResult}}
  <p>{{.Rows}} trading days from {{.Source}}.
    <a href="{{.CSVURL}}">Download CSV</a> |
    <a href="{{.XLSXURL}}">Download XLSX</a></p>
  <div>{{.Summary}}{{.Sectors}}</div>
  {{end}}
</div>
`))

type headerData struct {
	Form      Form
	Themes    []string
	Warnings  []string
	HasResult bool
	Rows      int
	Source    string
	CSVURL    template.URL
	XLSXURL   template.URL
	Summary   template.HTML
	Sectors   template.HTML
}

// Dashboard writes a self-contained HTML page with the controls, warnings,
// summary tables and the price, volume, change and sector charts.
func Dashboard(w io.Writer, v View) error {
	q := v.Form.Query()
	data := headerData{
		Form:     v.Form,
		Themes:   Themes,
		Warnings: v.Warnings,
		CSVURL:   template.URL("/api/export.csv?" + q),
		XLSXURL:  template.URL("/api/export.xlsx?" + q),
	}
	page := components.NewPage()
	page.PageTitle = "Stock Dashboard"

	if res := v.Result; res != nil {
		data.Warnings = append(append([]string(nil), v.Warnings...), res.Warnings...)
		data.HasResult = true
		data.Rows = res.Table.Len()
		data.Source = res.Source
		data.Summary = template.HTML(SummaryTable(res.Summaries).RenderHTML())
		data.Sectors = template.HTML(SectorTable(res.Sectors).RenderHTML())
		theme := chartTheme(v.Form.Theme)
		page.AddCharts(
			PriceChart(res, theme),
			VolumeChart(res, theme),
			ChangeChart(res, theme),
			PctChangeChart(res, theme),
			SectorChart(res.Sectors, theme),
		)
	}

	var header bytes.Buffer
	if err := headerTmpl.Execute(&header, data); err != nil {
		return fmt.Errorf("render header: %w", err)
	}
	var body bytes.Buffer
	if err := page.Render(&body); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	_, err := w.Write(injectAfterBody(body.Bytes(), header.Bytes()))
	return err
}

// injectAfterBody inserts fragment right after the opening body tag of page.
func injectAfterBody(page, fragment []byte) []byte {
	i := bytes.Index(page, []byte("<body"))
	if i < 0 {
		return append(fragment, page...)
	}
	j := bytes.IndexByte(page[i:], '>')
	if j < 0 {
		return append(fragment, page...)
	}
	at := i + j + 1
	out := make([]byte, 0, len(page)+len(fragment))
	out = append(out, page[:at]...)
	out = append(out, fragment...)
	return append(out, page[at:]...)
}

func dateAxis(t *model.Table) []string {
	out := make([]string, len(t.Dates))
	for i, d := range t.Dates {
		out[i] = d.Format("2006-01-02")
	}
	return out
}

func chartValue(v float64, round func(float64) float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return chartMissing
	}
	return round(v)
}

func lineData(vs []float64, round func(float64) float64) []opts.LineData {
	out := make([]opts.LineData, len(vs))
	for i, v := range vs {
		out[i] = opts.LineData{Value: chartValue(v, round)}
	}
	return out
}

func barData(vs []float64, round func(float64) float64) []opts.BarData {
	out := make([]opts.BarData, len(vs))
	for i, v := range vs {
		out[i] = opts.BarData{Value: chartValue(v, round)}
	}
	return out
}

func identity(v float64) float64 { return v }

func timeSeriesOpts(id, theme, title, yName string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{ChartID: id, Theme: theme, Width: "1200px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
	}
}

// PriceChart plots each symbol's close and moving averages.
func PriceChart(res *pipeline.Result, theme string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(timeSeriesOpts("price", theme, "Closing Price and Moving Averages", "Price (USD)")...)
	line.SetXAxis(dateAxis(res.Table))
	for _, sym := range res.Table.Symbols {
		line.AddSeries(sym+" Close", lineData(res.Table.Closes(sym), calculator.RoundPrice))
		d, ok := res.Derived[sym]
		if !ok {
			continue
		}
		for _, w := range d.Windows() {
			line.AddSeries(fmt.Sprintf("%s %s", sym, model.MAField(w)), lineData(d.MovingAverages[w], calculator.RoundPrice))
		}
	}
	return line
}

// VolumeChart plots each symbol's traded volume.
func VolumeChart(res *pipeline.Result, theme string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(timeSeriesOpts("volume", theme, "Trading Volume", "Shares")...)
	bar.SetXAxis(dateAxis(res.Table))
	for _, sym := range res.Table.Symbols {
		bar.AddSeries(sym, barData(res.Table.Volumes(sym), identity))
	}
	return bar
}

// ChangeChart plots close minus open per day, with every symbol's bars
// overlaid on the same slot.
func ChangeChart(res *pipeline.Result, theme string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(timeSeriesOpts("change", theme, "Daily Price Change (Close - Open)", "Price Change (USD)")...)
	bar.SetXAxis(dateAxis(res.Table))
	for _, sym := range res.Table.Symbols {
		if d, ok := res.Derived[sym]; ok {
			bar.AddSeries(sym, barData(d.Change, calculator.RoundPrice),
				charts.WithBarChartOpts(opts.BarChart{BarGap: "-100%"}))
		}
	}
	return bar
}

// PctChangeChart plots the close-to-close percentage change.
func PctChangeChart(res *pipeline.Result, theme string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(timeSeriesOpts("pct", theme, "Daily % Change", "Change (%)")...)
	line.SetXAxis(dateAxis(res.Table))
	for _, sym := range res.Table.Symbols {
		if d, ok := res.Derived[sym]; ok {
			line.AddSeries(sym, lineData(d.PctChange, calculator.RoundPercent))
		}
	}
	return line
}

// SectorChart compares the average daily percentage change across sectors.
func SectorChart(records []model.SectorAverageRecord, theme string) *charts.Bar {
	names := make([]string, len(records))
	values := make([]float64, len(records))
	for i, r := range records {
		names[i] = r.Sector
		values[i] = r.AvgDailyPctChange
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: "sectors", Theme: theme, Width: "1200px", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Average Daily % Change by Sector"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Avg change (%)"}),
	)
	bar.SetXAxis(names).AddSeries("Avg daily % change", barData(values, identity))
	return bar
}
