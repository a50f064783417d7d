package server

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"

	"StockDash/internal/calculator"
	"StockDash/internal/export"
	"StockDash/internal/logger"
	"StockDash/internal/model"
	"StockDash/internal/pipeline"
	"StockDash/internal/render"

	"github.com/gin-gonic/gin"
)

const (
	msgEmptySelection = "Please select at least one stock symbol."
	msgMissingData    = "No data available for the selected symbols and date range."
)

// run binds the query and executes one pass. On failure it returns the status
// and the user-facing message to report.
func (s *HTTPServer) run(c *gin.Context) (*pipeline.Result, render.Form, int, string) {
	req, form, err := s.bindQuery(c)
	if err != nil {
		return nil, form, http.StatusBadRequest, err.Error()
	}
	res, err := s.pipeline.Run(c.Request.Context(), req)
	switch {
	case err == nil:
		return res, form, http.StatusOK, ""
	case errors.Is(err, pipeline.ErrEmptySelection):
		return nil, form, http.StatusUnprocessableEntity, msgEmptySelection
	case errors.Is(err, pipeline.ErrMissingData):
		return nil, form, http.StatusUnprocessableEntity, msgMissingData
	case errors.Is(err, pipeline.ErrInvalidRange), errors.Is(err, calculator.ErrInvalidWindow):
		return nil, form, http.StatusBadRequest, err.Error()
	default:
		s.log.Error("pass failed", logger.Error(err))
		return nil, form, http.StatusBadGateway, "Failed to load market data: " + err.Error()
	}
}

func (s *HTTPServer) handleIndex(c *gin.Context) {
	res, form, status, msg := s.run(c)
	view := render.View{Form: form, Result: res}
	if msg != "" {
		view.Warnings = []string{msg}
	}
	// An empty selection or missing data is a normal page with a notice.
	if status == http.StatusUnprocessableEntity {
		status = http.StatusOK
	}
	var buf bytes.Buffer
	if err := render.Dashboard(&buf, view); err != nil {
		s.log.Error("render dashboard", logger.Error(err))
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (s *HTTPServer) handleDashboard(c *gin.Context) {
	res, _, status, msg := s.run(c)
	if res == nil {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, newDashboardResponse(res))
}

func (s *HTTPServer) handleExportCSV(c *gin.Context) {
	res, _, status, msg := s.run(c)
	if res == nil {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, res.Frame()); err != nil {
		s.log.Error("csv export", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportName(res, "csv")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *HTTPServer) handleExportXLSX(c *gin.Context) {
	res, _, status, msg := s.run(c)
	if res == nil {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, res.Frame(), res.Summaries, res.Sectors); err != nil {
		s.log.Error("xlsx export", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportName(res, "xlsx")))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func exportName(res *pipeline.Result, ext string) string {
	return fmt.Sprintf("stocks_%s_%s.%s",
		res.Request.Start.Format("20060102"), res.Request.End.Format("20060102"), ext)
}

// dashboardResponse is the JSON form of a Result. Missing values are null.
type dashboardResponse struct {
	PassID    string                 `json:"pass_id"`
	Source    string                 `json:"source"`
	Start     string                 `json:"start"`
	End       string                 `json:"end"`
	Symbols   []string               `json:"symbols"`
	Dates     []string               `json:"dates"`
	Series    map[string]seriesJSON  `json:"series"`
	Summaries []model.SummaryRecord  `json:"summaries"`
	Sectors   []sectorJSON           `json:"sectors"`
	Warnings  []string               `json:"warnings"`
	Meta      map[string]interface{} `json:"meta"`
}

type seriesJSON struct {
	Open           []*float64            `json:"open"`
	High           []*float64            `json:"high"`
	Low            []*float64            `json:"low"`
	Close          []*float64            `json:"close"`
	Volume         []*float64            `json:"volume"`
	MovingAverages map[string][]*float64 `json:"moving_averages"`
	Change         []*float64            `json:"change"`
	PctChange      []*float64            `json:"pct_change"`
}

type sectorJSON struct {
	Sector            string   `json:"sector"`
	Members           []string `json:"members"`
	AvgDailyPctChange *float64 `json:"avg_daily_pct_change"`
}

func nullable(vs []float64) []*float64 {
	out := make([]*float64, len(vs))
	for i, v := range vs {
		out[i] = nullableValue(v)
	}
	return out
}

func nullableValue(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func newDashboardResponse(res *pipeline.Result) dashboardResponse {
	out := dashboardResponse{
		PassID:    res.PassID,
		Source:    res.Source,
		Start:     res.Request.Start.Format("2006-01-02"),
		End:       res.Request.End.Format("2006-01-02"),
		Symbols:   res.Table.Symbols,
		Dates:     make([]string, len(res.Table.Dates)),
		Series:    make(map[string]seriesJSON, len(res.Table.Symbols)),
		Summaries: res.Summaries,
		Warnings:  res.Warnings,
		Meta:      map[string]interface{}{"windows": res.Request.Windows, "elapsed_ms": res.Elapsed.Milliseconds()},
	}
	if out.Summaries == nil {
		out.Summaries = []model.SummaryRecord{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	for i, d := range res.Table.Dates {
		out.Dates[i] = d.Format("2006-01-02")
	}
	for _, sym := range res.Table.Symbols {
		sj := seriesJSON{
			Open:           nullable(res.Table.Opens(sym)),
			High:           nullable(res.Table.Highs(sym)),
			Low:            nullable(res.Table.Lows(sym)),
			Close:          nullable(res.Table.Closes(sym)),
			Volume:         nullable(res.Table.Volumes(sym)),
			MovingAverages: map[string][]*float64{},
		}
		if d, ok := res.Derived[sym]; ok {
			for _, w := range d.Windows() {
				sj.MovingAverages[model.MAField(w)] = nullable(d.MovingAverages[w])
			}
			sj.Change = nullable(d.Change)
			sj.PctChange = nullable(d.PctChange)
		}
		out.Series[sym] = sj
	}
	for _, r := range res.Sectors {
		out.Sectors = append(out.Sectors, sectorJSON{
			Sector:            r.Sector,
			Members:           r.Members,
			AvgDailyPctChange: nullableValue(r.AvgDailyPctChange),
		})
	}
	return out
}
