package server

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"StockDash/internal/pipeline"
	"StockDash/internal/render"

	"github.com/gin-gonic/gin"
)

// errBadQuery marks a malformed query parameter.
var errBadQuery = errors.New("invalid query")

// dashboardQuery is the control state carried in the URL.
type dashboardQuery struct {
	Symbols string `form:"symbols" binding:"max=512"`
	Start   string `form:"start" binding:"omitempty,datetime=2006-01-02"`
	End     string `form:"end" binding:"omitempty,datetime=2006-01-02"`
	MA      string `form:"ma" binding:"max=64"`
	Theme   string `form:"theme" binding:"omitempty,oneof=light dark"`
}

// Defaults fill in controls the user left out.
type Defaults struct {
	Symbols  []string
	Lookback time.Duration
	Windows  []int
}

// bindQuery reads the controls from c. An absent symbols parameter selects the
// defaults; a present but empty one is an empty selection.
func (s *HTTPServer) bindQuery(c *gin.Context) (pipeline.Request, render.Form, error) {
	var q dashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return pipeline.Request{}, render.Form{}, fmt.Errorf("%w: %v", errBadQuery, err)
	}
	if _, ok := c.GetQuery("symbols"); !ok {
		q.Symbols = strings.Join(s.defaults.Symbols, ",")
	}
	if _, ok := c.GetQuery("ma"); !ok {
		q.MA = joinInts(s.defaults.Windows)
	}

	end := s.now().UTC()
	if q.End != "" {
		end, _ = time.Parse("2006-01-02", q.End)
	}
	start := end.Add(-s.defaults.Lookback)
	if q.Start != "" {
		start, _ = time.Parse("2006-01-02", q.Start)
	}
	windows, err := pipeline.ParseWindows(q.MA)
	if err != nil {
		return pipeline.Request{}, render.Form{}, fmt.Errorf("%w: ma: %v", errBadQuery, err)
	}

	form := render.Form{
		Symbols: q.Symbols,
		Start:   start.Format("2006-01-02"),
		End:     end.Format("2006-01-02"),
		MA:      q.MA,
		Theme:   q.Theme,
	}
	req := pipeline.Request{
		Symbols: pipeline.ParseSymbols(q.Symbols),
		Start:   start,
		End:     end,
		Windows: windows,
	}
	return req, form, nil
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
