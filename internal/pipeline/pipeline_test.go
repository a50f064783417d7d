package pipeline

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"StockDash/internal/calculator"
	"StockDash/internal/collector"
	"StockDash/internal/logger"
	"StockDash/internal/metrics"
	"StockDash/internal/model"
	"StockDash/internal/sector"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func bars(start int, closes ...float64) []model.OHLCV {
	out := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		out[i] = model.OHLCV{Time: day(start + i), Open: c - 1, High: c + 1, Low: c - 2, Close: c, Volume: 1000}
	}
	return out
}

func TestRun_EmptySelectionDoesNotFetch(t *testing.T) {
	mock := &collector.MockFetcher{}
	rec := metrics.New()
	p := New(mock, sector.DefaultMap(), nil, rec)

	_, err := p.Run(context.Background(), Request{Symbols: []string{" ", ""}, Start: day(1), End: day(5)})
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Zero(t, mock.Calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.PassCounter("empty_selection")))
}

func TestRun_InvalidRange(t *testing.T) {
	mock := &collector.MockFetcher{}
	p := New(mock, sector.DefaultMap(), nil, nil)

	_, err := p.Run(context.Background(), Request{Symbols: []string{"AAPL"}, Start: day(5), End: day(1)})
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Zero(t, mock.Calls)
}

func TestRun_MissingData(t *testing.T) {
	mock := &collector.MockFetcher{Data: map[string][]model.OHLCV{"AAPL": nil, "MSFT": nil}}
	p := New(mock, sector.DefaultMap(), nil, nil)

	_, err := p.Run(context.Background(), Request{Symbols: []string{"AAPL", "MSFT"}, Start: day(1), End: day(5)})
	assert.ErrorIs(t, err, ErrMissingData)
	assert.Equal(t, 1, mock.Calls)
}

func TestRun_FetchErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	rec := metrics.New()
	p := New(&collector.MockFetcher{Err: boom}, sector.DefaultMap(), nil, rec)

	_, err := p.Run(context.Background(), Request{Symbols: []string{"AAPL"}, Start: day(1), End: day(5)})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.PassCounter("error")))
}

func TestRun_ComputesSeriesSummariesAndSectors(t *testing.T) {
	mock := &collector.MockFetcher{Data: map[string][]model.OHLCV{
		"AAPL": bars(1, 100, 101, 102),
		"MSFT": bars(1, 200, 202, 204),
		"XOM":  bars(2, 50, 51),
	}}
	p := New(mock, sector.DefaultMap(), nil, metrics.New())

	res, err := p.Run(context.Background(), Request{
		Symbols: []string{"aapl", "MSFT", "xom", "AAPL"},
		Start:   day(1),
		End:     day(3),
		Windows: []int{2},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.PassID)
	assert.Equal(t, "mock", res.Source)
	assert.Equal(t, []string{"AAPL", "MSFT", "XOM"}, res.Request.Symbols)
	assert.Equal(t, []time.Time{day(1), day(2), day(3)}, res.Table.Dates)
	assert.Empty(t, res.Warnings)

	aapl := res.Derived["AAPL"]
	require.NotNil(t, aapl)
	assert.True(t, math.IsNaN(aapl.MovingAverages[2][0]))
	assert.InDelta(t, 100.5, aapl.MovingAverages[2][1], 1e-9)
	assert.InDelta(t, 1.0, aapl.Change[0], 1e-9)
	assert.True(t, math.IsNaN(aapl.PctChange[0]))
	assert.InDelta(t, 1.0, aapl.PctChange[1], 1e-9)

	xom := res.Derived["XOM"]
	assert.True(t, math.IsNaN(xom.Change[0]))
	assert.True(t, math.IsNaN(xom.PctChange[1]))
	assert.InDelta(t, 2.0, xom.PctChange[2], 1e-9)

	require.Len(t, res.Summaries, 3)
	assert.Equal(t, model.SummaryRecord{Symbol: "AAPL", Min: 100, Max: 102, Mean: 101, Last: 102}, res.Summaries[0])
	assert.Equal(t, model.SummaryRecord{Symbol: "XOM", Min: 50, Max: 51, Mean: 50.5, Last: 51}, res.Summaries[2])

	require.Len(t, res.Sectors, 2)
	assert.Equal(t, "Technology", res.Sectors[0].Sector)
	assert.Equal(t, []string{"AAPL", "MSFT"}, res.Sectors[0].Members)
	assert.Equal(t, "Energy", res.Sectors[1].Sector)
	assert.InDelta(t, 2.0, res.Sectors[1].AvgDailyPctChange, 1e-9)
}

func TestRun_LogsSectorAverages(t *testing.T) {
	var buf bytes.Buffer
	mock := &collector.MockFetcher{Data: map[string][]model.OHLCV{"XOM": bars(1, 50, 51)}}
	p := New(mock, sector.DefaultMap(), logger.NewWithWriter(&buf, zerolog.DebugLevel), nil)

	_, err := p.Run(context.Background(), Request{Symbols: []string{"XOM"}, Start: day(1), End: day(2)})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"sector average"`)
	assert.Contains(t, buf.String(), `"sector":"Energy"`)
	assert.Contains(t, buf.String(), `"avg_daily_pct_change":2`)
}

func TestRun_SymbolWithoutDataWarns(t *testing.T) {
	mock := &collector.MockFetcher{Data: map[string][]model.OHLCV{
		"AAPL": bars(1, 10, 11),
		"ZZZZ": nil,
	}}
	p := New(mock, sector.DefaultMap(), nil, nil)

	res, err := p.Run(context.Background(), Request{Symbols: []string{"AAPL", "ZZZZ"}, Start: day(1), End: day(2)})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "ZZZZ")
	require.Len(t, res.Summaries, 1)
	assert.Equal(t, "AAPL", res.Summaries[0].Symbol)

	require.Len(t, res.Sectors, 2)
	assert.Equal(t, sector.Unknown, res.Sectors[1].Sector)
	assert.True(t, math.IsNaN(res.Sectors[1].AvgDailyPctChange))
}

func TestResult_FrameColumnOrder(t *testing.T) {
	mock := &collector.MockFetcher{Data: map[string][]model.OHLCV{
		"AAPL": bars(1, 1, 2, 3),
		"KO":   bars(1, 4, 5, 6),
	}}
	p := New(mock, sector.DefaultMap(), nil, nil)

	res, err := p.Run(context.Background(), Request{Symbols: []string{"KO", "AAPL"}, Start: day(1), End: day(3), Windows: []int{3, 2}})
	require.NoError(t, err)

	var headers []string
	for _, c := range res.Frame().Columns {
		headers = append(headers, c.Header())
	}
	assert.Equal(t, []string{
		"Open_KO", "High_KO", "Low_KO", "Close_KO", "Volume_KO", "MA2_KO", "MA3_KO", "Change_KO", "PctChange_KO",
		"Open_AAPL", "High_AAPL", "Low_AAPL", "Close_AAPL", "Volume_AAPL", "MA2_AAPL", "MA3_AAPL", "Change_AAPL", "PctChange_AAPL",
	}, headers)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{ErrEmptySelection, "empty_selection"},
		{ErrMissingData, "missing_data"},
		{ErrInvalidRange, "invalid_request"},
		{errors.New("x"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestParseSymbols(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "msft", "KO"}, ParseSymbols("AAPL, msft;KO "))
	assert.Empty(t, ParseSymbols(" , "))
}

func TestParseWindows(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"20,50", []int{20, 50}, false},
		{" 5 , 10 ", []int{5, 10}, false},
		{"", nil, false},
		{"-3", []int{-3}, false},
		{"5.5", nil, true},
		{"20abc", nil, true},
		{"10x,50", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWindows(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, calculator.ErrInvalidWindow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
