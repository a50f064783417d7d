// Package pipeline runs one full computation pass: fetch the selected symbols,
// derive per-symbol series, summarize closes and average daily changes by sector.
//
// A pass is synchronous and shares nothing with other passes. Missing or
// non-finite values never abort it; they are NaN in the derived series and
// are skipped by every reduction.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockDash/internal/calculator"
	"StockDash/internal/collector"
	"StockDash/internal/logger"
	"StockDash/internal/metrics"
	"StockDash/internal/model"
	"StockDash/internal/sector"

	"github.com/google/uuid"
)

// Pipeline wires a data source to the series transformer and sector aggregator.
type Pipeline struct {
	Fetcher collector.Fetcher
	Sectors sector.Map
	Log     *logger.Logger
	Metrics *metrics.Recorder
}

// New creates a Pipeline. log and rec may be nil.
func New(fetcher collector.Fetcher, sectors sector.Map, log *logger.Logger, rec *metrics.Recorder) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{Fetcher: fetcher, Sectors: sectors, Log: log, Metrics: rec}
}

// Run executes one pass for req.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	passID := uuid.NewString()
	log := p.Log.With(logger.String("pass_id", passID))

	req, err := req.Normalize()
	if err != nil {
		p.recordOutcome(err)
		return nil, err
	}
	p.recordSymbols(len(req.Symbols))
	log.Info("pass started",
		logger.Strings("symbols", req.Symbols),
		logger.String("start", req.Start.Format("2006-01-02")),
		logger.String("end", req.End.Format("2006-01-02")),
		logger.Any("windows", req.Windows))

	fetchStarted := time.Now()
	table, err := p.Fetcher.Fetch(ctx, req.Symbols, req.Start, req.End)
	p.recordStage("fetch", time.Since(fetchStarted))
	if err != nil {
		if p.Metrics != nil {
			p.Metrics.RecordFetchError(p.Fetcher.Name())
		}
		log.Error("fetch failed", logger.String("source", p.Fetcher.Name()), logger.Error(err))
		p.recordOutcome(err)
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if table.Empty() {
		log.Warn("no rows returned")
		p.recordOutcome(ErrMissingData)
		return nil, ErrMissingData
	}

	transformStarted := time.Now()
	res := &Result{
		PassID:  passID,
		Request: req,
		Source:  p.Fetcher.Name(),
		Table:   table,
		Derived: make(map[string]*model.Derived, len(req.Symbols)),
	}
	pct := make(map[string][]float64, len(req.Symbols))
	for _, sym := range req.Symbols {
		d, err := Transform(table, sym, req.Windows)
		if err != nil {
			p.recordOutcome(err)
			return nil, err
		}
		res.Derived[sym] = d
		pct[sym] = d.PctChange

		sum, err := calculator.Summarize(table.Closes(sym))
		if errors.Is(err, calculator.ErrNoData) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("no price data for %s in the selected range", sym))
			log.Warn("symbol has no data", logger.String("symbol", sym))
			continue
		}
		res.Summaries = append(res.Summaries, model.SummaryRecord{
			Symbol: sym,
			Min:    calculator.RoundPrice(sum.Min),
			Max:    calculator.RoundPrice(sum.Max),
			Mean:   calculator.RoundPrice(sum.Mean),
			Last:   calculator.RoundPrice(sum.Last),
		})
	}
	res.Sectors = sector.Averages(req.Symbols, p.Sectors, pct)
	for _, g := range res.Sectors {
		log.Debug("sector average",
			logger.String("sector", g.Sector),
			logger.Int("members", len(g.Members)),
			logger.Float("avg_daily_pct_change", g.AvgDailyPctChange))
	}
	p.recordStage("transform", time.Since(transformStarted))

	res.Elapsed = time.Since(started)
	p.recordStage("total", res.Elapsed)
	p.recordOutcome(nil)
	log.Info("pass finished",
		logger.Int("rows", table.Len()),
		logger.Int("warnings", len(res.Warnings)),
		logger.Duration("elapsed_ms", res.Elapsed))
	return res, nil
}

// Transform derives the moving averages, daily change and daily percentage change of symbol.
func Transform(table *model.Table, symbol string, windows []int) (*model.Derived, error) {
	closes := table.Closes(symbol)
	mas, err := calculator.MovingAverages(closes, windows)
	if err != nil {
		return nil, err
	}
	return &model.Derived{
		Symbol:         symbol,
		MovingAverages: mas,
		Change:         calculator.DailyChange(table.Opens(symbol), closes),
		PctChange:      calculator.DailyPercentChange(closes),
	}, nil
}

// Outcome classifies a pass error for metrics and HTTP status mapping.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptySelection):
		return "empty_selection"
	case errors.Is(err, ErrMissingData):
		return "missing_data"
	case errors.Is(err, ErrInvalidRange), errors.Is(err, calculator.ErrInvalidWindow):
		return "invalid_request"
	default:
		return "error"
	}
}

func (p *Pipeline) recordOutcome(err error) {
	if p.Metrics != nil {
		p.Metrics.RecordPass(Outcome(err))
	}
}

func (p *Pipeline) recordStage(stage string, d time.Duration) {
	if p.Metrics != nil {
		p.Metrics.RecordStage(stage, d.Seconds())
	}
}

func (p *Pipeline) recordSymbols(n int) {
	if p.Metrics != nil {
		p.Metrics.RecordSymbols(n)
	}
}
