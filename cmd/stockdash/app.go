package main

import (
	"fmt"
	"time"

	"StockDash/internal/collector"
	"StockDash/internal/config"
	"StockDash/internal/logger"
	"StockDash/internal/metrics"
	"StockDash/internal/pipeline"
	"StockDash/internal/store"
)

// app carries what every subcommand needs once the config is loaded.
type app struct {
	configPath string

	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Recorder
	cache   store.BarCache
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.cfg = cfg
	a.log = log
	a.metrics = metrics.New()
	return nil
}

func (a *app) fetcher() collector.Fetcher {
	var f collector.Fetcher
	switch a.cfg.DataSource.Type {
	case "file":
		f = collector.NewFileFetcher(a.cfg.DataSource.File)
	case "mock":
		f = &collector.MockFetcher{}
	default:
		f = collector.NewYahooFetcher(collector.YahooOptions{
			Proxy:             a.cfg.Proxy,
			Timeout:           a.cfg.DataSource.Timeout,
			RequestsPerSecond: a.cfg.DataSource.RequestsPerSecond,
			MaxConcurrency:    a.cfg.DataSource.MaxConcurrency,
		})
	}
	if !a.cfg.Cache.Enabled || a.cfg.DataSource.Type != "yahoo" {
		return f
	}

	cache, err := store.NewSQLiteCache(a.cfg.Cache.SQLitePath)
	if err != nil {
		a.log.Warn("init sqlite cache failed, fetching without cache", logger.Error(err))
		a.cache = store.NewNoopCache()
	} else {
		a.cache = cache
	}
	return collector.NewCachedFetcher(f, a.cache, a.cfg.Cache.TTL, a.log)
}

func (a *app) pipeline() *pipeline.Pipeline {
	f := a.fetcher()
	sectors := a.cfg.SectorMap()
	a.log.Info("data source ready", logger.String("source", f.Name()), logger.Int("sectors", sectors.Len()))
	return pipeline.New(f, sectors, a.log, a.metrics)
}

func (a *app) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("close cache", logger.Error(err))
		}
	}
}

// selection holds the request flags shared by report and watch.
type selection struct {
	symbols string
	start   string
	end     string
	ma      string
}

// request resolves the flags against the configured defaults at now.
func (s selection) request(cfg *config.Config, now time.Time) (pipeline.Request, error) {
	req := pipeline.Request{
		Symbols: cfg.Dashboard.Symbols,
		End:     now,
		Windows: cfg.Dashboard.Windows,
	}
	if s.symbols != "" {
		req.Symbols = pipeline.ParseSymbols(s.symbols)
	}
	if s.end != "" {
		end, err := time.Parse("2006-01-02", s.end)
		if err != nil {
			return req, fmt.Errorf("-end: %w", err)
		}
		req.End = end
	}
	req.Start = req.End.Add(-cfg.Lookback())
	if s.start != "" {
		start, err := time.Parse("2006-01-02", s.start)
		if err != nil {
			return req, fmt.Errorf("-start: %w", err)
		}
		req.Start = start
	}
	if s.ma != "" {
		windows, err := pipeline.ParseWindows(s.ma)
		if err != nil {
			return req, fmt.Errorf("-ma: %w", err)
		}
		req.Windows = windows
	}
	return req, nil
}
