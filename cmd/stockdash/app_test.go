package main

import (
	"path/filepath"
	"testing"
	"time"

	"StockDash/internal/config"
	"StockDash/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestSelection_Defaults(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	req, err := selection{}.request(cfg, now)
	require.NoError(t, err)
	assert.Equal(t, cfg.Dashboard.Symbols, req.Symbols)
	assert.Equal(t, now, req.End)
	assert.Equal(t, now.Add(-cfg.Lookback()), req.Start)
	assert.Equal(t, []int{20, 50}, req.Windows)
}

func TestSelection_Flags(t *testing.T) {
	cfg := testConfig(t)
	req, err := selection{symbols: "ko, pep", start: "2024-01-02", end: "2024-03-01", ma: "5, 10"}.request(cfg, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"ko", "pep"}, req.Symbols)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), req.Start)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), req.End)
	assert.Equal(t, []int{5, 10}, req.Windows)
}

func TestSelection_BadFlags(t *testing.T) {
	cfg := testConfig(t)
	for _, sel := range []selection{
		{start: "01/02/2024"},
		{end: "x"},
		{ma: "five"},
		{ma: "5.5"},
		{ma: "20abc"},
		{ma: "10x,50"},
	} {
		_, err := sel.request(cfg, time.Now())
		assert.Error(t, err, "%+v", sel)
	}
}

func TestApp_FetcherSelection(t *testing.T) {
	cfg := testConfig(t)
	a := &app{cfg: cfg, log: logger.Nop()}
	cfg.DataSource.Type = "mock"
	assert.Equal(t, "mock", a.fetcher().Name())

	cfg.DataSource.Type = "yahoo"
	cfg.Cache.SQLitePath = filepath.Join(t.TempDir(), "cache.db")
	f := a.fetcher()
	defer a.close()
	assert.Equal(t, "yahoo+cache", f.Name())

	cfg.Cache.Enabled = false
	assert.Equal(t, "yahoo", a.fetcher().Name())
}
