package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"StockDash/internal/sector"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "yahoo", cfg.DataSource.Type)
	assert.Equal(t, 30*time.Second, cfg.DataSource.Timeout)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL", "AMZN"}, cfg.Dashboard.Symbols)
	assert.Equal(t, []int{20, 50}, cfg.Dashboard.Windows)
	assert.Equal(t, []string{"csv", "xlsx", "html"}, cfg.Watch.Formats)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 180*24*time.Hour, cfg.Lookback())
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
server:
  addr: ":9090"
data_source:
  type: file
  file: data/prices.csv
cache:
  enabled: false
  ttl: 30m
dashboard:
  symbols: [KO, PEP]
  windows: [5]
sectors:
  ko: Beverages
  PEP: Beverages
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "file", cfg.DataSource.Type)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"KO", "PEP"}, cfg.Dashboard.Symbols)
	assert.Equal(t, []int{5}, cfg.Dashboard.Windows)
	assert.Equal(t, "json", cfg.Log.Format)

	sectors := cfg.SectorMap()
	assert.Equal(t, "Beverages", sectors.Lookup("KO"))
	assert.Equal(t, sector.Unknown, sectors.Lookup("AAPL"))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STOCKDASH_ADDR", ":7000")
	t.Setenv("STOCKDASH_SYMBOLS", "nvda, amd ,")
	t.Setenv("STOCKDASH_WINDOWS", "10,30")
	t.Setenv("STOCKDASH_CACHE_TTL", "1h")
	t.Setenv("HTTPS_PROXY", "http://proxy:3128")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, []string{"nvda", "amd"}, cfg.Dashboard.Symbols)
	assert.Equal(t, []int{10, 30}, cfg.Dashboard.Windows)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "http://proxy:3128", cfg.Proxy)
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("STOCKDASH_WINDOWS", "ten")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeFile(t, "server: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown source", "data_source:\n  type: ftp\n"},
		{"file source without path", "data_source:\n  type: file\n"},
		{"non-positive window", "dashboard:\n  windows: [0]\n"},
		{"unknown format", "watch:\n  formats: [pdf]\n"},
		{"bad log level", "log:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.body))
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSectorMap_DefaultWhenUnset(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Technology", cfg.SectorMap().Lookup("AAPL"))
}
