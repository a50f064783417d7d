package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"StockDash/internal/logger"
	"StockDash/internal/sector"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr            string        `yaml:"addr" default:":8080" validate:"required"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	DataSource struct {
		Type              string        `yaml:"type" default:"yahoo" validate:"oneof=yahoo file mock"`
		File              string        `yaml:"file" validate:"required_if=Type file"`
		Timeout           time.Duration `yaml:"timeout" default:"30s"`
		RequestsPerSecond float64       `yaml:"requests_per_second" default:"2" validate:"gte=0"`
		MaxConcurrency    int           `yaml:"max_concurrency" default:"4" validate:"gte=0"`
	} `yaml:"data_source"`
	Cache struct {
		Enabled    bool          `yaml:"enabled" default:"true"`
		SQLitePath string        `yaml:"sqlite_path" default:"data/stockdash.db"`
		TTL        time.Duration `yaml:"ttl" default:"6h"`
	} `yaml:"cache"`
	Dashboard struct {
		Symbols      []string `yaml:"symbols" default:"[\"AAPL\",\"MSFT\",\"GOOGL\",\"AMZN\"]"`
		LookbackDays int      `yaml:"lookback_days" default:"180" validate:"gt=0"`
		Windows      []int    `yaml:"windows" default:"[20,50]" validate:"dive,gt=0"`
	} `yaml:"dashboard"`
	Watch struct {
		Cron      string   `yaml:"cron" default:"0 */30 * * * *" validate:"required"`
		OutputDir string   `yaml:"output_dir" default:"reports" validate:"required"`
		Formats   []string `yaml:"formats" default:"[\"csv\",\"xlsx\",\"html\"]" validate:"min=1,dive,oneof=csv xlsx html txt"`
	} `yaml:"watch"`
	Log     logger.Config     `yaml:"log"`
	Sectors map[string]string `yaml:"sectors"`
	Proxy   string            `yaml:"proxy"`
}

var validate = validator.New()

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error: defaults and the environment still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("STOCKDASH_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("STOCKDASH_SOURCE"); v != "" {
		c.DataSource.Type = v
	}
	if v := os.Getenv("STOCKDASH_DATA_FILE"); v != "" {
		c.DataSource.File = v
	}
	if v := os.Getenv("STOCKDASH_SYMBOLS"); v != "" {
		c.Dashboard.Symbols = splitList(v)
	}
	if v := os.Getenv("STOCKDASH_WINDOWS"); v != "" {
		var ws []int
		for _, s := range splitList(v) {
			w, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("STOCKDASH_WINDOWS: %w", err)
			}
			ws = append(ws, w)
		}
		c.Dashboard.Windows = ws
	}
	if v := os.Getenv("STOCKDASH_SQLITE_PATH"); v != "" {
		c.Cache.SQLitePath = v
	}
	if v := os.Getenv("STOCKDASH_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STOCKDASH_CACHE_TTL: %w", err)
		}
		c.Cache.TTL = ttl
	}
	if v := os.Getenv("STOCKDASH_WATCH_CRON"); v != "" {
		c.Watch.Cron = v
	}
	if v := os.Getenv("STOCKDASH_OUTPUT_DIR"); v != "" {
		c.Watch.OutputDir = v
	}
	if v := os.Getenv("STOCKDASH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

// SectorMap returns the configured classification, or the built-in one when none is set.
func (c *Config) SectorMap() sector.Map {
	if len(c.Sectors) == 0 {
		return sector.DefaultMap()
	}
	return sector.NewMap(c.Sectors)
}

// Lookback is the default date range length of the dashboard.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Dashboard.LookbackDays) * 24 * time.Hour
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
