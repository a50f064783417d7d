package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockDash/internal/logger"
	"StockDash/internal/pipeline"
	"StockDash/internal/scheduler"

	"github.com/google/subcommands"
)

type watchCmd struct {
	app     *app
	sel     selection
	cron    string
	out     string
	runOnce bool
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "refresh report files on a cron schedule" }
func (*watchCmd) Usage() string {
	return `stockdash watch [-cron <spec>] [-out <dir>] [-symbols ...] [-ma ...] [-now]

  Re-runs the pipeline on a cron spec (with seconds) and rewrites the files
  configured in watch.formats. The date range always ends at the run time.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cron, "cron", "", "cron spec with seconds (defaults to watch.cron)")
	f.StringVar(&c.out, "out", "", "output directory (defaults to watch.output_dir)")
	f.StringVar(&c.sel.symbols, "symbols", "", "comma separated tickers (defaults to dashboard.symbols)")
	f.StringVar(&c.sel.ma, "ma", "", "comma separated moving-average windows (defaults to dashboard.windows)")
	f.BoolVar(&c.runOnce, "now", false, "also refresh immediately on start")
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.app.init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer c.app.close()
	cfg := c.app.cfg
	if c.cron != "" {
		cfg.Watch.Cron = c.cron
	}
	if c.out != "" {
		cfg.Watch.OutputDir = c.out
	}
	if _, err := c.sel.request(cfg, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	requestAt := func(now time.Time) pipeline.Request {
		// Flags were validated above.
		req, _ := c.sel.request(cfg, now)
		return req
	}
	sched := scheduler.NewScheduler(c.app.pipeline(), requestAt, cfg.Watch.OutputDir, cfg.Watch.Formats, c.app.log)
	if err := sched.Register(ctx, cfg.Watch.Cron); err != nil {
		c.app.log.Error("register cron task", logger.Error(err))
		return subcommands.ExitUsageError
	}
	sched.Start()
	defer sched.Stop()

	if c.runOnce {
		if _, err := sched.RunNow(ctx); err != nil {
			c.app.log.Error("initial refresh failed", logger.Error(err))
		}
	}

	c.app.log.Info("watching", logger.String("cron", cfg.Watch.Cron), logger.String("output_dir", cfg.Watch.OutputDir))
	<-ctx.Done()
	c.app.log.Info("shutdown signal received, stopping")
	return subcommands.ExitSuccess
}
