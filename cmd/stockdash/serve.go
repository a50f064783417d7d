package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"StockDash/internal/logger"
	"StockDash/internal/server"

	"github.com/google/subcommands"
)

type serveCmd struct {
	app  *app
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the interactive dashboard over HTTP" }
func (*serveCmd) Usage() string {
	return `stockdash serve [-addr <host:port>]

  Serves the dashboard, its JSON data, CSV/XLSX exports and Prometheus metrics.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "listen address (defaults to server.addr from the config)")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.app.init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer c.app.close()
	cfg := c.app.cfg
	if c.addr != "" {
		cfg.Server.Addr = c.addr
	}

	srv, err := server.NewHTTPServer(server.HTTPConfig{
		Addr:     cfg.Server.Addr,
		Pipeline: c.app.pipeline(),
		Defaults: server.Defaults{
			Symbols:  cfg.Dashboard.Symbols,
			Lookback: cfg.Lookback(),
			Windows:  cfg.Dashboard.Windows,
		},
		Metrics:         c.app.metrics,
		Log:             c.app.log,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		c.app.log.Error("init http server", logger.Error(err))
		return subcommands.ExitFailure
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := srv.Start(ctx); err != nil {
		c.app.log.Error("http server", logger.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
