package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"StockDash/internal/logger"
	"StockDash/internal/pipeline"
	"StockDash/internal/render"
	"StockDash/internal/report"

	"github.com/google/subcommands"
)

type reportCmd struct {
	app     *app
	sel     selection
	out     string
	formats string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "run one pass and print summary and sector tables" }
func (*reportCmd) Usage() string {
	return `stockdash report [-symbols AAPL,MSFT] [-start <date>] [-end <date>] [-ma 20,50] [-out <dir> -formats csv,xlsx,html]

  Prints the close summary and sector averages. With -out, also writes report files.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sel.symbols, "symbols", "", "comma separated tickers (defaults to dashboard.symbols)")
	f.StringVar(&c.sel.start, "start", "", "first date, YYYY-MM-DD (defaults to end minus the lookback)")
	f.StringVar(&c.sel.end, "end", "", "last date, YYYY-MM-DD (defaults to today)")
	f.StringVar(&c.sel.ma, "ma", "", "comma separated moving-average windows (defaults to dashboard.windows)")
	f.StringVar(&c.out, "out", "", "directory to write report files to")
	f.StringVar(&c.formats, "formats", "csv,xlsx,html", "report file formats (csv, xlsx, html, txt)")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.app.init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer c.app.close()

	req, err := c.sel.request(c.app.cfg, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	res, err := c.app.pipeline().Run(ctx, req)
	switch {
	case errors.Is(err, pipeline.ErrEmptySelection):
		fmt.Fprintln(os.Stderr, "Please select at least one stock symbol.")
		return subcommands.ExitUsageError
	case errors.Is(err, pipeline.ErrMissingData):
		fmt.Fprintln(os.Stderr, "No data available for the selected symbols and date range.")
		return subcommands.ExitFailure
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := render.WriteText(os.Stdout, res); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.out == "" {
		return subcommands.ExitSuccess
	}
	paths, err := report.Write(c.out, strings.Split(c.formats, ","), res, report.FormFor(res))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	c.app.log.Info("report files written", logger.Strings("files", paths))
	return subcommands.ExitSuccess
}
