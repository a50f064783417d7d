package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"StockDash/internal/collector"
	"StockDash/internal/model"
	"StockDash/internal/pipeline"
	"StockDash/internal/report"
	"StockDash/internal/sector"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRequest(symbols ...string) RequestFunc {
	return func(now time.Time) pipeline.Request {
		return pipeline.Request{Symbols: symbols, Start: now.AddDate(0, 0, -30), End: now, Windows: []int{5}}
	}
}

// blockingFetcher holds every fetch until release is closed.
type blockingFetcher struct {
	inner   collector.MockFetcher
	entered chan struct{}
	release chan struct{}
}

func (b *blockingFetcher) Name() string { return "blocking" }

func (b *blockingFetcher) Fetch(ctx context.Context, symbols []string, start, end time.Time) (*model.Table, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.inner.Fetch(ctx, symbols, start, end)
}

// ctxFetcher fails with the context's error once it is done.
type ctxFetcher struct{}

func (ctxFetcher) Name() string { return "ctx" }

func (ctxFetcher) Fetch(ctx context.Context, symbols []string, _, _ time.Time) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return model.NewTable(symbols, nil), nil
}

func TestScheduler_RunNowWritesReports(t *testing.T) {
	dir := t.TempDir()
	p := pipeline.New(&collector.MockFetcher{}, sector.DefaultMap(), nil, nil)
	s := NewScheduler(p, fixedRequest("AAPL", "KO"), dir, []string{report.FormatCSV, report.FormatHTML}, nil)

	paths, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, report.FileNames[report.FormatCSV]),
		filepath.Join(dir, report.FileNames[report.FormatHTML]),
	}, paths)
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}

	runs, skipped, lastErr := s.Stats()
	assert.Equal(t, 1, runs)
	assert.Zero(t, skipped)
	assert.NoError(t, lastErr)
}

func TestScheduler_RunNowReportsPassError(t *testing.T) {
	p := pipeline.New(&collector.MockFetcher{}, sector.DefaultMap(), nil, nil)
	s := NewScheduler(p, fixedRequest(), t.TempDir(), []string{report.FormatCSV}, nil)

	_, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, pipeline.ErrEmptySelection)
	_, _, lastErr := s.Stats()
	assert.ErrorIs(t, lastErr, pipeline.ErrEmptySelection)
}

func TestScheduler_OverlappingRunIsSkipped(t *testing.T) {
	fetcher := &blockingFetcher{entered: make(chan struct{}, 1), release: make(chan struct{})}
	p := pipeline.New(fetcher, sector.DefaultMap(), nil, nil)
	s := NewScheduler(p, fixedRequest("AAPL"), t.TempDir(), []string{report.FormatCSV}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background())
		done <- err
	}()
	<-fetcher.entered

	_, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(fetcher.release)
	require.NoError(t, <-done)

	runs, skipped, _ := s.Stats()
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, skipped)

	// The guard is released once the first run finishes.
	_, err = s.RunNow(context.Background())
	assert.NoError(t, err)
}

func TestScheduler_RunNowUsesCallerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := pipeline.New(ctxFetcher{}, sector.DefaultMap(), nil, nil)
	s := NewScheduler(p, fixedRequest("AAPL"), t.TempDir(), []string{report.FormatCSV}, nil)

	_, err := s.RunNow(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScheduler_Register(t *testing.T) {
	p := pipeline.New(&collector.MockFetcher{}, sector.DefaultMap(), nil, nil)
	s := NewScheduler(p, fixedRequest("AAPL"), t.TempDir(), []string{report.FormatCSV}, nil)

	require.NoError(t, s.Register(context.Background(), "0 */5 * * * *"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.Register(context.Background(), "not a spec"))
}

func TestScheduler_CronFires(t *testing.T) {
	dir := t.TempDir()
	p := pipeline.New(&collector.MockFetcher{}, sector.DefaultMap(), nil, nil)
	s := NewScheduler(p, fixedRequest("MSFT"), dir, []string{report.FormatCSV}, nil)
	require.NoError(t, s.Register(context.Background(), "@every 1s"))

	s.Start()
	defer s.Stop()
	assert.Eventually(t, func() bool {
		runs, _, _ := s.Stats()
		return runs > 0
	}, 5*time.Second, 50*time.Millisecond)
}
