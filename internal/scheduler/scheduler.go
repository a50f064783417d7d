package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"StockDash/internal/logger"
	"StockDash/internal/pipeline"
	"StockDash/internal/report"

	"github.com/robfig/cron/v3"
)

// ErrBusy is returned by RunNow while another refresh is still running.
var ErrBusy = errors.New("refresh already running")

// RequestFunc builds the request of a pass started at now.
type RequestFunc func(now time.Time) pipeline.Request

// Scheduler re-runs the pipeline on a cron spec and rewrites the report files.
// A run that is still in progress when the next one is due causes that one to be skipped.
type Scheduler struct {
	Cron      *cron.Cron
	Pipeline  *pipeline.Pipeline
	Request   RequestFunc
	OutputDir string
	Formats   []string
	Log       *logger.Logger

	running sync.Mutex
	mu      sync.Mutex
	lastErr error
	runs    int
	skipped int
}

// NewScheduler creates a new Scheduler.
func NewScheduler(p *pipeline.Pipeline, req RequestFunc, outputDir string, formats []string, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	cl := cronLogger{log: log}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Pipeline:  p,
		Request:   req,
		OutputDir: outputDir,
		Formats:   formats,
		Log:       log,
	}
}

// Register schedules the report refresh. Scheduled passes run under ctx.
func (s *Scheduler) Register(ctx context.Context, spec string) error {
	task := func() {
		if _, err := s.RunNow(ctx); err != nil && !errors.Is(err, ErrBusy) {
			s.Log.Error("scheduled refresh failed", logger.Error(err))
		}
	}
	if _, err := s.Cron.AddFunc(spec, task); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started", logger.Int("entries", len(s.Cron.Entries())))
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunNow executes one refresh immediately and returns the written files.
// It returns ErrBusy without running when a refresh is already in progress.
func (s *Scheduler) RunNow(ctx context.Context) ([]string, error) {
	if !s.running.TryLock() {
		s.mu.Lock()
		s.skipped++
		s.mu.Unlock()
		s.Log.Warn("refresh skipped, previous one still running")
		return nil, ErrBusy
	}
	defer s.running.Unlock()

	paths, err := s.refresh(ctx, time.Now())
	s.mu.Lock()
	s.runs++
	s.lastErr = err
	s.mu.Unlock()
	return paths, err
}

// Stats reports how many refreshes ran, how many were skipped for overlapping,
// and the error of the latest run.
func (s *Scheduler) Stats() (runs, skipped int, lastErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs, s.skipped, s.lastErr
}

func (s *Scheduler) refresh(ctx context.Context, now time.Time) ([]string, error) {
	res, err := s.Pipeline.Run(ctx, s.Request(now))
	if err != nil {
		return nil, fmt.Errorf("run pass: %w", err)
	}
	paths, err := report.Write(s.OutputDir, s.Formats, res, report.FormFor(res))
	if err != nil {
		return paths, fmt.Errorf("write reports: %w", err)
	}
	s.Log.Info("reports refreshed",
		logger.String("pass_id", res.PassID),
		logger.Strings("files", paths),
		logger.Int("warnings", len(res.Warnings)))
	return paths, nil
}

// cronLogger routes cron's own messages to the application logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, logger.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, logger.Error(err), logger.Any("details", keysAndValues))
}
