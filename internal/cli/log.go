package cli

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/observability"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Built 42 nodes (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// layoutStats counts layout passes and layout cache traffic while a
// command runs. It is registered as both observability hook sets.
type layoutStats struct {
	observability.NoopLayoutHooks

	mu      sync.Mutex
	passes  int
	hits    int
	misses  int
	flushes int
	elapsed time.Duration
}

func (s *layoutStats) OnLayoutComplete(_ string, _ int, d time.Duration, _ error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passes++
	s.elapsed += d
}

func (s *layoutStats) OnSurfaceFlush(int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
}

func (s *layoutStats) OnCacheHit(string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits++
}

func (s *layoutStats) OnCacheMiss(string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.misses++
}

func (s *layoutStats) OnCacheSet(string, int) {}

// trackLayout registers a fresh layoutStats and returns it with a func
// restoring the previous hooks.
func trackLayout() (*layoutStats, func()) {
	prevLayout, prevCache := observability.Layout(), observability.Cache()
	s := &layoutStats{}
	observability.SetLayoutHooks(s)
	observability.SetCacheHooks(s)
	return s, func() {
		observability.SetLayoutHooks(prevLayout)
		observability.SetCacheHooks(prevCache)
	}
}

type layoutSummary struct {
	Passes, Hits, Misses, Flushes int
	Elapsed                       time.Duration
}

func (s *layoutStats) summary() layoutSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return layoutSummary{Passes: s.passes, Hits: s.hits, Misses: s.misses, Flushes: s.flushes, Elapsed: s.elapsed}
}
