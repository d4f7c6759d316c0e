// Package scheduler triggers theme runs on an interval and once a day.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vmunix/themarr/internal/library"
	"github.com/vmunix/themarr/internal/themes"
)

// Runner executes a theme run and waits for it.
type Runner interface {
	Run(ctx context.Context, s themes.Settings) (*themes.Summary, error)
}

// LibraryScanner refreshes the series catalog before a run.
type LibraryScanner interface {
	Scan(ctx context.Context) (*library.ScanResult, error)
}

// SettingsFunc returns the current settings. It is called before every run.
type SettingsFunc func() (themes.Settings, error)

// Daily is a local wall-clock time of day.
type Daily struct {
	Hour   int
	Minute int
}

// ParseDaily parses "HH:MM". An empty string returns nil (no daily trigger).
func ParseDaily(s string) (*Daily, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return nil, fmt.Errorf("parse daily time %q: %w", s, err)
	}
	return &Daily{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Scheduler fires the scheduled theme task.
type Scheduler struct {
	runner   Runner
	settings SettingsFunc
	scanner  LibraryScanner // optional
	daily    *Daily         // optional
	now      func() time.Time
	unit     time.Duration // length of one scan interval "hour"
	log      *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLibraryScanner scans the library before every scheduled run.
func WithLibraryScanner(s LibraryScanner) Option {
	return func(sc *Scheduler) {
		sc.scanner = s
	}
}

// WithDaily adds a daily trigger.
func WithDaily(d *Daily) Option {
	return func(sc *Scheduler) {
		sc.daily = d
	}
}

// WithClock overrides time.Now (for testing).
func WithClock(now func() time.Time) Option {
	return func(sc *Scheduler) {
		sc.now = now
	}
}

// New creates a scheduler.
func New(runner Runner, settings SettingsFunc, log *slog.Logger, opts ...Option) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	s := &Scheduler{
		runner:   runner,
		settings: settings,
		now:      time.Now,
		unit:     time.Hour,
		log:      log.With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the component name.
func (s *Scheduler) Name() string {
	return "scheduler"
}

// Start fires RunOnce whenever a trigger is due. The interval is counted
// from the end of the previous scheduled run, or from Start.
// It runs until the context is canceled.
func (s *Scheduler) Start(ctx context.Context) error {
	last := s.now()
	for {
		next := s.next(last)
		s.log.Debug("next scheduled run", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(max(next.Sub(s.now()), 0))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		_ = s.RunOnce(ctx)
		last = s.now()
	}
}

// next returns the earliest due trigger after last.
func (s *Scheduler) next(last time.Time) time.Time {
	hours := themes.DefaultScanIntervalHours
	if st, err := s.settings(); err == nil && st.ScanIntervalHours > 0 {
		hours = st.ScanIntervalHours
	}
	next := last.Add(time.Duration(hours) * s.unit)
	if s.daily != nil {
		if d := nextDaily(s.now(), *s.daily); d.Before(next) {
			next = d
		}
	}
	return next
}

// nextDaily returns the first occurrence of d strictly after now.
func nextDaily(now time.Time, d Daily) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), d.Hour, d.Minute, 0, 0, now.Location())
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// RunOnce executes the scheduled task: re-read settings, scan the library,
// then run the engine. A run already in progress is not an error.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	st, err := s.settings()
	if err != nil {
		s.log.Error("scheduled run: load settings", "error", err)
		return err
	}
	if !st.EnableAutoDownload {
		s.log.Info("automatic theme downloads disabled, skipping scheduled run")
		return nil
	}

	if s.scanner != nil {
		if _, err := s.scanner.Scan(ctx); err != nil {
			if ctx.Err() != nil {
				s.log.Info("scheduled run cancelled during library scan")
				return ctx.Err()
			}
			// The catalog still holds the previous scan.
			s.log.Warn("library scan failed, using existing catalog", "error", err)
		}
	}

	sum, err := s.runner.Run(ctx, st)
	switch {
	case errors.Is(err, themes.ErrAlreadyRunning):
		s.log.Info("theme run already in progress, skipping scheduled run")
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.log.Info("scheduled theme run cancelled")
		return err
	case err != nil:
		s.log.Error("scheduled theme run failed", "error", err)
		return err
	}

	s.log.Info("scheduled theme run finished",
		"run_id", sum.RunID,
		"downloaded", sum.Downloaded,
		"not_found", sum.NotFound,
		"failed", sum.Failed)
	return nil
}
