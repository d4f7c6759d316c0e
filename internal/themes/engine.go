package themes

//go:generate mockgen -destination=mocks/mock_themes.go -package=mocks . CatalogSource,Fetcher,Publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/themarr/internal/events"
)

// CatalogSource enumerates the series a run should consider.
// HasTheme must reflect whether DirectoryPath/fileName exists at call time.
type CatalogSource interface {
	ListCandidates(ctx context.Context, fileName string) ([]Candidate, error)
}

// Publisher receives run and per-series events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Summary aggregates the outcomes of one run.
type Summary struct {
	RunID      string
	State      RunState
	Total      int
	Downloaded int
	Skipped    int
	NotFound   int
	Failed     int
	Cancelled  int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Processed returns how many candidates reached a terminal outcome.
func (s *Summary) Processed() int {
	return s.Downloaded + s.Skipped + s.NotFound + s.Failed + s.Cancelled
}

// Ticket identifies a started run.
type Ticket struct {
	ID        string
	StartedAt time.Time

	done    chan struct{}
	cancel  context.CancelFunc
	summary *Summary
	err     error
}

// Done is closed once the run has reached a terminal state.
func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the run finishes or ctx is done.
func (t *Ticket) Wait(ctx context.Context) (*Summary, error) {
	select {
	case <-t.done:
		return t.summary, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Engine runs theme downloads over a catalog. At most one run is active at a time.
type Engine struct {
	catalog   CatalogSource
	fetcher   Fetcher
	status    *RunStatus
	publisher Publisher
	lockPath  string
	now       func() time.Time
	log       *slog.Logger

	mu     sync.Mutex
	active *Ticket // set until the run has published its final event
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher emits run events to p.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithLockFile additionally guards runs with an advisory file lock,
// so that two processes sharing a library never run at once.
func WithLockFile(path string) Option {
	return func(e *Engine) {
		e.lockPath = path
	}
}

// WithStatus shares an existing RunStatus.
func WithStatus(s *RunStatus) Option {
	return func(e *Engine) {
		e.status = s
	}
}

// WithClock overrides time.Now (for testing).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an idle engine.
func NewEngine(catalog CatalogSource, fetcher Fetcher, log *slog.Logger, opts ...Option) *Engine {
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		catalog: catalog,
		fetcher: fetcher,
		status:  NewRunStatus(),
		now:     time.Now,
		log:     log.With("component", "themes"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Status returns a snapshot of the current run status.
func (e *Engine) Status() StatusSnapshot {
	return e.status.Snapshot()
}

// Start validates s, reserves the engine and launches a run in the background.
// The run stops when ctx is cancelled or Cancel is called.
func (e *Engine) Start(ctx context.Context, s Settings) (*Ticket, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	if !e.status.tryBegin(runID) {
		return nil, ErrAlreadyRunning
	}

	var lock *flock.Flock
	if e.lockPath != "" {
		lock = flock.New(e.lockPath)
		locked, err := lock.TryLock()
		if err != nil {
			e.status.abort()
			return nil, fmt.Errorf("%w: acquire run lock: %w", ErrOrchestration, err)
		}
		if !locked {
			e.status.abort()
			e.log.Info("run lock held by another process", "path", e.lockPath)
			return nil, ErrAlreadyRunning
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	t := &Ticket{
		ID:        runID,
		StartedAt: e.now(),
		done:      make(chan struct{}),
		cancel:    cancel,
	}

	e.mu.Lock()
	e.active = t
	e.mu.Unlock()

	go e.run(runCtx, t, s, lock)
	return t, nil
}

// Run starts a run and waits for it to finish.
func (e *Engine) Run(ctx context.Context, s Settings) (*Summary, error) {
	t, err := e.Start(ctx, s)
	if err != nil {
		return nil, err
	}
	<-t.done
	return t.summary, t.err
}

// Cancel stops the active run. It returns false when no run is active.
// A run that is still publishing its final event counts as active.
func (e *Engine) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return false
	}
	e.active.cancel()
	return true
}

// Wait blocks until the active run, if any, has finished and published its
// final event, or until ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	t := e.active
	e.mu.Unlock()

	if t == nil {
		return nil
	}
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) run(ctx context.Context, t *Ticket, s Settings, lock *flock.Flock) {
	log := e.log.With("run_id", t.ID)

	sum, err := e.execute(ctx, log, t, s)
	t.cancel()

	if lock != nil {
		if uerr := lock.Unlock(); uerr != nil {
			log.Warn("failed to release run lock", "path", e.lockPath, "error", uerr)
		}
	}

	sum.FinishedAt = e.now()
	e.status.finish(sum.State, sum.FinishedAt)

	attrs := []any{
		"state", sum.State,
		"total", sum.Total,
		"downloaded", sum.Downloaded,
		"skipped", sum.Skipped,
		"not_found", sum.NotFound,
		"failed", sum.Failed,
		"cancelled", sum.Cancelled,
		"duration_ms", sum.FinishedAt.Sub(sum.StartedAt).Milliseconds(),
	}
	switch sum.State {
	case StateFailed:
		log.Error("theme run failed", append(attrs, "error", err)...)
	case StateCancelled:
		log.Info("theme run cancelled", attrs...)
	default:
		log.Info("theme run completed", attrs...)
	}

	finished := &events.RunFinished{
		BaseEvent:  events.NewBaseEvent(events.EventRunFinished, events.EntityRun, 0),
		RunID:      t.ID,
		State:      string(sum.State),
		Total:      sum.Total,
		Downloaded: sum.Downloaded,
		Skipped:    sum.Skipped,
		NotFound:   sum.NotFound,
		Failed:     sum.Failed,
		Cancelled:  sum.Cancelled,
		DurationMs: sum.FinishedAt.Sub(sum.StartedAt).Milliseconds(),
	}
	if err != nil {
		finished.Error = err.Error()
	}
	e.publish(context.WithoutCancel(ctx), log, finished)

	t.summary, t.err = sum, err

	e.mu.Lock()
	if e.active == t {
		e.active = nil
	}
	e.mu.Unlock()
	close(t.done)
}

func (e *Engine) execute(ctx context.Context, log *slog.Logger, t *Ticket, s Settings) (*Summary, error) {
	sum := &Summary{RunID: t.ID, StartedAt: t.StartedAt}

	all, err := e.catalog.ListCandidates(ctx, s.FileName)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			sum.State = StateCancelled
			return sum, ctxErr
		}
		sum.State = StateFailed
		return sum, fmt.Errorf("%w: list candidates: %w", ErrOrchestration, err)
	}

	candidates := selectCandidates(all, s.SkipExistingFiles)
	sum.Total = len(candidates)
	e.status.setTotal(len(candidates))

	log.Info("theme run started",
		"catalog", len(all),
		"candidates", len(candidates),
		"concurrency", s.MaxConcurrentDownloads)
	e.publish(ctx, log, &events.RunStarted{
		BaseEvent:  events.NewBaseEvent(events.EventRunStarted, events.EntityRun, 0),
		RunID:      t.ID,
		Catalog:    len(all),
		Candidates: len(candidates),
	})

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.MaxConcurrentDownloads)

	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// Admitted after cancellation: never started, so not processed.
			if ctx.Err() != nil {
				return nil
			}
			out := e.fetcher.Fetch(ctx, c, s)

			mu.Lock()
			tally(sum, out)
			mu.Unlock()

			progress := e.status.itemDone()
			log.Debug("series processed",
				"series", c.Name,
				"outcome", out.String(),
				"progress", progress)
			e.record(ctx, log, t.ID, c, s, out)
			return nil
		})
	}
	_ = g.Wait()

	if sum.Cancelled > 0 || (ctx.Err() != nil && sum.Processed() < sum.Total) {
		sum.State = StateCancelled
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		return sum, context.Canceled
	}
	sum.State = StateCompleted
	return sum, nil
}

func tally(sum *Summary, out Outcome) {
	switch out.Status {
	case OutcomeDownloaded:
		sum.Downloaded++
	case OutcomeSkipped:
		sum.Skipped++
	case OutcomeNotFound:
		sum.NotFound++
	case OutcomeCancelled:
		sum.Cancelled++
	default:
		sum.Failed++
	}
}

// record publishes the per-series event for out.
func (e *Engine) record(ctx context.Context, log *slog.Logger, runID string, c Candidate, s Settings, out Outcome) {
	if e.publisher == nil {
		return
	}

	var ev events.Event
	switch out.Status {
	case OutcomeDownloaded:
		ev = &events.ThemeDownloaded{
			BaseEvent: events.NewBaseEvent(events.EventThemeDownloaded, events.EntitySeries, c.ID),
			RunID:     runID,
			Series:    c.Name,
			TVDBID:    c.ExternalID,
			Directory: c.DirectoryPath,
			Path:      filepath.Join(c.DirectoryPath, s.FileName),
			Bytes:     out.Bytes,
		}
	case OutcomeNotFound:
		ev = &events.ThemeNotFound{
			BaseEvent:  events.NewBaseEvent(events.EventThemeNotFound, events.EntitySeries, c.ID),
			RunID:      runID,
			Series:     c.Name,
			TVDBID:     c.ExternalID,
			HTTPStatus: out.HTTPStatus,
		}
	case OutcomeFailed:
		msg := "unknown error"
		if out.Err != nil {
			msg = out.Err.Error()
		}
		ev = &events.ThemeFailed{
			BaseEvent: events.NewBaseEvent(events.EventThemeFailed, events.EntitySeries, c.ID),
			RunID:     runID,
			Series:    c.Name,
			TVDBID:    c.ExternalID,
			Error:     msg,
		}
	default:
		return
	}
	e.publish(context.WithoutCancel(ctx), log, ev)
}

func (e *Engine) publish(ctx context.Context, log *slog.Logger, ev events.Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("failed to publish event", "type", ev.EventType(), "error", err)
	}
}

// selectCandidates keeps catalog order and, when skipExisting is set,
// drops series that already have a theme.
func selectCandidates(all []Candidate, skipExisting bool) []Candidate {
	if !skipExisting {
		return all
	}
	out := make([]Candidate, 0, len(all))
	for _, c := range all {
		if !c.HasTheme {
			out = append(out, c)
		}
	}
	return out
}
