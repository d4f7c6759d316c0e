package server

import (
	"context"
	"log/slog"
	"time"
)

// EventPruner deletes old rows from the event log.
type EventPruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// CachePruner deletes expired cache entries.
type CachePruner interface {
	Prune(ctx context.Context) (int64, error)
}

// Pruner periodically removes events older than the retention period
// and expired metadata cache entries.
type Pruner struct {
	log       EventPruner
	cache     CachePruner // optional
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
}

// PrunerOption configures a Pruner.
type PrunerOption func(*Pruner)

// WithCache also prunes expired entries from c.
func WithCache(c CachePruner) PrunerOption {
	return func(p *Pruner) {
		p.cache = c
	}
}

// NewPruner creates a pruner that runs once at start and then every interval.
func NewPruner(log EventPruner, retention, interval time.Duration, logger *slog.Logger, opts ...PrunerOption) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pruner{
		log:       log,
		retention: retention,
		interval:  interval,
		logger:    logger.With("component", "pruner"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the component name.
func (p *Pruner) Name() string {
	return "pruner"
}

// Start prunes until ctx is canceled.
func (p *Pruner) Start(ctx context.Context) error {
	p.prune(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	n, err := p.log.Prune(ctx, p.retention)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("prune events failed", "error", err)
		}
		return
	}
	if n > 0 {
		p.logger.Info("pruned events", "count", n, "retention", p.retention.String())
	}

	if p.cache == nil {
		return
	}
	n, err = p.cache.Prune(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("prune metadata cache failed", "error", err)
		}
		return
	}
	if n > 0 {
		p.logger.Debug("pruned metadata cache", "count", n)
	}
}
