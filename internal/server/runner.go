// Package server runs the long-lived daemon components.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Component is a long-running part of the daemon.
type Component interface {
	// Start runs until ctx is canceled (blocking).
	Start(ctx context.Context) error

	// Name returns the component name for logging.
	Name() string
}

// Runner manages the daemon components.
type Runner struct {
	components []Component
	logger     *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(logger *slog.Logger, components ...Component) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		components: components,
		logger:     logger,
	}
}

// Run starts all components.
// It blocks until the context is canceled or a component fails; a failing
// component stops the others.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, c := range r.components {
		g.Go(func() error {
			r.logger.Debug("component starting", "component", c.Name())
			err := c.Start(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("component failed", "component", c.Name(), "error", err)
				return fmt.Errorf("%s: %w", c.Name(), err)
			}
			r.logger.Debug("component stopped", "component", c.Name())
			return nil
		})
	}

	return g.Wait()
}
