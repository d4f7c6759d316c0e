// Package handlers reacts to events published on the bus.
package handlers

import (
	"context"
	"log/slog"

	"github.com/vmunix/themarr/internal/events"
)

// Handler is a long-running bus consumer.
type Handler interface {
	Start(ctx context.Context) error
	Name() string
}

// BaseHandler holds the bus and logger shared by handlers.
type BaseHandler struct {
	bus    *events.Bus
	logger *slog.Logger
}

// NewBaseHandler creates a base handler logging as component name.
func NewBaseHandler(bus *events.Bus, name string, logger *slog.Logger) *BaseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseHandler{
		bus:    bus,
		logger: logger.With("component", name),
	}
}

// Bus returns the event bus.
func (h *BaseHandler) Bus() *events.Bus {
	return h.bus
}

// Logger returns the handler's logger.
func (h *BaseHandler) Logger() *slog.Logger {
	return h.logger
}

// Consume subscribes to eventType and calls fn for each event until ctx is
// done or the bus closes. A closed bus is a clean stop and returns nil.
func (h *BaseHandler) Consume(ctx context.Context, eventType string, buffer int, fn func(context.Context, events.Event)) error {
	ch := h.bus.Subscribe(eventType, buffer)
	defer h.bus.Unsubscribe(ch)

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			fn(ctx, e)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
