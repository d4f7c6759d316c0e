package handlers

import (
	"context"
	"log/slog"

	"github.com/vmunix/themarr/internal/events"
)

// PathScanner asks a media server to rescan a directory.
type PathScanner interface {
	ScanPath(ctx context.Context, dir string) error
}

// NotifyHandler tells the media server about newly written theme files.
type NotifyHandler struct {
	*BaseHandler
	scanner PathScanner
	enabled func() bool
}

// NewNotifyHandler creates a notify handler. enabled is consulted for every
// event so that settings changes apply without a restart.
func NewNotifyHandler(bus *events.Bus, scanner PathScanner, enabled func() bool, logger *slog.Logger) *NotifyHandler {
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &NotifyHandler{
		BaseHandler: NewBaseHandler(bus, "notify", logger),
		scanner:     scanner,
		enabled:     enabled,
	}
}

// Name returns the handler name.
func (h *NotifyHandler) Name() string {
	return "notify"
}

// Start processes theme downloads until ctx is done.
func (h *NotifyHandler) Start(ctx context.Context) error {
	return h.Consume(ctx, events.EventThemeDownloaded, 100, func(ctx context.Context, e events.Event) {
		if td, ok := e.(*events.ThemeDownloaded); ok {
			h.handleThemeDownloaded(ctx, td)
		}
	})
}

func (h *NotifyHandler) handleThemeDownloaded(ctx context.Context, e *events.ThemeDownloaded) {
	if !h.enabled() {
		return
	}
	if err := h.scanner.ScanPath(ctx, e.Directory); err != nil {
		// The theme is on disk either way; the next library scan picks it up.
		h.Logger().Warn("media server notification failed",
			"series", e.Series,
			"path", e.Directory,
			"error", err)
		return
	}
	h.Logger().Info("media server notified", "series", e.Series, "path", e.Directory)
}
