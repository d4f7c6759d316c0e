package v1

//go:generate mockgen -destination=mocks/mock_v1.go -package=mocks . ThemeEngine,LibraryScanner

import (
	"context"
	"errors"

	"github.com/vmunix/themarr/internal/events"
	"github.com/vmunix/themarr/internal/library"
	"github.com/vmunix/themarr/internal/themes"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// ThemeEngine starts, observes and cancels theme runs.
type ThemeEngine interface {
	Start(ctx context.Context, s themes.Settings) (*themes.Ticket, error)
	Status() themes.StatusSnapshot
	Cancel() bool
}

// LibraryScanner syncs library folders into the series store.
type LibraryScanner interface {
	Scan(ctx context.Context) (*library.ScanResult, error)
}

// SettingsFunc loads the current run settings.
type SettingsFunc func() (themes.Settings, error)

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Engine   ThemeEngine
	Settings SettingsFunc

	// Optional dependencies (nil if not configured)
	Library  *library.Store   // nil when the catalog comes from Plex
	Scanner  LibraryScanner   // nil when the catalog comes from Plex
	EventLog *events.EventLog // Optional: for event audit log
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Engine == nil {
		return errors.New("theme engine is required")
	}
	if d.Settings == nil {
		return errors.New("settings loader is required")
	}
	return nil
}
