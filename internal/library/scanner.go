package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmunix/themarr/internal/events"
)

// Resolver looks up the TVDB id of a series by title.
// It returns 0 and no error when there is no confident match.
type Resolver interface {
	ResolveSeries(ctx context.Context, title string, year int) (int64, error)
}

// ScanResult summarizes a library scan.
type ScanResult struct {
	Added      int `json:"added"`
	Updated    int `json:"updated"`
	Unchanged  int `json:"unchanged"`
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
}

// Publisher receives the summary event of each scan.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Scanner syncs the series directories under the library roots into the store.
type Scanner struct {
	store     *Store
	roots     []string
	resolver  Resolver  // optional
	publisher Publisher // optional
	log       *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithScanPublisher emits a library.scanned event after every successful scan.
func WithScanPublisher(p Publisher) ScannerOption {
	return func(s *Scanner) {
		s.publisher = p
	}
}

// NewScanner creates a scanner. resolver may be nil, in which case only
// directories tagged with a TVDB id get one.
func NewScanner(store *Store, roots []string, resolver Resolver, log *slog.Logger, opts ...ScannerOption) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	s := &Scanner{
		store:    store,
		roots:    roots,
		resolver: resolver,
		log:      log.With("component", "scanner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type seriesDir struct {
	path string
	name DirName
}

// Scan walks each root one level deep. Every visible subdirectory is a series.
// Lookups happen before any write; all writes are applied in one transaction.
func (s *Scanner) Scan(ctx context.Context) (*ScanResult, error) {
	dirs, err := s.discover()
	if err != nil {
		return nil, err
	}

	existing, _, err := s.store.ListSeries(ctx, SeriesFilter{})
	if err != nil {
		return nil, err
	}
	byPath := make(map[string]*Series, len(existing))
	for _, e := range existing {
		byPath[e.RootPath] = e
	}

	result := &ScanResult{}
	var adds, updates []*Series

	for _, d := range dirs {
		want := &Series{
			Title:    d.name.Title,
			Year:     d.name.Year,
			RootPath: d.path,
		}
		if d.name.TVDBID > 0 {
			id := d.name.TVDBID
			want.TVDBID = &id
		}

		cur := byPath[d.path]
		if want.TVDBID == nil && cur != nil && cur.TVDBID != nil {
			want.TVDBID = cur.TVDBID
		}
		if want.TVDBID == nil {
			id, err := s.resolve(ctx, want)
			if err != nil {
				return nil, err
			}
			if id > 0 {
				want.TVDBID = &id
				result.Resolved++
			} else {
				result.Unresolved++
			}
		}

		switch {
		case cur == nil:
			adds = append(adds, want)
		case sameSeries(cur, want):
			result.Unchanged++
		default:
			want.ID = cur.ID
			updates = append(updates, want)
		}
	}

	if err := s.apply(ctx, adds, updates); err != nil {
		return nil, err
	}
	result.Added = len(adds)
	result.Updated = len(updates)

	s.log.Info("library scan complete",
		"roots", len(s.roots),
		"series", len(dirs),
		"added", result.Added,
		"updated", result.Updated,
		"unchanged", result.Unchanged,
		"resolved", result.Resolved,
		"unresolved", result.Unresolved)

	if s.publisher != nil {
		ev := &events.LibraryScanned{
			BaseEvent: events.NewBaseEvent(events.EventLibraryScanned, events.EntitySeries, 0),
			Added:     result.Added,
			Updated:   result.Updated,
			Unchanged: result.Unchanged,
			Resolved:  result.Resolved,
		}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.log.Warn("failed to publish scan event", "error", err)
		}
	}
	return result, nil
}

func (s *Scanner) discover() ([]seriesDir, error) {
	var dirs []seriesDir
	for _, root := range s.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("read library root %s: %w", root, err)
		}
		for _, e := range entries {
			if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			dirs = append(dirs, seriesDir{
				path: filepath.Join(root, e.Name()),
				name: ParseDirName(e.Name()),
			})
		}
	}
	return dirs, nil
}

// resolve returns 0 when no resolver is configured or the lookup failed.
// Only cancellation aborts the scan.
func (s *Scanner) resolve(ctx context.Context, series *Series) (int64, error) {
	if s.resolver == nil {
		return 0, nil
	}
	id, err := s.resolver.ResolveSeries(ctx, series.Title, series.Year)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		s.log.Warn("tvdb lookup failed", "series", series.Title, "error", err)
		return 0, nil
	}
	if id == 0 {
		s.log.Warn("no confident tvdb match", "series", series.Title, "year", series.Year)
	}
	return id, nil
}

func (s *Scanner) apply(ctx context.Context, adds, updates []*Series) (err error) {
	if len(adds) == 0 && len(updates) == 0 {
		return nil
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	for _, series := range adds {
		if err := tx.AddSeries(ctx, series); err != nil {
			return err
		}
	}
	for _, series := range updates {
		if err := tx.UpdateSeries(ctx, series); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scan: %w", err)
	}
	return nil
}

func sameSeries(a, b *Series) bool {
	if a.Title != b.Title || a.Year != b.Year || a.RootPath != b.RootPath {
		return false
	}
	switch {
	case a.TVDBID == nil && b.TVDBID == nil:
		return true
	case a.TVDBID == nil || b.TVDBID == nil:
		return false
	default:
		return *a.TVDBID == *b.TVDBID
	}
}
