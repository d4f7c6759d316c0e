package library

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/vmunix/themarr/internal/fsx"
	"github.com/vmunix/themarr/internal/themes"
)

// Catalog exposes tracked series as theme candidates.
type Catalog struct {
	store *Store
	log   *slog.Logger
}

// NewCatalog creates a catalog backed by store.
func NewCatalog(store *Store, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{store: store, log: log.With("component", "catalog")}
}

// ListCandidates returns every series with a TVDB id whose directory exists.
// Series whose directory is gone are treated as virtual and left out.
func (c *Catalog) ListCandidates(ctx context.Context, fileName string) ([]themes.Candidate, error) {
	hasID := true
	series, _, err := c.store.ListSeries(ctx, SeriesFilter{HasTVDBID: &hasID})
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}

	out := make([]themes.Candidate, 0, len(series))
	for _, s := range series {
		if !fsx.DirExists(s.RootPath) {
			c.log.Debug("series directory missing, skipping", "series", s.Title, "path", s.RootPath)
			continue
		}
		out = append(out, themes.Candidate{
			ID:            s.ID,
			Name:          s.Title,
			ExternalID:    strconv.FormatInt(*s.TVDBID, 10),
			DirectoryPath: s.RootPath,
			HasTheme:      fsx.FileExists(filepath.Join(s.RootPath, fileName)),
		})
	}
	return out, nil
}
