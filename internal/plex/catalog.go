package plex

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vmunix/themarr/internal/fsx"
	"github.com/vmunix/themarr/internal/themes"
)

// Catalog lists the shows of Plex TV libraries as theme candidates.
type Catalog struct {
	client    *Client
	libraries []string // section titles to include; empty = every show section
	log       *slog.Logger
}

// NewCatalog creates a catalog over the named show libraries.
func NewCatalog(client *Client, libraries []string, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{client: client, libraries: libraries, log: log.With("component", "plex-catalog")}
}

// ListCandidates returns every show with a TVDB id and a folder on disk.
// A show spread over several folders uses the first one that exists locally.
func (c *Catalog) ListCandidates(ctx context.Context, fileName string) ([]themes.Candidate, error) {
	sections, err := c.client.Sections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}

	var out []themes.Candidate
	for _, sec := range sections {
		if sec.Type != "show" || !c.wanted(sec.Title) {
			continue
		}

		shows, err := c.client.Shows(ctx, sec.Key)
		if err != nil {
			return nil, fmt.Errorf("list shows in %s: %w", sec.Title, err)
		}

		for _, show := range shows {
			id := show.TVDBID()
			if id == 0 {
				c.log.Debug("show has no tvdb id, skipping", "show", show.Title)
				continue
			}
			dir := c.localDir(show)
			if dir == "" {
				c.log.Debug("show folder not found, skipping", "show", show.Title)
				continue
			}
			out = append(out, themes.Candidate{
				ID:            ratingKey(show.RatingKey),
				Name:          show.Title,
				ExternalID:    strconv.FormatInt(id, 10),
				DirectoryPath: dir,
				HasTheme:      fsx.FileExists(filepath.Join(dir, fileName)),
			})
		}
	}
	return out, nil
}

func (c *Catalog) wanted(title string) bool {
	if len(c.libraries) == 0 {
		return true
	}
	for _, name := range c.libraries {
		if strings.EqualFold(name, title) {
			return true
		}
	}
	return false
}

func (c *Catalog) localDir(show Show) string {
	for _, loc := range show.Locations {
		dir := c.client.ToLocal(loc.Path)
		if fsx.DirExists(dir) {
			return dir
		}
	}
	return ""
}

func ratingKey(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
