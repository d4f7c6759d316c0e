package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vmunix/themarr/pkg/titlematch"
	"github.com/vmunix/themarr/pkg/tvdb"
)

const searchTTL = 24 * time.Hour

const keyPrefixSearch = "tvdb:search:"

// SeriesSearcher is the part of the TVDB client the service needs.
type SeriesSearcher interface {
	Search(ctx context.Context, query string, year int) ([]tvdb.SearchResult, error)
}

// TVDBService provides cached TVDB lookups.
type TVDBService struct {
	client SeriesSearcher
	cache  *Cache
	log    *slog.Logger
}

// NewTVDBService creates a new TVDB service.
func NewTVDBService(client SeriesSearcher, cache *Cache, log *slog.Logger) *TVDBService {
	if log == nil {
		log = slog.Default()
	}
	return &TVDBService{
		client: client,
		cache:  cache,
		log:    log.With("component", "metadata"),
	}
}

// Search searches for series by name (cached). Empty results are cached too.
func (s *TVDBService) Search(ctx context.Context, query string, year int) ([]tvdb.SearchResult, error) {
	key := fmt.Sprintf("%s%d:%s", keyPrefixSearch, year, strings.ToLower(strings.TrimSpace(query)))

	if results, ok := getJSON[[]tvdb.SearchResult](ctx, s.cache, key); ok {
		s.log.Debug("cache hit for search", "query", query, "year", year, "results", len(results))
		return results, nil
	}

	results, err := s.client.Search(ctx, query, year)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []tvdb.SearchResult{}
	}

	if err := setJSON(ctx, s.cache, key, results, searchTTL); err != nil {
		s.log.Warn("failed to cache search results", "query", query, "error", err)
	}
	return results, nil
}

// ResolveSeries returns the TVDB id of the series best matching title and year,
// or 0 when no result matches with high confidence. Aliases count as titles.
func (s *TVDBService) ResolveSeries(ctx context.Context, title string, year int) (int64, error) {
	results, err := s.Search(ctx, title, year)
	if err != nil {
		return 0, fmt.Errorf("resolve %q: %w", title, err)
	}
	if len(results) == 0 && year > 0 {
		// the year on disk is sometimes off from TVDB's first aired year
		if results, err = s.Search(ctx, title, 0); err != nil {
			return 0, fmt.Errorf("resolve %q: %w", title, err)
		}
	}

	var candidates []titlematch.Candidate
	var owners []int
	for i, r := range results {
		candidates = append(candidates, titlematch.Candidate{Title: r.Name, Year: r.Year})
		owners = append(owners, i)
		for _, alias := range r.Aliases {
			candidates = append(candidates, titlematch.Candidate{Title: alias, Year: r.Year})
			owners = append(owners, i)
		}
	}

	m := titlematch.Best(title, year, candidates)
	if m.Confidence < titlematch.ConfidenceHigh {
		s.log.Debug("no confident match",
			"title", title,
			"year", year,
			"best", m.Title,
			"score", m.Score)
		return 0, nil
	}

	r := results[owners[m.Index]]
	s.log.Info("resolved series",
		"title", title,
		"tvdb_id", r.ID,
		"matched", m.Title,
		"confidence", m.Confidence.String())
	return r.ID, nil
}
