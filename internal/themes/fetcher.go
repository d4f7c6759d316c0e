package themes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vmunix/themarr/internal/fsx"
)

// DefaultRequestTimeout bounds a single theme download, independent of the caller's context.
const DefaultRequestTimeout = 2 * time.Minute

// Fetcher downloads the theme song for one candidate.
type Fetcher interface {
	Fetch(ctx context.Context, c Candidate, s Settings) Outcome
}

// HTTPFetcher fetches theme songs over HTTP and writes them next to the series.
type HTTPFetcher struct {
	httpClient *http.Client
	timeout    time.Duration
	log        *slog.Logger

	mu      sync.Mutex
	limiter *rate.Limiter
	rps     float64
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		f.httpClient = hc
	}
}

// WithRequestTimeout overrides the per-request timeout.
func WithRequestTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

// NewHTTPFetcher creates a fetcher with the default 2 minute request timeout.
func NewHTTPFetcher(log *slog.Logger, opts ...FetcherOption) *HTTPFetcher {
	if log == nil {
		log = slog.Default()
	}
	f := &HTTPFetcher{
		httpClient: &http.Client{},
		timeout:    DefaultRequestTimeout,
		log:        log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a single GET for the candidate's theme and stores it as
// DirectoryPath/FileName. It never retries.
func (f *HTTPFetcher) Fetch(ctx context.Context, c Candidate, s Settings) Outcome {
	if c.ExternalID == "" {
		f.log.Warn("no TVDB id, skipping series", "series", c.Name)
		return Outcome{Status: OutcomeSkipped}
	}

	if lim := f.limiterFor(s.RequestsPerSecond); lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return f.interrupted(ctx, c, fmt.Errorf("rate limit: %w", err))
		}
	}

	start := time.Now()
	themeURL := s.ThemeURL(c.ExternalID)

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, themeURL, nil)
	if err != nil {
		return f.interrupted(ctx, c, fmt.Errorf("create request: %w", err))
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return f.interrupted(ctx, c, fmt.Errorf("request theme: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.log.Warn("theme song not found",
			"series", c.Name,
			"tvdb_id", c.ExternalID,
			"status", resp.StatusCode)
		return Outcome{Status: OutcomeNotFound, HTTPStatus: resp.StatusCode}
	}

	n, err := fsx.WriteStreamAtomic(c.DirectoryPath, s.FileName, resp.Body)
	if err != nil {
		return f.interrupted(ctx, c, fmt.Errorf("save theme: %w", err))
	}

	f.log.Info("downloaded theme song",
		"series", c.Name,
		"tvdb_id", c.ExternalID,
		"bytes", n,
		"duration_ms", time.Since(start).Milliseconds())
	return Outcome{Status: OutcomeDownloaded, Bytes: n}
}

// interrupted classifies err: if the caller's context is done the fetch was
// cancelled, otherwise it failed (including the per-request timeout firing).
func (f *HTTPFetcher) interrupted(ctx context.Context, c Candidate, err error) Outcome {
	if ctxErr := ctx.Err(); ctxErr != nil {
		f.log.Info("theme download cancelled", "series", c.Name)
		return Outcome{Status: OutcomeCancelled, Err: ctxErr}
	}
	f.log.Error("theme download failed",
		"series", c.Name,
		"tvdb_id", c.ExternalID,
		"error", err)
	return Outcome{Status: OutcomeFailed, Err: err}
}

// limiterFor returns the shared limiter for rps, rebuilding it when settings change.
func (f *HTTPFetcher) limiterFor(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.limiter == nil || f.rps != rps {
		f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		f.rps = rps
	}
	return f.limiter
}
