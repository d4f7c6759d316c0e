package tvdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultBaseURL = "https://api4.thetvdb.com/v4"

// Sentinel errors for TVDB API responses.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized: invalid or expired API key")
	ErrRateLimited  = errors.New("rate limited: too many requests")
)

// Client is a TVDB API v4 client with JWT authentication.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger

	loginMu sync.Mutex // serializes logins

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "tvdb")
	}
}

// New creates a new TVDB API v4 client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// login exchanges the API key for a JWT. If another goroutine refreshed the
// token while we waited, stale is the token that failed and we keep the new one.
func (c *Client) login(ctx context.Context, stale string) error {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	if tok := c.currentToken(); tok != "" && tok != stale {
		return nil
	}

	body, err := json.Marshal(map[string]string{"apikey": c.apiKey})
	if err != nil {
		return fmt.Errorf("marshal login body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: %s", resp.Status)
	}

	var out envelope[loginData]
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if out.Data.Token == "" {
		return errors.New("login response missing token")
	}

	c.mu.Lock()
	c.token = out.Data.Token
	c.mu.Unlock()

	c.log.Debug("authenticated with TVDB")
	return nil
}

// get performs an authenticated GET and decodes the JSON envelope's data into out.
// An expired token is refreshed once.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	tok := c.currentToken()
	if tok == "" {
		if err := c.login(ctx, ""); err != nil {
			return err
		}
		tok = c.currentToken()
	}

	resp, err := c.send(ctx, endpoint, tok)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		c.log.Debug("token expired, refreshing")
		if err := c.login(ctx, tok); err != nil {
			return err
		}
		if resp, err = c.send(ctx, endpoint, c.currentToken()); err != nil {
			return err
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkResponse(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, endpoint, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// Search searches for series by name. year narrows the search when non-zero.
func (c *Client) Search(ctx context.Context, query string, year int) ([]SearchResult, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("query", query)
	params.Set("type", "series")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var out envelope[[]searchItem]
	if err := c.get(ctx, "/search?"+params.Encode(), &out); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	results := make([]SearchResult, 0, len(out.Data))
	for _, item := range out.Data {
		id := parseSeriesID(item)
		if id == 0 {
			continue
		}
		year, _ := strconv.Atoi(item.Year)
		results = append(results, SearchResult{
			ID:      id,
			Name:    item.Name,
			Year:    year,
			Network: item.Network,
			Aliases: item.Aliases,
		})
	}

	c.log.Debug("search completed",
		"query", query,
		"results", len(results),
		"duration_ms", time.Since(start).Milliseconds())
	return results, nil
}

// parseSeriesID reads tvdb_id, falling back to objectID ("series-12345").
func parseSeriesID(item searchItem) int64 {
	if id, err := strconv.ParseInt(item.TVDBID, 10, 64); err == nil && id > 0 {
		return id
	}
	if rest, ok := strings.CutPrefix(item.ObjectID, "series-"); ok {
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return 0
}

// checkResponse maps HTTP status codes to sentinel errors.
func checkResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("TVDB API error: %s", resp.Status)
	}
}
