package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrAlreadyRunning is returned when the server rejects a run because one is active.
var ErrAlreadyRunning = errors.New("a theme run is already in progress")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// Client wraps HTTP calls to the themarr server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new themarr API client.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(serverURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}
	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}

	var payload struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Code = payload.Code
	}
	if resp.StatusCode == http.StatusConflict {
		return fmt.Errorf("%w: %w", ErrAlreadyRunning, apiErr)
	}
	return apiErr
}

// API response types (mirror server types)

type StatusResponse struct {
	IsRunning bool       `json:"isRunning"`
	Progress  float64    `json:"progress"`
	LastRun   *time.Time `json:"lastRun"`
	RunID     string     `json:"runId,omitempty"`
	State     string     `json:"state"`
}

type StartRunResponse struct {
	RunID  string `json:"runId"`
	Status string `json:"status"`
}

type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

type EventResponse struct {
	ID         int64           `json:"id"`
	EventType  string          `json:"eventType"`
	EntityType string          `json:"entityType"`
	EntityID   int64           `json:"entityId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

type ListEventsResponse struct {
	Items []EventResponse `json:"items"`
	Total int             `json:"total"`
}

type SeriesResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Year      int       `json:"year,omitempty"`
	TVDBID    *int64    `json:"tvdbId,omitempty"`
	RootPath  string    `json:"rootPath"`
	HasTheme  bool      `json:"hasTheme"`
	AddedAt   time.Time `json:"addedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListSeriesResponse struct {
	Items  []SeriesResponse `json:"items"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type ScanResponse struct {
	Added      int `json:"added"`
	Updated    int `json:"updated"`
	Unchanged  int `json:"unchanged"`
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
}

// EventsQuery filters the event history.
type EventsQuery struct {
	Limit int
	Since time.Time
	Type  string
}

// SeriesQuery filters the library listing.
type SeriesQuery struct {
	Limit  int
	Offset int
	Title  string
}

// Status returns the current run status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodGet, "/ThemeSongs/Status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartRun asks the server to start a theme run.
func (c *Client) StartRun(ctx context.Context) (*StartRunResponse, error) {
	var resp StartRunResponse
	if err := c.do(ctx, http.MethodPost, "/ThemeSongs/DownloadTVShows", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel stops the active run. Cancelled is false when nothing was running.
func (c *Client) Cancel(ctx context.Context) (*CancelResponse, error) {
	var resp CancelResponse
	if err := c.do(ctx, http.MethodPost, "/ThemeSongs/Cancel", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Events returns recent events, newest first.
func (c *Client) Events(ctx context.Context, q EventsQuery) (*ListEventsResponse, error) {
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if !q.Since.IsZero() {
		params.Set("since", q.Since.UTC().Format(time.RFC3339))
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}

	path := "/ThemeSongs/Events"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp ListEventsResponse
	if err := c.do(ctx, http.MethodGet, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Series lists library series.
func (c *Client) Series(ctx context.Context, q SeriesQuery) (*ListSeriesResponse, error) {
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Title != "" {
		params.Set("title", q.Title)
	}

	path := "/ThemeSongs/Series"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp ListSeriesResponse
	if err := c.do(ctx, http.MethodGet, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScanLibrary triggers a library scan and returns its summary.
func (c *Client) ScanLibrary(ctx context.Context) (*ScanResponse, error) {
	var resp ScanResponse
	if err := c.do(ctx, http.MethodPost, "/ThemeSongs/Library/Scan", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
