package v1

import (
	"encoding/json"
	"time"

	"github.com/vmunix/themarr/internal/themes"
)

// statusResponse is the response for GET /ThemeSongs/Status.
type statusResponse struct {
	IsRunning bool       `json:"isRunning"`
	Progress  float64    `json:"progress"`
	LastRun   *time.Time `json:"lastRun"`
	RunID     string     `json:"runId,omitempty"`
	State     string     `json:"state"`
}

func newStatusResponse(snap themes.StatusSnapshot) statusResponse {
	return statusResponse{
		IsRunning: snap.IsRunning,
		Progress:  snap.Progress,
		LastRun:   snap.LastRun,
		RunID:     snap.RunID,
		State:     string(snap.State),
	}
}

// startRunResponse is the response for POST /ThemeSongs/DownloadTVShows.
type startRunResponse struct {
	RunID  string `json:"runId"`
	Status string `json:"status"`
}

// alreadyRunningResponse is returned with 409 when a run is active.
type alreadyRunningResponse struct {
	Error  string         `json:"error"`
	Code   string         `json:"code"`
	Status statusResponse `json:"status"`
}

// cancelResponse is the response for POST /ThemeSongs/Cancel.
type cancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

// EventResponse is the API representation of a persisted event.
type EventResponse struct {
	ID         int64           `json:"id"`
	EventType  string          `json:"eventType"`
	EntityType string          `json:"entityType"`
	EntityID   int64           `json:"entityId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// listEventsResponse is the response for GET /ThemeSongs/Events.
type listEventsResponse struct {
	Items []EventResponse `json:"items"`
	Total int             `json:"total"`
}

// seriesResponse is the API representation of a library series.
type seriesResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Year      int       `json:"year,omitempty"`
	TVDBID    *int64    `json:"tvdbId,omitempty"`
	RootPath  string    `json:"rootPath"`
	HasTheme  bool      `json:"hasTheme"`
	AddedAt   time.Time `json:"addedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// listSeriesResponse is the response for GET /ThemeSongs/Series.
type listSeriesResponse struct {
	Items  []seriesResponse `json:"items"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// scanResponse is the response for POST /ThemeSongs/Library/Scan.
type scanResponse struct {
	Added      int `json:"added"`
	Updated    int `json:"updated"`
	Unchanged  int `json:"unchanged"`
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
}
