package events

// Entity types
const (
	EntitySeries = "series"
	EntityRun    = "run"
)

// Event type constants
const (
	EventRunStarted      = "theme.run.started"
	EventRunFinished     = "theme.run.finished"
	EventThemeDownloaded = "theme.downloaded"
	EventThemeNotFound   = "theme.not_found"
	EventThemeFailed     = "theme.failed"
	EventLibraryScanned  = "library.scanned"
)

// RunStarted is emitted once the candidate snapshot of a run is known.
type RunStarted struct {
	BaseEvent
	RunID      string `json:"run_id"`
	Catalog    int    `json:"catalog"`
	Candidates int    `json:"candidates"`
}

// RunFinished is emitted when a run reaches a terminal state.
type RunFinished struct {
	BaseEvent
	RunID      string `json:"run_id"`
	State      string `json:"state"`
	Total      int    `json:"total"`
	Downloaded int    `json:"downloaded"`
	Skipped    int    `json:"skipped"`
	NotFound   int    `json:"not_found"`
	Failed     int    `json:"failed"`
	Cancelled  int    `json:"cancelled"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// ThemeDownloaded is emitted when a theme file has been written for a series.
type ThemeDownloaded struct {
	BaseEvent
	RunID     string `json:"run_id"`
	Series    string `json:"series"`
	TVDBID    string `json:"tvdb_id"`
	Directory string `json:"directory"`
	Path      string `json:"path"`
	Bytes     int64  `json:"bytes"`
}

// ThemeNotFound is emitted when the theme service has no theme for a series.
type ThemeNotFound struct {
	BaseEvent
	RunID      string `json:"run_id"`
	Series     string `json:"series"`
	TVDBID     string `json:"tvdb_id"`
	HTTPStatus int    `json:"http_status"`
}

// ThemeFailed is emitted when downloading or saving a theme failed.
type ThemeFailed struct {
	BaseEvent
	RunID  string `json:"run_id"`
	Series string `json:"series"`
	TVDBID string `json:"tvdb_id"`
	Error  string `json:"error"`
}

// LibraryScanned is emitted after the library directories were synced into the store.
type LibraryScanned struct {
	BaseEvent
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Resolved  int `json:"resolved"`
}
