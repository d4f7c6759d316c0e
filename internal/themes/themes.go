// Package themes downloads missing theme songs for TV series.
//
// The Engine takes a snapshot of the catalog, filters out series that already
// have a theme file, and fans the remaining series out to a Fetcher under a
// concurrency bound. Only one run may be active at a time; its progress is
// observable through RunStatus.
package themes

import (
	"fmt"
	"net/url"
	"strings"
)

// Defaults mirror the values a fresh installation starts with.
const (
	DefaultScanIntervalHours      = 24
	DefaultMaxConcurrentDownloads = 3
	DefaultFileName               = "theme.mp3"
	DefaultBaseURL                = "http://tvthemes.plexapp.com"
)

// Candidate is a read-only view of one series considered for a theme download.
type Candidate struct {
	ID            int64  // catalog identifier, 0 when the source has none
	Name          string // display only
	ExternalID    string // TVDB id; empty when the series has none
	DirectoryPath string
	HasTheme      bool
}

// OutcomeStatus is the terminal result of processing one candidate.
type OutcomeStatus string

const (
	OutcomeDownloaded OutcomeStatus = "downloaded"
	OutcomeSkipped    OutcomeStatus = "skipped"
	OutcomeNotFound   OutcomeStatus = "not_found"
	OutcomeCancelled  OutcomeStatus = "cancelled"
	OutcomeFailed     OutcomeStatus = "failed"
)

// Outcome describes what happened to a single candidate.
type Outcome struct {
	Status     OutcomeStatus
	HTTPStatus int   // set for OutcomeNotFound
	Bytes      int64 // set for OutcomeDownloaded
	Err        error // set for OutcomeFailed and OutcomeCancelled
}

func (o Outcome) String() string {
	switch o.Status {
	case OutcomeNotFound:
		return fmt.Sprintf("%s(%d)", o.Status, o.HTTPStatus)
	case OutcomeFailed:
		return fmt.Sprintf("%s(%v)", o.Status, o.Err)
	default:
		return string(o.Status)
	}
}

// Settings is the configuration snapshot a run executes with.
// It is copied at run start and never mutated during the run.
type Settings struct {
	EnableAutoDownload     bool
	ScanIntervalHours      int
	MaxConcurrentDownloads int
	FileName               string
	BaseURL                string
	SkipExistingFiles      bool
	EnableNotifications    bool
	RequestsPerSecond      float64 // 0 disables rate limiting
}

// DefaultSettings returns the settings of an unconfigured installation.
func DefaultSettings() Settings {
	return Settings{
		EnableAutoDownload:     true,
		ScanIntervalHours:      DefaultScanIntervalHours,
		MaxConcurrentDownloads: DefaultMaxConcurrentDownloads,
		FileName:               DefaultFileName,
		BaseURL:                DefaultBaseURL,
		SkipExistingFiles:      true,
		EnableNotifications:    true,
	}
}

// Validate reports every problem with s, wrapped in ErrInvalidSettings.
func (s Settings) Validate() error {
	var problems []string

	if s.ScanIntervalHours <= 0 {
		problems = append(problems, fmt.Sprintf("scan interval hours must be positive, got %d", s.ScanIntervalHours))
	}
	if s.MaxConcurrentDownloads <= 0 {
		problems = append(problems, fmt.Sprintf("max concurrent downloads must be positive, got %d", s.MaxConcurrentDownloads))
	}

	name := strings.TrimSpace(s.FileName)
	switch {
	case name == "":
		problems = append(problems, "theme file name is required")
	case strings.ContainsAny(name, `/\`) || name == "." || name == "..":
		problems = append(problems, fmt.Sprintf("theme file name must be a bare file name, got %q", s.FileName))
	}

	if strings.TrimSpace(s.BaseURL) == "" {
		problems = append(problems, "theme base url is required")
	} else if u, err := url.Parse(s.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("theme base url must be an absolute url, got %q", s.BaseURL))
	}

	if s.RequestsPerSecond < 0 {
		problems = append(problems, fmt.Sprintf("requests per second must not be negative, got %g", s.RequestsPerSecond))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(problems, "; "))
	}
	return nil
}

// ThemeURL builds the download URL for a TVDB id.
func (s Settings) ThemeURL(externalID string) string {
	return s.BaseURL + "/" + externalID + ".mp3"
}
