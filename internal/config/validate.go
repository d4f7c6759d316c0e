package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server validation
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	// Themes validation
	t := c.Themes
	if t.ScanIntervalHours <= 0 {
		errs = append(errs, fmt.Sprintf("themes.scan_interval_hours: must be positive, got %d", t.ScanIntervalHours))
	}
	if t.MaxConcurrentDownloads <= 0 {
		errs = append(errs, fmt.Sprintf("themes.max_concurrent_downloads: must be positive, got %d", t.MaxConcurrentDownloads))
	}
	if strings.ContainsAny(t.FileName, `/\`) {
		errs = append(errs, fmt.Sprintf("themes.file_name: must be a bare file name, got %q", t.FileName))
	}
	if u, err := url.Parse(t.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("themes.base_url: must be an absolute url, got %q", t.BaseURL))
	}
	if t.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Sprintf("themes.requests_per_second: must not be negative, got %g", t.RequestsPerSecond))
	}
	if t.DailyAt != "" {
		if _, err := time.Parse("15:04", t.DailyAt); err != nil {
			errs = append(errs, fmt.Sprintf("themes.daily_at: must be HH:MM, got %q", t.DailyAt))
		}
	}

	// Catalog validation
	switch c.Catalog.Source {
	case SourceLibrary, "":
		if len(c.Library.Roots) == 0 {
			errs = append(errs, "library.roots: at least one root is required for the library catalog")
		}
	case SourcePlex:
		if !c.Plex.Enabled() {
			errs = append(errs, "plex.url: required for the plex catalog")
		}
	default:
		errs = append(errs, fmt.Sprintf("catalog.source: must be one of library, plex; got %q", c.Catalog.Source))
	}

	if c.Plex.Enabled() && c.Plex.Token == "" {
		errs = append(errs, "plex.token: required when plex is configured")
	}
	if (c.Plex.LocalPath == "") != (c.Plex.RemotePath == "") {
		errs = append(errs, "plex.local_path, plex.remote_path: must be set together")
	}

	// Library path warnings
	for _, root := range c.Library.Roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("library.roots: warning: directory %q does not exist", root))
		}
	}

	return errs
}
