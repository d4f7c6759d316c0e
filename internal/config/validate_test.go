package config

import (
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
)

// validConfig returns a defaulted library-catalog config rooted at root.
func validConfig(root string) *Config {
	cfg := &Config{Library: LibraryConfig{Roots: []string{root}}}
	cfg.applyDefaults(toml.MetaData{})
	return cfg
}

func TestValidate_MinimalValid(t *testing.T) {
	errs := validConfig(t.TempDir()).Validate()
	assert.Empty(t, errs, "expected no errors for minimal valid config")
}

func TestValidate_NoLibraryRoots(t *testing.T) {
	cfg := validConfig("")
	cfg.Library.Roots = nil
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "library.roots"), "expected library error, got %v", errs)
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig(t.TempDir())
	cfg.Server.Port = 99999
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "server.port"), "expected port error, got %v", errs)
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig(t.TempDir())
	cfg.Server.LogLevel = "verbose"
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "log_level"), "expected log_level error, got %v", errs)
}

func TestValidate_Themes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ThemesConfig)
		want   string
	}{
		{"zero interval", func(c *ThemesConfig) { c.ScanIntervalHours = -1 }, "themes.scan_interval_hours"},
		{"zero concurrency", func(c *ThemesConfig) { c.MaxConcurrentDownloads = -2 }, "themes.max_concurrent_downloads"},
		{"file name with path", func(c *ThemesConfig) { c.FileName = "../theme.mp3" }, "themes.file_name"},
		{"relative base url", func(c *ThemesConfig) { c.BaseURL = "tvthemes.plexapp.com" }, "themes.base_url"},
		{"negative rate", func(c *ThemesConfig) { c.RequestsPerSecond = -1 }, "themes.requests_per_second"},
		{"bad daily time", func(c *ThemesConfig) { c.DailyAt = "25:99" }, "themes.daily_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t.TempDir())
			tt.mutate(&cfg.Themes)
			errs := cfg.Validate()
			assert.True(t, containsError(errs, tt.want), "expected %s error, got %v", tt.want, errs)
		})
	}
}

func TestValidate_UnknownCatalogSource(t *testing.T) {
	cfg := validConfig(t.TempDir())
	cfg.Catalog.Source = "jellyfin"
	errs := cfg.Validate()
	assert.True(t, containsErrorBoth(errs, "catalog.source", "jellyfin"), "expected catalog.source error, got %v", errs)
}

func TestValidate_PlexCatalogRequiresURL(t *testing.T) {
	cfg := validConfig(t.TempDir())
	cfg.Catalog.Source = SourcePlex
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "plex.url"), "expected plex.url error, got %v", errs)
}

func TestValidate_PlexMissingToken(t *testing.T) {
	cfg := validConfig(t.TempDir())
	cfg.Plex = PlexConfig{URL: "http://plex:32400"}
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "plex.token"), "expected plex.token error, got %v", errs)
}

func TestValidate_PlexPathMappingPairs(t *testing.T) {
	cfg := validConfig(t.TempDir())
	cfg.Plex = PlexConfig{URL: "http://plex:32400", Token: "t", LocalPath: "/mnt/tv"}
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "remote_path"), "expected path mapping error, got %v", errs)
}

func TestValidate_LibraryRootWarning(t *testing.T) {
	errs := validConfig("/nonexistent/path/12345").Validate()
	assert.True(t, containsErrorBoth(errs, "warning", "does not exist"), "expected warning for nonexistent path, got %v", errs)
}

func TestValidate_LibraryRootExists(t *testing.T) {
	tmp := t.TempDir()
	errs := validConfig(tmp).Validate()
	assert.False(t, containsError(errs, tmp), "unexpected error for existing path: %v", errs)
}

// Helper functions to check for errors containing specific strings
func containsError(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func containsErrorBoth(errs []string, substr1, substr2 string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr1) && strings.Contains(e, substr2) {
			return true
		}
	}
	return false
}
