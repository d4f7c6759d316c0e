package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/themarr/internal/themes"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "failed to write test config")
	return path
}

func TestThemes_Defaults(t *testing.T) {
	tmp := t.TempDir()
	cfg, err := Load(writeConfig(t, `
[library]
roots = ["`+tmp+`"]
`))
	require.NoError(t, err)

	assert.Equal(t, themes.DefaultSettings(), cfg.Settings())
	assert.Equal(t, "04:00", cfg.Themes.DailyAt)
	assert.Equal(t, themes.DefaultRequestTimeout, cfg.Themes.RequestTimeout.Duration)
	assert.Equal(t, 30*24*time.Hour, cfg.Database.EventRetention.Duration)
	assert.Equal(t, SourceLibrary, cfg.Catalog.Source)
}

func TestThemes_ExplicitFalseIsKept(t *testing.T) {
	tmp := t.TempDir()
	cfg, err := Load(writeConfig(t, `
[themes]
enable_auto_download = false
skip_existing_files = false
enable_notifications = false
daily_at = ""

[library]
roots = ["`+tmp+`"]
`))
	require.NoError(t, err)

	s := cfg.Settings()
	assert.False(t, s.EnableAutoDownload)
	assert.False(t, s.SkipExistingFiles)
	assert.False(t, s.EnableNotifications)
	assert.Empty(t, cfg.Themes.DailyAt)
}

func TestThemes_AllFields(t *testing.T) {
	tmp := t.TempDir()
	cfg, err := Load(writeConfig(t, `
[themes]
scan_interval_hours = 6
max_concurrent_downloads = 8
file_name = "theme.flac"
base_url = "https://themes.example.com/tv/"
requests_per_second = 2.5
request_timeout = "45s"
lock_file = "/run/themarr.lock"

[library]
roots = ["`+tmp+`"]
`))
	require.NoError(t, err)

	s := cfg.Settings()
	assert.Equal(t, 6, s.ScanIntervalHours)
	assert.Equal(t, 8, s.MaxConcurrentDownloads)
	assert.Equal(t, "theme.flac", s.FileName)
	assert.Equal(t, "https://themes.example.com/tv", s.BaseURL, "one trailing slash is stripped")
	assert.Equal(t, "https://themes.example.com/tv/81189.mp3", s.ThemeURL("81189"))
	assert.InDelta(t, 2.5, s.RequestsPerSecond, 0.001)
	assert.Equal(t, 45*time.Second, cfg.Themes.RequestTimeout.Duration)
	assert.Equal(t, "/run/themarr.lock", cfg.LockPath())
}

func TestLockPath_NextToDatabase(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Path: "/var/lib/themarr/themarr.db"}}
	assert.Equal(t, "/var/lib/themarr/themarr.lock", cfg.LockPath())
}

func TestPlexCatalog(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[catalog]
source = "plex"

[plex]
url = "http://plex:32400"
token = "abc"
libraries = ["TV Shows", "Anime"]
local_path = "/mnt/tv"
remote_path = "/data/tv"
`))
	require.NoError(t, err)

	assert.Equal(t, SourcePlex, cfg.Catalog.Source)
	assert.True(t, cfg.Plex.Enabled())
	assert.Equal(t, []string{"TV Shows", "Anime"}, cfg.Plex.Libraries)
	assert.Equal(t, "/mnt/tv", cfg.Plex.LocalPath)
	assert.Equal(t, "/data/tv", cfg.Plex.RemotePath)
}

func TestDuration_InvalidValue(t *testing.T) {
	_, err := LoadWithoutValidation(writeConfig(t, `
[themes]
request_timeout = "soon"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}
