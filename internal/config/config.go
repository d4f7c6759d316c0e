// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vmunix/themarr/internal/themes"
)

// Catalog sources.
const (
	SourceLibrary = "library"
	SourcePlex    = "plex"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Themes   ThemesConfig   `toml:"themes"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Library  LibraryConfig  `toml:"library"`
	TVDB     TVDBConfig     `toml:"tvdb"`
	Plex     PlexConfig     `toml:"plex"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
	APIKey   string `toml:"api_key"`
}

type DatabaseConfig struct {
	Path           string   `toml:"path"`
	EventRetention Duration `toml:"event_retention"`
}

// ThemesConfig holds the download settings. Every field is re-read at run start.
type ThemesConfig struct {
	EnableAutoDownload     bool     `toml:"enable_auto_download"`
	ScanIntervalHours      int      `toml:"scan_interval_hours"`
	DailyAt                string   `toml:"daily_at"` // HH:MM local time, "" disables
	MaxConcurrentDownloads int      `toml:"max_concurrent_downloads"`
	FileName               string   `toml:"file_name"`
	BaseURL                string   `toml:"base_url"`
	SkipExistingFiles      bool     `toml:"skip_existing_files"`
	EnableNotifications    bool     `toml:"enable_notifications"`
	RequestsPerSecond      float64  `toml:"requests_per_second"`
	RequestTimeout         Duration `toml:"request_timeout"`
	LockFile               string   `toml:"lock_file"`
}

type CatalogConfig struct {
	Source string `toml:"source"` // "library" or "plex"
}

type LibraryConfig struct {
	Roots []string `toml:"roots"`
}

type TVDBConfig struct {
	APIKey string `toml:"api_key"`
}

type PlexConfig struct {
	URL        string   `toml:"url"`
	Token      string   `toml:"token"`
	Libraries  []string `toml:"libraries"`
	LocalPath  string   `toml:"local_path"`
	RemotePath string   `toml:"remote_path"`
}

// Enabled reports whether a Plex server is configured.
func (p PlexConfig) Enabled() bool {
	return p.URL != ""
}

// Duration is a time.Duration written as a string such as "30s" or "720h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Settings returns the run settings described by the [themes] section.
func (c *Config) Settings() themes.Settings {
	t := c.Themes
	return themes.Settings{
		EnableAutoDownload:     t.EnableAutoDownload,
		ScanIntervalHours:      t.ScanIntervalHours,
		MaxConcurrentDownloads: t.MaxConcurrentDownloads,
		FileName:               t.FileName,
		BaseURL:                t.BaseURL,
		SkipExistingFiles:      t.SkipExistingFiles,
		EnableNotifications:    t.EnableNotifications,
		RequestsPerSecond:      t.RequestsPerSecond,
	}
}

// LockPath returns the run lock file, next to the database unless set.
func (c *Config) LockPath() string {
	if c.Themes.LockFile != "" {
		return c.Themes.LockFile
	}
	return filepath.Join(filepath.Dir(c.Database.Path), "themarr.lock")
}

// Load reads, parses and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file without
// validating it. Unresolved environment variables are left as written.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	md, err := toml.Decode(content, &cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults(md)

	return &cfg, missing, nil
}

func (c *Config) applyDefaults(md toml.MetaData) {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8585
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/themarr.db"
	}
	if c.Database.EventRetention.Duration == 0 {
		c.Database.EventRetention.Duration = 30 * 24 * time.Hour
	}
	if c.Catalog.Source == "" {
		c.Catalog.Source = SourceLibrary
	}

	t := &c.Themes
	defaults := themes.DefaultSettings()
	if !md.IsDefined("themes", "enable_auto_download") {
		t.EnableAutoDownload = defaults.EnableAutoDownload
	}
	if !md.IsDefined("themes", "skip_existing_files") {
		t.SkipExistingFiles = defaults.SkipExistingFiles
	}
	if !md.IsDefined("themes", "enable_notifications") {
		t.EnableNotifications = defaults.EnableNotifications
	}
	if !md.IsDefined("themes", "daily_at") {
		t.DailyAt = "04:00"
	}
	if t.ScanIntervalHours == 0 {
		t.ScanIntervalHours = defaults.ScanIntervalHours
	}
	if t.MaxConcurrentDownloads == 0 {
		t.MaxConcurrentDownloads = defaults.MaxConcurrentDownloads
	}
	if t.FileName == "" {
		t.FileName = defaults.FileName
	}
	if t.BaseURL == "" {
		t.BaseURL = defaults.BaseURL
	}
	// One trailing slash is tolerated; ThemeURL adds its own separator.
	t.BaseURL = strings.TrimSuffix(t.BaseURL, "/")
	if t.RequestTimeout.Duration == 0 {
		t.RequestTimeout.Duration = themes.DefaultRequestTimeout
	}
}
