package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmunix/themarr/internal/fsx"
)

// EnvConfigPath names the environment variable that pins the config file.
const EnvConfigPath = "THEMARR_CONFIG"

// ErrNotFound is returned by Discover when no config file exists.
var ErrNotFound = errors.New("config not found")

// DefaultPath returns the XDG config path, where `themarr init` writes.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./config.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "themarr", "config.toml")
}

// SearchPaths lists the locations Discover tries, in order. A themarr.toml
// in the working directory wins over a generic config.toml next to it.
func SearchPaths() []string {
	return []string{
		"./themarr.toml",
		"./config.toml",
		DefaultPath(),
		"/etc/themarr/config.toml",
	}
}

// Discover returns the config file to load. $THEMARR_CONFIG is used as is
// and must exist; otherwise the first regular file in SearchPaths wins.
func Discover() (string, error) {
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfigPath, envPath, err)
		}
		return envPath, nil
	}

	paths := SearchPaths()
	for _, p := range paths {
		if fsx.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w, checked: %s", ErrNotFound, strings.Join(paths, ", "))
}
