package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/vmunix/themarr/internal/fsx"
)

//go:embed default_config.toml
var defaultConfig string

// WriteDefault writes the commented default config to path, creating parent
// directories. An existing file is replaced atomically.
func WriteDefault(path string) error {
	return writeFile(path, strings.NewReader(defaultConfig))
}

// Write serializes the config to TOML at path. Secrets are written as
// loaded, so the file should not be world readable in shared setups.
func (c *Config) Write(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return writeFile(path, &buf)
}

func writeFile(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if _, err := fsx.WriteStreamAtomic(dir, filepath.Base(path), r); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
