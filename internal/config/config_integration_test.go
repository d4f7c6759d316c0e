package config

import (
	"path/filepath"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	tmp := t.TempDir()

	// 1. Write default config
	cfgPath := filepath.Join(tmp, "themarr", "config.toml")
	if err := WriteDefault(cfgPath); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	// 2. Set required env vars (t.Setenv auto-restores on cleanup)
	t.Setenv("PLEX_TOKEN", "test-plex-token")
	t.Setenv("TVDB_API_KEY", "test-tvdb-key")

	// 3. Load without validation (library roots don't exist)
	cfg, err := LoadWithoutValidation(cfgPath)
	if err != nil {
		t.Fatalf("LoadWithoutValidation: %v", err)
	}

	// 4. Verify env substitution
	if cfg.Plex.Token != "test-plex-token" {
		t.Errorf("expected plex token substituted, got %q", cfg.Plex.Token)
	}
	if cfg.TVDB.APIKey != "test-tvdb-key" {
		t.Errorf("expected tvdb key substituted, got %q", cfg.TVDB.APIKey)
	}

	// 5. Verify the template matches the built-in defaults
	if cfg.Server.Port != 8585 {
		t.Errorf("expected default port 8585, got %d", cfg.Server.Port)
	}
	if err := cfg.Settings().Validate(); err != nil {
		t.Errorf("default settings invalid: %v", err)
	}
	if errs := cfg.Validate(); len(errs) > 1 {
		t.Errorf("expected at most the library root warning, got %v", errs)
	}
}
