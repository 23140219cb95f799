package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadFromMissingFile verifies a missing config yields full defaults.
func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Serve.User != DefaultUser || cfg.Serve.Pass != DefaultPass {
		t.Errorf("credentials = %s/%s, want defaults", cfg.Serve.User, cfg.Serve.Pass)
	}
	if cfg.Serve.BasePort != DefaultBasePort {
		t.Errorf("BasePort = %d, want %d", cfg.Serve.BasePort, DefaultBasePort)
	}
	if cfg.Serve.BindAddr != "" {
		t.Errorf("BindAddr = %q, want empty (auto-detect)", cfg.Serve.BindAddr)
	}
}

// TestLoadFromPartialFile verifies unset fields fall back to defaults while
// set fields win.
func TestLoadFromPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "serve:\n  base_port: 9000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Serve.BasePort != 9000 {
		t.Errorf("BasePort = %d, want 9000", cfg.Serve.BasePort)
	}
	if cfg.Serve.User != DefaultUser {
		t.Errorf("User = %q, want default", cfg.Serve.User)
	}
}

// TestLoadFromInvalidYAML verifies a corrupt file is a hard error, not a
// silent fallback.
func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("serve: [not: a: mapping"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom accepted invalid YAML")
	}
}

// TestSaveLoadRoundTrip verifies a saved configuration loads back intact.
func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := &Config{
		Serve: ServeConfig{
			User:     "admin",
			Pass:     "secret",
			BasePort: 9090,
			BindAddr: "10.0.0.7",
		},
	}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}
