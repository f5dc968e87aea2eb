package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFullConfig(t *testing.T) {
	// Create temp config file with all fields
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	configContent := `
theme: latte
scan_paths:
  - ~/code
  - ~/work
data_dir: /var/lib/deskmux
web:
  bind: 0.0.0.0
  port: 8123
undo_limit: 32
save_debounce: 250ms
log_level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Theme != "latte" {
		t.Errorf("Theme: got %q, want %q", cfg.Theme, "latte")
	}
	if len(cfg.ScanPaths) != 2 || cfg.ScanPaths[0] != "~/code" {
		t.Errorf("ScanPaths: got %v", cfg.ScanPaths)
	}
	if cfg.DataDir != "/var/lib/deskmux" {
		t.Errorf("DataDir: got %q", cfg.DataDir)
	}
	if cfg.Web.Bind != "0.0.0.0" || cfg.Web.Port != 8123 {
		t.Errorf("Web: got %+v", cfg.Web)
	}
	if cfg.UndoLimit != 32 {
		t.Errorf("UndoLimit: got %d, want 32", cfg.UndoLimit)
	}
	if time.Duration(cfg.SaveDebounce) != 250*time.Millisecond {
		t.Errorf("SaveDebounce: got %s, want 250ms", time.Duration(cfg.SaveDebounce))
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug", cfg.LogLevel)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("missing file should yield defaults, got error: %v", err)
	}
	d := DefaultConfig()
	if cfg.Theme != d.Theme || cfg.UndoLimit != d.UndoLimit {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFrom_PartialConfigMergesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("theme: frappe\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Theme != "frappe" {
		t.Errorf("Theme: got %q, want frappe", cfg.Theme)
	}
	if cfg.UndoLimit != 16 {
		t.Errorf("UndoLimit default: got %d, want 16", cfg.UndoLimit)
	}
	if time.Duration(cfg.SaveDebounce) != 400*time.Millisecond {
		t.Errorf("SaveDebounce default: got %s", time.Duration(cfg.SaveDebounce))
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel default: got %q", cfg.LogLevel)
	}
	if cfg.Web.Bind != "127.0.0.1" {
		t.Errorf("Web.Bind default: got %q", cfg.Web.Bind)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("theme: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadFrom_BadDuration(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("save_debounce: soonish\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Fatal("expected error for unparsable duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"negative undo limit", func(c *Config) { c.UndoLimit = -1 }, true},
		{"negative debounce", func(c *Config) { c.SaveDebounce = Duration(-time.Second) }, true},
		{"port too large", func(c *Config) { c.Web.Port = 70000 }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "chatty" }, true},
		{"empty scan path entry", func(c *Config) { c.ScanPaths = []string{"/ok", ""} }, true},
		{"debug level", func(c *Config) { c.LogLevel = "debug" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Config{DataDir: "/data/deskmux"}
	if got := cfg.StatePath(); got != "/data/deskmux/workspace.json" {
		t.Errorf("StatePath: got %q", got)
	}
	if got := cfg.LegacyStatePath(); got != "/data/deskmux/sessions.json" {
		t.Errorf("LegacyStatePath: got %q", got)
	}
	if got := cfg.PortFilePath(); got != "/data/deskmux/deskmux.port" {
		t.Errorf("PortFilePath: got %q", got)
	}
	if got := cfg.LockPath(); got != "/data/deskmux/deskmux.lock" {
		t.Errorf("LockPath: got %q", got)
	}
}
