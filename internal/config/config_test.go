package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"zynapse/internal/zerrors"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("ZYNAPSE_HOME", t.TempDir())

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Storage.MaxFileSize != 10*1024*1024 {
		t.Errorf("expected MaxFileSize=10MB, got %d", cfg.Storage.MaxFileSize)
	}
	if cfg.Storage.Backup.RetainCount != 10 {
		t.Errorf("expected RetainCount=10, got %d", cfg.Storage.Backup.RetainCount)
	}
	if cfg.CLI.Editor == "" {
		t.Error("default editor should not be empty")
	}
	if cfg.TUI.KeyBindings.Quit != "q" {
		t.Errorf("expected quit key q, got %s", cfg.TUI.KeyBindings.Quit)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("ZYNAPSE_HOME", home)
	t.Setenv("ZYNAPSE_DB", "")
	t.Setenv("EDITOR", "")

	path := filepath.Join(home, "config.yaml")

	cfg := DefaultConfig()
	cfg.Storage.MaxFileSize = 5242880
	cfg.Logging.Level = "debug"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("config changed across save/load (-saved +loaded):\n%s", diff)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("ZYNAPSE_HOME", home)
	t.Setenv("ZYNAPSE_DB", "")

	cfg, err := Load(filepath.Join(home, "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file should return defaults: %v", err)
	}
	if cfg.Search.MaxResults != 100 {
		t.Errorf("expected default MaxResults=100, got %d", cfg.Search.MaxResults)
	}
	if !strings.HasPrefix(cfg.Storage.RootPath, home) {
		t.Errorf("root path %q should live under ZYNAPSE_HOME %q", cfg.Storage.RootPath, home)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("ZYNAPSE_HOME", home)
	t.Setenv("ZYNAPSE_DB", "/tmp/custom-index")
	t.Setenv("EDITOR", "vim")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.Search.IndexPath != "/tmp/custom-index" {
		t.Errorf("expected index path override, got %s", cfg.Search.IndexPath)
	}
	if cfg.CLI.Editor != "vim" {
		t.Errorf("expected editor=vim, got %s", cfg.CLI.Editor)
	}
	if cfg.Storage.RootPath != filepath.Join(home, "notes") {
		t.Errorf("expected notes under home, got %s", cfg.Storage.RootPath)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Setenv("ZYNAPSE_HOME", t.TempDir())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max_file_size", func(c *Config) { c.Storage.MaxFileSize = 0 }},
		{"zero retain_count", func(c *Config) { c.Storage.Backup.RetainCount = 0 }},
		{"zero max_results", func(c *Config) { c.Search.MaxResults = 0 }},
		{"zero search timeout", func(c *Config) { c.Search.Timeout = "0s" }},
		{"empty editor", func(c *Config) { c.CLI.Editor = "" }},
		{"zero max_list_items", func(c *Config) { c.CLI.MaxListItems = 0 }},
		{"frame rate too high", func(c *Config) { c.TUI.FrameRate = 240 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		if kind, ok := zerrors.KindOf(err); !ok || kind != zerrors.KindConfig {
			t.Errorf("%s: expected config error kind, got %v", tc.name, err)
		}
	}
}

func TestConfig_EnsureDirectories(t *testing.T) {
	home := t.TempDir()
	t.Setenv("ZYNAPSE_HOME", home)
	t.Setenv("ZYNAPSE_DB", "")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	for _, dir := range []string{cfg.Storage.RootPath, cfg.Storage.Backup.Path, cfg.Search.IndexPath} {
		if !strings.HasPrefix(dir, home) {
			t.Fatalf("directory %q escaped home %q", dir, home)
		}
	}
}

func TestConfig_DurationHelpers(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.GetSearchTimeout() <= 0 {
		t.Error("GetSearchTimeout should be positive")
	}
	if cfg.GetAutoSaveInterval() <= 0 {
		t.Error("GetAutoSaveInterval should be positive")
	}

	cfg.Search.Timeout = "not-a-duration"
	if cfg.GetSearchTimeout() <= 0 {
		t.Error("GetSearchTimeout should fall back to a sane default")
	}
}

func TestIndexDBPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.IndexPath = "/data/index"
	if got := cfg.IndexDBPath(); got != filepath.Join("/data/index", "zynapse.db") {
		t.Errorf("IndexDBPath=%q", got)
	}

	cfg.Search.IndexPath = "/data/custom.db"
	if got := cfg.IndexDBPath(); got != "/data/custom.db" {
		t.Errorf("IndexDBPath with .db file=%q", got)
	}
}
