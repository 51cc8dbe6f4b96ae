// Package config handles loading, validating, and saving Zynapse
// configuration. Settings live in ~/.zynapse/config.yaml; a missing file
// yields defaults so first runs work without setup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"zynapse/internal/zerrors"
)

// Config holds all Zynapse configuration, organized by functional area.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	CLI     CLIConfig     `yaml:"cli"`
	TUI     TUIConfig     `yaml:"tui"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig controls where and how notes are persisted.
type StorageConfig struct {
	// Root directory for note files.
	RootPath string `yaml:"root_path"`

	// Maximum note file size in bytes.
	MaxFileSize uint64 `yaml:"max_file_size"`

	Backup BackupConfig `yaml:"backup"`

	// Auto-save interval for the TUI editor ("0s" disables).
	AutoSaveInterval string `yaml:"auto_save_interval"`
}

// BackupConfig controls pre-modification backups.
type BackupConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	// Number of backups retained per note.
	RetainCount int `yaml:"retain_count"`
}

// SearchConfig controls the full-text index.
type SearchConfig struct {
	// Directory holding the SQLite index database.
	IndexPath string `yaml:"index_path"`

	MaxResults int `yaml:"max_results"`

	// Enable prefix matching on the last query term.
	FuzzySearch bool `yaml:"fuzzy_search"`

	Timeout string `yaml:"timeout"`
}

// CLIConfig holds command-line front-end settings.
type CLIConfig struct {
	Editor        string `yaml:"editor"`
	ColoredOutput bool   `yaml:"colored_output"`
	MaxListItems  int    `yaml:"max_list_items"`
}

// TUIConfig holds terminal-interface settings.
type TUIConfig struct {
	Theme        string      `yaml:"theme"` // default, light, dark
	FrameRate    int         `yaml:"frame_rate"`
	MouseSupport bool        `yaml:"mouse_support"`
	KeyBindings  KeyBindings `yaml:"keybindings"`
}

// KeyBindings maps TUI actions to keys.
type KeyBindings struct {
	Quit    string `yaml:"quit"`
	Search  string `yaml:"search"`
	NewNote string `yaml:"new_note"`
	Edit    string `yaml:"edit"`
}

// LoggingConfig controls the categorized debug logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Debug bool   `yaml:"debug"` // write category log files
	File  string `yaml:"file"`
}

// DataDir returns the Zynapse home directory, honoring ZYNAPSE_HOME.
func DataDir() string {
	if dir := os.Getenv("ZYNAPSE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zynapse"
	}
	return filepath.Join(home, ".zynapse")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(DataDir(), "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dataDir := DataDir()

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		editor = "nano"
	}

	return &Config{
		Storage: StorageConfig{
			RootPath:    filepath.Join(dataDir, "notes"),
			MaxFileSize: 10 * 1024 * 1024,
			Backup: BackupConfig{
				Enabled:     true,
				Path:        filepath.Join(dataDir, "backups"),
				RetainCount: 10,
			},
			AutoSaveInterval: "5m",
		},

		Search: SearchConfig{
			IndexPath:   filepath.Join(dataDir, "index"),
			MaxResults:  100,
			FuzzySearch: true,
			Timeout:     "5s",
		},

		CLI: CLIConfig{
			Editor:        editor,
			ColoredOutput: true,
			MaxListItems:  50,
		},

		TUI: TUIConfig{
			Theme:        "default",
			FrameRate:    60,
			MouseSupport: true,
			KeyBindings: KeyBindings{
				Quit:    "q",
				Search:  "/",
				NewNote: "n",
				Edit:    "e",
			},
		},

		Logging: LoggingConfig{
			Level: "info",
			Debug: false,
		},
	}
}

// Load loads configuration from a YAML file, returning validated defaults
// when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, zerrors.IO(err, fmt.Sprintf("failed to read config file: %s", path))
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, zerrors.Config("invalid YAML in config file: %v", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return zerrors.IO(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return zerrors.Serialization(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return zerrors.IO(err, fmt.Sprintf("failed to write config file: %s", path))
	}
	return nil
}

// Render returns the configuration as YAML.
func (c *Config) Render() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, zerrors.Serialization(err, "failed to marshal config")
	}
	return data, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("ZYNAPSE_HOME"); dir != "" {
		// Rebase the default layout onto the overridden home.
		c.Storage.RootPath = filepath.Join(dir, "notes")
		c.Storage.Backup.Path = filepath.Join(dir, "backups")
		c.Search.IndexPath = filepath.Join(dir, "index")
	}
	if path := os.Getenv("ZYNAPSE_DB"); path != "" {
		c.Search.IndexPath = path
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		c.CLI.Editor = editor
	}
}

// Validate checks that all configuration values are consistent.
func (c *Config) Validate() error {
	if c.Storage.MaxFileSize == 0 {
		return zerrors.Config("storage.max_file_size must be greater than 0")
	}
	if c.Storage.Backup.RetainCount <= 0 {
		return zerrors.Config("storage.backup.retain_count must be greater than 0")
	}

	if c.Search.MaxResults <= 0 {
		return zerrors.Config("search.max_results must be greater than 0")
	}
	if c.GetSearchTimeout() <= 0 {
		return zerrors.Config("search.timeout must be greater than 0")
	}

	if c.CLI.Editor == "" {
		return zerrors.Config("cli.editor cannot be empty")
	}
	if c.CLI.MaxListItems <= 0 {
		return zerrors.Config("cli.max_list_items must be greater than 0")
	}

	if c.TUI.FrameRate < 1 || c.TUI.FrameRate > 120 {
		return zerrors.Config("tui.frame_rate must be between 1 and 120")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return zerrors.Config("logging.level must be one of: debug, info, warn, error")
	}

	return nil
}

// EnsureDirectories creates every directory the configuration references.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.RootPath, 0755); err != nil {
		return zerrors.IO(err, "failed to create storage directory")
	}
	if c.Storage.Backup.Enabled {
		if err := os.MkdirAll(c.Storage.Backup.Path, 0755); err != nil {
			return zerrors.IO(err, "failed to create backup directory")
		}
	}
	if err := os.MkdirAll(filepath.Dir(c.IndexDBPath()), 0755); err != nil {
		return zerrors.IO(err, "failed to create search index directory")
	}
	return nil
}

// GetSearchTimeout returns the search timeout as a duration.
func (c *Config) GetSearchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Search.Timeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetAutoSaveInterval returns the auto-save interval; zero disables.
func (c *Config) GetAutoSaveInterval() time.Duration {
	d, err := time.ParseDuration(c.Storage.AutoSaveInterval)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// IndexDBPath returns the SQLite database file inside the index directory.
func (c *Config) IndexDBPath() string {
	if filepath.Ext(c.Search.IndexPath) == ".db" {
		return c.Search.IndexPath
	}
	return filepath.Join(c.Search.IndexPath, "zynapse.db")
}
