package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Theme        string    `yaml:"theme"`
	ScanPaths    []string  `yaml:"scan_paths"`
	DataDir      string    `yaml:"data_dir"`
	Web          WebConfig `yaml:"web"`
	UndoLimit    int       `yaml:"undo_limit"`
	SaveDebounce Duration  `yaml:"save_debounce"`
	LogLevel     string    `yaml:"log_level"`
}

type WebConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "400ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func DefaultConfig() Config {
	return Config{
		Theme:        "mocha",
		DataDir:      defaultDataDir(),
		Web:          WebConfig{Bind: "127.0.0.1", Port: 0},
		UndoLimit:    16,
		SaveDebounce: Duration(400 * time.Millisecond),
		LogLevel:     "info",
	}
}

func Load() (Config, error) {
	return LoadFrom(getConfigPath())
}

func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}

	return cfg, nil
}

// applyDefaults fills fields an explicit config file left zero.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Theme == "" {
		c.Theme = d.Theme
	}
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.Web.Bind == "" {
		c.Web.Bind = d.Web.Bind
	}
	if c.UndoLimit == 0 {
		c.UndoLimit = d.UndoLimit
	}
	if c.SaveDebounce == 0 {
		c.SaveDebounce = d.SaveDebounce
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Validate rejects values the rest of the program would misbehave on.
func (c *Config) Validate() error {
	if c.UndoLimit < 0 {
		return fmt.Errorf("undo_limit must not be negative, got %d", c.UndoLimit)
	}
	if c.SaveDebounce < 0 {
		return fmt.Errorf("save_debounce must not be negative, got %s", time.Duration(c.SaveDebounce))
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port out of range: %d", c.Web.Port)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	for _, p := range c.ScanPaths {
		if p == "" {
			return fmt.Errorf("scan_paths must not contain empty entries")
		}
	}
	return nil
}

// StatePath is the current workspace document.
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, "workspace.json")
}

// LegacyStatePath is the pre-schema-versioning document, read as a load
// fallback and never written.
func (c *Config) LegacyStatePath() string {
	return filepath.Join(c.DataDir, "sessions.json")
}

// LogPath is the rotated JSON log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "deskmux.log")
}

// LockPath is the single-instance flock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "deskmux.lock")
}

// PortFilePath records the web port of the running instance.
func (c *Config) PortFilePath() string {
	return filepath.Join(c.DataDir, "deskmux.port")
}

func defaultDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "deskmux")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".local", "share", "deskmux")
	}
	return filepath.Join(home, ".local", "share", "deskmux")
}

func getConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "deskmux", "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "deskmux", "config.yaml")
	}

	return filepath.Join(home, ".config", "deskmux", "config.yaml")
}
