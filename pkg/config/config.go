// Package config handles loading and saving tw configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/taskweave/config.yaml
//   - Data:   ~/.local/share/taskweave/ (the task document lives here by default)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultDocumentName is the task document filename inside the data dir.
const DefaultDocumentName = "tasks.jsonl"

// UIConfig holds session-start UI preferences. These are defaults only;
// the live view state is never written back.
type UIConfig struct {
	HideDone  bool   `yaml:"hide_done,omitempty"`
	Sort      string `yaml:"sort,omitempty"` // manual, priority, due, created
	NotesPane bool   `yaml:"notes_pane,omitempty"`
}

// Config is the top-level configuration for tw.
type Config struct {
	// Document overrides the task document path (~ expanded).
	Document string `yaml:"document,omitempty"`
	// SaveDebounceMS coalesces rapid mutations into one save.
	SaveDebounceMS int      `yaml:"save_debounce_ms,omitempty"`
	UI             UIConfig `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SaveDebounceMS: 400,
	}
}

// ConfigDir returns the XDG config directory for tw.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "taskweave")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "taskweave")
}

// DataDir returns the XDG data directory for tw.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "taskweave")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "taskweave")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// DocumentPath resolves the task document location: the configured path if
// set, otherwise the well-known data dir location.
func (c Config) DocumentPath() string {
	if c.Document != "" {
		return expandHome(c.Document)
	}
	dir := DataDir()
	if dir == "" {
		return DefaultDocumentName
	}
	return filepath.Join(dir, DefaultDocumentName)
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.SaveDebounceMS <= 0 {
		cfg.SaveDebounceMS = DefaultConfig().SaveDebounceMS
	}

	return cfg, nil
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
