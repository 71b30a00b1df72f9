// Package config handles the screenplan settings file. Settings provide
// defaults for serialization format, the daemon quiescence period, and the
// desired-state file; command-line flags override all of them.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultFormat = "json"
	DefaultWait   = "2s"
)

// Settings represents the screenplan configuration file.
type Settings struct {
	Format string       `toml:"format"` // json or yaml
	Input  string       `toml:"input"`  // default desired-state file
	Daemon DaemonConfig `toml:"daemon"`
}

// DaemonConfig holds daemon-mode defaults.
type DaemonConfig struct {
	Wait string `toml:"wait"` // quiescence period after a hardware event
}

// DefaultSettings returns Settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Format: DefaultFormat,
		Daemon: DaemonConfig{Wait: DefaultWait},
	}
}

// WaitDuration parses the daemon wait period.
func (s *Settings) WaitDuration() (time.Duration, error) {
	return time.ParseDuration(s.Daemon.Wait)
}

// SettingsPath returns the path to the settings file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func SettingsPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "screenplan", "config.toml")
}

// Load loads settings from the specified path. If path is empty, the
// default settings path is used. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = SettingsPath()
	}

	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes the settings to the specified path, creating parent
// directories as needed.
func (s *Settings) Save(path string) error {
	if path == "" {
		path = SettingsPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
