package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/burnwatch/config.yaml"

// Config holds all burnwatch configuration.
type Config struct {
	Storage      StorageConfig      `yaml:"storage"`
	Daemon       DaemonConfig       `yaml:"daemon"`
	Tracking     TrackingConfig     `yaml:"tracking"`
	Intervention InterventionConfig `yaml:"intervention"`
	Logging      LoggingConfig      `yaml:"logging"`
}

type StorageConfig struct {
	Path       string `yaml:"path"`
	SQLiteFile string `yaml:"sqlite_file"`
}

type DaemonConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxRequestSize int    `yaml:"max_request_size"`
}

type TrackingConfig struct {
	RetentionHours     int      `yaml:"retention_hours"`
	SweepIntervalHours int      `yaml:"sweep_interval_hours"`
	DebounceMillis     int      `yaml:"debounce_millis"`
	IgnoredDomains     []string `yaml:"ignored_domains"`
}

type InterventionConfig struct {
	SevereThreshold         float64 `yaml:"severe_threshold"`
	ModerateThreshold       float64 `yaml:"moderate_threshold"`
	SevereCooldownMinutes   int     `yaml:"severe_cooldown_minutes"`
	ModerateCooldownMinutes int     `yaml:"moderate_cooldown_minutes"`
	BreakTickSeconds        int     `yaml:"break_tick_seconds"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
