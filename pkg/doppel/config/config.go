package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Components map[string]string `mapstructure:"components"`
}

// CacheConfig configures the persistent digest cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // Empty means use default XDG path
}

// Config represents the application configuration.
type Config struct {
	MinSize     string        `mapstructure:"min_size"`
	DefaultPath string        `mapstructure:"default_path"`
	Exclude     []string      `mapstructure:"exclude"`
	MaxDepth    int           `mapstructure:"max_depth"`
	Workers     int           `mapstructure:"workers"`
	Output      string        `mapstructure:"output"`
	Rules       []string      `mapstructure:"rules"`
	Cache       CacheConfig   `mapstructure:"cache"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/doppel/config.yaml
//   - $HOME/.config/doppel/config.yaml
//
// Environment variables are prefixed with DOPPEL_ (e.g., DOPPEL_MIN_SIZE).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "doppel"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "doppel"))

	v.SetEnvPrefix("DOPPEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("min_size", DefaultMinSize)
	v.SetDefault("default_path", DefaultPath)
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("max_depth", 0)
	v.SetDefault("workers", 0) // 0 means auto-tune from system resources
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("rules", []string{})

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "") // Empty means use default XDG path

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.components", map[string]string{
		"scanner":  "info",
		"detector": "info",
		"cache":    "warn",
	})

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.HasPrefix(cfg.Cache.Path, "~") {
		cfg.Cache.Path = filepath.Join(homeDir, cfg.Cache.Path[1:])
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "doppel"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "doppel"), nil
}

// ConfigPath returns the path of the config file, whether or not it exists.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil {
		// Config file exists, do nothing
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Doppel Duplicate Detector Configuration

# Minimum file size to consider for duplicate detection
min_size: %s

# Default path to scan when none is specified
default_path: %s

# Paths to exclude from scanning
exclude:
  - /proc
  - /sys
  - /dev

# Maximum directory depth (0 means unlimited)
max_depth: 0

# Digest worker count (0 means auto-tune from system resources)
workers: 0

# Output format: pretty, plain, json, jsonl, yaml
output: %s

# Report rules applied to duplicate groups, e.g.
#   - "ext:jpg,png"
#   - "older-than:30d"
#   - "regex:\\.bak$"
rules: []

# Persistent digest cache
cache:
  enabled: true
  # Cache path (empty means use default: $XDG_CACHE_HOME/doppel/digests)
  path: ""

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/doppel/doppel.log)
  path: ""
  # Per-component log levels
  components:
    scanner: info
    detector: info
    cache: warn
`, DefaultMinSize, DefaultPath, DefaultOutput)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// StateDir returns $XDG_STATE_HOME/doppel/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "doppel")
}

// CacheDir returns $XDG_CACHE_HOME/doppel/ for the digest cache.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "doppel")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "doppel.log")
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}

// EnsureCacheDir creates the cache directory if it doesn't exist.
func EnsureCacheDir() error {
	if err := os.MkdirAll(CacheDir(), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	return nil
}
