// Package config loads pydo configuration from YAML files, with
// defaults derived from the XDG base directories.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options.
type Config struct {
	// Database is the path to the SQLite task database.
	Database string `yaml:"database"`

	// DateFormat is the layout used when rendering timestamps in
	// reports (Go reference layout).
	DateFormat string `yaml:"date_format,omitempty"`

	// Source is the config file the values came from, empty when only
	// defaults applied. Not serialized.
	Source string `yaml:"-"`
}

// DefaultDateFormat is the report timestamp layout when unset.
const DefaultDateFormat = "2006-01-02 15:04"

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "PYDO_CONFIG_PATH"

// Error variables for config loading.
var (
	ErrConfigRead    = errors.New("cannot read config file")
	ErrConfigInvalid = errors.New("invalid config file")
	ErrDatabaseEmpty = errors.New("database path cannot be empty")
)

const (
	dirPerms = 0o750
)

// DefaultDatabasePath returns the task database location:
// $XDG_DATA_HOME/pydo/pydo.db, falling back to ~/.local/share/pydo/pydo.db.
func DefaultDatabasePath(env map[string]string) string {
	if dataHome := env["XDG_DATA_HOME"]; dataHome != "" {
		return filepath.Join(dataHome, "pydo", "pydo.db")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".local", "share", "pydo", "pydo.db")
	}

	return filepath.Join("pydo", "pydo.db")
}

// DefaultConfigPath returns the config file location:
// $PYDO_CONFIG_PATH, then $XDG_CONFIG_HOME/pydo/config.yaml, then
// ~/.config/pydo/config.yaml. Empty when no home is known.
func DefaultConfigPath(env map[string]string) string {
	if path := env[EnvConfigPath]; path != "" {
		return path
	}

	if cfgHome := env["XDG_CONFIG_HOME"]; cfgHome != "" {
		return filepath.Join(cfgHome, "pydo", "config.yaml")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "pydo", "config.yaml")
	}

	return ""
}

// Default returns the default configuration for the given environment.
func Default(env map[string]string) Config {
	return Config{
		Database:   DefaultDatabasePath(env),
		DateFormat: DefaultDateFormat,
	}
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	ConfigPath       string            // -c/--config flag value; empty means default location
	DatabaseOverride string            // --db flag value; empty means no override
	Env              map[string]string // environment variables
}

// Load resolves configuration with the following precedence (highest
// wins):
//  1. Defaults (XDG-derived)
//  2. Config file (default location, or explicit via ConfigPath)
//  3. CLI overrides
//
// A missing config file at the default location is fine; an explicitly
// requested file must exist.
func Load(input LoadInput) (Config, error) {
	cfg := Default(input.Env)

	path := input.ConfigPath
	mustExist := path != ""

	if path == "" {
		path = DefaultConfigPath(input.Env)
	}

	if path != "" {
		fileCfg, loaded, err := loadFile(path, mustExist)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = merge(cfg, fileCfg)
			cfg.Source = path
		}
	}

	if input.DatabaseOverride != "" {
		cfg.Database = input.DatabaseOverride
	}

	if strings.TrimSpace(cfg.Database) == "" {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, ErrDatabaseEmpty)
	}

	return cfg, nil
}

// loadFile reads and parses one YAML config file. Returns loaded=false
// when the file does not exist and mustExist is false.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if mustExist {
			return Config{}, false, fmt.Errorf("%w: %s", ErrConfigRead, path)
		}

		return Config{}, false, nil
	}

	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigRead, path, err)
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

// merge overlays non-empty file values onto the base config.
func merge(base, overlay Config) Config {
	if overlay.Database != "" {
		base.Database = overlay.Database
	}

	if overlay.DateFormat != "" {
		base.DateFormat = overlay.DateFormat
	}

	return base
}

// WriteDefault writes the default config file for install, creating the
// config directory. The write is atomic so an interrupted install never
// leaves a truncated file. Returns the path written.
func WriteDefault(env map[string]string) (string, error) {
	path := DefaultConfigPath(env)
	if path == "" {
		return "", fmt.Errorf("%w: no home directory in environment", ErrConfigRead)
	}

	err := os.MkdirAll(filepath.Dir(path), dirPerms)
	if err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(Default(env))
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}

	err = atomic.WriteFile(path, strings.NewReader(string(data)))
	if err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return path, nil
}
