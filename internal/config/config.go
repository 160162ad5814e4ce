// Package config loads the editor configuration.
//
// Values come from, in increasing priority: built-in defaults, a YAML (or JSON) file,
// HEIMER_* environment variables and finally command line flags, which the caller applies.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "HEIMER_"
)

// Config is the complete editor configuration.
type Config struct {
	Lang        string   `mapstructure:"lang" yaml:"lang"`
	LogLevel    string   `mapstructure:"log_level" yaml:"log_level"`
	UndoLimit   int      `mapstructure:"undo_limit" yaml:"undo_limit"`
	MetricsAddr string   `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	Settings    Settings `mapstructure:"settings" yaml:"settings"`
	Export      Export   `mapstructure:"export" yaml:"export"`
}

// Settings selects where user settings such as the recent path are kept.
type Settings struct {
	Backend  string `mapstructure:"backend" yaml:"backend"`
	Path     string `mapstructure:"path" yaml:"path"`
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

// Export holds the defaults of the PNG export dialog.
// A zero size means the size of the scene.
type Export struct {
	Width       int  `mapstructure:"width" yaml:"width"`
	Height      int  `mapstructure:"height" yaml:"height"`
	Transparent bool `mapstructure:"transparent" yaml:"transparent"`
}

// envKeys maps environment variables (without prefix) to configuration keys.
var envKeys = map[string][]string{
	"LANG":               {"lang"},
	"LOG_LEVEL":          {"log_level"},
	"UNDO_LIMIT":         {"undo_limit"},
	"METRICS_ADDR":       {"metrics_addr"},
	"SETTINGS_BACKEND":   {"settings", "backend"},
	"SETTINGS_PATH":      {"settings", "path"},
	"REDIS_URL":          {"settings", "redis_url"},
	"SETTINGS_PREFIX":    {"settings", "prefix"},
	"EXPORT_WIDTH":       {"export", "width"},
	"EXPORT_HEIGHT":      {"export", "height"},
	"EXPORT_TRANSPARENT": {"export", "transparent"},
}

// Default returns the configuration used when nothing else is given.
func Default() Config {
	return Config{
		Lang:      "en",
		LogLevel:  "warn",
		UndoLimit: 50,
		Settings: Settings{
			Backend: BackendFile,
			Prefix:  "heimer:",
		},
	}
}

// DefaultPath is the per-user configuration file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "heimer", "config.yaml"), nil
}

// Load reads path and applies the process environment.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	raw, err := readFile(path)
	if err != nil {
		return Config{}, err
	}

	for name, key := range envKeys {
		if v, ok := lookup(EnvPrefix + name); ok {
			setKey(raw, key, v)
		}
	}

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (map[string]any, error) {
	raw := make(map[string]any)
	if path == "" {
		return raw, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return raw, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	return raw, nil
}

// setKey writes value at the nested key, creating intermediate maps.
func setKey(m map[string]any, key []string, value string) {
	for _, k := range key[:len(key)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[k] = next
		}
		m = next
	}
	m[key[len(key)-1]] = value
}

// Validate rejects inconsistent configurations.
func (c Config) Validate() error {
	if c.UndoLimit < 0 {
		return fmt.Errorf("undo_limit must not be negative, got %d", c.UndoLimit)
	}
	if c.Export.Width < 0 || c.Export.Height < 0 {
		return fmt.Errorf("export size must not be negative, got %dx%d", c.Export.Width, c.Export.Height)
	}
	switch c.Settings.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Settings.RedisURL == "" {
			return errors.New("settings backend redis requires redis_url")
		}
	default:
		return fmt.Errorf("unknown settings backend %q", c.Settings.Backend)
	}
	return nil
}
