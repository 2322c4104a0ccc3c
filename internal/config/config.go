// Package config handles persistent user configuration for revdash.
//
// Configuration is stored as JSON at ~/.config/revdash/config.json (or the
// platform-equivalent path returned by os.UserConfigDir). Environment
// variables prefixed with REVDASH_ override stored values for the current
// process only.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"nathanbeddoewebdev/revdash/internal/period"
)

const (
	appDir   = "revdash"
	fileName = "config.json"

	DefaultWidgetMetric   = "sales"
	DefaultWidgetInterval = 10 * time.Minute
	DefaultLogLevel       = "warn"
)

// pathOverride, when non-empty, replaces the default config file path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds user preferences that persist across invocations.
type Config struct {
	BaseURL        string `json:"base_url,omitempty"`
	DefaultPeriod  string `json:"default_period,omitempty"`
	WidgetMetric   string `json:"widget_metric,omitempty"`
	WidgetInterval string `json:"widget_interval,omitempty"`
	IncludeMRR     *bool  `json:"include_mrr,omitempty"`
	LogLevel       string `json:"log_level,omitempty"`
}

// Period returns the configured default period, or period.Today when unset
// or unrecognised.
func (c *Config) Period() period.Period {
	if c == nil || c.DefaultPeriod == "" {
		return period.Today
	}
	p, err := period.Parse(c.DefaultPeriod)
	if err != nil {
		return period.Today
	}
	return p
}

// Metric returns the metric shown by the widget.
func (c *Config) Metric() string {
	if c == nil || c.WidgetMetric == "" {
		return DefaultWidgetMetric
	}
	return c.WidgetMetric
}

// Interval returns the widget refresh interval.
func (c *Config) Interval() time.Duration {
	if c == nil || c.WidgetInterval == "" {
		return DefaultWidgetInterval
	}
	d, err := time.ParseDuration(c.WidgetInterval)
	if err != nil || d <= 0 {
		return DefaultWidgetInterval
	}
	return d
}

// MRR reports whether per-app fetches include the recurring-revenue
// snapshot. Defaults to true.
func (c *Config) MRR() bool {
	if c == nil || c.IncludeMRR == nil {
		return true
	}
	return *c.IncludeMRR
}

// Level returns the configured log level name.
func (c *Config) Level() string {
	if c == nil || c.LogLevel == "" {
		return DefaultLogLevel
	}
	return c.LogLevel
}

// Path returns the absolute path to the config file.
// If SetPath has been called, that value is returned instead.
// Otherwise it uses os.UserConfigDir which resolves to
// ~/Library/Application Support on macOS, ~/.config on Linux, and
// %AppData% on Windows.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the config file from disk and returns the parsed Config.
// If the file does not exist, a zero-value Config is returned (not an error).
func Load() (*Config, error) {
	return loadFrom("")
}

func loadFrom(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the parent directory if needed.
func (c *Config) Save() error {
	return c.saveTo("")
}

func (c *Config) saveTo(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

// LoadFrom reads the config from the given path. Intended for testing.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path)
}

// SaveTo writes the config to the given path. Intended for testing.
func (c *Config) SaveTo(path string) error {
	return c.saveTo(path)
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none are
// given) into the process environment. Variables already set are kept.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config: failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides c with any REVDASH_* variables returned by getenv.
// Invalid values are reported and leave the stored value in place.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	var errs []error
	for _, k := range Keys {
		v := getenv(k.EnvVar())
		if v == "" {
			continue
		}
		if err := k.Apply(c, v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k.EnvVar(), err))
		}
	}
	return errors.Join(errs...)
}

func parseBool(v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", v)
	}
	return b, nil
}
