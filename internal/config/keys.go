package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"nathanbeddoewebdev/revdash/internal/api"
	"nathanbeddoewebdev/revdash/internal/period"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "default-period").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory only;
	// the caller is responsible for calling Save).
	Set func(cfg *Config, value string)

	// Validate rejects values Set would store but the CLI cannot use.
	// Nil accepts anything.
	Validate func(value string) error

	// Default is the effective value when the key is not set.
	Default string
}

// EnvVar is the environment variable that overrides this key.
func (k KeySpec) EnvVar() string {
	return "REVDASH_" + strings.ToUpper(strings.ReplaceAll(k.Name, "-", "_"))
}

// Apply validates value and sets it on cfg.
func (k KeySpec) Apply(cfg *Config, value string) error {
	value = strings.TrimSpace(value)
	if k.Validate != nil {
		if err := k.Validate(value); err != nil {
			return err
		}
	}
	k.Set(cfg, value)
	return nil
}

// Reset clears the stored value so Default applies again.
func (k KeySpec) Reset(cfg *Config) {
	k.Set(cfg, "")
}

// Effective returns the stored value, or Default when unset.
func (k KeySpec) Effective(cfg *Config) string {
	if v := k.Get(cfg); v != "" {
		return v
	}
	return k.Default
}

// LogLevels are the accepted log-level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "base-url",
		Description: "Analytics API root URL",
		Get:         func(cfg *Config) string { return cfg.BaseURL },
		Set:         func(cfg *Config, v string) { cfg.BaseURL = v },
		Validate:    validateURL,
		Default:     api.DefaultBaseURL,
	},
	{
		Name:        "default-period",
		Description: "Period shown when --period is not specified",
		Get:         func(cfg *Config) string { return cfg.DefaultPeriod },
		Set:         func(cfg *Config, v string) { cfg.DefaultPeriod = v },
		Validate: func(v string) error {
			_, err := period.Parse(v)
			return err
		},
		Default: string(period.Today),
	},
	{
		Name:        "widget-metric",
		Description: "Metric shown by the widget command",
		Get:         func(cfg *Config) string { return cfg.WidgetMetric },
		Set:         func(cfg *Config, v string) { cfg.WidgetMetric = v },
		Default:     DefaultWidgetMetric,
	},
	{
		Name:        "widget-interval",
		Description: "How often the widget refreshes (e.g. 10m)",
		Get:         func(cfg *Config) string { return cfg.WidgetInterval },
		Set:         func(cfg *Config, v string) { cfg.WidgetInterval = v },
		Validate: func(v string) error {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return fmt.Errorf("invalid duration %q", v)
			}
			return nil
		},
		Default: DefaultWidgetInterval.String(),
	},
	{
		Name:        "include-mrr",
		Description: "Include the recurring-revenue snapshot in dashboards (true/false)",
		Get: func(cfg *Config) string {
			if cfg.IncludeMRR == nil {
				return ""
			}
			return strconv.FormatBool(*cfg.IncludeMRR)
		},
		Set: func(cfg *Config, v string) {
			if v == "" {
				cfg.IncludeMRR = nil
				return
			}
			b, err := parseBool(v)
			if err != nil {
				return
			}
			cfg.IncludeMRR = &b
		},
		Validate: func(v string) error {
			_, err := parseBool(v)
			return err
		},
		Default: "true",
	},
	{
		Name:        "log-level",
		Description: "Log verbosity: debug, info, warn or error",
		Get:         func(cfg *Config) string { return cfg.LogLevel },
		Set:         func(cfg *Config, v string) { cfg.LogLevel = strings.ToLower(v) },
		Validate: func(v string) error {
			if !slices.Contains(LogLevels, strings.ToLower(v)) {
				return fmt.Errorf("unknown log level %q (valid: %s)", v, strings.Join(LogLevels, ", "))
			}
			return nil
		},
		Default: DefaultLogLevel,
	},
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}

func validateURL(v string) error {
	u, err := url.Parse(v)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid URL %q", v)
	}
	return nil
}
