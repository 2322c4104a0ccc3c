package config

import (
	"strings"
	"testing"

	"nathanbeddoewebdev/revdash/internal/config"
)

func TestGet_DefaultPeriod_NotSet(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "get", "default-period")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, "not set (default: today)") {
		t.Errorf("expected 'not set (default: today)', got: %s", stdout)
	}
}

func TestGet_DefaultPeriod_Set(t *testing.T) {
	path := setupTestConfig(t)

	// Write a config value directly.
	cfg := &config.Config{DefaultPeriod: "this-month"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	stdout, stderr := execConfig(t, "get", "--key", "default-period")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if strings.TrimSpace(stdout) != "this-month" {
		t.Errorf("expected 'this-month', got: %s", stdout)
	}
}

func TestGet_UnknownKey(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "get", "bogus-key")

	if !strings.Contains(stderr, "unknown configuration key") {
		t.Errorf("expected 'unknown configuration key' error, got: %s", stderr)
	}
}

func TestList_ShowsEveryKeyAndOverrides(t *testing.T) {
	path := setupTestConfig(t)
	cfg := &config.Config{WidgetMetric: "mrr"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	t.Setenv("REVDASH_LOG_LEVEL", "debug")

	stdout, stderr := execConfig(t, "list")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	for _, name := range config.KeyNames() {
		if !strings.Contains(stdout, name) {
			t.Errorf("expected key %q in output:\n%s", name, stdout)
		}
	}
	for _, want := range []string{"mrr", "(not set)", "REVDASH_LOG_LEVEL=debug"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
}
