package util

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateEmail_Valid(t *testing.T) {
	valid := []string{
		"dev@example.com",
		" dev@example.com ",
		"first.last+tag@sub.example.io",
	}
	for _, email := range valid {
		t.Run(email, func(t *testing.T) {
			if err := ValidateEmail(email); err != nil {
				t.Errorf("expected %q to be valid, got error: %v", email, err)
			}
		})
	}
}

func TestValidateEmail_Invalid(t *testing.T) {
	tests := []struct {
		email   string
		wantMsg string
	}{
		{"", "required"},
		{"   ", "required"},
		{"dev", "not a valid email"},
		{"dev@example", "not a valid email"},
		{"dev @example.com", "not a valid email"},
		{"a@b@c.com", "not a valid email"},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if err == nil {
				t.Fatalf("expected %q to be invalid", tt.email)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword(""); err == nil {
		t.Error("expected empty password to be rejected")
	}
	if err := ValidatePassword("secret"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a, b ,,c ")
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("SplitList mismatch (-want +got):\n%s", diff)
	}
	if got := SplitList(""); got != nil {
		t.Errorf("SplitList(\"\") = %v, want nil", got)
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		" Default_Period ": "default-period",
		"access-token":     "access-token",
		"":                 "",
	}
	for in, want := range tests {
		if got := NormalizeKey(in); got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}
