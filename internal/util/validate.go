package util

import (
	"fmt"
	"regexp"
	"strings"
)

// emailPattern only rejects obvious typos.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail checks that s looks like an email address.
func ValidateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("email is required")
	}
	if !emailPattern.MatchString(s) {
		return fmt.Errorf("%q is not a valid email address", s)
	}
	return nil
}

// ValidatePassword checks that a password was entered.
func ValidatePassword(s string) error {
	if s == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}
