// Package auth stores the API session tokens.
package auth

import (
	"errors"
	"fmt"

	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/util"
)

const ServiceName = "revdash"

// Keys under which the session tokens are stored.
const (
	KeyAccessToken  = "access-token"
	KeyRefreshToken = "refresh-token"
)

var ErrTokenNotFound = errors.New("auth token not found")

// Store is a secret store keyed by logical name.
type Store interface {
	Set(key string, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// DefaultStore returns the standard auth store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeyringStore(ServiceName)
}

// NormalizeKey normalizes a key name for consistent lookup.
func NormalizeKey(key string) string {
	return util.NormalizeKey(key)
}

// SaveTokens stores both tokens of pair.
func SaveTokens(s Store, pair domain.TokenPair) error {
	if err := s.Set(KeyAccessToken, pair.AccessToken); err != nil {
		return fmt.Errorf("saving access token: %w", err)
	}
	if err := s.Set(KeyRefreshToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("saving refresh token: %w", err)
	}
	return nil
}

// LoadTokens returns the stored token pair. A missing access token is
// reported as domain.ErrNotLoggedIn; a missing refresh token is tolerated.
func LoadTokens(s Store) (domain.TokenPair, error) {
	access, err := s.Get(KeyAccessToken)
	if errors.Is(err, ErrTokenNotFound) {
		return domain.TokenPair{}, domain.ErrNotLoggedIn
	}
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("reading access token: %w", err)
	}
	refresh, err := s.Get(KeyRefreshToken)
	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		return domain.TokenPair{}, fmt.Errorf("reading refresh token: %w", err)
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ClearTokens removes both tokens. Missing tokens are not an error.
func ClearTokens(s Store) error {
	for _, key := range []string{KeyAccessToken, KeyRefreshToken} {
		if err := s.Delete(key); err != nil && !errors.Is(err, ErrTokenNotFound) {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
	}
	return nil
}
