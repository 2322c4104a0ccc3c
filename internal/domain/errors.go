package domain

import "errors"

// Sentinel errors for classifying failures across the transport, the
// portfolio fetch and the selection store. Callers wrap them so commands
// can handle each category uniformly:
//
//	return fmt.Errorf("failed to fetch apps: %w", domain.ErrNetwork)
var (
	// ErrNetwork indicates a transport failure: connection errors,
	// timeouts, or a 5xx response after retries were exhausted.
	ErrNetwork = errors.New("network failure")

	// ErrUnauthorized indicates the API rejected the credentials and the
	// single token refresh did not recover.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation indicates invalid input rejected before any request
	// was made, such as selecting more than MaxSelectedApps apps.
	ErrValidation = errors.New("validation failed")

	// ErrDecode indicates the API returned a payload that could not be
	// decoded into the expected shape.
	ErrDecode = errors.New("malformed response")

	// ErrNotLoggedIn indicates no credentials are stored locally.
	ErrNotLoggedIn = errors.New("not logged in")
)
