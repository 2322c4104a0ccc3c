// Package api is the HTTP client for the subscription analytics API.
//
// Authenticated requests carry the stored access token. A 401 response
// triggers one token refresh, shared by every request that raced it, and a
// single retry of the original request. Transient failures (timeouts, 429,
// 5xx) are retried with backoff before they surface as domain.ErrNetwork.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/retry"
	"nathanbeddoewebdev/revdash/internal/services/auth"
)

const (
	DefaultBaseURL = "https://api.apphud.com"

	clientName        = "revdash-cli"
	defaultTimeout    = 30 * time.Second
	maxConnsPerHost   = 3
	maxErrorBodyBytes = 4 << 10
)

// Client talks to the analytics API.
type Client struct {
	baseURL string
	locale  string
	client  *http.Client
	store   auth.Store
	retry   retry.Config
	logger  *slog.Logger

	refreshMu sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLocale sets the x-locale header value.
func WithLocale(locale string) Option {
	return func(c *Client) {
		if locale != "" {
			c.locale = locale
		}
	}
}

// WithRetry overrides the retry policy for transient failures.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// NewClient creates a Client for baseURL using store for session tokens.
func NewClient(baseURL string, store auth.Store, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxConnsPerHost = maxConnsPerHost

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		locale:  "en",
		client:  &http.Client{Timeout: defaultTimeout, Transport: transport},
		store:   store,
		retry:   retry.DefaultConfig(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// errorStatus is the status carried by err, or 0.
func errorStatus(err error) int {
	var se *retry.StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// call performs an authenticated request. On 401 it refreshes the tokens
// once and retries.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	pair, err := auth.LoadTokens(c.store)
	if err != nil {
		return err
	}

	err = c.send(ctx, method, path, pair.AccessToken, body, out)
	if errorStatus(err) != http.StatusUnauthorized {
		return classify(method, path, err)
	}

	c.logger.Debug("access token rejected, refreshing", "path", path)
	fresh, rerr := c.refreshAfter(ctx, pair.AccessToken)
	if rerr != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrUnauthorized, rerr)
	}

	err = c.send(ctx, method, path, fresh.AccessToken, body, out)
	return classify(method, path, err)
}

// refreshAfter refreshes the session unless another request already did so
// after rejected was issued, in which case the stored pair is returned.
func (c *Client) refreshAfter(ctx context.Context, rejected string) (domain.TokenPair, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current, err := auth.LoadTokens(c.store)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if current.AccessToken != rejected {
		return current, nil
	}
	if current.RefreshToken == "" {
		return domain.TokenPair{}, errors.New("no refresh token stored")
	}

	fresh, err := c.refresh(ctx, current)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := auth.SaveTokens(c.store, fresh); err != nil {
		return domain.TokenPair{}, err
	}
	c.logger.Info("session refreshed")
	return fresh, nil
}

// send performs one logical request, retrying transient failures.
func (c *Client) send(ctx context.Context, method, path, token string, body, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		payload = data
	}

	cfg := c.retry
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		c.logger.Debug("retrying request", "method", method, "path", path, "attempt", attempt, "delay", delay, "error", err)
	}
	return retry.Do(ctx, cfg, retry.IsRetryable, func() error {
		return c.roundTrip(ctx, method, path, token, payload, out)
	})
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, payload []byte, out any) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-client", clientName)
	req.Header.Set("x-locale", c.locale)
	req.Header.Set("X-Request-Id", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &retry.StatusError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	return nil
}

// classify maps a final request error onto the domain sentinels.
func classify(method, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrDecode) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	switch status := errorStatus(err); {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrUnauthorized, err)
	case status >= 400 && status < 500 && status != http.StatusTooManyRequests:
		return fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrValidation, err)
	default:
		return fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrNetwork, err)
	}
}
