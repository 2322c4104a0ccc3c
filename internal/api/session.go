package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"nathanbeddoewebdev/revdash/internal/domain"
)

// Login exchanges credentials for the account and a token pair. The caller
// is responsible for storing the tokens.
func (c *Client) Login(ctx context.Context, email, password string) (domain.User, domain.TokenPair, error) {
	var out envelope[resultsWithMeta[domain.User, domain.TokenPair]]
	err := c.send(ctx, http.MethodPost, "sessions", "", loginBody{Email: email, Password: password}, &out)
	if status := errorStatus(err); status == http.StatusUnauthorized || status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("login failed: %w: %w", domain.ErrUnauthorized, err)
	}
	if err := classify(http.MethodPost, "sessions", err); err != nil {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("login failed: %w", err)
	}
	if err := out.err(); err != nil {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("login failed: %w", err)
	}
	if out.Data.Meta.AccessToken == "" {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("login failed: %w: no token in response", domain.ErrDecode)
	}
	return out.Data.Results, out.Data.Meta, nil
}

// RefreshToken exchanges a refresh token for a new token pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	return c.refresh(ctx, domain.TokenPair{RefreshToken: refreshToken})
}

func (c *Client) refresh(ctx context.Context, current domain.TokenPair) (domain.TokenPair, error) {
	var out envelope[results[domain.TokenPair]]
	err := c.send(ctx, http.MethodPost, "sessions/refresh", current.AccessToken, refreshBody{RefreshToken: current.RefreshToken}, &out)
	if err := classify(http.MethodPost, "sessions/refresh", err); err != nil {
		return domain.TokenPair{}, fmt.Errorf("token refresh failed: %w", err)
	}
	if err := out.err(); err != nil {
		return domain.TokenPair{}, fmt.Errorf("token refresh failed: %w", err)
	}
	pair := out.Data.Results
	if pair.AccessToken == "" {
		return domain.TokenPair{}, fmt.Errorf("token refresh failed: %w: no token in response", domain.ErrDecode)
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = current.RefreshToken
	}
	return pair, nil
}

// Me returns the signed-in account.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var out envelope[results[domain.User]]
	if err := c.call(ctx, http.MethodGet, "user", nil, &out); err != nil {
		return domain.User{}, fmt.Errorf("failed to fetch account: %w", err)
	}
	if err := out.err(); err != nil {
		return domain.User{}, fmt.Errorf("failed to fetch account: %w", err)
	}
	return out.Data.Results, nil
}

// Logout ends the session on the server. A missing local session is not an
// error.
func (c *Client) Logout(ctx context.Context) error {
	err := c.call(ctx, http.MethodDelete, "sessions/logout", nil, nil)
	if err != nil && !errors.Is(err, domain.ErrNotLoggedIn) {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}
