// Package testapp installs an app factory for command tests. Every Build
// returns Deps over the same mock API, in-memory token store and temp-dir
// repository, cache and config file.
package testapp

import (
	"context"
	"path/filepath"
	"testing"

	"nathanbeddoewebdev/revdash/internal/app"
	"nathanbeddoewebdev/revdash/internal/appstore"
	"nathanbeddoewebdev/revdash/internal/config"
	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/services/auth"
	"nathanbeddoewebdev/revdash/internal/swrcache"
	"nathanbeddoewebdev/revdash/internal/testutil/mockfetcher"
)

// Env is the shared state behind the installed factory.
type Env struct {
	Client *mockfetcher.Client
	Tokens *auth.MockStore
	Repo   *appstore.SQLiteRepository
	Cache  *swrcache.Cache

	// Opts records the options of the last Build.
	Opts app.Options
}

// Install replaces the app factory until the test ends.
func Install(t *testing.T) *Env {
	t.Helper()
	dir := t.TempDir()

	config.SetPath(filepath.Join(dir, "config.json"))
	t.Cleanup(config.ResetPath)

	repo, err := appstore.OpenAt(filepath.Join(dir, "revdash.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	env := &Env{
		Client: &mockfetcher.Client{},
		Tokens: auth.NewMockStore(),
		Repo:   repo,
		Cache:  swrcache.New(filepath.Join(dir, "cache")),
	}

	app.SetFactory(func(_ context.Context, opts app.Options) (*app.Deps, error) {
		env.Opts = opts
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return app.New(cfg, nil, env.Tokens, env.Client, env.Repo, env.Cache), nil
	})
	t.Cleanup(app.Reset)
	return env
}

// SignIn stores tokens and a user as if login had succeeded.
func (e *Env) SignIn(t *testing.T, user domain.User) {
	t.Helper()
	if err := auth.SaveTokens(e.Tokens, domain.TokenPair{AccessToken: "access", RefreshToken: "refresh"}); err != nil {
		t.Fatalf("save tokens: %v", err)
	}
	if err := e.Repo.SaveUser(user); err != nil {
		t.Fatalf("save user: %v", err)
	}
}

// SeedApps stores apps and a selection.
func (e *Env) SeedApps(t *testing.T, apps []domain.Application, selected ...string) {
	t.Helper()
	if err := e.Repo.SaveAppList(apps); err != nil {
		t.Fatalf("save apps: %v", err)
	}
	if err := e.Repo.SaveSelectedIDs(selected); err != nil {
		t.Fatalf("save selection: %v", err)
	}
}
