// Package app builds the dependency graph shared by the CLI commands.
//
// Commands obtain their collaborators through Build. Tests replace the
// default graph with SetFactory and restore it with Reset.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"nathanbeddoewebdev/revdash/internal/api"
	"nathanbeddoewebdev/revdash/internal/appstore"
	"nathanbeddoewebdev/revdash/internal/config"
	"nathanbeddoewebdev/revdash/internal/logging"
	"nathanbeddoewebdev/revdash/internal/portfolio"
	"nathanbeddoewebdev/revdash/internal/services/account"
	"nathanbeddoewebdev/revdash/internal/services/auth"
	"nathanbeddoewebdev/revdash/internal/session"
	"nathanbeddoewebdev/revdash/internal/swrcache"
)

var (
	_ session.Persistence = (*appstore.SQLiteRepository)(nil)
	_ API                 = (*api.Client)(nil)
)

// API is the transport surface the commands use.
type API interface {
	account.Client
	portfolio.DashboardFetcher
	portfolio.MRRFetcher
}

// Options carries per-invocation overrides from global flags.
type Options struct {
	// LogLevel overrides the configured log level when non-empty.
	LogLevel string
}

// Deps holds the collaborators of one command invocation.
type Deps struct {
	Config  *config.Config
	Logger  *slog.Logger
	Tokens  auth.Store
	API     API
	Repo    appstore.Repository
	Cache   *swrcache.Cache
	Account *account.Service

	closers []func() error
}

// New assembles Deps from already constructed collaborators. A nil logger
// discards output.
func New(cfg *config.Config, logger *slog.Logger, tokens auth.Store, client API, repo appstore.Repository, cache *swrcache.Cache) *Deps {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Deps{
		Config:  cfg,
		Logger:  logger,
		Tokens:  tokens,
		API:     client,
		Repo:    repo,
		Cache:   cache,
		Account: account.NewService(client, tokens, repo, cache, logger),
	}
}

// Orchestrator returns a portfolio orchestrator over the API.
func (d *Deps) Orchestrator() *portfolio.Orchestrator {
	return portfolio.New(d.API,
		portfolio.WithLogger(d.Logger),
		portfolio.WithMRR(d.Config.MRR()),
	)
}

// Session returns a selection store backed by the repository.
func (d *Deps) Session(opts ...session.Option) *session.Store {
	base := []session.Option{
		session.WithLogger(d.Logger),
		session.WithPeriod(d.Config.Period()),
	}
	return session.New(d.Orchestrator(), d.Repo, append(base, opts...)...)
}

// Scratch returns a selection store that saves nothing, for one-off
// selections that must not replace the saved one.
func (d *Deps) Scratch(opts ...session.Option) *session.Store {
	base := []session.Option{
		session.WithLogger(d.Logger),
		session.WithPeriod(d.Config.Period()),
	}
	return session.New(d.Orchestrator(), nil, append(base, opts...)...)
}

// Close waits briefly for background cache refreshes, then releases
// resources in reverse order of acquisition.
func (d *Deps) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	d.Cache.Wait(ctx)

	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

// OnClose registers fn to run when the Deps are closed.
func (d *Deps) OnClose(fn func() error) {
	d.closers = append(d.closers, fn)
}

// Factory builds Deps for one invocation.
type Factory func(ctx context.Context, opts Options) (*Deps, error)

var (
	mu      sync.RWMutex
	factory Factory = Default
)

// SetFactory replaces the factory used by Build. Intended for tests.
func SetFactory(f Factory) {
	if f == nil {
		panic("app: nil factory")
	}
	mu.Lock()
	defer mu.Unlock()
	factory = f
}

// Reset restores the default factory.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	factory = Default
}

// Build returns the Deps for one invocation using the current factory.
func Build(ctx context.Context, opts Options) (*Deps, error) {
	mu.RLock()
	f := factory
	mu.RUnlock()
	return f(ctx, opts)
}

// Default wires the production graph: config file plus environment, the OS
// keychain, the HTTP client, the SQLite repository and the app list cache.
func Default(_ context.Context, opts Options) (*Deps, error) {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	envErr := cfg.ApplyEnv(os.Getenv)

	level := cfg.Level()
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, closeLog, logErr := logging.Open(os.Stderr, level, os.Getenv)
	if logErr != nil {
		logger.Warn("log file unavailable, logging to stderr", "error", logErr)
	}
	if envErr != nil {
		logger.Warn("ignoring invalid environment override", "error", envErr)
	}

	repo, err := appstore.Open()
	if err != nil {
		closeLog()
		return nil, err
	}

	tokens := auth.DefaultStore()
	client := api.NewClient(cfg.BaseURL, tokens, api.WithLogger(logger))
	cache := swrcache.NewDefault(swrcache.WithLogger(logger))

	d := New(cfg, logger, tokens, client, repo, cache)
	d.OnClose(closeLog)
	d.OnClose(repo.Close)
	return d, nil
}
