// Package portfolio fetches per-app dashboard snapshots concurrently and
// folds them into a single portfolio dashboard.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"nathanbeddoewebdev/revdash/internal/dashboard"
	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/period"
)

// ErrUnavailable is returned when any snapshot of any app could not be
// fetched. Portfolio fetches are all-or-nothing.
var ErrUnavailable = errors.New("dashboard unavailable")

// DashboardFetcher retrieves single-app dashboard snapshots.
type DashboardFetcher interface {
	FetchRangedDashboard(ctx context.Context, appID string, r period.DateRange) (dashboard.Dashboard, error)
	FetchNowDashboard(ctx context.Context, appID string) (dashboard.Dashboard, error)
}

// MRRFetcher is implemented by fetchers that can also return the
// recurring-revenue snapshot.
type MRRFetcher interface {
	FetchNowMRRDashboard(ctx context.Context, appID string) (dashboard.Dashboard, error)
}

// Orchestrator fans out snapshot fetches and merges the results.
type Orchestrator struct {
	fetcher DashboardFetcher
	mrr     MRRFetcher
	logger  *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used to report fetch failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMRR enables the recurring-revenue snapshot when the fetcher supports it.
func WithMRR(enabled bool) Option {
	return func(o *Orchestrator) {
		if !enabled {
			o.mrr = nil
			return
		}
		if m, ok := o.fetcher.(MRRFetcher); ok {
			o.mrr = m
		}
	}
}

// New creates an Orchestrator over fetcher.
func New(fetcher DashboardFetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher: fetcher,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// FetchApp fetches every snapshot of one app for r and merges them.
// The groups appear in the order MRR (when enabled), now, ranged.
func (o *Orchestrator) FetchApp(ctx context.Context, appID string, r period.DateRange) (dashboard.Dashboard, error) {
	var now, ranged, mrr dashboard.Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		ranged, err = o.fetcher.FetchRangedDashboard(gctx, appID, r)
		if err != nil {
			return fmt.Errorf("ranged dashboard for app %s: %w", appID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		now, err = o.fetcher.FetchNowDashboard(gctx, appID)
		if err != nil {
			return fmt.Errorf("now dashboard for app %s: %w", appID, err)
		}
		return nil
	})
	if o.mrr != nil {
		g.Go(func() error {
			var err error
			mrr, err = o.mrr.FetchNowMRRDashboard(gctx, appID)
			if err != nil {
				return fmt.Errorf("mrr dashboard for app %s: %w", appID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return dashboard.Dashboard{}, err
	}

	merged := dashboard.MergeGroups(now, ranged)
	if o.mrr != nil {
		merged = dashboard.MergeGroups(mrr, merged)
	}
	return merged, nil
}

// FetchPortfolio fetches every app in appIDs concurrently and folds the
// per-app dashboards in appIDs order. If any fetch fails the whole call
// fails with an error wrapping ErrUnavailable and the first cause.
func (o *Orchestrator) FetchPortfolio(ctx context.Context, appIDs []string, r period.DateRange) (dashboard.Dashboard, error) {
	if err := validateIDs(appIDs); err != nil {
		return dashboard.Dashboard{}, err
	}

	results := make([]dashboard.Dashboard, len(appIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range appIDs {
		g.Go(func() error {
			d, err := o.FetchApp(gctx, id, r)
			if err != nil {
				return err
			}
			results[i] = d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.Warn("portfolio fetch failed",
			"apps", len(appIDs),
			"from", r.StartISO(),
			"to", r.EndISO(),
			"error", err,
		)
		return dashboard.Dashboard{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	o.logger.Debug("portfolio fetched", "apps", len(appIDs), "from", r.StartISO(), "to", r.EndISO())
	return dashboard.Fold(results...), nil
}

func validateIDs(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("at least one app must be selected: %w", domain.ErrValidation)
	}
	if len(ids) > domain.MaxSelectedApps {
		return fmt.Errorf("%d apps selected, at most %d allowed: %w", len(ids), domain.MaxSelectedApps, domain.ErrValidation)
	}
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("empty app id: %w", domain.ErrValidation)
		}
	}
	return nil
}
