package api

import (
	"context"
	"fmt"
	"net/http"

	"nathanbeddoewebdev/revdash/internal/dashboard"
	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/period"
	"nathanbeddoewebdev/revdash/internal/portfolio"
)

var (
	_ portfolio.DashboardFetcher = (*Client)(nil)
	_ portfolio.MRRFetcher       = (*Client)(nil)
)

// FetchApps returns every app in the account.
func (c *Client) FetchApps(ctx context.Context) ([]domain.Application, error) {
	var out envelope[results[[]domain.Application]]
	if err := c.call(ctx, http.MethodGet, "apps", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch apps: %w", err)
	}
	if err := out.err(); err != nil {
		return nil, fmt.Errorf("failed to fetch apps: %w", err)
	}
	if out.Data.Results == nil {
		return []domain.Application{}, nil
	}
	return out.Data.Results, nil
}

// FetchNowDashboard returns the point-in-time snapshot for one app.
func (c *Client) FetchNowDashboard(ctx context.Context, appID string) (dashboard.Dashboard, error) {
	return c.fetchDashboard(ctx, "api/v1/dash/now", appsBody{App: []string{appID}})
}

// FetchNowMRRDashboard returns the recurring-revenue snapshot for one app.
func (c *Client) FetchNowMRRDashboard(ctx context.Context, appID string) (dashboard.Dashboard, error) {
	return c.fetchDashboard(ctx, "api/v1/dash/now_mrr", appsBody{App: []string{appID}})
}

// FetchRangedDashboard returns the snapshot for one app over r.
func (c *Client) FetchRangedDashboard(ctx context.Context, appID string, r period.DateRange) (dashboard.Dashboard, error) {
	return c.fetchDashboard(ctx, "api/v1/dash/range", rangeBody{
		App:       []string{appID},
		TimeRange: timeRange{From: r.StartISO(), To: r.EndISO()},
	})
}

func (c *Client) fetchDashboard(ctx context.Context, path string, body any) (dashboard.Dashboard, error) {
	var out dashboard.Dashboard
	if err := c.call(ctx, http.MethodPost, path, body, &out); err != nil {
		return dashboard.Dashboard{}, err
	}
	return out, nil
}
