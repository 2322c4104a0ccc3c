package mockfetcher

import (
	"context"

	"nathanbeddoewebdev/revdash/internal/dashboard"
	"nathanbeddoewebdev/revdash/internal/period"
	"nathanbeddoewebdev/revdash/internal/portfolio"

	"github.com/stretchr/testify/mock"
)

// Fetcher is a testify mock of the dashboard transport.
type Fetcher struct {
	mock.Mock
}

var (
	_ portfolio.DashboardFetcher = &Fetcher{}
	_ portfolio.MRRFetcher       = &Fetcher{}
)

func (m *Fetcher) FetchRangedDashboard(ctx context.Context, appID string, r period.DateRange) (dashboard.Dashboard, error) {
	args := m.Called(ctx, appID, r)
	return args.Get(0).(dashboard.Dashboard), args.Error(1)
}

func (m *Fetcher) FetchNowDashboard(ctx context.Context, appID string) (dashboard.Dashboard, error) {
	args := m.Called(ctx, appID)
	return args.Get(0).(dashboard.Dashboard), args.Error(1)
}

func (m *Fetcher) FetchNowMRRDashboard(ctx context.Context, appID string) (dashboard.Dashboard, error) {
	args := m.Called(ctx, appID)
	return args.Get(0).(dashboard.Dashboard), args.Error(1)
}
