package mockfetcher

import (
	"context"

	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/services/account"
)

// Client is a testify mock of the whole API surface used by the commands.
type Client struct {
	Fetcher
}

var _ account.Client = &Client{}

func (m *Client) Login(ctx context.Context, email, password string) (domain.User, domain.TokenPair, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(domain.User), args.Get(1).(domain.TokenPair), args.Error(2)
}

func (m *Client) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Client) Me(ctx context.Context) (domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *Client) FetchApps(ctx context.Context) ([]domain.Application, error) {
	args := m.Called(ctx)
	apps, _ := args.Get(0).([]domain.Application)
	return apps, args.Error(1)
}
