// Package account implements sign-in, sign-out and the cached app list on
// top of the API client, the token store and the local repository.
package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/services/auth"
	"nathanbeddoewebdev/revdash/internal/swrcache"
	"nathanbeddoewebdev/revdash/internal/util"
)

// Client is the part of the API the account service needs.
type Client interface {
	Login(ctx context.Context, email, password string) (domain.User, domain.TokenPair, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (domain.User, error)
	FetchApps(ctx context.Context) ([]domain.Application, error)
}

// Repository persists the account and its app list.
type Repository interface {
	LoadAppList() ([]domain.Application, error)
	SaveAppList(apps []domain.Application) error
	LoadUser() (*domain.User, error)
	SaveUser(user domain.User) error
	Clear() error
}

// Service encapsulates account operations.
type Service struct {
	client Client
	tokens auth.Store
	repo   Repository
	cache  *swrcache.Cache
	logger *slog.Logger
}

// NewService creates a new account service. cache and logger may be nil.
func NewService(client Client, tokens auth.Store, repo Repository, cache *swrcache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{client: client, tokens: tokens, repo: repo, cache: cache, logger: logger}
}

// Status describes the local session.
type Status struct {
	LoggedIn        bool
	HasRefreshToken bool
	User            *domain.User
}

// Login signs in, stores the tokens and remembers the user.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if err := util.ValidateEmail(email); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if err := util.ValidatePassword(password); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	user, pair, err := s.client.Login(ctx, email, password)
	if err != nil {
		return domain.User{}, err
	}
	if err := auth.SaveTokens(s.tokens, pair); err != nil {
		return domain.User{}, err
	}
	if err := s.repo.SaveUser(user); err != nil {
		s.logger.Warn("failed to save account", "error", err)
	}
	if err := s.cache.Invalidate(appsKey(&user)); err != nil {
		s.logger.Debug("failed to invalidate app cache", "error", err)
	}
	s.logger.Info("signed in", "user", user.ID)
	return user, nil
}

// Logout ends the session. The server call is best effort; local state is
// always cleared.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx); err != nil {
		s.logger.Warn("server logout failed", "error", err)
	}

	var errs []error
	if err := auth.ClearTokens(s.tokens); err != nil {
		errs = append(errs, err)
	}
	if err := s.repo.Clear(); err != nil {
		errs = append(errs, err)
	}
	if err := s.cache.Clear(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Status reports whether tokens are stored and who is signed in.
func (s *Service) Status() (Status, error) {
	pair, err := auth.LoadTokens(s.tokens)
	if errors.Is(err, domain.ErrNotLoggedIn) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, err
	}
	user, err := s.repo.LoadUser()
	if err != nil {
		return Status{}, err
	}
	return Status{LoggedIn: true, HasRefreshToken: pair.RefreshToken != "", User: user}, nil
}

// Me fetches the account from the API and stores it.
func (s *Service) Me(ctx context.Context) (domain.User, error) {
	user, err := s.client.Me(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.repo.SaveUser(user); err != nil {
		s.logger.Warn("failed to save account", "error", err)
	}
	return user, nil
}

// Apps returns the account's apps. Cached lists are served while a
// background fetch refreshes them; refresh forces a network fetch. When the
// network fails the last stored list is returned if there is one.
func (s *Service) Apps(ctx context.Context, refresh bool) ([]domain.Application, swrcache.Source, error) {
	if _, err := auth.LoadTokens(s.tokens); err != nil {
		return nil, swrcache.SourceNetwork, err
	}
	user, err := s.repo.LoadUser()
	if err != nil {
		s.logger.Debug("failed to load account", "error", err)
	}

	fetch := func(ctx context.Context) ([]domain.Application, error) {
		apps, err := s.client.FetchApps(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.repo.SaveAppList(apps); err != nil {
			s.logger.Warn("failed to save app list", "error", err)
		}
		return apps, nil
	}

	var (
		apps []domain.Application
		src  = swrcache.SourceNetwork
	)
	if refresh {
		apps, err = swrcache.Refresh(ctx, s.cache, appsKey(user), fetch)
	} else {
		apps, src, err = swrcache.GetOrFetch(ctx, s.cache, appsKey(user), fetch)
	}
	if err == nil {
		return apps, src, nil
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		return nil, src, err
	}

	stored, lerr := s.repo.LoadAppList()
	if lerr != nil || len(stored) == 0 {
		return nil, src, err
	}
	s.logger.Warn("using stored app list", "error", err)
	return stored, swrcache.SourceStale, nil
}

// Wait blocks until background cache refreshes finish or ctx is done.
func (s *Service) Wait(ctx context.Context) {
	s.cache.Wait(ctx)
}

func appsKey(user *domain.User) string {
	if user == nil || user.ID == "" {
		return "apps"
	}
	return "apps_" + user.ID
}
