// Package session holds the mutable dashboard session: the known apps, the
// current selection, the period and the last fetched portfolio dashboard.
//
// A Store has a single owner for its state; fetches run outside its lock and
// their completions are applied in generation order so that a slow, older
// refresh can never overwrite the result of a newer one.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"nathanbeddoewebdev/revdash/internal/dashboard"
	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/period"
)

var (
	// ErrTooManyApps is returned when more than domain.MaxSelectedApps apps
	// are selected.
	ErrTooManyApps = fmt.Errorf("at most %d apps can be selected: %w", domain.MaxSelectedApps, domain.ErrValidation)

	// ErrNoSelection is returned when an operation needs at least one
	// selected app.
	ErrNoSelection = fmt.Errorf("no apps selected: %w", domain.ErrValidation)
)

// PortfolioFetcher fetches the combined dashboard for a set of apps.
type PortfolioFetcher interface {
	FetchPortfolio(ctx context.Context, appIDs []string, r period.DateRange) (dashboard.Dashboard, error)
}

// Persistence stores the app list and the selected ids between runs.
type Persistence interface {
	LoadAppList() ([]domain.Application, error)
	SaveAppList(apps []domain.Application) error
	LoadSelectedIDs() ([]string, error)
	SaveSelectedIDs(ids []string) error
}

// State is a point-in-time copy of the session.
type State struct {
	Apps      []domain.Application
	Selected  []domain.Application
	Period    period.Period
	Custom    bool
	Range     period.DateRange
	Dashboard *dashboard.Dashboard
	Loading   bool
	LastError error
	// Generation is the newest refresh whose completion has been applied.
	Generation uint64
	UpdatedAt  time.Time
}

// HasDashboard reports whether a dashboard has been fetched successfully.
func (s State) HasDashboard() bool { return s.Dashboard != nil }

// SelectedIDs returns the ids of the selected apps in selection order.
func (s State) SelectedIDs() []string { return domain.AppIDs(s.Selected) }

// Store owns the session state.
type Store struct {
	fetcher PortfolioFetcher
	persist Persistence
	now     func() time.Time
	logger  *slog.Logger

	mu       sync.Mutex
	state    State
	inFlight int
	issued   uint64
	subs     map[int]func(State)
	nextSub  int
	// published numbers snapshots under mu; delivered is the newest
	// number handed to subscribers, guarded by deliverMu.
	published uint64
	deliverMu sync.Mutex
	delivered uint64
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to resolve periods.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPeriod sets the initial period. The default is period.Today.
func WithPeriod(p period.Period) Option {
	return func(s *Store) { s.state.Period = p }
}

// WithRange starts the store on a custom date range instead of a named
// period. An invalid range is ignored.
func WithRange(r period.DateRange) Option {
	return func(s *Store) {
		if r, err := period.NewRange(r.Start, r.End); err == nil {
			s.state.Custom = true
			s.state.Range = r
		}
	}
}

// New creates a Store. persist may be nil, in which case nothing is saved.
func New(fetcher PortfolioFetcher, persist Persistence, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		persist: persist,
		now:     time.Now,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:   State{Period: period.Today},
		subs:    make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.state.Custom {
		s.state.Range = period.Resolve(s.state.Period, s.now())
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to be called with a copy of the state after every
// change. Calls are serial and never go back in time: a snapshot older than
// one already delivered is dropped. fn must not call mutating Store methods.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Load restores the app list and selection from persistence. Selected ids
// that are no longer in the app list are dropped; if nothing remains
// selected the first app is selected. With no stored apps the saved ids are
// left as they are.
func (s *Store) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	apps, err := s.persist.LoadAppList()
	if err != nil {
		return fmt.Errorf("loading app list: %w", err)
	}
	ids, err := s.persist.LoadSelectedIDs()
	if err != nil {
		return fmt.Errorf("loading selected apps: %w", err)
	}

	s.mu.Lock()
	s.state.Apps = cloneApps(apps)
	s.state.Selected = reconcile(apps, ids)
	selected := domain.AppIDs(s.state.Selected)
	s.mu.Unlock()

	// An empty app list means nothing was fetched yet; keep the saved ids.
	if len(apps) > 0 && !slices.Equal(ids, selected) {
		if err := s.persist.SaveSelectedIDs(selected); err != nil {
			s.logger.Warn("failed to persist reconciled selection", "error", err)
		}
	}
	s.logger.Debug("session loaded", "apps", len(apps), "selected", len(selected))
	s.publish()
	return nil
}

// SetApps replaces the known app list, persists it and reconciles the
// selection against it. It does not fetch.
func (s *Store) SetApps(ctx context.Context, apps []domain.Application) error {
	if s.persist != nil {
		if err := s.persist.SaveAppList(apps); err != nil {
			return fmt.Errorf("saving app list: %w", err)
		}
	}

	s.mu.Lock()
	before := domain.AppIDs(s.state.Selected)
	s.state.Apps = cloneApps(apps)
	s.state.Selected = reconcile(apps, before)
	after := domain.AppIDs(s.state.Selected)
	s.mu.Unlock()

	if s.persist != nil && !slices.Equal(before, after) {
		if err := s.persist.SaveSelectedIDs(after); err != nil {
			return fmt.Errorf("saving selected apps: %w", err)
		}
	}
	s.publish()
	return nil
}

// SelectApps replaces the selection and refreshes the dashboard. Apps are
// deduplicated by id, keeping first occurrence order. More than
// domain.MaxSelectedApps apps, or none, are rejected and leave the state
// untouched.
func (s *Store) SelectApps(ctx context.Context, apps []domain.Application) error {
	if err := s.setSelected(apps); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Choose selects apps by id like SelectIDs but does not fetch. The next
// Refresh uses the new selection.
func (s *Store) Choose(ids []string) error {
	apps, err := s.lookup(ids)
	if err != nil {
		return err
	}
	return s.setSelected(apps)
}

func (s *Store) setSelected(apps []domain.Application) error {
	selected := dedupe(apps)
	switch {
	case len(selected) == 0:
		return ErrNoSelection
	case len(selected) > domain.MaxSelectedApps:
		return fmt.Errorf("%d apps: %w", len(selected), ErrTooManyApps)
	}

	if s.persist != nil {
		if err := s.persist.SaveSelectedIDs(domain.AppIDs(selected)); err != nil {
			return fmt.Errorf("saving selected apps: %w", err)
		}
	}

	s.mu.Lock()
	s.state.Selected = selected
	s.mu.Unlock()
	s.publish()
	return nil
}

// SelectIDs selects apps by id from the known app list.
func (s *Store) SelectIDs(ctx context.Context, ids []string) error {
	apps, err := s.lookup(ids)
	if err != nil {
		return err
	}
	return s.SelectApps(ctx, apps)
}

func (s *Store) lookup(ids []string) ([]domain.Application, error) {
	s.mu.Lock()
	known := cloneApps(s.state.Apps)
	s.mu.Unlock()

	apps := make([]domain.Application, 0, len(ids))
	for _, id := range ids {
		app, ok := domain.FindApp(known, id)
		if !ok {
			return nil, fmt.Errorf("unknown app %q: %w", id, domain.ErrValidation)
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// SetPeriod switches to a named period and refreshes.
func (s *Store) SetPeriod(ctx context.Context, p period.Period) error {
	s.mu.Lock()
	s.state.Period = p
	s.state.Custom = false
	s.state.Range = period.Resolve(p, s.now())
	hasSelection := len(s.state.Selected) > 0
	s.mu.Unlock()
	s.publish()

	if !hasSelection {
		return nil
	}
	return s.Refresh(ctx)
}

// SetRange switches to a custom date range and refreshes.
func (s *Store) SetRange(ctx context.Context, r period.DateRange) error {
	r, err := period.NewRange(r.Start, r.End)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state.Custom = true
	s.state.Range = r
	hasSelection := len(s.state.Selected) > 0
	s.mu.Unlock()
	s.publish()

	if !hasSelection {
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches the dashboard for the current selection and range. Named
// periods are re-resolved against the clock first. On failure the previous
// dashboard is kept and LastError is set. The returned error is the fetch
// error, whether or not its completion was applied.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if len(s.state.Selected) == 0 {
		s.mu.Unlock()
		return ErrNoSelection
	}
	if !s.state.Custom {
		s.state.Range = period.Resolve(s.state.Period, s.now())
	}
	s.issued++
	gen := s.issued
	s.inFlight++
	s.state.Loading = true
	ids := domain.AppIDs(s.state.Selected)
	r := s.state.Range
	s.mu.Unlock()
	s.publish()

	s.logger.Debug("refreshing dashboard", "generation", gen, "apps", len(ids), "from", r.StartISO(), "to", r.EndISO())
	d, err := s.fetcher.FetchPortfolio(ctx, ids, r)

	s.mu.Lock()
	s.inFlight--
	s.state.Loading = s.inFlight > 0
	if gen < s.state.Generation {
		s.logger.Debug("discarding stale dashboard", "generation", gen, "applied", s.state.Generation)
	} else {
		s.state.Generation = gen
		if err != nil {
			s.state.LastError = err
		} else {
			s.state.Dashboard = &d
			s.state.LastError = nil
			s.state.UpdatedAt = s.now()
		}
	}
	s.mu.Unlock()
	s.publish()

	return err
}

func (s *Store) publish() {
	s.mu.Lock()
	st := s.snapshotLocked()
	s.published++
	seq := s.published
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if seq < s.delivered {
		return
	}
	s.delivered = seq
	for _, fn := range fns {
		fn(st)
	}
}

func (s *Store) snapshotLocked() State {
	st := s.state
	st.Apps = cloneApps(s.state.Apps)
	st.Selected = cloneApps(s.state.Selected)
	if s.state.Dashboard != nil {
		d := s.state.Dashboard.Clone()
		st.Dashboard = &d
	}
	return st
}

// reconcile maps ids onto apps in id order, dropping unknown and duplicate
// ids. An empty result falls back to the first app.
func reconcile(apps []domain.Application, ids []string) []domain.Application {
	selected := make([]domain.Application, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if app, ok := domain.FindApp(apps, id); ok {
			seen[id] = true
			selected = append(selected, app)
		}
		if len(selected) == domain.MaxSelectedApps {
			break
		}
	}
	if len(selected) == 0 && len(apps) > 0 {
		selected = append(selected, apps[0])
	}
	return selected
}

func dedupe(apps []domain.Application) []domain.Application {
	out := make([]domain.Application, 0, len(apps))
	seen := make(map[string]bool, len(apps))
	for _, a := range apps {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		out = append(out, a)
	}
	return out
}

func cloneApps(apps []domain.Application) []domain.Application {
	if apps == nil {
		return nil
	}
	return append([]domain.Application(nil), apps...)
}
