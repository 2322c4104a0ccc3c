package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"nathanbeddoewebdev/revdash/internal/dashboard"
	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/period"
	"nathanbeddoewebdev/revdash/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"
)

type stubPortfolio struct {
	mu    sync.Mutex
	calls [][]string
	d     dashboard.Dashboard
	err   error
}

func (s *stubPortfolio) FetchPortfolio(_ context.Context, ids []string, _ period.DateRange) (dashboard.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ids)
	return s.d, s.err
}

type memPersist struct {
	apps []domain.Application
	ids  []string
}

func (m *memPersist) LoadAppList() ([]domain.Application, error) { return m.apps, nil }
func (m *memPersist) SaveAppList(apps []domain.Application) error {
	m.apps = apps
	return nil
}
func (m *memPersist) LoadSelectedIDs() ([]string, error) { return m.ids, nil }
func (m *memPersist) SaveSelectedIDs(ids []string) error {
	m.ids = ids
	return nil
}

var testApps = []domain.Application{
	{ID: "a1", Name: "Alpha", BundleID: "com.alpha"},
	{ID: "a2", Name: "Beta", PackageName: "com.beta"},
	{ID: "a3", Name: "Gamma"},
}

func sampleDashboard() dashboard.Dashboard {
	return dashboard.Dashboard{Groups: []dashboard.Group{
		{Name: "Money", Items: []dashboard.Metric{
			{Name: "MRR", Kind: dashboard.KindMoney, Values: []dashboard.Value{{Name: "Value", Value: 1234.5}}},
		}},
		{Name: "Empty"},
		{Name: "Subscriptions", Items: []dashboard.Metric{
			{Name: "Paid", Kind: dashboard.KindSubscriptions, Values: []dashboard.Value{
				{Name: "Value", Value: 30}, {Name: "Active", Value: 20}, {Name: "Inactive", Value: 10},
			}},
		}},
	}}
}

func newTestStore(t *testing.T, selected []string) (*session.Store, *stubPortfolio) {
	t.Helper()
	fetcher := &stubPortfolio{d: sampleDashboard()}
	persist := &memPersist{apps: testApps, ids: selected}
	store := session.New(fetcher, persist, session.WithPeriod(period.ThisMonth))
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return store, fetcher
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs the resulting command if it is a store action.
func press(t *testing.T, m dashboardModel, k string) dashboardModel {
	t.Helper()
	next, cmd := m.Update(key(k))
	m = next.(dashboardModel)
	if cmd != nil {
		if msg, ok := cmd().(actionDoneMsg); ok {
			next, _ = m.Update(msg)
			m = next.(dashboardModel)
			next, _ = m.Update(stateMsg(m.store.Snapshot()))
			m = next.(dashboardModel)
		}
	}
	return m
}

func TestDashboardModel_OpensPickerWithoutSelection(t *testing.T) {
	empty := session.New(&stubPortfolio{}, &memPersist{})
	m := newDashboardModel(context.Background(), empty, nil)
	if m.picker == nil {
		t.Fatal("expected picker to open when nothing is selected")
	}

	// Load falls back to the first app when nothing was persisted.
	store, _ := newTestStore(t, nil)
	m = newDashboardModel(context.Background(), store, nil)
	if m.picker != nil {
		t.Fatal("expected dashboard view when an app is selected")
	}
}

func TestDashboardModel_RefreshKeyFetches(t *testing.T) {
	store, fetcher := newTestStore(t, []string{"a1", "a2"})
	m := newDashboardModel(context.Background(), store, nil)

	m = press(t, m, "r")

	if diff := cmp.Diff([][]string{{"a1", "a2"}}, fetcher.calls); diff != "" {
		t.Errorf("fetch calls mismatch (-want +got):\n%s", diff)
	}
	if !m.state.HasDashboard() {
		t.Fatal("expected dashboard after refresh")
	}
	if !strings.HasPrefix(m.status, "Updated ") || m.statusErr {
		t.Errorf("status = %q (err=%v), want Updated", m.status, m.statusErr)
	}
}

func TestDashboardModel_PeriodKeysCycle(t *testing.T) {
	store, _ := newTestStore(t, []string{"a1"})
	m := newDashboardModel(context.Background(), store, nil)

	m = press(t, m, "p")
	if got := store.Snapshot().Period; got != period.ThisMonth.Next() {
		t.Errorf("after p, period = %q, want %q", got, period.ThisMonth.Next())
	}

	m = press(t, m, "P")
	m = press(t, m, "P")
	if got := store.Snapshot().Period; got != period.ThisMonth.Prev() {
		t.Errorf("after p P P, period = %q, want %q", got, period.ThisMonth.Prev())
	}
	if m.state.Period != store.Snapshot().Period {
		t.Errorf("model period %q out of sync with store %q", m.state.Period, store.Snapshot().Period)
	}
}

func TestDashboardModel_FetchFailureShowsMessage(t *testing.T) {
	store, fetcher := newTestStore(t, []string{"a1"})
	fetcher.err = domain.ErrNetwork
	m := newDashboardModel(context.Background(), store, nil)

	m = press(t, m, "r")

	if m.status != "Couldn't fetch dashboard" || !m.statusErr {
		t.Errorf("status = %q (err=%v)", m.status, m.statusErr)
	}
}

func TestDashboardModel_PickerAppliesSelection(t *testing.T) {
	store, fetcher := newTestStore(t, []string{"a1"})
	m := newDashboardModel(context.Background(), store, nil)

	m = press(t, m, "a")
	if m.picker == nil {
		t.Fatal("expected picker to open on a")
	}
	m = press(t, m, "down")
	m = press(t, m, " ")
	m = press(t, m, "enter")

	if m.picker != nil {
		t.Fatal("expected picker to close on enter")
	}
	if diff := cmp.Diff([]string{"a1", "a2"}, store.Snapshot().SelectedIDs()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
	if len(fetcher.calls) == 0 {
		t.Error("expected selection change to fetch")
	}
}

func TestDashboardModel_PickerRejectsEmptySelection(t *testing.T) {
	store, _ := newTestStore(t, []string{"a1"})
	m := newDashboardModel(context.Background(), store, nil)

	m = press(t, m, "a")
	m = press(t, m, " ") // unselect a1
	m = press(t, m, "enter")

	if m.picker == nil {
		t.Fatal("picker should stay open without a selection")
	}
	if m.status != "Select at least one app" {
		t.Errorf("status = %q", m.status)
	}
	if diff := cmp.Diff([]string{"a1"}, store.Snapshot().SelectedIDs()); diff != "" {
		t.Errorf("selection changed (-want +got):\n%s", diff)
	}
}

func TestDashboardModel_PickerEscKeepsSelection(t *testing.T) {
	store, _ := newTestStore(t, []string{"a1"})
	m := newDashboardModel(context.Background(), store, nil)

	m = press(t, m, "a")
	m = press(t, m, "down")
	m = press(t, m, " ")
	m = press(t, m, "esc")

	if m.picker != nil {
		t.Fatal("expected picker to close on esc")
	}
	if diff := cmp.Diff([]string{"a1"}, store.Snapshot().SelectedIDs()); diff != "" {
		t.Errorf("selection changed (-want +got):\n%s", diff)
	}
}

func TestDashboardModel_QuitKey(t *testing.T) {
	store, _ := newTestStore(t, []string{"a1"})
	m := newDashboardModel(context.Background(), store, nil)

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestDashboardModel_ViewRendersGroups(t *testing.T) {
	store, _ := newTestStore(t, []string{"a1", "a2"})
	m := newDashboardModel(context.Background(), store, nil)
	m = press(t, m, "r")

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	view := next.(dashboardModel).View()

	for _, want := range []string{"Recurring Revenue", "MRR", "$1,234.5", "Subscriptions", "20 active", "Alpha, Beta", "This Month"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Empty") {
		t.Errorf("empty group should be skipped:\n%s", view)
	}
}

func TestDashboardLines_FitWidth(t *testing.T) {
	d := dashboard.Dashboard{Groups: []dashboard.Group{{Name: "Sales", Items: []dashboard.Metric{
		{Name: strings.Repeat("Very long metric name ", 5), Kind: dashboard.KindMoney, Values: []dashboard.Value{{Name: "Value", Value: 99}}},
	}}}}

	for _, line := range dashboardLines(d, 40) {
		if w := ansi.StringWidth(line); w > 40 {
			t.Errorf("line width %d exceeds 40: %q", w, line)
		}
	}
}

func TestOfferLatest_KeepsNewest(t *testing.T) {
	ch := make(chan session.State, 1)
	offerLatest(ch, session.State{Generation: 1})
	offerLatest(ch, session.State{Generation: 2})

	select {
	case st := <-ch:
		if st.Generation != 2 {
			t.Errorf("got generation %d, want 2", st.Generation)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a state on the channel")
	}
}

func TestFetchErrorText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{session.ErrNoSelection, "Select at least one app"},
		{session.ErrTooManyApps, "Select at most 10 apps"},
		{domain.ErrUnauthorized, "Session expired, run `revdash auth login`"},
		{errors.New("boom"), "Couldn't fetch dashboard"},
	}
	for _, tt := range tests {
		if got := fetchErrorText(tt.err); got != tt.want {
			t.Errorf("fetchErrorText(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
