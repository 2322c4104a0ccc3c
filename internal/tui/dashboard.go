package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nathanbeddoewebdev/revdash/internal/dashboard"
	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/period"
	"nathanbeddoewebdev/revdash/internal/session"
	"nathanbeddoewebdev/revdash/internal/tui/components"
	"nathanbeddoewebdev/revdash/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// --- Messages ---

// stateMsg carries a store snapshot published after a change.
type stateMsg session.State

// actionDoneMsg reports the result of a store operation started by a key.
type actionDoneMsg struct {
	err error
}

// --- Dashboard model ---

type dashboardModel struct {
	ctx     context.Context
	store   *session.Store
	updates <-chan session.State

	state   session.State
	spinner spinner.Model
	picker  *appPicker

	status    string
	statusErr bool
	offset    int

	width  int
	height int
}

// RunDashboard starts the interactive dashboard for store. It returns when
// the user quits or ctx is cancelled.
func RunDashboard(ctx context.Context, store *session.Store) error {
	updates := make(chan session.State, 1)
	cancel := store.Subscribe(func(st session.State) { offerLatest(updates, st) })
	defer cancel()

	m := newDashboardModel(ctx, store, updates)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

// offerLatest puts st on ch, replacing any snapshot the UI has not read yet.
func offerLatest(ch chan session.State, st session.State) {
	for {
		select {
		case ch <- st:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func newDashboardModel(ctx context.Context, store *session.Store, updates <-chan session.State) dashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	m := dashboardModel{
		ctx:     ctx,
		store:   store,
		updates: updates,
		state:   store.Snapshot(),
		spinner: s,
	}
	if len(m.state.Selected) == 0 {
		m.picker = newAppPicker(m.state.Apps, nil)
	}
	return m
}

func (m dashboardModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, waitForState(m.updates)}
	if m.picker == nil {
		cmds = append(cmds, m.run(m.store.Refresh))
	}
	return tea.Batch(cmds...)
}

func waitForState(ch <-chan session.State) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(st)
	}
}

// run executes a store operation off the UI goroutine.
func (m dashboardModel) run(op func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{err: op(ctx)}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case stateMsg:
		m.state = session.State(msg)
		if m.state.LastError != nil {
			m.status = fetchErrorText(m.state.LastError)
			m.statusErr = true
		} else if m.state.HasDashboard() {
			m.status = "Updated " + m.state.UpdatedAt.Local().Format("15:04")
			m.statusErr = false
		}
		return m, waitForState(m.updates)

	case actionDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.status = fetchErrorText(msg.err)
			m.statusErr = true
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.picker != nil {
			return m.handlePickerKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "r":
		return m, m.run(m.store.Refresh)
	case "p", "right", "l":
		return m.switchPeriod(m.state.Period.Next())
	case "P", "left", "h":
		return m.switchPeriod(m.state.Period.Prev())
	case "a":
		m.picker = newAppPicker(m.state.Apps, m.state.SelectedIDs())
		m.status = ""
		return m, nil
	case "down", "j":
		m.offset = min(m.offset+1, m.maxOffset())
		return m, nil
	case "up", "k":
		m.offset = max(m.offset-1, 0)
		return m, nil
	}
	return m, nil
}

func (m dashboardModel) switchPeriod(p period.Period) (tea.Model, tea.Cmd) {
	m.offset = 0
	m.state.Period = p
	m.state.Custom = false
	return m, m.run(func(ctx context.Context) error {
		return m.store.SetPeriod(ctx, p)
	})
}

func (m dashboardModel) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q":
		if len(m.state.Selected) == 0 {
			return m, tea.Quit
		}
		m.picker = nil
		return m, nil
	case "enter":
		ids := m.picker.selectedIDs()
		if len(ids) == 0 {
			m.status = "Select at least one app"
			m.statusErr = true
			return m, nil
		}
		m.picker = nil
		m.offset = 0
		m.status = ""
		return m, m.run(func(ctx context.Context) error {
			return m.store.SelectIDs(ctx, ids)
		})
	}

	picker := *m.picker
	if msg := picker.update(msg.String()); msg != "" {
		m.status = msg
		m.statusErr = true
	} else {
		m.status = ""
	}
	m.picker = &picker
	return m, nil
}

// --- View ---

func (m dashboardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, m.breadcrumb(), m.rangeLabel())
	appLine := components.AppLine(m.width, appNames(m.state.Selected))
	status := components.StatusBar(m.width, m.status, m.statusErr)
	footer := components.Footer(m.width, m.bindings())

	used := lipgloss.Height(header) + lipgloss.Height(appLine) + lipgloss.Height(footer)
	if status != "" {
		used += lipgloss.Height(status)
	}
	contentH := max(m.height-used, 1)

	var content string
	if m.picker != nil {
		content = m.picker.view(m.width, contentH)
	} else {
		content = m.renderContent(contentH)
	}

	parts := []string{header, appLine, content}
	if status != "" {
		parts = append(parts, status)
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m dashboardModel) breadcrumb() string {
	if m.picker != nil {
		return "select apps"
	}
	return "dashboard"
}

func (m dashboardModel) rangeLabel() string {
	if m.state.Custom {
		return m.state.Range.String()
	}
	return m.state.Period.Title()
}

func (m dashboardModel) bindings() []components.KeyBinding {
	if m.picker != nil {
		return []components.KeyBinding{
			{Key: "space", Desc: "toggle"},
			{Key: "enter", Desc: "apply"},
			{Key: "esc", Desc: "cancel"},
		}
	}
	return []components.KeyBinding{
		{Key: "p/P", Desc: "period"},
		{Key: "r", Desc: "refresh"},
		{Key: "a", Desc: "apps"},
		{Key: "↑/↓", Desc: "scroll"},
		{Key: "q", Desc: "quit"},
	}
}

func (m dashboardModel) renderContent(height int) string {
	box := lipgloss.NewStyle().Width(m.width).Height(height).Padding(0, 2)

	if !m.state.HasDashboard() {
		msg := styles.MutedText.Render("No data yet")
		if m.state.Loading {
			msg = m.spinner.View() + " " + styles.MutedText.Render("Loading dashboard…")
		}
		return box.Render(msg)
	}

	lines := dashboardLines(*m.state.Dashboard, m.width-4)
	if len(lines) == 0 {
		return box.Render(styles.MutedText.Render("No metrics for this period"))
	}

	start := min(m.offset, max(len(lines)-height, 0))
	end := min(start+height, len(lines))
	view := lines[start:end]
	if m.state.Loading && len(view) > 0 {
		view[0] = m.spinner.View() + " " + view[0]
	}
	return box.Render(strings.Join(view, "\n"))
}

func (m dashboardModel) maxOffset() int {
	if !m.state.HasDashboard() {
		return 0
	}
	return max(len(dashboardLines(*m.state.Dashboard, m.width-4))-1, 0)
}

// dashboardLines renders every non-empty group as a title followed by one
// line per metric, each fitted to width.
func dashboardLines(d dashboard.Dashboard, width int) []string {
	width = max(width, 20)
	var lines []string
	for _, g := range d.Groups {
		if len(g.Items) == 0 {
			continue
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, styles.GroupTitle.Render(ansi.Truncate(g.FormattedName(), width, "…")))
		for _, metric := range g.Items {
			lines = append(lines, metricLine(metric, width))
		}
	}
	return lines
}

func metricLine(metric dashboard.Metric, width int) string {
	value := metric.FormattedValue()
	if active, ok := metric.Active(); ok {
		inactive, _ := metric.Inactive()
		value += fmt.Sprintf("  (%d active, %d inactive)", active, inactive)
	}
	valueW := ansi.StringWidth(value)

	nameW := max(width-valueW-2, 4)
	name := ansi.Truncate(metric.Name, nameW, "…")
	gap := max(width-ansi.StringWidth(name)-valueW, 1)

	return styles.Label.Render(name) +
		strings.Repeat(" ", gap) +
		styles.ValueStyle(metric.Value()).Render(value)
}

func appNames(apps []domain.Application) []string {
	names := make([]string, len(apps))
	for i, a := range apps {
		names[i] = a.Name
	}
	return names
}

// fetchErrorText is the status line shown for a failed store operation.
func fetchErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrNoSelection):
		return "Select at least one app"
	case errors.Is(err, session.ErrTooManyApps):
		return fmt.Sprintf("Select at most %d apps", domain.MaxSelectedApps)
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrNotLoggedIn):
		return "Session expired, run `revdash auth login`"
	default:
		return "Couldn't fetch dashboard"
	}
}
