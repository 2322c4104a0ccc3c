package tui

import (
	"fmt"
	"strings"

	"nathanbeddoewebdev/revdash/internal/config"
	"nathanbeddoewebdev/revdash/internal/tui/components"
	"nathanbeddoewebdev/revdash/internal/tui/styles"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type configSavedMsg struct {
	key   string
	reset bool
}

type configSaveErrorMsg struct {
	err error
}

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

type settingsModel struct {
	cfg    *config.Config
	keys   []config.KeySpec
	lookup LookupEnv

	cursor int
	input  *textinput.Model

	width  int
	height int

	status  string
	isError bool
}

// RunConfigView opens the settings editor over the stored configuration.
// Keys overridden by lookup are flagged; edits still go to the file.
func RunConfigView(lookup LookupEnv) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	_, err = tea.NewProgram(newConfigViewModel(cfg, lookup), tea.WithAltScreen()).Run()
	return err
}

func newConfigViewModel(cfg *config.Config, lookup LookupEnv) settingsModel {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	return settingsModel{cfg: cfg, keys: config.Keys, lookup: lookup}
}

func (m settingsModel) Init() tea.Cmd { return nil }

func (m settingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.input != nil {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)

	case configSavedMsg:
		m.input = nil
		m.setStatus(savedStatus(msg), false)
		return m, nil

	case configSaveErrorMsg:
		m.setStatus("Error: "+msg.err.Error(), true)
		return m, nil
	}

	if m.input != nil {
		in, cmd := m.input.Update(msg)
		m.input = &in
		return m, cmd
	}
	return m, nil
}

func savedStatus(msg configSavedMsg) string {
	if msg.reset {
		return msg.key + " reset to default"
	}
	return msg.key + " saved"
}

func (m *settingsModel) setStatus(s string, isError bool) {
	m.status, m.isError = s, isError
}

func (m settingsModel) current() config.KeySpec { return m.keys[m.cursor] }

func (m settingsModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(m.keys)-1)
	case "x", "delete":
		spec := m.current()
		spec.Reset(m.cfg)
		return m, m.save(spec.Name, true)
	case "enter", "e":
		spec := m.current()
		in := textinput.New()
		in.Placeholder = spec.Default
		in.SetValue(spec.Get(m.cfg))
		in.Width = 40
		in.Focus()
		m.input = &in
		m.status = ""
		if env, ok := m.lookup(spec.EnvVar()); ok {
			m.setStatus(fmt.Sprintf("%s=%s overrides this key in the current shell", spec.EnvVar(), env), false)
		}
		return m, textinput.Blink
	}
	return m, nil
}

func (m settingsModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input = nil
		m.status = ""
		return m, nil
	case "enter":
		spec := m.current()
		if err := spec.Apply(m.cfg, m.input.Value()); err != nil {
			m.setStatus("Error: "+err.Error(), true)
			return m, nil
		}
		return m, m.save(spec.Name, false)
	}

	in, cmd := m.input.Update(msg)
	m.input = &in
	return m, cmd
}

func (m settingsModel) save(key string, reset bool) tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		if err := cfg.Save(); err != nil {
			return configSaveErrorMsg{err: err}
		}
		return configSavedMsg{key: key, reset: reset}
	}
}

func (m settingsModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	bindings := []components.KeyBinding{
		{Key: "j/k", Desc: "move"},
		{Key: "e", Desc: "edit"},
		{Key: "x", Desc: "reset"},
		{Key: "q", Desc: "quit"},
	}
	if m.input != nil {
		bindings = []components.KeyBinding{{Key: "enter", Desc: "save"}, {Key: "esc", Desc: "cancel"}}
	}

	header := components.Header(m.width, "config", configFile())
	footer := components.Footer(m.width, bindings)
	status := ""
	if m.status != "" {
		status = components.StatusBar(m.width, m.status, m.isError)
	}

	bodyH := m.height - lipgloss.Height(header) - lipgloss.Height(footer) - 1
	body := lipgloss.Place(m.width, max(bodyH, 1), lipgloss.Center, lipgloss.Center, m.settingsCard())

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status, footer)
}

func configFile() string {
	path, err := config.Path()
	if err != nil {
		return ""
	}
	return path
}

func (m settingsModel) settingsCard() string {
	const nameW = 18

	var b strings.Builder
	for i, spec := range m.keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		selected := i == m.cursor

		cursor := "  "
		name := styles.MutedText.Width(nameW).Render(spec.Name)
		if selected {
			cursor = styles.AccentText.Render("> ")
			name = styles.Label.Width(nameW).Render(spec.Name)
		}
		b.WriteString(cursor + name + m.valueCell(spec, selected))

		if selected && m.input == nil {
			b.WriteString("\n    " + styles.MutedText.Italic(true).Render(spec.Description))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Center,
		styles.Title.Render("Settings"),
		"",
		styles.Card.Width(60).Render(b.String()),
	)
}

func (m settingsModel) valueCell(spec config.KeySpec, selected bool) string {
	if selected && m.input != nil {
		return m.input.View()
	}

	var cell string
	switch v := spec.Get(m.cfg); {
	case v != "" && selected:
		cell = styles.Value.Bold(true).Render(v)
	case v != "":
		cell = styles.Value.Render(v)
	default:
		cell = styles.MutedText.Render(spec.Default + " (default)")
	}
	if _, ok := m.lookup(spec.EnvVar()); ok {
		cell += " " + styles.AccentText.Render("[env]")
	}
	return cell
}
