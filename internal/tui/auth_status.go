package tui

import (
	"strings"

	"nathanbeddoewebdev/revdash/internal/services/account"
	"nathanbeddoewebdev/revdash/internal/tui/components"
	"nathanbeddoewebdev/revdash/internal/tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Auth status model ---

type authStatusModel struct {
	status  account.Status
	baseURL string

	width  int
	height int
}

// RunAuthStatus starts the full-window session status TUI.
func RunAuthStatus(status account.Status, baseURL string) error {
	m := authStatusModel{status: status, baseURL: baseURL}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m authStatusModel) Init() tea.Cmd {
	return nil
}

func (m authStatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m authStatusModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "auth status", m.baseURL)
	footer := components.Footer(m.width, []components.KeyBinding{
		{Key: "q", Desc: "quit"},
	})

	headerH := lipgloss.Height(header)
	footerH := lipgloss.Height(footer)
	contentH := max(m.height-headerH-footerH, 1)

	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderContent(contentH), footer)
}

// statusRows returns label/value pairs describing the session.
func statusRows(st account.Status) [][2]string {
	if !st.LoggedIn {
		return [][2]string{{"Session", "not logged in"}}
	}
	rows := [][2]string{{"Session", "logged in"}}
	if st.User != nil {
		if st.User.Name != "" {
			rows = append(rows, [2]string{"Name", st.User.Name})
		}
		if st.User.Email != "" {
			rows = append(rows, [2]string{"Email", st.User.Email})
		}
	}
	refresh := "missing"
	if st.HasRefreshToken {
		refresh = "stored"
	}
	return append(rows, [2]string{"Refresh token", refresh})
}

func (m authStatusModel) renderContent(height int) string {
	title := styles.Title.Render("Account")

	labelWidth := 16
	lines := make([]string, 0, 4)
	for _, row := range statusRows(m.status) {
		value := styles.Value.Render(row[1])
		switch row[1] {
		case "logged in":
			value = styles.SuccessText.Render(row[1])
		case "not logged in", "missing":
			value = styles.MutedText.Render(row[1])
		}
		lines = append(lines, styles.Label.Width(labelWidth).Render(row[0])+value)
	}

	card := styles.Card.Width(48).Render(strings.Join(lines, "\n"))
	combined := lipgloss.JoinVertical(lipgloss.Center, title, "", card)

	return lipgloss.Place(
		m.width, height,
		lipgloss.Center, lipgloss.Center,
		combined,
	)
}
