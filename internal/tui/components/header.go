// Package components provides reusable Bubbletea UI building blocks for
// the revdash TUI. These are render-only helpers (not tea.Model) used by
// the main TUI models to compose views.
package components

import (
	"strings"

	"nathanbeddoewebdev/revdash/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Header renders the application header bar.
//
//	┌──────────────────────────────────────────┐
//	│  revdash > dashboard         This Month  │
//	└──────────────────────────────────────────┘
func Header(width int, breadcrumb string, detail string) string {
	if width < 10 {
		return ""
	}

	leftStyle := styles.Title.Foreground(styles.Blue)
	left := leftStyle.Render("revdash")
	if breadcrumb != "" {
		left += styles.MutedText.Render(" > ") + styles.Title.Render(breadcrumb)
	}

	// The detail gives way to the breadcrumb when space runs out.
	room := width - 4 - lipgloss.Width(left) - 1
	right := ""
	if detail != "" && room > 0 {
		right = styles.Subtitle.Render(ansi.Truncate(detail, room, "…"))
	}
	gap := max(width-4-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return line(width).
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderBottom(true).
		BorderForeground(styles.DimGray).
		Render(left + strings.Repeat(" ", gap) + right)
}
