package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"nathanbeddoewebdev/revdash/internal/tui/styles"
)

// KeyBinding is one footer hint.
type KeyBinding struct {
	Key  string
	Desc string
}

// line pads content to the full width with the standard two-column inset.
func line(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Padding(0, 2)
}

// Footer renders key hints above a top rule. Hints that do not fit in width
// are dropped from the right.
func Footer(width int, bindings []KeyBinding) string {
	if width < 10 || len(bindings) == 0 {
		return ""
	}

	sep := styles.KeySepStyle.Render("  ")
	room := width - 4
	var b strings.Builder
	for i, kb := range bindings {
		hint := styles.FormatKeyBinding(kb.Key, kb.Desc)
		if i > 0 {
			hint = sep + hint
		}
		if lipgloss.Width(b.String())+lipgloss.Width(hint) > room {
			break
		}
		b.WriteString(hint)
	}

	return line(width).
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderTop(true).
		BorderForeground(styles.DimGray).
		Render(b.String())
}

// StatusBar renders a one-line message between the content and the footer.
func StatusBar(width int, message string, isError bool) string {
	if message == "" {
		return ""
	}

	style := styles.MutedText
	if isError {
		style = styles.ErrorText
	}
	return line(width).Render(style.Render(ansi.Truncate(message, max(width-4, 1), "…")))
}

// AppLine renders the selected app names on one line, truncated to width.
func AppLine(width int, names []string) string {
	if width < 10 {
		return ""
	}
	text := "No apps selected"
	if len(names) > 0 {
		text = strings.Join(names, ", ")
	}
	return line(width).Render(styles.Subtitle.Render(ansi.Truncate(text, width-4, "…")))
}
