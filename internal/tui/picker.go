package tui

import (
	"fmt"
	"slices"
	"strings"

	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// appPicker is the in-dashboard app selection list. Selection order is
// preserved so the portfolio folds apps in the order they were picked.
type appPicker struct {
	apps     []domain.Application
	selected []string
	cursor   int
}

func newAppPicker(apps []domain.Application, selected []string) *appPicker {
	p := &appPicker{apps: apps}
	for _, id := range selected {
		if _, ok := domain.FindApp(apps, id); ok && !slices.Contains(p.selected, id) {
			p.selected = append(p.selected, id)
		}
	}
	return p
}

// update applies a key and returns a message to show, if any.
func (p *appPicker) update(key string) string {
	switch key {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.apps)-1 {
			p.cursor++
		}
	case "home", "g":
		p.cursor = 0
	case "end", "G":
		p.cursor = max(len(p.apps)-1, 0)
	case " ", "x":
		return p.toggle()
	}
	return ""
}

func (p *appPicker) toggle() string {
	if len(p.apps) == 0 {
		return ""
	}
	id := p.apps[p.cursor].ID
	if i := slices.Index(p.selected, id); i >= 0 {
		p.selected = slices.Delete(slices.Clone(p.selected), i, i+1)
		return ""
	}
	if len(p.selected) >= domain.MaxSelectedApps {
		return fmt.Sprintf("Select at most %d apps", domain.MaxSelectedApps)
	}
	p.selected = append(slices.Clone(p.selected), id)
	return ""
}

func (p *appPicker) isSelected(id string) bool {
	return slices.Contains(p.selected, id)
}

func (p *appPicker) selectedIDs() []string {
	return slices.Clone(p.selected)
}

func (p *appPicker) view(width, height int) string {
	box := lipgloss.NewStyle().Width(width).Height(height).Padding(0, 2)
	if len(p.apps) == 0 {
		return box.Render(styles.MutedText.Render("No apps in this account. Run `revdash apps list --refresh`."))
	}

	rows := make([]string, 0, len(p.apps)+1)
	rows = append(rows, styles.MutedText.Render(
		fmt.Sprintf("%d of %d selected (max %d)", len(p.selected), len(p.apps), domain.MaxSelectedApps)))

	visible := max(height-1, 1)
	start := 0
	if p.cursor >= visible {
		start = p.cursor - visible + 1
	}
	end := min(start+visible, len(p.apps))

	lineW := max(width-4, 10)
	for i := start; i < end; i++ {
		a := p.apps[i]
		label := a.Name
		if pf := a.Platform(); pf != "" {
			label += " (" + pf + ")"
		}
		line := styles.Checkbox(p.isSelected(a.ID)) + " " + ansi.Truncate(label, lineW-4, "…")
		if i == p.cursor {
			line = styles.AccentText.Render("›") + line
		} else {
			line = " " + line
		}
		rows = append(rows, line)
	}
	return box.Render(strings.Join(rows, "\n"))
}
