package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title     lipgloss.Style
	panel     lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	selected  lipgloss.Style
	hidden    lipgloss.Style
	running   lipgloss.Style
	paused    lipgloss.Style
	recording lipgloss.Style
	status    lipgloss.Style
	graph     lipgloss.Style
	hint      lipgloss.Style
	barHigh   lipgloss.Style
	barLow    lipgloss.Style
}

func stylesFor(t Theme) styles {
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(t.Muted),
		panel: lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).Padding(0, 2).Width(46),
		label:     lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:     lipgloss.NewStyle().Foreground(t.Text),
		selected:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		hidden:    lipgloss.NewStyle().Foreground(t.Muted).Strikethrough(true),
		running:   lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		paused:    lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		recording: lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		status:    lipgloss.NewStyle().Foreground(t.Secondary).Italic(true),
		graph:     lipgloss.NewStyle().Foreground(t.Secondary),
		hint:      lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		barHigh:   lipgloss.NewStyle().Foreground(t.Primary),
		barLow:    lipgloss.NewStyle().Foreground(t.Muted),
	}
}

// shareBar renders frac of width as filled cells, clamped to [0, 1].
func (s styles) shareBar(frac float64, width int) string {
	filled := int(frac*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return s.barHigh.Render(strings.Repeat("█", filled)) + s.barLow.Render(strings.Repeat("░", width-filled))
}
