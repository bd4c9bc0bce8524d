package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#2563eb")
	muted  = lipgloss.Color("#9ca3af")
	danger = lipgloss.Color("#f87171")
	ink    = lipgloss.Color("#f3f4f6")
)

type styles struct {
	header          lipgloss.Style
	title           lipgloss.Style
	stateIdle       lipgloss.Style
	stateListening  lipgloss.Style
	stateProcessing lipgloss.Style
	user            lipgloss.Style
	model           lipgloss.Style
	interim         lipgloss.Style
	hint            lipgloss.Style
	errorText       lipgloss.Style
	keys            lipgloss.Style
}

func defaultStyles() styles {
	bubble := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	return styles{
		header: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#1f2937")),
		title:           lipgloss.NewStyle().Bold(true).Foreground(ink),
		stateIdle:       lipgloss.NewStyle().Foreground(muted),
		stateListening:  lipgloss.NewStyle().Foreground(danger).Bold(true),
		stateProcessing: lipgloss.NewStyle().Foreground(accent).Bold(true),
		user:            bubble.BorderForeground(accent).Foreground(ink),
		model:           lipgloss.NewStyle(),
		interim:         bubble.BorderForeground(muted).Foreground(muted).Italic(true),
		hint:            lipgloss.NewStyle().Foreground(muted),
		errorText:       lipgloss.NewStyle().Foreground(danger),
		keys:            lipgloss.NewStyle().Foreground(lipgloss.Color("#4b5563")),
	}
}
