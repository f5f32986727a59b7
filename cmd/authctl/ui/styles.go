package ui

import "github.com/charmbracelet/lipgloss"

// Adaptive colors keep output readable on light and dark terminals.
var (
	accent  = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#A5A1FF"}
	good    = lipgloss.AdaptiveColor{Light: "#1B7F3B", Dark: "#5AD17F"}
	bad     = lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#FF7A70"}
	muted   = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#8A8A8A"}
	divider = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#3C3C3C"}
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(divider).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(muted).
			Width(10)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(good)

	subtleStyle = lipgloss.NewStyle().
			Foreground(muted).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(bad)
)
