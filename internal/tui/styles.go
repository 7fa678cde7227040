package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	markerFg  = lipgloss.Color("#FFA500")
	borderCol = lipgloss.Color("#243141")

	appStyle     = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle   = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(baseDimFg)
	markerStyle  = lipgloss.NewStyle().Foreground(markerFg)
	popupStyle   = lipgloss.NewStyle().Foreground(markerFg)
	controlStyle = lipgloss.NewStyle().Foreground(baseFg).Padding(0, 1)
	activeStyle  = controlStyle.Foreground(accentFg).Bold(true)

	// popupBox has no colors so its lines stay plain text for overlaying.
	popupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
