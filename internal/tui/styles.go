package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Adaptive colors for dark/light terminals
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}

	phaseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	detailStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	doneStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)
)
