package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#6366F1")
	successColor   = lipgloss.Color("#10B981")
	warningColor   = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	fgColor        = lipgloss.Color("#F9FAFB")
	cyanColor      = lipgloss.Color("#06B6D4")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	laneLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cyanColor)

	laneDropStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(fgColor).
			Background(secondaryColor)

	axisStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	todayStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	barStyle = lipgloss.NewStyle().
			Foreground(fgColor).
			Background(primaryColor)

	barConflictStyle = lipgloss.NewStyle().
				Foreground(fgColor).
				Background(errorColor)

	barFocusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#111827")).
			Background(cyanColor).
			Bold(true)

	barDragStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#111827")).
			Background(warningColor).
			Bold(true)

	messageStyle = lipgloss.NewStyle().Foreground(successColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
)
