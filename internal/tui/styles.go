package tui

import "github.com/charmbracelet/lipgloss"

// Color palette shared by the progress widgets and command output
var (
	ColorPrimary = lipgloss.Color("#7D56F4")
	ColorSuccess = lipgloss.Color("#50FA7B")
	ColorError   = lipgloss.Color("#FF5F87")
	ColorWarning = lipgloss.Color("#FFB86C")
	ColorInfo    = lipgloss.Color("#8BE9FD")
	ColorMuted   = lipgloss.Color("#6C7086")
	ColorSpinner = lipgloss.Color("#89B4FA")
)

var (
	StyleTitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(ColorPrimary).
			Padding(0, 1)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleInfo = lipgloss.NewStyle().
			Foreground(ColorInfo)

	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StyleHighlight = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	StyleSpinner = lipgloss.NewStyle().
			Foreground(ColorSpinner)
)

// Icons for terminal output
const (
	IconPending = "○"
	IconStep    = "●"
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconArrow   = "→"
	IconBullet  = "•"
)

// SpinnerFrames cycle while a task is running
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
