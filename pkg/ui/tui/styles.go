package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	neonCyan    = lipgloss.Color("#00FFFF")
	neonMagenta = lipgloss.Color("#FF00FF")
	neonGreen   = lipgloss.Color("#39FF14")
	neonYellow  = lipgloss.Color("#FFFF00")
	neonOrange  = lipgloss.Color("#FF6700")
	alertRed    = lipgloss.Color("#FF0000")
	darkBg      = lipgloss.Color("#0A0E27")
	dimWhite    = lipgloss.Color("#B0B0B0")
	dimGray     = lipgloss.Color("#626262")

	logoStyle = lipgloss.NewStyle().
			Foreground(neonCyan).
			Bold(true)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(neonMagenta).
			Padding(0, 1)

	inputBoxBlurredStyle = inputBoxStyle.
				BorderForeground(dimGray)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(neonMagenta).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Background(neonMagenta).
			Foreground(darkBg).
			Bold(true).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(dimWhite).
			Padding(0, 1)

	tabActiveStyle = tabStyle.
			Foreground(darkBg).
			Background(neonCyan).
			Bold(true)

	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(dimGray).
			Padding(0, 1)

	cellSelectedStyle = cellStyle.
				BorderForeground(neonGreen).
				Foreground(neonGreen).
				Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(neonCyan).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(neonYellow)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimWhite).
			Faint(true)

	successStyle = lipgloss.NewStyle().
			Foreground(neonGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(alertRed).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(neonOrange).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(dimGray).
			PaddingLeft(1)
)

// taskStatusStyle colours a job status
func taskStatusStyle(status string) lipgloss.Style {
	switch status {
	case "SUCCESS":
		return successStyle
	case "FAILURE":
		return errorStyle
	default:
		return warningStyle
	}
}
