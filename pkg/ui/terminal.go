package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Output is where the Print helpers write
var Output io.Writer = os.Stdout

// ASCIILogo is printed above interactive commands
const ASCIILogo = `
    ╔════════════════════════════════════════════════════╗
    ║  ██╗ ██████╗ ██╗      ██████╗  █████╗ ██████╗      ║
    ║  ██║██╔════╝ ██║     ██╔═══██╗██╔══██╗██╔══██╗     ║
    ║  ██║██║  ███╗██║     ██║   ██║███████║██║  ██║     ║
    ║  ██║██║   ██║██║     ██║   ██║██╔══██║██║  ██║     ║
    ║  ██║╚██████╔╝███████╗╚██████╔╝██║  ██║██████╔╝     ║
    ║  ╚═╝ ╚═════╝ ╚══════╝ ╚═════╝ ╚═╝  ╚═╝╚═════╝      ║
    ║        posts · profiles · highlights · archives    ║
    ╚════════════════════════════════════════════════════╝
`

var (
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	yellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// Color functions for terminal output
var (
	Cyan    = colorize(&cyanStyle)
	Yellow  = colorize(&yellowStyle)
	Red     = colorize(&redStyle)
	Green   = colorize(&greenStyle)
	Magenta = colorize(&magentaStyle)
	Dim     = colorize(&dimStyle)
	Bold    = colorize(&boldStyle)
)

var noColor bool

// SetNoColor disables styling for every helper in this package
func SetNoColor(disabled bool) {
	noColor = disabled
}

func colorize(style *lipgloss.Style) func(string) string {
	return func(text string) string {
		if noColor {
			return text
		}
		return style.Render(text)
	}
}

// PrintLogo prints the ASCII logo
func PrintLogo() {
	fmt.Fprint(Output, Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Output, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(Output, Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	fmt.Fprintf(Output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Output, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(Output, Magenta(msg))
}
