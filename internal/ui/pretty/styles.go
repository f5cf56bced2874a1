// Package pretty provides Lipgloss-based styled output for the CLI.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Styles contains the styled renderers for CLI output.
type Styles struct {
	// Severity styles.
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Diagnostic components.
	FilePath lipgloss.Style
	Code     lipgloss.Style
	Message  lipgloss.Style
	Caret    lipgloss.Style
	Source   lipgloss.Style

	// Summary styles.
	Success lipgloss.Style
	Failure lipgloss.Style
	Dim     lipgloss.Style
	Bold    lipgloss.Style
}

// NewStyles creates a new Styles with or without color.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &Styles{
			Error: plain, Warning: plain, Info: plain,
			FilePath: plain, Code: plain, Message: plain,
			Caret: plain, Source: plain,
			Success: plain, Failure: plain, Dim: plain, Bold: plain,
		}
	}
	return &Styles{
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),

		FilePath: lipgloss.NewStyle().Bold(true),
		Code:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Message:  lipgloss.NewStyle(),
		Caret:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Source:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),

		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Bold:    lipgloss.NewStyle().Bold(true),
	}
}

// TerminalWidth returns the width of the terminal behind w, or fallback
// when w is not a terminal.
func TerminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// IsColorEnabled determines if color should be enabled based on mode and
// writer. Mode values: "auto" (default), "always", "never".
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default: // "auto"
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}
