package pretty

import (
	"fmt"
	"strings"

	"github.com/jp-knj/jetmd/pkg/diag"
)

// FormatDiagnostic formats a single diagnostic for terminal output:
//
//	path:line:col  severity  message  (CODE)
func (s *Styles) FormatDiagnostic(path string, d diag.Diagnostic) string {
	var builder strings.Builder

	location := s.FilePath.Render(path)
	if d.Position != nil {
		location = fmt.Sprintf("%s:%d:%d",
			s.FilePath.Render(path),
			d.Position.Start.Line,
			d.Position.Start.Column,
		)
	}

	builder.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
		location,
		s.FormatSeverity(d.Severity),
		s.Message.Render(d.Message),
		s.Code.Render("("+d.Code+")"),
	))

	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev diag.Severity) string {
	switch sev {
	case diag.SeverityError:
		return s.Error.Render("error")
	case diag.SeverityWarning:
		return s.Warning.Render("warning")
	case diag.SeverityInfo:
		return s.Info.Render("info")
	default:
		return string(sev)
	}
}

// FormatSourceContext formats a source line with a caret marker.
func (s *Styles) FormatSourceContext(line string, column int) string {
	var builder strings.Builder

	const indent = "        "
	builder.WriteString(indent + s.Source.Render(line) + "\n")
	if column > 0 {
		builder.WriteString(indent + strings.Repeat(" ", column-1) + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// FormatSummary formats the closing line of a run.
func (s *Styles) FormatSummary(path string, warnings int) string {
	if warnings == 0 {
		return s.Success.Render("✓") + " " + s.FilePath.Render(path) + "\n"
	}
	return s.Failure.Render("!") + " " + s.FilePath.Render(path) +
		s.Dim.Render(fmt.Sprintf(" (%d diagnostics)", warnings)) + "\n"
}
