package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jp-knj/jetmd/internal/ui/pretty"
	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
)

func TestFormatDiagnostic(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	d := diag.Diagnostic{
		Code:     diag.CodeDisallowedScheme,
		Severity: diag.SeverityWarning,
		Message:  "URL scheme not allowed",
		Position: &ast.Position{Start: ast.Point{Line: 7, Column: 3}},
	}

	out := styles.FormatDiagnostic("doc.md", d)
	assert.Contains(t, out, "doc.md:7:3")
	assert.Contains(t, out, "warning")
	assert.Contains(t, out, "URL scheme not allowed")
	assert.Contains(t, out, "(SAN0001)")
}

func TestFormatDiagnostic_NoPosition(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	out := styles.FormatDiagnostic("doc.md", diag.Diagnostic{
		Code:     diag.CodeInputTooLarge,
		Severity: diag.SeverityError,
		Message:  "too big",
	})
	assert.Contains(t, out, "doc.md")
	assert.Contains(t, out, "error")
}

func TestFormatSourceContext(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	out := styles.FormatSourceContext("some line", 6)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "some line")
	assert.Equal(t, "^", strings.TrimSpace(lines[1]))
}

func TestIsColorEnabled(t *testing.T) {
	t.Parallel()

	assert.True(t, pretty.IsColorEnabled("always", nil))
	assert.False(t, pretty.IsColorEnabled("never", nil))
	assert.False(t, pretty.IsColorEnabled("auto", &strings.Builder{}))
}

func TestTerminalWidth_Fallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 80, pretty.TerminalWidth(&strings.Builder{}, 80))
}
