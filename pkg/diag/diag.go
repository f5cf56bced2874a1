// Package diag defines the diagnostic model shared by the parser, the MDX
// compiler, the sanitizer, and the session manager.
//
// Codes are stable identifiers grouped by subsystem: PR for the parser,
// MDX for the MDX front-end, SAN for the sanitizer, SES for sessions.
package diag

import (
	"fmt"

	"github.com/jp-knj/jetmd/pkg/ast"
)

// Severity ranks how serious a diagnostic is.
type Severity string

// Diagnostic severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Stable diagnostic codes.
const (
	// Parser (PR) — fatal input errors.
	CodeInputTooLarge   = "PR0001"
	CodeInvalidEncoding = "PR0002"
	CodeNestingTooDeep  = "PR0003"

	// Parser (PR) — recoverable syntax issues.
	CodeDuplicateDefinition = "PR0101"
	CodeUnresolvedReference = "PR0102"
	CodeMalformedTableRow   = "PR0103"
	CodeUnclosedCodeSpan    = "PR0104"
	CodeUnmatchedEmphasis   = "PR0105"
	CodeUnclosedFrontmatter = "PR0106"
	CodeUnresolvedFootnote  = "PR0107"
	CodeUnclosedMath        = "PR0108"

	// MDX front-end.
	CodeUnbalancedExpression = "MDX0001"
	CodeUnclosedJSX          = "MDX0002"
	CodeMalformedESM         = "MDX0003"
	CodeMalformedAttribute   = "MDX0004"

	// Sanitizer.
	CodeDisallowedScheme = "SAN0001"
	CodeDisallowedTag    = "SAN0002"
	CodeDisallowedAttr   = "SAN0003"

	// Session manager.
	CodeSessionNotFound  = "SES0001"
	CodeInvalidPatch     = "SES0002"
	CodeReparseDiverged  = "SES0003"
	CodeSessionDestroyed = "SES0004"
)

// Diagnostic is a single issue discovered while processing a document.
type Diagnostic struct {
	Code     string        `json:"code"`
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
	Position *ast.Position `json:"position,omitempty"`
}

// String renders the diagnostic as "code severity line:col message".
func (d Diagnostic) String() string {
	loc := "-"
	if d.Position != nil {
		loc = d.Position.Start.String()
	}
	return fmt.Sprintf("%s %s %s %s", d.Code, d.Severity, loc, d.Message)
}

// IsFatal reports whether the diagnostic aborts processing.
func (d Diagnostic) IsFatal() bool {
	return d.Severity == SeverityError
}

// List accumulates diagnostics during one parse or render pass.
type List struct {
	items []Diagnostic
}

// Error appends a fatal diagnostic.
func (l *List) Error(code, format string, args ...any) {
	l.add(code, SeverityError, nil, format, args...)
}

// Warn appends a warning diagnostic.
func (l *List) Warn(code, format string, args ...any) {
	l.add(code, SeverityWarning, nil, format, args...)
}

// WarnAt appends a warning diagnostic anchored at pos.
func (l *List) WarnAt(code string, pos *ast.Position, format string, args ...any) {
	l.add(code, SeverityWarning, pos, format, args...)
}

// ErrorAt appends a fatal diagnostic anchored at pos.
func (l *List) ErrorAt(code string, pos *ast.Position, format string, args ...any) {
	l.add(code, SeverityError, pos, format, args...)
}

// InfoAt appends an informational diagnostic anchored at pos.
func (l *List) InfoAt(code string, pos *ast.Position, format string, args ...any) {
	l.add(code, SeverityInfo, pos, format, args...)
}

func (l *List) add(code string, sev Severity, pos *ast.Position, format string, args ...any) {
	l.items = append(l.items, Diagnostic{
		Code:     code,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	})
}

// Append adds prebuilt diagnostics to the list.
func (l *List) Append(ds ...Diagnostic) {
	l.items = append(l.items, ds...)
}

// Items returns the accumulated diagnostics in order of discovery.
func (l *List) Items() []Diagnostic {
	return l.items
}

// HasErrors reports whether any fatal diagnostic was recorded.
func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if d.IsFatal() {
			return true
		}
	}
	return false
}

// Len returns the number of accumulated diagnostics.
func (l *List) Len() int {
	return len(l.items)
}
