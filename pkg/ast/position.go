package ast

import "fmt"

// Point is a single location in the source text.
// Line and Column are 1-based; Column counts Unicode scalar values, not
// bytes. Offset is the 0-based byte offset.
type Point struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// IsValid returns true if this point has valid (positive) line and column.
func (p Point) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

// Before reports whether p is strictly before q in source order.
func (p Point) Before(q Point) bool {
	return p.Offset < q.Offset
}

// String returns "line:column".
func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Position is a source range. Start is always ≤ End.
type Position struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// IsValid returns true if both endpoints are valid and ordered.
func (p *Position) IsValid() bool {
	return p != nil && p.Start.IsValid() && p.End.IsValid() &&
		p.Start.Offset <= p.End.Offset
}

// Contains reports whether the byte offset lies within the range.
func (p *Position) Contains(offset int) bool {
	return p != nil && offset >= p.Start.Offset && offset < p.End.Offset
}

// Len returns the byte length of the range.
func (p *Position) Len() int {
	if p == nil {
		return 0
	}
	return p.End.Offset - p.Start.Offset
}

// Shift moves both endpoint offsets by delta bytes and both endpoint lines
// by deltaLines. Columns are left untouched.
// The session manager uses this to relocate reused nodes after an edit.
func (p *Position) Shift(delta, deltaLines int) {
	if p == nil {
		return
	}
	p.Start.Offset += delta
	p.End.Offset += delta
	p.Start.Line += deltaLines
	p.End.Line += deltaLines
}

// String returns "start-end" in line:column form.
func (p *Position) String() string {
	if p == nil {
		return "-"
	}
	return p.Start.String() + "-" + p.End.String()
}
