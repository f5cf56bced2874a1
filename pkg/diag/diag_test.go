package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
)

func TestList_Accumulates(t *testing.T) {
	t.Parallel()

	var l diag.List
	assert.False(t, l.HasErrors())
	assert.Equal(t, 0, l.Len())

	pos := &ast.Position{Start: ast.Point{Line: 3, Column: 2, Offset: 10}}
	l.WarnAt(diag.CodeDuplicateDefinition, pos, "duplicate %q", "x")
	l.Error(diag.CodeInputTooLarge, "too big")

	items := l.Items()
	assert.Len(t, items, 2)
	assert.True(t, l.HasErrors())

	assert.Equal(t, diag.SeverityWarning, items[0].Severity)
	assert.Equal(t, `duplicate "x"`, items[0].Message)
	assert.Equal(t, pos, items[0].Position)
	assert.False(t, items[0].IsFatal())

	assert.True(t, items[1].IsFatal())
	assert.Contains(t, items[1].String(), diag.CodeInputTooLarge)
	assert.Contains(t, items[0].String(), "3:2")
}

func TestList_Append(t *testing.T) {
	t.Parallel()

	var a, b diag.List
	a.Warn(diag.CodeUnresolvedReference, "one")
	b.Append(a.Items()...)
	assert.Equal(t, 1, b.Len())
}
