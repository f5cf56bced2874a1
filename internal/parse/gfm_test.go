package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp-knj/jetmd/internal/parse"
	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
)

var gfm = parse.Config{GFM: true}

func TestGFM_Table(t *testing.T) {
	t.Parallel()

	src := "| A | B |\n|:--|--:|\n| 1 | 2 |\n"
	root := mustParse(t, src, gfm)

	tables := ast.FindByKind(root, ast.NodeTable)
	require.Len(t, tables, 1)
	table := tables[0]

	assert.Equal(t, []ast.Alignment{ast.AlignLeft, ast.AlignRight}, table.Alignments)
	rows := table.Children()
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Header)
	assert.False(t, rows[1].Header)

	hdrCells := rows[0].Children()
	require.Len(t, hdrCells, 2)
	assert.Equal(t, "A", hdrCells[0].FirstChild.Value)
	assert.Equal(t, "B", hdrCells[1].FirstChild.Value)

	bodyCells := rows[1].Children()
	require.Len(t, bodyCells, 2)
	assert.Equal(t, "1", bodyCells[0].FirstChild.Value)
	assert.Equal(t, "2", bodyCells[1].FirstChild.Value)
}

func TestGFM_TableRaggedRows(t *testing.T) {
	t.Parallel()

	src := "| A | B |\n|---|---|\n| 1 |\n| 1 | 2 | 3 |\n"
	res := parse.Parse([]byte(src), gfm)
	require.NotNil(t, res.Root)

	table := ast.FindByKind(res.Root, ast.NodeTable)[0]
	rows := table.Children()
	require.Len(t, rows, 3)

	// Missing cells padded empty.
	short := rows[1].Children()
	require.Len(t, short, 2)
	assert.Nil(t, short[1].FirstChild)

	// Extra cells dropped with a warning.
	long := rows[2].Children()
	require.Len(t, long, 2)
	found := false
	for _, d := range res.Diags {
		if d.Code == diag.CodeMalformedTableRow {
			found = true
		}
	}
	assert.True(t, found, "expected malformed-row diagnostic")
}

func TestGFM_TableOffWithoutOption(t *testing.T) {
	t.Parallel()

	src := "| A | B |\n|---|---|\n"
	root := mustParse(t, src, parse.Config{})
	assert.Empty(t, ast.FindByKind(root, ast.NodeTable))
}

func TestGFM_Strikethrough(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "~~gone~~\n", gfm)
	dels := ast.FindByKind(root, ast.NodeDelete)
	require.Len(t, dels, 1)
	assert.Equal(t, "gone", dels[0].FirstChild.Value)

	// Without GFM the tildes stay literal.
	root = mustParse(t, "~~gone~~\n", parse.Config{})
	assert.Empty(t, ast.FindByKind(root, ast.NodeDelete))
	text := ""
	for _, n := range ast.FindByKind(root, ast.NodeText) {
		text += n.Value
	}
	assert.Equal(t, "~~gone~~", text)
}

func TestGFM_TaskList(t *testing.T) {
	t.Parallel()

	src := "- [ ] todo\n- [x] done\n- plain\n"
	root := mustParse(t, src, gfm)

	items := ast.FindByKind(root, ast.NodeListItem)
	require.Len(t, items, 3)

	require.NotNil(t, items[0].Checked)
	assert.False(t, *items[0].Checked)
	require.NotNil(t, items[1].Checked)
	assert.True(t, *items[1].Checked)
	assert.Nil(t, items[2].Checked)

	// The marker text is removed from the paragraph.
	assert.Equal(t, "todo", items[0].FirstChild.FirstChild.Value)
}

func TestGFM_ExtendedAutolinks(t *testing.T) {
	t.Parallel()

	t.Run("www", func(t *testing.T) {
		t.Parallel()
		root := mustParse(t, "visit www.example.com now\n", gfm)
		links := ast.FindByKind(root, ast.NodeLink)
		require.Len(t, links, 1)
		assert.Equal(t, "https://www.example.com", links[0].URL)
		assert.Equal(t, "www.example.com", links[0].FirstChild.Value)
	})

	t.Run("https with trailing punctuation", func(t *testing.T) {
		t.Parallel()
		root := mustParse(t, "see https://go.dev/doc.\n", gfm)
		links := ast.FindByKind(root, ast.NodeLink)
		require.Len(t, links, 1)
		assert.Equal(t, "https://go.dev/doc", links[0].URL)
	})

	t.Run("email", func(t *testing.T) {
		t.Parallel()
		root := mustParse(t, "mail user@example.com please\n", gfm)
		links := ast.FindByKind(root, ast.NodeLink)
		require.Len(t, links, 1)
		assert.Equal(t, "mailto:user@example.com", links[0].URL)
	})

	t.Run("disabled without gfm", func(t *testing.T) {
		t.Parallel()
		root := mustParse(t, "visit www.example.com now\n", parse.Config{})
		assert.Empty(t, ast.FindByKind(root, ast.NodeLink))
	})
}

func TestGFM_Footnotes(t *testing.T) {
	t.Parallel()

	src := "text[^a] more\n\n[^a]: the note\n"
	root := mustParse(t, src, gfm)

	refs := ast.FindByKind(root, ast.NodeFootnoteReference)
	require.Len(t, refs, 1)
	assert.Equal(t, "a", refs[0].Label)

	require.NotNil(t, root.Root)
	def := root.Root.Footnotes["a"]
	require.NotNil(t, def)
	assert.Equal(t, ast.NodeFootnoteDefinition, def.Kind)
	noteText := ""
	for _, n := range ast.FindByKind(def, ast.NodeText) {
		noteText += n.Value
	}
	assert.Equal(t, "the note", noteText)

	// Definitions are indexed on the root, not visible children.
	for _, c := range root.Children() {
		assert.NotEqual(t, ast.NodeFootnoteDefinition, c.Kind)
	}
}

func TestGFM_UnresolvedFootnoteWarns(t *testing.T) {
	t.Parallel()

	res := parse.Parse([]byte("text[^missing]\n"), gfm)
	require.NotNil(t, res.Root)
	assert.Empty(t, ast.FindByKind(res.Root, ast.NodeFootnoteReference))

	found := false
	for _, d := range res.Diags {
		if d.Code == diag.CodeUnresolvedFootnote {
			found = true
		}
	}
	assert.True(t, found, "expected unresolved-footnote diagnostic, got %v", res.Diags)

	text := ""
	for _, n := range ast.FindByKind(res.Root, ast.NodeText) {
		text += n.Value
	}
	assert.Equal(t, "text[^missing]", text)
}
