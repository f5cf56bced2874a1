package parse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp-knj/jetmd/internal/parse"
	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
)

func mustParse(t *testing.T, src string, cfg parse.Config) *ast.Node {
	t.Helper()
	res := parse.Parse([]byte(src), cfg)
	require.NotNil(t, res.Root, "parse returned no tree: %v", res.Diags)
	return res.Root
}

func kindsOf(nodes []*ast.Node) []ast.NodeKind {
	out := make([]ast.NodeKind, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Kind)
	}
	return out
}

func TestParse_HeadingAndParagraph(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "# Hello\n\nWorld\n", parse.Config{Position: true})
	children := root.Children()
	require.Equal(t, []ast.NodeKind{ast.NodeHeading, ast.NodeParagraph}, kindsOf(children))

	h := children[0]
	assert.Equal(t, 1, h.Depth)
	assert.False(t, h.Setext)
	require.Equal(t, 1, h.ChildCount())
	assert.Equal(t, "Hello", h.FirstChild.Value)

	p := children[1]
	require.Equal(t, 1, p.ChildCount())
	assert.Equal(t, "World", p.FirstChild.Value)

	require.NotNil(t, h.Pos)
	assert.Equal(t, 1, h.Pos.Start.Line)
	assert.Equal(t, 0, h.Pos.Start.Offset)
	require.NotNil(t, p.Pos)
	assert.Equal(t, 3, p.Pos.Start.Line)
}

func TestParse_SetextHeading(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "Title\n=====\n\nSub\n---\n", parse.Config{})
	children := root.Children()
	require.Equal(t, []ast.NodeKind{ast.NodeHeading, ast.NodeHeading}, kindsOf(children))
	assert.Equal(t, 1, children[0].Depth)
	assert.True(t, children[0].Setext)
	assert.Equal(t, "Title", children[0].FirstChild.Value)
	assert.Equal(t, 2, children[1].Depth)
}

func TestParse_FencedCode(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "```go name=x\nfmt.Println()\n```\n", parse.Config{})
	children := root.Children()
	require.Equal(t, []ast.NodeKind{ast.NodeCodeBlock}, kindsOf(children))

	code := children[0]
	assert.Equal(t, "go name=x", code.Info)
	assert.Equal(t, "go", code.Lang)
	assert.Equal(t, "name=x", code.Meta)
	assert.Equal(t, "fmt.Println()\n", code.Value)
}

func TestParse_IndentedCode(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "    a\n    b\n", parse.Config{})
	children := root.Children()
	require.Equal(t, []ast.NodeKind{ast.NodeCodeBlock}, kindsOf(children))
	assert.Equal(t, "a\nb\n", children[0].Value)
	assert.Empty(t, children[0].Info)
}

func TestParse_BlockQuote(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "> hi\n> there\n", parse.Config{})
	children := root.Children()
	require.Equal(t, []ast.NodeKind{ast.NodeBlockQuote}, kindsOf(children))

	quote := children[0]
	require.Equal(t, 1, quote.ChildCount())
	para := quote.FirstChild
	assert.Equal(t, ast.NodeParagraph, para.Kind)
	// "hi" softbreak "there"
	require.Equal(t, 3, para.ChildCount())
	assert.Equal(t, ast.NodeSoftBreak, para.FirstChild.Next.Kind)
}

func TestParse_Lists(t *testing.T) {
	t.Parallel()

	t.Run("tight bullet list", func(t *testing.T) {
		t.Parallel()
		root := mustParse(t, "- a\n- b\n", parse.Config{})
		list := root.FirstChild
		require.NotNil(t, list)
		require.Equal(t, ast.NodeList, list.Kind)
		assert.False(t, list.Ordered)
		assert.True(t, list.Tight)
		assert.Equal(t, byte('-'), list.Marker)
		require.Equal(t, 2, list.ChildCount())
		for _, item := range list.Children() {
			assert.Equal(t, ast.NodeListItem, item.Kind)
		}
	})

	t.Run("loose list", func(t *testing.T) {
		t.Parallel()
		root := mustParse(t, "- a\n\n- b\n", parse.Config{})
		list := root.FirstChild
		require.NotNil(t, list)
		assert.False(t, list.Tight)
	})

	t.Run("ordered start", func(t *testing.T) {
		t.Parallel()
		root := mustParse(t, "3. a\n4. b\n", parse.Config{})
		list := root.FirstChild
		require.NotNil(t, list)
		assert.True(t, list.Ordered)
		assert.Equal(t, 3, list.Start)
	})

	t.Run("nested list", func(t *testing.T) {
		t.Parallel()
		root := mustParse(t, "- a\n  - b\n", parse.Config{})
		list := root.FirstChild
		require.NotNil(t, list)
		item := list.FirstChild
		require.NotNil(t, item)
		var sub *ast.Node
		for c := item.FirstChild; c != nil; c = c.Next {
			if c.Kind == ast.NodeList {
				sub = c
			}
		}
		require.NotNil(t, sub, "expected nested list inside first item")
		assert.Equal(t, 1, sub.ChildCount())
	})
}

func TestParse_ThematicBreak(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "***\n", parse.Config{})
	require.Equal(t, []ast.NodeKind{ast.NodeThematicBreak}, kindsOf(root.Children()))
}

func TestParse_HTMLBlock(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "<div class=\"x\">\ncontent\n</div>\n", parse.Config{})
	children := root.Children()
	require.Equal(t, []ast.NodeKind{ast.NodeHTMLBlock}, kindsOf(children))
	assert.Equal(t, 6, children[0].RawKind)
	assert.Equal(t, "<div class=\"x\">\ncontent\n</div>\n", children[0].Value)
}

func TestParse_LinkDefinitions(t *testing.T) {
	t.Parallel()

	src := "[label]: /url \"title\"\n\nSee [text][label] and [label].\n"
	root := mustParse(t, src, parse.Config{})

	require.NotNil(t, root.Root)
	def := root.Root.Definitions["label"]
	require.NotNil(t, def)
	assert.Equal(t, "/url", def.URL)
	assert.Equal(t, "title", def.Title)

	// The definition paragraph is removed from the visible tree.
	children := root.Children()
	require.Equal(t, []ast.NodeKind{ast.NodeParagraph}, kindsOf(children))

	links := ast.FindByKind(root, ast.NodeLink)
	require.Len(t, links, 2)
	assert.Equal(t, "/url", links[0].URL)
	assert.Equal(t, ast.RefFull, links[0].Ref)
	assert.Equal(t, ast.RefShortcut, links[1].Ref)
}

func TestParse_DuplicateDefinitionWarns(t *testing.T) {
	t.Parallel()

	src := "[a]: /one\n[a]: /two\n"
	res := parse.Parse([]byte(src), parse.Config{})
	require.NotNil(t, res.Root)
	assert.Equal(t, "/one", res.Root.Root.Definitions["a"].URL)

	found := false
	for _, d := range res.Diags {
		if d.Code == diag.CodeDuplicateDefinition {
			found = true
		}
	}
	assert.True(t, found, "expected duplicate-definition diagnostic, got %v", res.Diags)
}

func TestParse_UnresolvedReferenceStaysText(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "[x][nope]\n", parse.Config{})
	assert.Empty(t, ast.FindByKind(root, ast.NodeLink))
	text := ""
	for _, n := range ast.FindByKind(root, ast.NodeText) {
		text += n.Value
	}
	assert.Equal(t, "[x][nope]", text)
}

func TestParse_InlineBasics(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "*em* **strong** `code` <https://go.dev>\n", parse.Config{})
	para := root.FirstChild
	require.NotNil(t, para)

	assert.Len(t, ast.FindByKind(para, ast.NodeEmphasis), 1)
	assert.Len(t, ast.FindByKind(para, ast.NodeStrong), 1)

	codes := ast.FindByKind(para, ast.NodeInlineCode)
	require.Len(t, codes, 1)
	assert.Equal(t, "code", codes[0].Value)

	autos := ast.FindByKind(para, ast.NodeAutolink)
	require.Len(t, autos, 1)
	assert.Equal(t, "https://go.dev", autos[0].URL)
	assert.Equal(t, ast.AutolinkURI, autos[0].Autolink)
}

func TestParse_InlineLinkAndImage(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "[go](/dest \"ti\") ![alt text](/img.png)\n", parse.Config{})

	links := ast.FindByKind(root, ast.NodeLink)
	require.Len(t, links, 1)
	assert.Equal(t, "/dest", links[0].URL)
	assert.Equal(t, "ti", links[0].Title)
	assert.Equal(t, ast.RefInline, links[0].Ref)

	imgs := ast.FindByKind(root, ast.NodeImage)
	require.Len(t, imgs, 1)
	assert.Equal(t, "/img.png", imgs[0].URL)
	assert.Equal(t, "alt text", imgs[0].Alt)
}

func TestParse_Breaks(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "a  \nb\\\nc\nd\n", parse.Config{})
	para := root.FirstChild
	require.NotNil(t, para)
	assert.Len(t, ast.FindByKind(para, ast.NodeHardBreak), 2)
	assert.Len(t, ast.FindByKind(para, ast.NodeSoftBreak), 1)
}

func TestParse_Frontmatter(t *testing.T) {
	t.Parallel()

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		root := mustParse(t, "---\ntitle: hi\n---\n# H\n", parse.Config{Frontmatter: true})
		require.NotNil(t, root.Root.Frontmatter)
		fm := root.Root.Frontmatter
		assert.Equal(t, "yaml", fm.Format)
		assert.Equal(t, "title: hi", fm.Value)
		// Frontmatter is the first child, heading the second.
		assert.Equal(t, ast.NodeFrontmatter, root.FirstChild.Kind)
		assert.Equal(t, ast.NodeHeading, root.FirstChild.Next.Kind)
	})

	t.Run("toml", func(t *testing.T) {
		t.Parallel()
		root := mustParse(t, "+++\nkey = 1\n+++\nbody\n", parse.Config{Frontmatter: true})
		require.NotNil(t, root.Root.Frontmatter)
		assert.Equal(t, "toml", root.Root.Frontmatter.Format)
		assert.Equal(t, "key = 1", root.Root.Frontmatter.Value)
	})

	t.Run("unclosed warns and parses as content", func(t *testing.T) {
		t.Parallel()
		res := parse.Parse([]byte("---\nnot closed\n"), parse.Config{Frontmatter: true})
		require.NotNil(t, res.Root)
		assert.Nil(t, res.Root.Root.Frontmatter)
		found := false
		for _, d := range res.Diags {
			if d.Code == diag.CodeUnclosedFrontmatter {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		root := mustParse(t, "---\ntitle: hi\n---\n", parse.Config{Frontmatter: false})
		assert.Nil(t, root.Root.Frontmatter)
	})
}

func TestParse_InputLimits(t *testing.T) {
	t.Parallel()

	t.Run("too large", func(t *testing.T) {
		t.Parallel()
		res := parse.Parse([]byte(strings.Repeat("a", 100)), parse.Config{MaxInputBytes: 10})
		assert.Nil(t, res.Root)
		require.NotEmpty(t, res.Diags)
		assert.Equal(t, diag.CodeInputTooLarge, res.Diags[0].Code)
		assert.Equal(t, diag.SeverityError, res.Diags[0].Severity)
	})

	t.Run("invalid utf8", func(t *testing.T) {
		t.Parallel()
		res := parse.Parse([]byte{0xff, 0xfe, 0xfd}, parse.Config{})
		assert.Nil(t, res.Root)
		require.NotEmpty(t, res.Diags)
		assert.Equal(t, diag.CodeInvalidEncoding, res.Diags[0].Code)
	})

	t.Run("nul bytes replaced", func(t *testing.T) {
		t.Parallel()
		root := mustParse(t, "a\x00b\n", parse.Config{})
		texts := ast.FindByKind(root, ast.NodeText)
		require.Len(t, texts, 1)
		assert.Equal(t, "a�b", texts[0].Value)
	})
}

func TestParse_NestingDepthLimit(t *testing.T) {
	t.Parallel()

	src := strings.Repeat("> ", 30) + "deep\n"
	res := parse.Parse([]byte(src), parse.Config{MaxNestingDepth: 5})
	require.NotNil(t, res.Root)

	found := false
	for _, d := range res.Diags {
		if d.Code == diag.CodeNestingTooDeep {
			found = true
		}
	}
	assert.True(t, found, "expected nesting diagnostic, got %v", res.Diags)

	// The text is still present, flattened into a paragraph.
	text := ""
	for _, n := range ast.FindByKind(res.Root, ast.NodeText) {
		text += n.Value
	}
	assert.Contains(t, text, "deep")
}

func TestParse_PositionsMonotonic(t *testing.T) {
	t.Parallel()

	src := "# H\n\npara *em* [l](/u)\n\n- a\n- b\n\n> q\n"
	root := mustParse(t, src, parse.Config{Position: true})

	last := -1
	err := ast.Walk(root, func(n *ast.Node) error {
		if n.Pos == nil {
			return nil
		}
		assert.LessOrEqual(t, n.Pos.Start.Offset, n.Pos.End.Offset)
		assert.GreaterOrEqual(t, n.Pos.Start.Offset, 0)
		if n.Kind != ast.NodeRoot {
			assert.GreaterOrEqual(t, n.Pos.Start.Offset, last, "pre-order regression at %s", n.Kind)
			last = n.Pos.Start.Offset
		}
		return nil
	})
	require.NoError(t, err)
}

func TestParse_NoPositionOption(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "# H\n\npara\n", parse.Config{Position: false})
	err := ast.Walk(root, func(n *ast.Node) error {
		assert.Nil(t, n.Pos)
		return nil
	})
	require.NoError(t, err)
}

func TestParse_LazyContinuation(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "> quoted\nlazy\n", parse.Config{})
	children := root.Children()
	require.Equal(t, []ast.NodeKind{ast.NodeBlockQuote}, kindsOf(children))
	para := children[0].FirstChild
	require.NotNil(t, para)
	text := ""
	for _, n := range ast.FindByKind(para, ast.NodeText) {
		text += n.Value
	}
	assert.Equal(t, "quotedlazy", text)
}

func TestParse_Stats(t *testing.T) {
	t.Parallel()

	res := parse.Parse([]byte("# H\n\npara\n"), parse.Config{})
	require.NotNil(t, res.Root)
	assert.Equal(t, res.Root.Count(), res.Stats.TotalNodes)
	assert.Greater(t, res.Stats.TotalNodes, 3)
}
