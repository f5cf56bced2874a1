package mdx_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp-knj/jetmd/internal/parse"
	"github.com/jp-knj/jetmd/pkg/mdx"
)

func TestDefaultParser_ParseStatement(t *testing.T) {
	t.Parallel()

	js := mdx.DefaultParser()

	t.Run("single line import", func(t *testing.T) {
		t.Parallel()
		src := "import B from './b'\n\nrest"
		raw, end, err := js.ParseStatement(src, 0)
		require.NoError(t, err)
		assert.Equal(t, "import B from './b'", raw)
		assert.Equal(t, len("import B from './b'\n"), end)
	})

	t.Run("semicolon terminated", func(t *testing.T) {
		t.Parallel()
		src := "export const a = 1;\ntext"
		raw, end, err := js.ParseStatement(src, 0)
		require.NoError(t, err)
		assert.Equal(t, "export const a = 1;", raw)
		assert.Equal(t, len("export const a = 1;\n"), end)
	})

	t.Run("multi line braces", func(t *testing.T) {
		t.Parallel()
		src := "import {\n  a,\n  b,\n} from './x'\n\nafter"
		raw, _, err := js.ParseStatement(src, 0)
		require.NoError(t, err)
		assert.Contains(t, raw, "from './x'")
	})

	t.Run("string with braces", func(t *testing.T) {
		t.Parallel()
		src := "export const s = \"{not a block}\"\n"
		raw, _, err := js.ParseStatement(src, 0)
		require.NoError(t, err)
		assert.Equal(t, `export const s = "{not a block}"`, raw)
	})
}

func TestDefaultParser_ParseExpression(t *testing.T) {
	t.Parallel()

	js := mdx.DefaultParser()

	t.Run("balanced", func(t *testing.T) {
		t.Parallel()
		raw, end, err := js.ParseExpression("{1 + {a: 2}.a}", 0)
		require.NoError(t, err)
		assert.Equal(t, "1 + {a: 2}.a", raw)
		assert.Equal(t, 14, end)
	})

	t.Run("template literal", func(t *testing.T) {
		t.Parallel()
		raw, _, err := js.ParseExpression("{`x ${y}` + 1}", 0)
		require.NoError(t, err)
		assert.Equal(t, "`x ${y}` + 1", raw)
	})

	t.Run("unbalanced", func(t *testing.T) {
		t.Parallel()
		_, _, err := js.ParseExpression("{open", 0)
		assert.ErrorIs(t, err, mdx.ErrUnbalanced)
	})
}

func TestParseElement(t *testing.T) {
	t.Parallel()

	js := mdx.DefaultParser()

	t.Run("attributes and children", func(t *testing.T) {
		t.Parallel()
		src := `<B x={1+2} name="n" flag {...rest}>hi <I/> {expr} bye</B>`
		el, end, err := mdx.ParseElement(src, 0, js)
		require.NoError(t, err)
		assert.Equal(t, len(src), end)
		assert.Equal(t, "B", el.Name)
		assert.False(t, el.SelfClosing)

		require.Len(t, el.Attrs, 4)
		assert.Equal(t, "x", el.Attrs[0].Name)
		assert.Equal(t, "1+2", el.Attrs[0].Expr)
		assert.True(t, el.Attrs[0].IsExpr)
		assert.Equal(t, "n", el.Attrs[1].Value)
		assert.True(t, el.Attrs[1].HasVal)
		assert.Equal(t, "flag", el.Attrs[2].Name)
		assert.False(t, el.Attrs[2].HasVal)
		assert.Equal(t, "rest", el.Attrs[3].Spread)

		require.Len(t, el.Children, 5)
		assert.Equal(t, mdx.ChildText, el.Children[0].Kind)
		assert.Equal(t, "hi ", el.Children[0].Text)
		assert.Equal(t, mdx.ChildElement, el.Children[1].Kind)
		assert.Equal(t, "I", el.Children[1].El.Name)
		assert.True(t, el.Children[1].El.SelfClosing)
		assert.Equal(t, mdx.ChildExpression, el.Children[3].Kind)
		assert.Equal(t, "expr", el.Children[3].Expr)
	})

	t.Run("mismatched close", func(t *testing.T) {
		t.Parallel()
		_, _, err := mdx.ParseElement("<A>x</B>", 0, js)
		assert.Error(t, err)
	})

	t.Run("unclosed", func(t *testing.T) {
		t.Parallel()
		_, _, err := mdx.ParseElement("<A>never", 0, js)
		assert.Error(t, err)
	})
}

func TestCompile_Scenario(t *testing.T) {
	t.Parallel()

	src := "import B from './b'\n\n<B x={1+2}>hi</B>\n"
	res := parse.Parse([]byte(src), parse.Config{MDX: true})
	require.NotNil(t, res.Root)

	out := mdx.Compile(res.Root, mdx.CompileOptions{})

	assert.True(t, strings.HasPrefix(out.ESMSource, "import B from './b'\n"),
		"module must begin with the import, got:\n%s", out.ESMSource)
	assert.Contains(t, out.ESMSource, "export default function MDXContent(props)")
	assert.Contains(t, out.ESMSource, "<B x={1+2}>hi</B>")
	assert.Contains(t, out.ESMSource, "...props.components")

	assert.Equal(t, []string{"./b"}, out.Imports)
	assert.Equal(t, []string{"B"}, out.Components)
	assert.Contains(t, out.Exports, "default")
}

func TestCompile_FrontmatterAndProvider(t *testing.T) {
	t.Parallel()

	src := "---\ntitle: hi\n---\n\n# H\n"
	res := parse.Parse([]byte(src), parse.Config{MDX: true, Frontmatter: true})
	require.NotNil(t, res.Root)

	out := mdx.Compile(res.Root, mdx.CompileOptions{
		ProviderImportSource: "@mdx-js/react",
	})

	assert.Contains(t, out.ESMSource,
		`import {useMDXComponents as _provideComponents} from "@mdx-js/react";`)
	assert.Contains(t, out.ESMSource, `export const frontmatter = "title: hi";`)
	assert.Contains(t, out.ESMSource, "_provideComponents()")
	assert.Contains(t, out.ESMSource, "<_components.h1>H</_components.h1>")
	assert.Contains(t, out.Exports, "frontmatter")
}

func TestCompile_ExportManifest(t *testing.T) {
	t.Parallel()

	src := "export const meta = {a: 1}\n\ntext\n"
	res := parse.Parse([]byte(src), parse.Config{MDX: true})
	require.NotNil(t, res.Root)

	out := mdx.Compile(res.Root, mdx.CompileOptions{})
	assert.Contains(t, out.Exports, "meta")
	assert.Contains(t, out.ESMSource, "export const meta = {a: 1}")
	assert.Contains(t, out.ESMSource, "<_components.p>text</_components.p>")
}
