package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp-knj/jetmd/internal/parse"
	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
)

var mdxCfg = parse.Config{MDX: true}

func TestMDX_EsmAndComponent(t *testing.T) {
	t.Parallel()

	src := "import B from './b'\n\n<B x={1+2}>hi</B>\n"
	root := mustParse(t, src, mdxCfg)

	children := root.Children()
	require.Equal(t, []ast.NodeKind{ast.NodeMdxEsm, ast.NodeMdxJsxElement}, kindsOf(children))

	esm := children[0]
	assert.Equal(t, "import B from './b'", esm.Value)

	el := children[1]
	assert.Equal(t, "B", el.Name)
	assert.False(t, el.SelfClosing)
	require.Len(t, el.Attrs, 1)
	assert.Equal(t, "x", el.Attrs[0].Name)
	assert.True(t, el.Attrs[0].IsExpr)
	assert.Equal(t, "1+2", el.Attrs[0].Expr)

	require.Equal(t, 1, el.ChildCount())
	assert.Equal(t, ast.NodeText, el.FirstChild.Kind)
	assert.Equal(t, "hi", el.FirstChild.Value)
}

func TestMDX_SelfClosingAndNested(t *testing.T) {
	t.Parallel()

	src := "<Outer a=\"v\">\n  <Inner />\n</Outer>\n"
	root := mustParse(t, src, mdxCfg)

	els := ast.FindByKind(root, ast.NodeMdxJsxElement)
	require.Len(t, els, 2)
	assert.Equal(t, "Outer", els[0].Name)
	require.Len(t, els[0].Attrs, 1)
	assert.Equal(t, "v", els[0].Attrs[0].Value)
	assert.Equal(t, "Inner", els[1].Name)
	assert.True(t, els[1].SelfClosing)
}

func TestMDX_InlineExpression(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "a {x + 1} b\n", mdxCfg)
	para := root.FirstChild
	require.NotNil(t, para)

	exprs := ast.FindByKind(para, ast.NodeMdxTextExpression)
	require.Len(t, exprs, 1)
	assert.Equal(t, "x + 1", exprs[0].Value)
}

func TestMDX_FlowExpression(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "{1 + 1}\n\ntext\n", mdxCfg)
	children := root.Children()
	require.Equal(t, []ast.NodeKind{ast.NodeMdxFlowExpression, ast.NodeParagraph}, kindsOf(children))
	assert.Equal(t, "1 + 1", children[0].Value)
}

func TestMDX_UnbalancedExpressionWarns(t *testing.T) {
	t.Parallel()

	res := parse.Parse([]byte("a {open\n"), mdxCfg)
	require.NotNil(t, res.Root)

	found := false
	for _, d := range res.Diags {
		if d.Code == diag.CodeUnbalancedExpression {
			found = true
		}
	}
	assert.True(t, found, "expected unbalanced-expression diagnostic, got %v", res.Diags)

	text := ""
	for _, n := range ast.FindByKind(res.Root, ast.NodeText) {
		text += n.Value
	}
	assert.Equal(t, "a {open", text)
}

func TestMDX_DisabledProducesNoMdxNodes(t *testing.T) {
	t.Parallel()

	src := "import B from './b'\n\n<B x={1+2}>hi</B>\n\na {x} b\n"
	root := mustParse(t, src, parse.Config{})

	err := ast.Walk(root, func(n *ast.Node) error {
		switch n.Kind {
		case ast.NodeMdxEsm, ast.NodeMdxJsxElement,
			ast.NodeMdxFlowExpression, ast.NodeMdxTextExpression:
			t.Errorf("unexpected MDX node %s without mdx option", n.Kind)
		}
		return nil
	})
	require.NoError(t, err)
}
