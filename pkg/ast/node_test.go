package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp-knj/jetmd/pkg/ast"
)

func TestNode_IsBlock(t *testing.T) {
	t.Parallel()

	blockKinds := []ast.NodeKind{
		ast.NodeRoot,
		ast.NodeParagraph,
		ast.NodeHeading,
		ast.NodeBlockQuote,
		ast.NodeList,
		ast.NodeListItem,
		ast.NodeCodeBlock,
		ast.NodeHTMLBlock,
		ast.NodeThematicBreak,
		ast.NodeTable,
		ast.NodeFrontmatter,
		ast.NodeFootnoteDefinition,
		ast.NodeMdxEsm,
	}
	for _, kind := range blockKinds {
		node := &ast.Node{Kind: kind}
		assert.True(t, node.IsBlock(), "expected %s to be block", kind)
	}

	inlineKinds := []ast.NodeKind{
		ast.NodeText,
		ast.NodeEmphasis,
		ast.NodeStrong,
		ast.NodeDelete,
		ast.NodeInlineCode,
		ast.NodeLink,
		ast.NodeImage,
		ast.NodeSoftBreak,
		ast.NodeHardBreak,
		ast.NodeHTMLInline,
		ast.NodeFootnoteReference,
		ast.NodeMdxTextExpression,
	}
	for _, kind := range inlineKinds {
		node := &ast.Node{Kind: kind}
		assert.False(t, node.IsBlock(), "expected %s to not be block", kind)
		assert.True(t, node.IsInline(), "expected %s to be inline", kind)
	}
}

func TestBuilder_ChildOps(t *testing.T) {
	t.Parallel()

	root := ast.NewRoot()
	a := ast.NewText("a")
	b := ast.NewText("b")
	c := ast.NewText("c")

	ast.AppendChild(root, a)
	ast.AppendChild(root, c)
	ast.InsertBefore(c, b)

	require.Equal(t, 3, root.ChildCount())
	assert.Equal(t, []*ast.Node{a, b, c}, root.Children())
	assert.Equal(t, root, b.Parent)
	assert.Equal(t, a, b.Prev)
	assert.Equal(t, c, b.Next)

	ast.RemoveChild(root, b)
	assert.Equal(t, []*ast.Node{a, c}, root.Children())
	assert.Nil(t, b.Parent)
	assert.Nil(t, b.Prev)
	assert.Nil(t, b.Next)

	d := ast.NewText("d")
	ast.ReplaceChild(root, a, d)
	assert.Equal(t, []*ast.Node{d, c}, root.Children())
	assert.Nil(t, a.Parent)

	ast.InsertAfter(c, a)
	assert.Equal(t, []*ast.Node{d, c, a}, root.Children())
	assert.Equal(t, root.LastChild, a)

	ast.PrependChild(root, b)
	assert.Equal(t, []*ast.Node{b, d, c, a}, root.Children())
}

func TestWalk_PreOrder(t *testing.T) {
	t.Parallel()

	root := ast.NewRoot()
	para := ast.NewNode(ast.NodeParagraph)
	ast.AppendChild(root, para)
	ast.AppendChild(para, ast.NewText("x"))
	ast.AppendChild(para, ast.NewText("y"))
	heading := ast.NewNode(ast.NodeHeading)
	ast.AppendChild(root, heading)

	var kinds []ast.NodeKind
	err := ast.Walk(root, func(n *ast.Node) error {
		kinds = append(kinds, n.Kind)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []ast.NodeKind{
		ast.NodeRoot, ast.NodeParagraph, ast.NodeText, ast.NodeText, ast.NodeHeading,
	}, kinds)

	assert.Equal(t, 5, root.Count())
	assert.Len(t, ast.FindByKind(root, ast.NodeText), 2)
	assert.Equal(t, para, ast.FindFirst(root, func(n *ast.Node) bool {
		return n.Kind == ast.NodeParagraph
	}))
}
