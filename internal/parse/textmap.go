package parse

import (
	"sort"

	"github.com/jp-knj/jetmd/pkg/ast"
)

// A textmap relates offsets in a block's reassembled raw text (lines joined
// with newlines, framing markers removed) back to byte offsets in the
// source. Inline node positions are derived through it.
type seg struct {
	tOff int // offset in the joined text
	sOff int // corresponding source offset
	n    int // segment length
}

type textmap struct {
	segs []seg
}

// add records that joined-text offset tOff..tOff+n came from source offset
// sOff. Segments must be added in increasing tOff order.
func (m *textmap) add(tOff, sOff, n int) {
	m.segs = append(m.segs, seg{tOff, sOff, n})
}

// srcAt maps a joined-text offset to the best matching source offset.
func (m *textmap) srcAt(tOff int) int {
	if len(m.segs) == 0 {
		return 0
	}
	i := sort.Search(len(m.segs), func(i int) bool {
		return m.segs[i].tOff > tOff
	}) - 1
	if i < 0 {
		i = 0
	}
	s := m.segs[i]
	d := tOff - s.tOff
	if d > s.n {
		d = s.n
	}
	return s.sOff + d
}

// sub returns a map for the joined text with its first from bytes removed.
func (m *textmap) sub(from int) *textmap {
	out := &textmap{}
	for _, s := range m.segs {
		if s.tOff+s.n <= from {
			continue
		}
		if s.tOff >= from {
			out.segs = append(out.segs, seg{s.tOff - from, s.sOff, s.n})
			continue
		}
		d := from - s.tOff
		out.segs = append(out.segs, seg{0, s.sOff + d, s.n - d})
	}
	return out
}

// pendingText is an inline-bearing block awaiting the inline pass.
type pendingText struct {
	node *ast.Node
	raw  string
	tm   *textmap
}

// addText registers raw inline text to be resolved into node's children
// once block scanning completes and the definition tables are final.
func (p *parser) addText(node *ast.Node, raw string, tm *textmap) {
	t := &pendingText{node: node, raw: raw, tm: tm}
	p.texts = append(p.texts, t)
	p.pendingByNode[node] = t
}

// resolveInline runs the inline parser for one pending block.
func (p *parser) resolveInline(t *pendingText) {
	for _, child := range p.inline(t.raw, t.tm) {
		ast.AppendChild(t.node, child)
	}
	if t.node.Kind == ast.NodeImage {
		t.node.Alt = flattenText(t.node)
	}
}

// flattenText returns the concatenated literal text of a sub-tree,
// the way image alt text is flattened.
func flattenText(n *ast.Node) string {
	out := ""
	ast.Walk(n, func(c *ast.Node) error {
		switch c.Kind {
		case ast.NodeText, ast.NodeInlineCode:
			out += c.Value
		case ast.NodeSoftBreak, ast.NodeHardBreak:
			out += " "
		}
		return nil
	})
	return out
}
