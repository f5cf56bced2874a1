package parse

import (
	"strings"

	"github.com/jp-knj/jetmd/pkg/ast"
)

// startFootnote opens a GFM footnote definition: "[^label]: content" with
// continuation lines indented four columns.
func startFootnote(p *parser, s line) (line, bool) {
	t := s
	t.trimSpace(0, 3, false)
	if !t.trim('[') || !t.trim('^') {
		return s, false
	}
	rest := t.string()
	i := strings.Index(rest, "]")
	if i < 0 || i+1 >= len(rest) || rest[i+1] != ':' {
		return s, false
	}
	label := rest[:i]
	for j := 0; j < i; j++ {
		switch label[j] {
		case ' ', '\t', '\n':
			return s, false
		}
	}
	if label == "" {
		return s, false
	}

	if _, ok := p.footnotes[normalizeLabel(label)]; ok {
		// A duplicate label is more useful left as plain text than
		// silently dropped.
		return s, false
	}

	if !p.checkDepth() {
		return s, false
	}
	fb := &footnoteBuilder{label: label}
	p.addBlock(fb)
	t.skip(i + 2)
	t.trimSpace(0, 1, true)
	return t, true
}

type footnoteBuilder struct {
	label string
}

func (b *footnoteBuilder) extend(p *parser, s line) (line, bool) {
	if !s.trimSpace(4, 4, true) {
		return s, false
	}
	return s, true
}

func (b *footnoteBuilder) build(p *parser) *ast.Node {
	start, end := p.pos()
	n := p.nodeAtLines(ast.NodeFootnoteDefinition, start, end)
	n.Label = b.label
	for _, c := range p.blocks() {
		ast.AppendChild(n, c)
	}
	p.footnotes[normalizeLabel(b.label)] = n
	// Definitions are indexed on the root, not kept in the visible tree.
	return nil
}
