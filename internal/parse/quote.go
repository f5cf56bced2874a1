package parse

import "github.com/jp-knj/jetmd/pkg/ast"

// A quoteBuilder is the open-block state for a block quote.
type quoteBuilder struct{}

// startBlockQuote opens a block quote at a leading '>'.
func startBlockQuote(p *parser, s line) (line, bool) {
	rest, ok := trimQuote(s)
	if !ok || !p.checkDepth() {
		return s, false
	}
	p.addBlock(new(quoteBuilder))
	return rest, true
}

// trimQuote consumes the '>' marker and up to one following space.
func trimQuote(s line) (line, bool) {
	t := s
	t.trimSpace(0, 3, false)
	if !t.trim('>') {
		return s, false
	}
	t.trimSpace(0, 1, true)
	return t, true
}

func (b *quoteBuilder) extend(p *parser, s line) (line, bool) {
	return trimQuote(s)
}

func (b *quoteBuilder) build(p *parser) *ast.Node {
	start, end := p.pos()
	n := p.nodeAtLines(ast.NodeBlockQuote, start, end)
	for _, c := range p.blocks() {
		ast.AppendChild(n, c)
	}
	return n
}
