package parse

import "github.com/jp-knj/jetmd/pkg/ast"

// startMathBlock opens a $$-delimited display math block.
// A single line "$$ … $$" closes immediately.
func startMathBlock(p *parser, s line) (line, bool) {
	t := s
	t.trimSpace(0, 3, false)
	if !t.trim('$') || !t.trim('$') {
		return s, false
	}
	rest := t.trimString()
	b := &mathBuilder{}
	if len(rest) >= 2 && rest[len(rest)-1] == '$' && rest[len(rest)-2] == '$' {
		// Opener and closer on one line.
		value := trimSpaceTab(rest[:len(rest)-2])
		n := p.nodeAtLines(ast.NodeMath, p.lineno, p.lineno)
		n.Value = value
		p.doneBlock(n)
		return line{}, true
	}
	p.addBlock(b)
	if rest != "" {
		b.text = append(b.text, rest)
	}
	return line{}, true
}

type mathBuilder struct {
	text []string
}

func (b *mathBuilder) extend(p *parser, s line) (line, bool) {
	t := s
	t.trimSpace(0, 3, false)
	if t.trim('$') && t.trim('$') {
		tt := t
		if tt.trimString() == "" {
			return line{}, false
		}
	}
	b.text = append(b.text, s.string())
	return line{}, true
}

func (b *mathBuilder) build(p *parser) *ast.Node {
	start, end := p.pos()
	n := p.nodeAtLines(ast.NodeMath, start, end)
	var value string
	for i, l := range b.text {
		if i > 0 {
			value += "\n"
		}
		value += l
	}
	n.Value = value
	return n
}
