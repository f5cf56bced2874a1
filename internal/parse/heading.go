package parse

import (
	"strings"

	"github.com/jp-knj/jetmd/pkg/ast"
)

// startATXHeading recognizes "# Heading" through "###### Heading".
func startATXHeading(p *parser, s line) (line, bool) {
	t := s
	n, ok := trimATX(&t)
	if !ok {
		return s, false
	}
	off := t.contentOff()
	text := trimRightSpaceTab(t.string())

	// Remove trailing '#'s when preceded by a space or tab.
	if inner := strings.TrimRight(text, "#"); inner != trimRightSpaceTab(inner) || inner == "" {
		text = trimRightSpaceTab(inner)
	}

	h := p.nodeAtLines(ast.NodeHeading, p.lineno, p.lineno)
	h.Depth = n
	tm := &textmap{}
	tm.add(0, off, len(text))
	p.addText(h, text, tm)
	p.doneBlock(h)
	return line{}, true
}

// trimATX trims an ATX heading prefix, reporting the level.
func trimATX(s *line) (level int, ok bool) {
	t := *s
	t.trimSpace(0, 3, false)
	if !t.trim('#') {
		return
	}
	n := 1
	for n < 6 && t.trim('#') {
		n++
	}
	if !t.trimSpace(1, 1, true) {
		return
	}
	*s = t
	return n, true
}

// startSetextHeading promotes the open paragraph when an = or - underline
// follows it. The promotion is abandoned if the paragraph dissolves into
// link reference definitions.
func startSetextHeading(p *parser, s line) (line, bool) {
	if p.nextB() != p.para() || p.para() == nil {
		return s, false
	}

	t := s
	level, ok := trimSetext(&t)
	if !ok {
		return s, false
	}

	p.closeBlock()
	para := p.last()
	if para == nil || para.Kind != ast.NodeParagraph || p.empties[para] {
		// The paragraph text was all reference definitions; leave the
		// underline for other starters.
		return s, false
	}

	para.Kind = ast.NodeHeading
	para.Depth = level
	para.Setext = true
	if para.Pos != nil {
		para.Pos.End = p.pointAt(p.lineEnd(p.lineno))
	}
	p.stack[len(p.stack)-1].endLine = p.lineno
	return line{}, true
}

// trimSetext trims a setext underline (only -'s or ='s, then EOL).
func trimSetext(s *line) (level int, ok bool) {
	t := *s
	t.trimSpace(0, 3, false)
	c := t.peek()
	if c != '-' && c != '=' {
		return
	}
	for t.trim(c) {
	}
	t.skipSpace()
	if !t.eof() {
		return
	}
	level = 1
	if c == '-' {
		level = 2
	}
	*s = line{}
	return level, true
}

// startThematicBreak recognizes ***, ---, and ___ rules.
func startThematicBreak(p *parser, s line) (line, bool) {
	if !trimThematicBreak(&s) {
		return s, false
	}
	p.doneBlock(p.nodeAtLines(ast.NodeThematicBreak, p.lineno, p.lineno))
	return line{}, true
}

func trimThematicBreak(s *line) bool {
	t := *s
	t.trimSpace(0, 3, false)
	c := t.peek()
	if c != '-' && c != '_' && c != '*' {
		return false
	}
	for i := 0; ; i++ {
		if !t.trim(c) {
			if i < 3 {
				return false
			}
			break
		}
		t.skipSpace()
	}
	if !t.eof() {
		return false
	}
	*s = line{}
	return true
}
