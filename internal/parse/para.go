package parse

import (
	"strings"

	"github.com/jp-knj/jetmd/pkg/ast"
)

// A paraBuilder accumulates paragraph lines. It also hosts the GFM table
// builder: a paragraph whose last line is followed by a delimiter row turns
// into a table, and subsequent rows are consumed here.
type paraBuilder struct {
	text  []string
	offs  []int // source offset of each line's content
	table *tableBuilder
}

// startParagraph processes paragraph continuation text or starts a new
// paragraph. It is the fallthrough consumer for any non-blank line no other
// construct claimed.
func startParagraph(p *parser, s line) {
	b := p.para()
	indented := p.lineDepth == len(p.stack)-2 // not lazy continuation text
	text := s.trimSpaceString()
	off := s.srcOff + s.nonblank
	if s.nonblank < s.i {
		off = s.contentOff()
	}

	if b != nil && b.table != nil {
		if indented && text != "" && text != "|" {
			b.table.addRow(text, off)
			p.stack[len(p.stack)-1].endLine = p.lineno
			return
		}
		// An unindented or pipe-only line ends the table.
		b = nil
	}

	// A delimiter row under the paragraph's last line starts a table.
	if p.cfg.GFM && b != nil && indented && len(b.text) > 0 && isTableStart(b.text[len(b.text)-1], text) {
		hdr := b.text[len(b.text)-1]
		hdrOff := b.offs[len(b.offs)-1]
		b.text = b.text[:len(b.text)-1]
		b.offs = b.offs[:len(b.offs)-1]
		tb := new(paraBuilder)
		p.addBlock(tb)
		tb.table = new(tableBuilder)
		tb.table.start(hdr, hdrOff, text)
		return
	}

	if b != nil {
		for i := p.lineDepth; i < len(p.stack); i++ {
			p.stack[i].endLine = p.lineno
		}
	} else {
		b = new(paraBuilder)
		p.addBlock(b)
	}
	b.text = append(b.text, text)
	b.offs = append(b.offs, off)
}

// extend defers to startParagraph, which must handle paragraph
// continuation text anyway.
func (b *paraBuilder) extend(p *parser, s line) (line, bool) {
	return s, false
}

func (b *paraBuilder) build(p *parser) *ast.Node {
	if b.table != nil {
		return b.table.build(p)
	}

	tm := &textmap{}
	pos := 0
	for i, t := range b.text {
		tm.add(pos, b.offs[i], len(t))
		pos += len(t) + 1
	}
	s := strings.Join(b.text, "\n")

	// Parse and remove link reference definitions at the paragraph start.
	for s != "" {
		end, ok := parseLinkRefDef(p, s, tm)
		if !ok {
			break
		}
		cut := skipSpace(s, end)
		s = s[cut:]
		tm = tm.sub(cut)
	}

	start, end := p.pos()
	if s == "" {
		// Entirely reference definitions. Keep an empty paragraph for
		// line-gap bookkeeping (list looseness); it is pruned later.
		n := p.nodeAtLines(ast.NodeParagraph, start, end)
		p.empties[n] = true
		return n
	}

	end = start + len(b.text) - 1
	n := p.nodeAtLines(ast.NodeParagraph, start, end)
	p.addText(n, s, tm)
	return n
}
