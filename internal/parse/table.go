package parse

import (
	"strings"

	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
)

func isTableSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}

func tableTrimSpace(s string) string {
	i := 0
	for i < len(s) && isTableSpace(s[i]) {
		i++
	}
	j := len(s)
	for j > i && isTableSpace(s[j-1]) {
		j--
	}
	return s[i:j]
}

// tableTrimOuter removes surrounding space and at most one leading and
// trailing pipe.
func tableTrimOuter(row string) string {
	row = tableTrimSpace(row)
	if len(row) > 0 && row[0] == '|' {
		row = row[1:]
	}
	if len(row) > 0 && row[len(row)-1] == '|' {
		row = row[:len(row)-1]
	}
	return row
}

// isTableStart reports whether delim is a valid delimiter row whose column
// count matches the header row. This runs on every paragraph line, so it
// stays cheap.
func isTableStart(hdr, delim string) bool {
	col := 0
	delim = tableTrimOuter(delim)
	i := 0
	for ; ; col++ {
		for i < len(delim) && isTableSpace(delim[i]) {
			i++
		}
		if i >= len(delim) {
			break
		}
		if i < len(delim) && delim[i] == ':' {
			i++
		}
		if i >= len(delim) || delim[i] != '-' {
			return false
		}
		i++
		for i < len(delim) && delim[i] == '-' {
			i++
		}
		if i < len(delim) && delim[i] == ':' {
			i++
		}
		for i < len(delim) && isTableSpace(delim[i]) {
			i++
		}
		if i < len(delim) && delim[i] == '|' {
			i++
		}
	}
	return col == tableCount(hdr)
}

// tableCount counts the columns of a trimmed row.
func tableCount(row string) int {
	row = tableTrimOuter(row)
	col := 1
	for i := 0; i < len(row); i++ {
		c := row[i]
		if c == '\\' {
			i++
			continue
		}
		if c == '|' {
			col++
		}
	}
	return col
}

type tableBuilder struct {
	hdr    string
	hdrOff int
	delim  string
	rows   []string
	offs   []int
}

func (b *tableBuilder) start(hdr string, hdrOff int, delim string) {
	b.hdr = hdr
	b.hdrOff = hdrOff
	b.delim = tableTrimOuter(delim)
}

func (b *tableBuilder) addRow(row string, off int) {
	b.rows = append(b.rows, row)
	b.offs = append(b.offs, off)
}

func (b *tableBuilder) build(p *parser) *ast.Node {
	start, _ := p.pos()
	start-- // the header line preceded the delimiter that started us
	end := start + 1 + len(b.rows)

	table := p.nodeAtLines(ast.NodeTable, start, end)
	width := tableCount(b.hdr)
	table.Alignments = parseAlign(b.delim, width)

	hdrRow := p.nodeAtLines(ast.NodeTableRow, start, start)
	hdrRow.Header = true
	b.parseRow(p, hdrRow, b.hdr, b.hdrOff, start, width)
	ast.AppendChild(table, hdrRow)

	for i, row := range b.rows {
		lineno := start + 2 + i
		r := p.nodeAtLines(ast.NodeTableRow, lineno, lineno)
		off := 0
		if i < len(b.offs) {
			off = b.offs[i]
		}
		b.parseRow(p, r, row, off, lineno, width)
		ast.AppendChild(table, r)
	}
	return table
}

// parseRow splits a row into width cells, dropping extras and padding
// missing cells empty.
func (b *tableBuilder) parseRow(p *parser, parent *ast.Node, row string, rowOff, lineno, width int) {
	trimmed := tableTrimOuter(row)
	delta := strings.Index(row, trimmed)
	if delta < 0 {
		delta = 0
	}
	cells := 0
	startIdx := 0
	unesc := false
	emit := func(endIdx int) {
		if cells >= width {
			return
		}
		text := strings.Trim(trimmed[startIdx:endIdx], " \t\v\f")
		if unesc {
			text = tableUnescapePipes(text)
		}
		cell := p.nodeAtLines(ast.NodeTableCell, lineno, lineno)
		tm := &textmap{}
		tm.add(0, rowOff+delta+startIdx, len(text))
		p.addText(cell, text, tm)
		ast.AppendChild(parent, cell)
		cells++
		unesc = false
	}
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if c == '\\' {
			i++
			if i < len(trimmed) && trimmed[i] == '|' {
				unesc = true
			}
			continue
		}
		if c == '|' {
			emit(i)
			startIdx = i + 1
		}
	}
	emit(len(trimmed))

	if n := tableCount(row); n > width {
		p.diags.WarnAt(diag.CodeMalformedTableRow, p.posLines(lineno, lineno),
			"table row has %d cells, table has %d columns; extra cells dropped", n, width)
	}
	for cells < width {
		cell := p.nodeAtLines(ast.NodeTableCell, lineno, lineno)
		ast.AppendChild(parent, cell)
		cells++
	}
}

// tableUnescapePipes rewrites \| into | inside a cell.
func tableUnescapePipes(text string) string {
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\\' && i+1 < len(text) && text[i+1] == '|' {
			i++
			c = '|'
		}
		out = append(out, c)
	}
	return string(out)
}

// parseAlign derives column alignments from the delimiter row.
func parseAlign(delim string, n int) []ast.Alignment {
	align := make([]ast.Alignment, 0, n)
	start := 0
	for i := 0; i < len(delim); i++ {
		if delim[i] == '|' {
			align = append(align, cellAlign(delim[start:i]))
			start = i + 1
		}
	}
	align = append(align, cellAlign(delim[start:]))
	for len(align) < n {
		align = append(align, ast.AlignNone)
	}
	return align[:n]
}

func cellAlign(cell string) ast.Alignment {
	cell = tableTrimSpace(cell)
	if cell == "" {
		return ast.AlignNone
	}
	l := cell[0] == ':'
	r := cell[len(cell)-1] == ':'
	switch {
	case l && r:
		return ast.AlignCenter
	case l:
		return ast.AlignLeft
	case r:
		return ast.AlignRight
	}
	return ast.AlignNone
}
