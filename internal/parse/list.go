package parse

import "github.com/jp-knj/jetmd/pkg/ast"

// A listBuilder is the open-block state for a list; itemBuilder for one of
// its items. A list stays open across blank lines; looseness is derived
// from line gaps between its items and their blocks once the list closes.
type listBuilder struct {
	ordered bool
	marker  byte
	num     int
	loose   bool
	item    *itemBuilder
	todo    func() line
}

type itemBuilder struct {
	list        *listBuilder
	width       int
	haveContent bool
}

func (c *listBuilder) extend(p *parser, s line) (line, bool) {
	d := c.item
	if d != nil && s.trimSpace(d.width, d.width, true) || d == nil && s.isBlank() {
		return s, true
	}
	return s, false
}

func (c *itemBuilder) extend(p *parser, s line) (line, bool) {
	if s.isBlank() && !c.haveContent {
		return s, false
	}
	if s.isBlank() {
		return line{}, true
	}
	c.haveContent = true
	return s, true
}

// newListItem is the starter for list items. A successful startListItem
// leaves a pending todo on the list builder; the starter loop retries and
// the todo pushes the item builder at the deeper level.
func newListItem(p *parser, s line) (line, bool) {
	if list, ok := p.curB().(*listBuilder); ok && list.todo != nil {
		s = list.todo()
		list.todo = nil
		return s, true
	}
	if p.startListItem(&s) {
		return s, true
	}
	return s, false
}

func (p *parser) startListItem(s *line) bool {
	t := *s
	n := 0
	for i := 0; i < 3; i++ {
		if !t.trimSpace(1, 1, false) {
			break
		}
		n++
	}
	bullet := t.peek()
	var num int
Switch:
	switch bullet {
	default:
		return false
	case '-', '*', '+':
		t.trim(bullet)
		n++
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		for j := t.i; ; j++ {
			if j >= len(t.text) {
				return false
			}
			c := t.text[j]
			if c == '.' || c == ')' {
				bullet = c
				j++
				n += j - t.i
				t.i = j
				break Switch
			}
			if c < '0' || '9' < c {
				return false
			}
			if j-t.i >= 9 {
				return false
			}
			num = num*10 + int(c) - '0'
		}
	}
	if !t.trimSpace(1, 1, true) {
		return false
	}
	n++
	tt := t
	m := 0
	for i := 0; i < 3 && tt.trimSpace(1, 1, false); i++ {
		m++
	}
	if !tt.trimSpace(1, 1, true) {
		n += m
		t = tt
	}

	// Point of no return.
	ordered := bullet == '.' || bullet == ')'

	var list *listBuilder
	if c, ok := p.nextB().(*listBuilder); ok {
		list = c
	}
	if list == nil || list.marker != bullet {
		// A list interrupting a paragraph must not begin with a blank
		// line, and an ordered one must start at 1.
		if list == nil && p.para() != nil && (t.isBlank() || num > 1) {
			return false
		}
		if !p.checkDepth() {
			return false
		}
		list = &listBuilder{ordered: ordered, marker: bullet, num: num}
		p.addBlock(list)
	}
	b := &itemBuilder{list: list, width: n, haveContent: !t.isBlank()}
	list.todo = func() line {
		p.addBlock(b)
		list.item = b
		return t
	}
	return true
}

func (b *itemBuilder) build(p *parser) *ast.Node {
	b.list.item = nil
	start, end := p.pos()
	item := p.nodeAtLines(ast.NodeListItem, start, end)
	children := p.blocks()
	for _, c := range children {
		ast.AppendChild(item, c)
	}
	p.detectTaskMarker(item)
	return item
}

// detectTaskMarker applies the GFM task-list rule: an item whose first
// block is a paragraph beginning with "[ ] ", "[x] ", or "[X] " becomes a
// task item and the marker is removed from the text.
func (p *parser) detectTaskMarker(item *ast.Node) {
	if !p.cfg.GFM {
		return
	}
	first := item.FirstChild
	if first == nil || first.Kind != ast.NodeParagraph || p.empties[first] {
		return
	}
	t := p.pendingByNode[first]
	if t == nil || len(t.raw) < 4 || t.raw[0] != '[' || t.raw[2] != ']' || t.raw[3] != ' ' {
		return
	}
	var checked bool
	switch t.raw[1] {
	case ' ':
		checked = false
	case 'x', 'X':
		checked = true
	default:
		return
	}
	item.Checked = &checked
	cut := 4
	for cut < len(t.raw) && (t.raw[cut] == ' ' || t.raw[cut] == '\t') {
		cut++
	}
	t.raw = t.raw[cut:]
	t.tm = t.tm.sub(cut)
}

func (b *listBuilder) build(p *parser) *ast.Node {
	items := p.blocks()
	start, end := p.pos()
	if len(items) > 0 && items[len(items)-1].Pos != nil {
		end = items[len(items)-1].Pos.End.Line
	}

Loose:
	for i, c := range items {
		if i+1 < len(items) && gapBetween(c, items[i+1]) {
			b.loose = true
			break Loose
		}
		for d := c.FirstChild; d != nil; d = d.Next {
			if d.Next != nil && gapBetween(d, d.Next) {
				b.loose = true
				break Loose
			}
		}
	}

	list := p.nodeAtLines(ast.NodeList, start, end)
	list.Ordered = b.ordered
	list.Marker = b.marker
	list.Tight = !b.loose
	if b.ordered {
		list.Start = b.num
	}
	for _, c := range items {
		ast.AppendChild(list, c)
	}
	return list
}

// gapBetween reports whether a blank line separates two sibling blocks.
func gapBetween(a, b *ast.Node) bool {
	if a.Pos == nil || b.Pos == nil {
		return false
	}
	return b.Pos.Start.Line-a.Pos.End.Line > 1
}
