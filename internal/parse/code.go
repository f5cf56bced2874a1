package parse

import (
	"strings"

	"github.com/jp-knj/jetmd/pkg/ast"
)

// startIndentedCodeBlock opens an indented code block at 4+ columns of
// indentation. Indented code cannot interrupt a paragraph.
func startIndentedCodeBlock(p *parser, s line) (line, bool) {
	peek := s
	if p.para() != nil || !peek.trimSpace(4, 4, false) || peek.isBlank() {
		return s, false
	}

	b := &indentBuilder{}
	p.addBlock(b)
	b.text = append(b.text, peek.string())
	return line{}, true
}

// An indentBuilder accumulates an indented code block.
type indentBuilder struct {
	text []string
}

func (c *indentBuilder) extend(p *parser, s line) (line, bool) {
	if !s.trimSpace(4, 4, true) {
		return s, false
	}
	c.text = append(c.text, s.string())
	return line{}, true
}

func (c *indentBuilder) build(p *parser) *ast.Node {
	for len(c.text) > 0 && trimSpaceTab(c.text[len(c.text)-1]) == "" {
		c.text = c.text[:len(c.text)-1]
	}
	start, _ := p.pos()
	n := p.nodeAtLines(ast.NodeCodeBlock, start, start+len(c.text)-1)
	n.Value = joinCodeLines(c.text)
	return n
}

// startFencedCodeBlock opens a ``` or ~~~ fence.
func startFencedCodeBlock(p *parser, s line) (line, bool) {
	t := s
	indent, fence, info, ok := trimFence(&t)
	if !ok {
		return s, false
	}
	p.addBlock(&fenceBuilder{indent: indent, fence: fence, info: info})
	return line{}, true
}

// trimFence trims up to 3 leading spaces, a fence of 3+ identical ` or ~
// characters, and an info string. An info string on a backtick fence may
// not contain backticks.
func trimFence(s *line) (indent int, fence, info string, ok bool) {
	t := *s
	indent = 0
	for indent < 3 && t.trimSpace(1, 1, false) {
		indent++
	}
	c := t.peek()
	if c != '`' && c != '~' {
		return
	}

	f := t.string()
	n := 0
	for t.trim(c) {
		n++
	}
	if n < 3 {
		return
	}

	txt := mdUnescape(t.trimString())
	if c == '`' && strings.Contains(txt, "`") {
		return
	}
	info = trimSpaceTab(txt)
	fence = f[:n]
	ok = true
	*s = line{}
	return
}

// A fenceBuilder accumulates a fenced code block.
type fenceBuilder struct {
	indent int
	fence  string
	info   string
	text   []string
}

func (c *fenceBuilder) extend(p *parser, s line) (line, bool) {
	// A closing fence matches the opening character, is at least as long,
	// and carries no info string.
	peek := s
	if _, fence, info, ok := trimFence(&peek); ok && strings.HasPrefix(fence, c.fence) && info == "" {
		return line{}, false
	}

	// Content lines lose up to the opening fence's indentation.
	if !s.trimSpace(c.indent, c.indent, false) {
		s.trimSpace(0, c.indent, false)
	}

	c.text = append(c.text, s.string())
	return line{}, true
}

func (c *fenceBuilder) build(p *parser) *ast.Node {
	start, end := p.pos()
	n := p.nodeAtLines(ast.NodeCodeBlock, start, end)
	n.Info = c.info
	n.Lang, n.Meta = splitInfo(c.info)
	n.Value = joinCodeLines(c.text)
	return n
}

// splitInfo divides an info string into its language word and trailing
// metadata.
func splitInfo(info string) (lang, meta string) {
	for i, r := range info {
		if isUnicodeSpace(r) {
			return info[:i], trimLeftSpaceTab(info[i:])
		}
	}
	return info, ""
}

// joinCodeLines assembles code block content, one trailing newline per line.
func joinCodeLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}
