package parse

import (
	"strings"

	"github.com/jp-knj/jetmd/pkg/ast"
)

// htmlTags lists the tag names that open an HTML block of type 6.
var htmlTags = []string{
	"address", "article", "aside", "base", "basefont", "blockquote", "body",
	"caption", "center", "col", "colgroup", "dd", "details", "dialog", "dir",
	"div", "dl", "dt", "fieldset", "figcaption", "figure", "footer", "form",
	"frame", "frameset", "h1", "h2", "h3", "h4", "h5", "h6", "head", "header",
	"hr", "html", "iframe", "legend", "li", "link", "main", "menu", "menuitem",
	"nav", "noframes", "ol", "optgroup", "option", "p", "param", "section",
	"source", "summary", "table", "tbody", "td", "tfoot", "th", "thead",
	"title", "tr", "track", "ul",
}

const forceLower = 0x20 // ASCII letter | forceLower == lower-case letter

// lowerEq reports whether strings.ToLower(s) == lower,
// assuming lower is entirely ASCII lower-case.
func lowerEq(s, lower string) bool {
	if len(s) != len(lower) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i]|forceLower != lower[i] {
			return false
		}
	}
	return true
}

// An htmlBuilder accumulates a raw HTML block. If endBlank is set the block
// ends before the first blank line; otherwise endFunc detects the closing
// line, which is included.
type htmlBuilder struct {
	rawKind  int
	endBlank bool
	endFunc  func(string) bool
	text     []string
}

func (c *htmlBuilder) extend(p *parser, s line) (line, bool) {
	if c.endBlank && s.isBlank() {
		return s, false
	}
	t := s.string()
	c.text = append(c.text, t)
	if c.endFunc != nil && c.endFunc(t) {
		return line{}, false
	}
	return line{}, true
}

func (c *htmlBuilder) build(p *parser) *ast.Node {
	start, end := p.pos()
	n := p.nodeAtLines(ast.NodeHTMLBlock, start, end)
	n.RawKind = c.rawKind
	n.Value = joinCodeLines(c.text)
	return n
}

// startHTMLBlock classifies a '<' line against CommonMark's seven HTML
// block types.
func startHTMLBlock(p *parser, s line) (line, bool) {
	tt := s
	tt.trimSpace(0, 3, false)
	if tt.peek() != '<' {
		return s, false
	}
	t := tt.string()

	if startHTMLBlock1(p, s, t) ||
		startHTMLBlock2345(p, s, t) ||
		startHTMLBlock6(p, s, t) ||
		startHTMLBlock7(p, s, t) {
		return line{}, true
	}
	return s, false
}

// Type 1: <pre, <script, <style, or <textarea through a closing tag.
func startHTMLBlock1(p *parser, s line, t string) bool {
	if len(t) < 2 {
		return false
	}
	if c := t[1] | forceLower; c != 'p' && c != 's' && c != 't' {
		return false
	}
	i := 2
	for i < len(t) && t[i] != ' ' && t[i] != '\t' && t[i] != '>' {
		i++
	}
	if !isBlock1Tag(t[1:i]) {
		return false
	}
	b := &htmlBuilder{rawKind: 1, endFunc: endBlock1}
	p.addBlock(b)
	b.text = append(b.text, s.string())
	if endBlock1(t) {
		p.closeBlock()
	}
	return true
}

// endBlock1 reports whether the string contains </pre>, </script>,
// </style>, or </textarea>, ASCII case-insensitively.
func endBlock1(s string) bool {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '<' && i+1 < len(s) && s[i+1] == '/' {
			start = i + 2
		}
		if s[i] == '>' && start >= 0 {
			if isBlock1Tag(s[start:i]) {
				return true
			}
			start = -1
		}
	}
	return false
}

func isBlock1Tag(tag string) bool {
	return lowerEq(tag, "pre") || lowerEq(tag, "script") ||
		lowerEq(tag, "style") || lowerEq(tag, "textarea")
}

// Types 2–5: comment, processing instruction, CDATA, and declaration
// blocks, each ending at a fixed marker.
func startHTMLBlock2345(p *parser, s line, t string) bool {
	var kind int
	var end string
	switch {
	default:
		return false
	case strings.HasPrefix(t, "<!--"):
		kind, end = 2, "-->"
	case strings.HasPrefix(t, "<?"):
		kind, end = 3, "?>"
	case strings.HasPrefix(t, "<![CDATA["):
		kind, end = 5, "]]>"
	case strings.HasPrefix(t, "<!") && len(t) >= 3 && 'A' <= t[2] && t[2] <= 'Z':
		kind, end = 4, ">"
	}

	b := &htmlBuilder{rawKind: kind, endFunc: func(s string) bool { return strings.Contains(s, end) }}
	p.addBlock(b)
	b.text = append(b.text, s.string())
	if b.endFunc(t) {
		p.closeBlock()
	}
	return true
}

// Type 6: a recognized tag name, ending at a blank line.
func startHTMLBlock6(p *parser, s line, t string) bool {
	start := 1
	if len(t) > 1 && t[1] == '/' {
		start = 2
	}

	end := start
	for end < len(t) && end < 16 && isLetterDigit(t[end]) {
		end++
	}
	if end < len(t) {
		switch t[end] {
		default:
			return false
		case ' ', '\t', '>':
		case '/':
			if end+1 >= len(t) || t[end+1] != '>' {
				return false
			}
		}
	}

	tag := t[start:end]
	if tag == "" {
		return false
	}
	c := tag[0] | forceLower
	for _, name := range htmlTags {
		if name[0] == c && len(name) == len(tag) && lowerEq(tag, name) {
			b := &htmlBuilder{rawKind: 6, endBlank: true}
			p.addBlock(b)
			b.text = append(b.text, s.string())
			return true
		}
	}
	return false
}

// Type 7: a complete open or closing tag on a line by itself, ending at a
// blank line. Type 7 cannot interrupt a paragraph.
func startHTMLBlock7(p *parser, s line, t string) bool {
	if p.para() != nil {
		return false
	}

	if _, end, ok := parseHTMLOpenTag(p, t, 0); ok && skipSpace(t, end) == len(t) {
		b := &htmlBuilder{rawKind: 7, endBlank: true}
		p.addBlock(b)
		b.text = append(b.text, s.string())
		return true
	}
	if _, end, ok := parseHTMLClosingTag(p, t, 0); ok && skipSpace(t, end) == len(t) {
		b := &htmlBuilder{rawKind: 7, endBlank: true}
		p.addBlock(b)
		b.text = append(b.text, s.string())
		return true
	}
	return false
}
