package parse

import (
	"strings"

	"github.com/jp-knj/jetmd/pkg/ast"
)

// Directives follow the common remark-directive shapes:
//
//	:::name {key=value}   container, closed by ::: on its own line
//	::name [label] {attrs}  leaf
//	:name[content]{attrs}   text (inline; see inline.go)

// startContainerDirective opens a :::name container.
func startContainerDirective(p *parser, s line) (line, bool) {
	t := s
	t.trimSpace(0, 3, false)
	if !t.trim(':') || !t.trim(':') || !t.trim(':') {
		return s, false
	}
	name, rest := directiveName(t.trimString())
	if name == "" {
		return s, false
	}
	if !p.checkDepth() {
		return s, false
	}
	b := &directiveBuilder{name: name, attrs: parseDirectiveAttrs(rest)}
	p.addBlock(b)
	return line{}, true
}

type directiveBuilder struct {
	name  string
	attrs map[string]string
}

func (b *directiveBuilder) extend(p *parser, s line) (line, bool) {
	t := s
	t.trimSpace(0, 3, false)
	if t.trim(':') && t.trim(':') && t.trim(':') {
		tt := t
		if tt.trimString() == "" {
			return line{}, false
		}
	}
	return s, true
}

func (b *directiveBuilder) build(p *parser) *ast.Node {
	start, end := p.pos()
	n := p.nodeAtLines(ast.NodeContainerDirective, start, end)
	n.Name = b.name
	n.DirAttrs = b.attrs
	for _, c := range p.blocks() {
		ast.AppendChild(n, c)
	}
	return n
}

// startLeafDirective recognizes a one-line ::name directive.
func startLeafDirective(p *parser, s line) (line, bool) {
	t := s
	t.trimSpace(0, 3, false)
	if !t.trim(':') || !t.trim(':') {
		return s, false
	}
	if t.peek() == ':' {
		return s, false // container marker, not leaf
	}
	name, rest := directiveName(t.trimString())
	if name == "" {
		return s, false
	}

	n := p.nodeAtLines(ast.NodeLeafDirective, p.lineno, p.lineno)
	n.Name = name
	label, rest := directiveLabel(rest)
	n.DirAttrs = parseDirectiveAttrs(rest)
	if label != "" {
		off := t.contentOff()
		tm := &textmap{}
		tm.add(0, off, len(label))
		p.addText(n, label, tm)
	}
	p.doneBlock(n)
	return line{}, true
}

// directiveName splits a leading name of letters, digits, dashes, and
// underscores.
func directiveName(s string) (name, rest string) {
	i := 0
	for i < len(s) && (isLetterDigit(s[i]) || s[i] == '-' || s[i] == '_') {
		i++
	}
	if i == 0 {
		return "", s
	}
	return s[:i], trimLeftSpaceTab(s[i:])
}

// directiveLabel extracts an optional [label] section.
func directiveLabel(s string) (label, rest string) {
	if !strings.HasPrefix(s, "[") {
		return "", s
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", s
	}
	return s[1:end], trimLeftSpaceTab(s[end+1:])
}

// parseDirectiveAttrs parses a {key=value key2="v" #id .class} section.
func parseDirectiveAttrs(s string) map[string]string {
	s = trimSpaceTab(s)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil
	}
	body := s[1 : len(s)-1]
	attrs := make(map[string]string)
	for _, field := range strings.Fields(body) {
		switch {
		case strings.HasPrefix(field, "#"):
			attrs["id"] = field[1:]
		case strings.HasPrefix(field, "."):
			if prev, ok := attrs["class"]; ok {
				attrs["class"] = prev + " " + field[1:]
			} else {
				attrs["class"] = field[1:]
			}
		case strings.Contains(field, "="):
			kv := strings.SplitN(field, "=", 2)
			attrs[kv[0]] = strings.Trim(kv[1], `"'`)
		default:
			attrs[field] = ""
		}
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
