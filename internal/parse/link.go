package parse

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
)

// parseLinkOpen handles '['. With GFM footnotes enabled it first tries a
// footnote reference; otherwise the bracket waits on the stack.
func parseLinkOpen(p *parser, s string, start int) (x inline, end int, ok bool) {
	if p.cfg.GFM {
		if x, end, ok := parseFootnoteRef(p, s, start); ok {
			return x, end, ok
		}
	}
	return &openMark{text: "[", tOff: start}, start + 1, true
}

// parseImageOpen handles '!['.
func parseImageOpen(p *parser, s string, start int) (x inline, end int, ok bool) {
	if start+1 < len(s) && s[start+1] == '[' {
		return &openMark{text: "![", tOff: start}, start + 2, true
	}
	return
}

// parseFootnoteRef resolves [^label] against the footnote table.
// An unknown label stays literal text with a warning.
func parseFootnoteRef(p *parser, s string, start int) (x inline, end int, ok bool) {
	if start+1 >= len(s) || s[start+1] != '^' {
		return
	}
	i := strings.Index(s[start:], "]")
	if i < 0 {
		return
	}
	end = start + i + 1
	label := s[start+2 : end-1]
	if _, found := p.footnotes[normalizeLabel(label)]; !found {
		p.diags.WarnAt(diag.CodeUnresolvedFootnote, p.textPos(start, end),
			"footnote %q has no definition", label)
		return
	}
	n := ast.NewNode(ast.NodeFootnoteReference)
	n.Label = label
	n.Pos = p.textPos(start, end)
	return n, end, true
}

// parseLinkClose parses the ] or ](target) or ][label] that may complete
// the open bracket. The returned node has no children yet; the caller
// attaches the inner inlines.
func parseLinkClose(p *parser, s string, start int, open *openMark) (*ast.Node, int, bool) {
	i := start
	if i+1 < len(s) {
		switch s[i+1] {
		case '(':
			// Inline form: [Text](Dest "Title").
			j := skipSpace(s, i+2)
			var dest, title string
			if j < len(s) && s[j] != ')' {
				var ok bool
				dest, j, ok = parseLinkDest(s, j)
				if !ok {
					break
				}
				j = skipSpace(s, j)
				if j < len(s) && s[j] != ')' {
					title, _, j, ok = parseLinkTitle(s, j)
					if !ok {
						break
					}
					j = skipSpace(s, j)
				}
			}
			if j < len(s) && s[j] == ')' {
				n := ast.NewNode(ast.NodeLink)
				n.URL = dest
				n.Title = title
				n.Ref = ast.RefInline
				return n, j + 1, true
			}

		case '[':
			// Full reference: [Text][Label].
			label, j, ok := parseLinkLabel(s, i+1)
			if !ok {
				break
			}
			if def, found := p.defs[normalizeLabel(label)]; found {
				n := ast.NewNode(ast.NodeLink)
				n.URL = def.URL
				n.Title = def.Title
				n.Ref = ast.RefFull
				return n, j, true
			}
			return nil, 0, false
		}
	}

	// Collapsed or shortcut reference: [Text][] or [Text].
	end := i + 1
	ref := ast.RefShortcut
	if strings.HasPrefix(s[end:], "[]") {
		end += 2
		ref = ast.RefCollapsed
	}

	label := s[open.tOff+len(open.text) : i]
	if def, found := p.defs[normalizeLabel(label)]; found {
		n := ast.NewNode(ast.NodeLink)
		n.URL = def.URL
		n.Title = def.Title
		n.Ref = ref
		return n, end, true
	}
	return nil, 0, false
}

// parseLinkRefDef parses a link reference definition at the start of s,
// recording it in the document table. It returns the definition's length
// and whether one was found. The first definition of a label wins; later
// duplicates warn.
func parseLinkRefDef(p *parser, s string, tm *textmap) (int, bool) {
	i := skipSpace(s, 0)
	label, i, ok := parseLinkLabel(s, i)
	if !ok || i >= len(s) || s[i] != ':' {
		return 0, false
	}
	i = skipSpace(s, i+1)
	dest, i, ok := parseLinkDest(s, i)
	if !ok {
		return 0, false
	}
	moved := false
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		moved = true
		i++
	}

	// Take a title when present and it does not break the parse.
	j := i
	if j >= len(s) || s[j] == '\n' {
		moved = true
		if j < len(s) {
			j++
		}
	}
	var title string
	if moved {
		for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
			j++
		}
		if t, _, jj, ok := parseLinkTitle(s, j); ok {
			for jj < len(s) && (s[jj] == ' ' || s[jj] == '\t') {
				jj++
			}
			if jj >= len(s) || s[jj] == '\n' {
				i = jj
				title = t
			}
		}
	}

	// The definition must end its line.
	if i < len(s) && s[i] != '\n' {
		return 0, false
	}
	if i < len(s) {
		i++
	}

	key := normalizeLabel(label)
	pos := &ast.Position{Start: p.pointAt(tm.srcAt(0)), End: p.pointAt(tm.srcAt(i))}
	if _, exists := p.defs[key]; exists {
		p.diags.WarnAt(diag.CodeDuplicateDefinition, pos,
			"duplicate link reference definition %q; first wins", label)
	} else {
		p.defs[key] = &ast.Definition{Label: label, URL: dest, Title: title, Pos: pos}
	}
	return i, true
}

// parseLinkTitle parses a "…", '…', or (…) link title at s[i:].
func parseLinkTitle(s string, i int) (title string, char byte, end int, found bool) {
	if i < len(s) && (s[i] == '"' || s[i] == '\'' || s[i] == '(') {
		want := s[i]
		if want == '(' {
			want = ')'
		}
		j := i + 1
		for ; j < len(s); j++ {
			if s[j] == want {
				return mdUnescape(s[i+1 : j]), want, j + 1, true
			}
			if s[j] == '(' && want == ')' {
				break
			}
			if s[j] == '\\' && j+1 < len(s) {
				j++
			}
		}
	}
	return "", 0, 0, false
}

// parseLinkLabel parses a [label] at s[i:]. Labels hold no unescaped
// brackets and at most 999 characters.
func parseLinkLabel(s string, i int) (string, int, bool) {
	if i >= len(s) || s[i] != '[' {
		return "", 0, false
	}
	j := i + 1
	for ; j < len(s); j++ {
		if s[j] == ']' {
			if j-(i+1) > 999 {
				break
			}
			if label := trimSpaceTabNewline(s[i+1 : j]); label != "" {
				return label, j + 1, true
			}
			break
		}
		if s[j] == '[' {
			break
		}
		if s[j] == '\\' && j+1 < len(s) {
			j++
		}
	}
	return "", 0, false
}

// normalizeLabel case-folds a label and collapses interior whitespace,
// producing the key used in the definition tables.
func normalizeLabel(s string) string {
	if strings.Contains(s, "[") || strings.Contains(s, "]") {
		// Labels cannot hold brackets; skip the work (and the garbage)
		// for pathological inputs like [[[[[a]]]]].
		return ""
	}

	s = trimSpaceTabNewline(s)
	var b strings.Builder
	space := false
	hi := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case ' ', '\t', '\n':
			space = true
			continue
		default:
			if space {
				b.WriteByte(' ')
				space = false
			}
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			if c >= 0x80 {
				hi = true
			}
			b.WriteByte(c)
		}
	}
	s = b.String()
	if hi {
		s = cases.Fold().String(s)
	}
	return s
}

// parseLinkDest parses a link destination: either <…> or a run of
// non-space characters with balanced parentheses.
func parseLinkDest(s string, i int) (string, int, bool) {
	if i >= len(s) {
		return "", 0, false
	}

	if s[i] == '<' {
		for j := i + 1; ; j++ {
			if j >= len(s) || s[j] == '\n' || s[j] == '<' {
				return "", 0, false
			}
			if s[j] == '>' {
				return mdUnescape(s[i+1 : j]), j + 1, true
			}
			if s[j] == '\\' {
				j++
			}
		}
	}

	depth := 0
	j := i
Loop:
	for ; j < len(s); j++ {
		switch s[j] {
		case '(':
			depth++
			if depth > 32 {
				return "", 0, false
			}
		case ')':
			if depth == 0 {
				break Loop
			}
			depth--
		case '\\':
			if j+1 < len(s) {
				if s[j+1] == ' ' || s[j+1] == '\t' {
					return "", 0, false
				}
				j++
			}
		case ' ', '\t', '\n':
			break Loop
		}
	}
	if j == i {
		return "", 0, false
	}
	return mdUnescape(s[i:j]), j, true
}
