package parse

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
)

// The inline parser walks a block's raw text looking for special characters
// and pushes results onto a parse stack. Potential link and image openings
// wait on the stack as openMark entries; emphasis delimiter runs wait as
// emphMark entries. When a closing bracket arrives it is matched to the
// most recent opening, and once bracket structure is settled the delimiter
// stack algorithm resolves emphasis innermost-first. Brackets resolve
// before emphasis because links take priority over emphasis.

// inline is a parse stack entry: a finished *ast.Node, or a pending
// *openMark / *emphMark.
type inline any

// An openMark is an unmatched "[" or "![".
type openMark struct {
	text string
	tOff int // offset of the bracket in the block text
}

// An emphMark is an unmatched emphasis delimiter run (* _ ~ …).
type emphMark struct {
	text     string
	canOpen  bool
	canClose bool
	i        int // position in output list
	n        int // length of the original run
	tOff     int
}

// inlineParser parses s[start:] into an entry, returning the entry and the
// index where it ends. ok is false when the construct is absent.
type inlineParser func(p *parser, s string, start int) (x inline, end int, ok bool)

// emit flushes p.s[p.emitted:i] as a text node.
func (p *parser) emit(i int) {
	if p.emitted < i {
		n := ast.NewText(p.s[p.emitted:i])
		n.Pos = p.textPos(p.emitted, i)
		p.list = append(p.list, n)
		p.emitted = i
	}
}

func (p *parser) skip(i int) {
	p.emitted = i
}

// textPos maps a block-text range to a source position.
func (p *parser) textPos(start, end int) *ast.Position {
	return &ast.Position{
		Start: p.pointAt(p.tm.srcAt(start)),
		End:   p.pointAt(p.tm.srcAt(end)),
	}
}

// inline parses one block's raw text into inline nodes.
func (p *parser) inline(s string, tm *textmap) []*ast.Node {
	s = trimSpaceTab(s)
	p.s = s
	p.tm = tm
	p.list = nil
	p.emitted = 0
	p.noCommentEnd = false
	p.noCDATAEnd = false
	p.noDeclEnd = false
	p.noProcInstEnd = false

	var opens []int          // indexes of open ![ and [ marks in p.list
	var ignoreLinkBefore int // no links around links
	backticksReset := false

	for off := 0; off < len(s); {
		var parser inlineParser
		switch s[off] {
		case '\\':
			parser = parseEscape
		case '`':
			if !backticksReset {
				p.backticks.reset()
				backticksReset = true
			}
			parser = p.backticks.parseCodeSpan
		case '<':
			parser = parseAutoLinkOrHTML
		case '[':
			parser = parseLinkOpen
		case '!':
			parser = parseImageOpen
		case '_', '*':
			parser = parseEmph
		case '~':
			if p.cfg.GFM {
				parser = parseEmph
			}
		case '{':
			if p.cfg.MDX {
				parser = parseMdxTextExpression
			}
		case '$':
			if p.cfg.Math {
				parser = parseInlineMath
			}
		case ':':
			if p.cfg.Directives {
				parser = parseTextDirective
			}
		case '\n':
			parser = parseBreak
		case '&':
			parser = parseHTMLEntity
		}

		if parser != nil {
			if x, end, ok := parser(p, s, off); ok {
				p.emit(off)
				if _, ok := x.(*openMark); ok {
					opens = append(opens, len(p.list))
				}
				p.list = append(p.list, x)
				p.skip(end)
				off = end
				continue
			}
		}

		if s[off] == ']' && len(opens) > 0 {
			oi := opens[len(opens)-1]
			opens = opens[:len(opens)-1]

			open := p.list[oi].(*openMark)
			if open.tOff >= ignoreLinkBefore || open.text[0] == '!' {
				if x, end, ok := parseLinkClose(p, s, off, open); ok {
					p.emit(off)
					inner := p.emph(nil, p.list[oi+1:])
					for _, c := range inner {
						ast.AppendChild(x, c.(*ast.Node))
					}
					if open.text[0] == '!' {
						x.Kind = ast.NodeImage
						x.Alt = flattenText(x)
					}
					x.Pos = p.textPos(open.tOff, end)
					p.list[oi] = x
					p.list = p.list[:oi+1]
					p.skip(end)
					off = end
					if open.text[0] == '[' {
						ignoreLinkBefore = open.tOff
					}
					continue
				}
			}
		}

		off++
	}

	p.emit(len(s))
	p.list = p.emph(p.list[:0], p.list)
	p.list = p.mergePlain(p.list)
	if p.cfg.GFM {
		p.list = autoLinkText(p, p.list)
	}

	out := make([]*ast.Node, 0, len(p.list))
	for _, x := range p.list {
		out = append(out, x.(*ast.Node))
	}
	return out
}

// emph applies the delimiter stack algorithm to a run of entries whose
// links and images are already resolved. dst and src may share a backing
// array when &dst[0] == &src[0].
func (p *parser) emph(dst, src []inline) []inline {
	const (
		stackStrike = 0 // and 1, by run length
		stackStar   = 2 // 2..7: n%3 × canClose
		stackUnder  = 8 // 8..13
		stackTotal  = 14
	)
	var stack [stackTotal][]*emphMark

Src:
	for i := 0; i < len(src); i++ {
		inl := src[i]
		m, ok := inl.(*emphMark)
		if !ok {
			if open, ok := inl.(*openMark); ok {
				// An unused bracket opening becomes plain text.
				n := ast.NewText(open.text)
				n.Pos = p.textPos(open.tOff, open.tOff+len(open.text))
				inl = n
			}
			dst = append(dst, inl)
			continue
		}

		if m.canClose {
		MText:
			var start *emphMark
			switch m.text[0] {
			case '~':
				si := stackStrike + len(m.text) - 1
				if si > stackStrike+1 {
					si = stackStrike + 1
				}
				stk := stack[si]
				if len(stk) == 0 {
					goto EmitPlain
				}
				start = stk[len(stk)-1]

			case '*', '_':
				// Rule 9: if a delimiter can both open and close, the
				// combined run lengths must not be a multiple of three
				// unless both are.
				allow := func(m, start *emphMark) bool {
					return (!m.canOpen && !start.canClose) ||
						(m.n+start.n)%3 != 0 ||
						m.n%3 == 0
				}
				si := stackStar
				if m.text[0] == '_' {
					si = stackUnder
				}
				for i := si; i < si+6; i++ {
					if len(stack[i]) == 0 {
						continue
					}
					maybe := stack[i][len(stack[i])-1]
					if allow(m, maybe) && (start == nil || maybe.i > start.i) {
						start = maybe
					}
				}
				if start == nil {
					goto EmitPlain
				}
			}

			{
				// Strong when both ends carry two or more delimiters.
				d := 1
				if len(m.text) >= 2 && len(start.text) >= 2 {
					d = 2
				}
				kind := ast.NodeEmphasis
				if m.text[0] == '~' {
					kind = ast.NodeDelete
				} else if d == 2 {
					kind = ast.NodeStrong
				}
				x := ast.NewNode(kind)
				inner := p.mergePlain(dst[start.i+1:])
				for _, c := range inner {
					ast.AppendChild(x, c.(*ast.Node))
				}
				x.Pos = p.textPos(start.tOff, m.tOff+d)

				start.text = start.text[:len(start.text)-d]
				if start.text == "" {
					dst = dst[:start.i]
				} else {
					dst = dst[:start.i+1]
				}

				// Everything popped from dst leaves the stacks too.
				for i := range stack {
					stk := stack[i]
					for len(stk) > 0 && stk[len(stk)-1].i >= len(dst) {
						stk = stk[:len(stk)-1]
					}
					stack[i] = stk
				}

				dst = append(dst, x)

				m.text = m.text[d:]
				m.tOff += d
				if m.text == "" {
					continue Src
				}
				goto MText
			}
		}

	EmitPlain:
		if m.canOpen {
			m.i = len(dst)
			dst = append(dst, m)
			si := -1
			switch m.text[0] {
			case '~':
				si = stackStrike + len(m.text) - 1
				if si > stackStrike+1 {
					si = stackStrike + 1
				}
			case '*', '_':
				si = stackStar
				if m.text[0] == '_' {
					si = stackUnder
				}
				if m.canClose {
					si += 3
				}
				si += m.n % 3
			}
			if si >= 0 {
				stack[si] = append(stack[si], m)
			}
		} else {
			n := ast.NewText(m.text)
			n.Pos = p.textPos(m.tOff, m.tOff+len(m.text))
			dst = append(dst, n)
		}
	}

	return p.mergePlain(dst)
}

// mergePlain converts leftover marks to text nodes and merges adjacent
// text nodes.
func (p *parser) mergePlain(list []inline) []inline {
	out := list[:0]
	var run []*ast.Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		if len(run) == 1 {
			out = append(out, run[0])
		} else {
			var sb strings.Builder
			for _, t := range run {
				sb.WriteString(t.Value)
			}
			merged := ast.NewText(sb.String())
			if run[0].Pos != nil && run[len(run)-1].Pos != nil {
				merged.Pos = &ast.Position{Start: run[0].Pos.Start, End: run[len(run)-1].Pos.End}
			}
			out = append(out, merged)
		}
		run = run[:0]
	}
	for _, x := range list {
		switch v := x.(type) {
		case *emphMark:
			t := ast.NewText(v.text)
			t.Pos = p.textPos(v.tOff, v.tOff+len(v.text))
			run = append(run, t)
			continue
		case *openMark:
			t := ast.NewText(v.text)
			t.Pos = p.textPos(v.tOff, v.tOff+len(v.text))
			run = append(run, t)
			continue
		case *ast.Node:
			if v.Kind == ast.NodeText && v.Parent == nil {
				run = append(run, v)
				continue
			}
		}
		flush()
		out = append(out, x)
	}
	flush()
	return out
}

// parseEscape handles backslash escapes and backslash hard breaks.
func parseEscape(p *parser, s string, start int) (x inline, end int, ok bool) {
	if start+1 < len(s) {
		c := s[start+1]
		end = start + 2
		if isPunct(c) {
			n := ast.NewText(s[start+1 : end])
			n.Pos = p.textPos(start, end)
			return n, end, true
		}
		if c == '\n' {
			n := ast.NewNode(ast.NodeHardBreak)
			n.Pos = p.textPos(start, end)
			return n, end, true
		}
	}
	return nil, 0, false
}

// parseBreak distinguishes hard breaks (two trailing spaces) from soft
// breaks at a newline.
func parseBreak(p *parser, s string, start int) (x inline, end int, ok bool) {
	i := start
	for i > 0 && (s[i-1] == ' ' || s[i-1] == '\t') {
		i--
	}
	if i < start {
		p.emit(i)
		p.skip(start)
	}

	end = start + 1
	var n *ast.Node
	if start >= 2 && s[start-1] == ' ' && s[start-2] == ' ' {
		n = ast.NewNode(ast.NodeHardBreak)
	} else {
		n = ast.NewNode(ast.NodeSoftBreak)
	}
	n.Pos = p.textPos(start, end)
	return n, end, true
}

// maxBackticks bounds inline code span fences, which keeps the memoized
// backtick scan linear on adversarial input.
const maxBackticks = 80

// A backtickParser memoizes, per block text, where runs of each backtick
// length were last seen so repeated failed scans cannot go quadratic.
type backtickParser struct {
	last    [maxBackticks]int
	scanned bool
}

func (b *backtickParser) reset() {
	*b = backtickParser{}
}

// parseCodeSpan matches an opening backtick run to the next run of the
// same length. Without a match the backticks are literal text.
func (b *backtickParser) parseCodeSpan(p *parser, s string, start int) (x inline, end int, ok bool) {
	n := 1
	for start+n < len(s) && s[start+n] == '`' {
		n++
	}

	if n > len(b.last) || b.scanned && b.last[n-1] < start+n {
		goto NoMatch
	}

	for end = start + n; end < len(s); {
		if s[end] != '`' {
			end++
			continue
		}
		estart := end
		for end < len(s) && s[end] == '`' {
			end++
		}
		m := end - estart
		if !b.scanned && m < len(b.last) {
			b.last[m-1] = estart
		}
		if m == n {
			// Line endings become spaces; one leading and trailing
			// space is trimmed when both sides have content.
			text := strings.ReplaceAll(s[start+n:estart], "\n", " ")
			if len(text) >= 2 && text[0] == ' ' && text[len(text)-1] == ' ' && strings.Trim(text, " ") != "" {
				text = text[1 : len(text)-1]
			}
			node := ast.NewNode(ast.NodeInlineCode)
			node.Value = text
			node.Pos = p.textPos(start, end)
			return node, end, true
		}
	}
	b.scanned = true

NoMatch:
	// No closer: all these backticks are literal.
	end = start + n
	node := ast.NewText(s[start:end])
	node.Pos = p.textPos(start, end)
	return node, end, true
}

// parseEmph records an emphasis delimiter run with its flanking
// classification.
func parseEmph(p *parser, s string, start int) (x inline, end int, ok bool) {
	c := s[start]
	end = start + 1
	for end < len(s) && s[end] == c {
		end++
	}

	if c == '~' && end-start > 2 {
		// Runs of one or two tildes delimit strikethrough; longer runs
		// are literal.
		n := ast.NewText(s[start:end])
		n.Pos = p.textPos(start, end)
		return n, end, true
	}

	before, after := ' ', ' '
	if start > 0 {
		before, _ = utf8.DecodeLastRuneInString(s[:start])
	}
	if end < len(s) {
		after, _ = utf8.DecodeRuneInString(s[end:])
	}

	leftFlank := !isUnicodeSpace(after) &&
		(!isUnicodePunct(after) || isUnicodeSpace(before) || isUnicodePunct(before))
	rightFlank := !isUnicodeSpace(before) &&
		(!isUnicodePunct(before) || isUnicodeSpace(after) || isUnicodePunct(after))

	var canOpen, canClose bool
	switch c {
	case '*', '~':
		canOpen = leftFlank
		canClose = rightFlank
	case '_':
		canOpen = leftFlank && (!rightFlank || isUnicodePunct(before))
		canClose = rightFlank && (!leftFlank || isUnicodePunct(after))
	}

	return &emphMark{
		text:     s[start:end],
		canOpen:  canOpen,
		canClose: canClose,
		n:        end - start,
		tOff:     start,
	}, end, true
}

// parseHTMLEntity resolves &name;, &#ddd;, and &#xhhh; references.
func parseHTMLEntity(p *parser, s string, start int) (x inline, end int, ok bool) {
	i := start
	if i+1 < len(s) && s[i+1] == '#' {
		i += 2
		var r int
		if i < len(s) && (s[i] == 'x' || s[i] == 'X') {
			i++
			j := i
			for j < len(s) && isHexDigit(s[j]) {
				j++
			}
			if j-i < 1 || j-i > 6 || j >= len(s) || s[j] != ';' {
				return
			}
			r64, _ := strconv.ParseInt(s[i:j], 16, 0)
			r = int(r64)
			end = j + 1
		} else {
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			if j-i < 1 || j-i > 7 || j >= len(s) || s[j] != ';' {
				return
			}
			r, _ = strconv.Atoi(s[i:j])
			end = j + 1
		}
		if r > unicode.MaxRune || r == 0 {
			r = unicode.ReplacementChar
		}
		n := ast.NewText(string(rune(r)))
		n.Pos = p.textPos(start, end)
		return n, end, true
	}

	for j := i + 1; j < len(s) && j-i < 64; j++ {
		if s[j] == '&' {
			break
		}
		if s[j] == ';' {
			if r, ok := htmlEntity[s[i:j+1]]; ok {
				n := ast.NewText(r)
				n.Pos = p.textPos(start, j+1)
				return n, j + 1, true
			}
			break
		}
	}
	return
}

// parseMdxTextExpression scans a brace-balanced MDX expression span.
// An unbalanced expression is reported and left as literal text.
func parseMdxTextExpression(p *parser, s string, start int) (x inline, end int, ok bool) {
	if start > 0 && s[start-1] == '\\' {
		return
	}
	raw, end, err := p.cfg.js().ParseExpression(s, start)
	if err != nil {
		p.diags.WarnAt(diag.CodeUnbalancedExpression, p.textPos(start, len(s)),
			"cannot scan expression: %v", err)
		n := ast.NewText(s[start:])
		n.Pos = p.textPos(start, len(s))
		return n, len(s), true
	}
	n := ast.NewNode(ast.NodeMdxTextExpression)
	n.Value = raw
	n.Pos = p.textPos(start, end)
	return n, end, true
}

// parseInlineMath scans $…$ spans. The opening $ must not be followed by
// whitespace and the closing $ must not be preceded by it.
func parseInlineMath(p *parser, s string, start int) (x inline, end int, ok bool) {
	i := start + 1
	if i >= len(s) || s[i] == ' ' || s[i] == '\t' {
		return
	}
	for ; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '$' {
			if s[i-1] == ' ' || s[i-1] == '\t' {
				return
			}
			n := ast.NewNode(ast.NodeInlineMath)
			n.Value = s[start+1 : i]
			n.Pos = p.textPos(start, i+1)
			return n, i + 1, true
		}
	}
	p.diags.WarnAt(diag.CodeUnclosedMath, p.textPos(start, len(s)), "unclosed math span")
	return
}

// parseTextDirective scans :name[content]{attrs}.
func parseTextDirective(p *parser, s string, start int) (x inline, end int, ok bool) {
	if start+1 >= len(s) || !isLetter(s[start+1]) {
		return
	}
	if start > 0 && s[start-1] == ':' {
		return
	}
	i := start + 1
	for i < len(s) && (isLetterDigit(s[i]) || s[i] == '-' || s[i] == '_') {
		i++
	}
	n := ast.NewNode(ast.NodeTextDirective)
	n.Name = s[start+1 : i]

	var content string
	if i < len(s) && s[i] == '[' {
		j := strings.IndexByte(s[i:], ']')
		if j < 0 {
			return
		}
		content = s[i+1 : i+j]
		i += j + 1
	}
	if i < len(s) && s[i] == '{' {
		j := strings.IndexByte(s[i:], '}')
		if j < 0 {
			return
		}
		n.DirAttrs = parseDirectiveAttrs(s[i : i+j+1])
		i += j + 1
	}
	if content != "" {
		t := ast.NewText(content)
		ast.AppendChild(n, t)
	}
	n.Pos = p.textPos(start, i)
	return n, i, true
}
