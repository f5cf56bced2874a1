package html

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
)

// allowedSchemes is the URL scheme allowlist. Relative URLs always pass.
var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
	"irc":    true,
	"ircs":   true,
}

// safeURL reports whether the URL is relative or carries an allowed
// scheme. A scheme is anything matching letter (letter|digit|+|-|.)* ":"
// before the first / ? #.
func safeURL(url string) bool {
	for i := 0; i < len(url); i++ {
		c := url[i]
		switch {
		case c == ':':
			return allowedSchemes[strings.ToLower(url[:i])]
		case c == '/' || c == '?' || c == '#':
			return true
		case i == 0 && !isAlpha(c):
			return true
		case !isAlpha(c) && !isNum(c) && c != '+' && c != '-' && c != '.':
			return true
		}
	}
	return true
}

func isAlpha(c byte) bool { return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' }
func isNum(c byte) bool   { return '0' <= c && c <= '9' }

// allowedTags is the raw-HTML element allowlist, frozen for release.
// script, style, iframe, object, embed, and form are deliberately absent.
var allowedTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true,
	"blockquote": true, "br": true, "caption": true, "cite": true,
	"code": true, "col": true, "colgroup": true, "dd": true, "del": true,
	"details": true, "dfn": true, "div": true, "dl": true, "dt": true,
	"em": true, "figcaption": true, "figure": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "hr": true, "i": true,
	"img": true, "ins": true, "kbd": true, "li": true, "mark": true,
	"ol": true, "p": true, "pre": true, "q": true, "rp": true, "rt": true,
	"ruby": true, "s": true, "samp": true, "small": true, "span": true,
	"strike": true, "strong": true, "sub": true, "summary": true,
	"sup": true, "table": true, "tbody": true, "td": true, "tfoot": true,
	"th": true, "thead": true, "tr": true, "u": true, "ul": true,
	"var": true, "wbr": true,
}

// rawContentTags have non-markup content that must be dropped whole.
var rawContentTags = map[string]bool{
	"script": true, "style": true, "textarea": true, "iframe": true,
	"object": true, "embed": true,
}

// allowedAttrs is the attribute allowlist. Event handlers (on*) are
// rejected by prefix before this table is consulted.
var allowedAttrs = map[string]bool{
	"href": true, "src": true, "alt": true, "title": true, "class": true,
	"id": true, "align": true, "width": true, "height": true,
	"colspan": true, "rowspan": true, "start": true, "type": true,
	"checked": true, "disabled": true, "lang": true, "dir": true,
	"datetime": true, "open": true, "cite": true,
}

// sanitizeHTML filters raw HTML against the allowlists. Disallowed tags
// are removed (raw-content elements lose their content too); disallowed
// attributes and unsafe URLs are dropped from surviving tags. Text content
// passes through untouched.
func sanitizeHTML(raw string, pos *ast.Position, diags *diag.List) string {
	var sb strings.Builder
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c != '<' {
			j := strings.IndexByte(raw[i:], '<')
			if j < 0 {
				sb.WriteString(raw[i:])
				break
			}
			sb.WriteString(raw[i : i+j])
			i += j
			continue
		}

		tag, ok := scanTag(raw[i:])
		if !ok {
			// A stray '<' is harmless once escaped.
			sb.WriteString("&lt;")
			i++
			continue
		}

		switch {
		case tag.comment:
			// Comments, declarations, and processing instructions are
			// dropped silently.
			i += tag.len

		case rawContentTags[tag.name] && !tag.closing:
			diags.WarnAt(diag.CodeDisallowedTag, pos, "<%s> removed by sanitizer", tag.name)
			end := findClosing(raw[i:], tag.name)
			i += end

		case !allowedTags[tag.name]:
			if !tag.closing {
				diags.WarnAt(diag.CodeDisallowedTag, pos, "<%s> removed by sanitizer", tag.name)
			}
			i += tag.len

		default:
			sb.WriteString(rebuildTag(raw[i:i+tag.len], tag, pos, diags))
			i += tag.len
		}
	}
	return sb.String()
}

type scannedTag struct {
	name        string
	closing     bool
	selfClosing bool
	comment     bool
	len         int
	attrs       []scannedAttr
}

type scannedAttr struct {
	name   string
	value  string
	hasVal bool
	quote  byte
}

// scanTag scans an HTML tag, comment, declaration, or processing
// instruction at the start of s.
func scanTag(s string) (scannedTag, bool) {
	if len(s) < 2 || s[0] != '<' {
		return scannedTag{}, false
	}
	if strings.HasPrefix(s, "<!--") {
		end := strings.Index(s, "-->")
		if end < 0 {
			return scannedTag{comment: true, len: len(s)}, true
		}
		return scannedTag{comment: true, len: end + 3}, true
	}
	if s[1] == '!' || s[1] == '?' {
		end := strings.IndexByte(s, '>')
		if end < 0 {
			return scannedTag{comment: true, len: len(s)}, true
		}
		return scannedTag{comment: true, len: end + 1}, true
	}

	i := 1
	t := scannedTag{}
	if s[i] == '/' {
		t.closing = true
		i++
	}
	start := i
	for i < len(s) && (isAlpha(s[i]) || isNum(s[i]) || s[i] == '-') {
		i++
	}
	if i == start {
		return scannedTag{}, false
	}
	t.name = strings.ToLower(s[start:i])

	for i < len(s) && s[i] != '>' {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
			i++
		}
		if i < len(s) && s[i] == '/' {
			t.selfClosing = true
			i++
			continue
		}
		if i >= len(s) || s[i] == '>' {
			break
		}
		astart := i
		for i < len(s) && s[i] != '=' && s[i] != ' ' && s[i] != '\t' && s[i] != '\n' && s[i] != '>' && s[i] != '/' {
			i++
		}
		attr := scannedAttr{name: strings.ToLower(s[astart:i])}
		if i < len(s) && s[i] == '=' {
			i++
			attr.hasVal = true
			if i < len(s) && (s[i] == '"' || s[i] == '\'') {
				attr.quote = s[i]
				end := strings.IndexByte(s[i+1:], s[i])
				if end < 0 {
					return scannedTag{}, false
				}
				attr.value = s[i+1 : i+1+end]
				i += end + 2
			} else {
				vstart := i
				for i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != '\n' && s[i] != '>' {
					i++
				}
				attr.value = s[vstart:i]
			}
		}
		if attr.name != "" {
			t.attrs = append(t.attrs, attr)
		}
	}
	if i >= len(s) {
		return scannedTag{}, false
	}
	t.len = i + 1
	return t, true
}

// findClosing returns the length of s up to and including </name>, or all
// of s when the element never closes.
func findClosing(s, name string) int {
	low := strings.ToLower(s)
	marker := "</" + name
	from := 1
	for {
		j := strings.Index(low[from:], marker)
		if j < 0 {
			return len(s)
		}
		j += from
		end := strings.IndexByte(low[j:], '>')
		if end < 0 {
			return len(s)
		}
		return j + end + 1
	}
}

// rebuildTag re-emits an allowed tag with only allowed attributes.
func rebuildTag(raw string, tag scannedTag, pos *ast.Position, diags *diag.List) string {
	var sb strings.Builder
	sb.WriteByte('<')
	if tag.closing {
		sb.WriteByte('/')
	}
	sb.WriteString(tag.name)
	for _, a := range tag.attrs {
		if strings.HasPrefix(a.name, "on") || !allowedAttrs[a.name] {
			diags.WarnAt(diag.CodeDisallowedAttr, pos,
				"attribute %q removed from <%s> by sanitizer", a.name, tag.name)
			continue
		}
		if (a.name == "href" || a.name == "src" || a.name == "cite") && !safeURL(a.value) {
			diags.WarnAt(diag.CodeDisallowedScheme, pos,
				"URL scheme in %s of <%s> is not allowed; rewritten to #", a.name, tag.name)
			a.value = "#"
		}
		sb.WriteByte(' ')
		sb.WriteString(a.name)
		if a.hasVal {
			sb.WriteString(`="`)
			sb.WriteString(htmlEscaper.Replace(a.value))
			sb.WriteString(`"`)
		}
	}
	if tag.selfClosing {
		sb.WriteString(" /")
	}
	sb.WriteByte('>')
	return sb.String()
}

// normalizeKey matches the parser's label normalization so footnote
// definitions resolve by reference label.
func normalizeKey(s string) string {
	s = strings.TrimSpace(s)
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
	out := b.String()
	if hi {
		out = cases.Fold().String(out)
	}
	return out
}
