// Package html renders a jetmd syntax tree to HTML, streaming output to a
// writer. Sanitization is on by default: raw HTML is filtered against a
// fixed allowlist and URL schemes outside the allowlist are rewritten,
// each removed tag or attribute and each rewritten URL producing a
// diagnostic. HTML comments and declarations are dropped without one.
package html

import (
	"io"
	"strconv"
	"strings"

	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
)

// Highlighter optionally converts a code block into pre-escaped HTML.
// Returning ok=false falls back to plain escaping.
type Highlighter func(code, lang string) (html string, ok bool)

// Options control rendering.
type Options struct {
	// Unsafe passes raw HTML through verbatim. It corresponds to
	// sanitize=false plus allowDangerousHtml=true; any other combination
	// sanitizes.
	Unsafe bool

	// BaseHost marks http(s) links to other hosts with
	// rel="nofollow noopener noreferrer".
	BaseHost string

	// Slugger selects heading id generation: "github", "simple", or
	// "none" (default).
	Slugger string

	// Highlighter substitutes highlighted HTML for code block content.
	Highlighter Highlighter

	// AlignClass renders table alignment as class="text-left" instead of
	// an inline style.
	AlignClass bool
}

// Render streams the HTML for the tree rooted at root into w.
// A writer error aborts the render and is returned; accumulated
// diagnostics are returned either way.
func Render(w io.Writer, root *ast.Node, opts Options) ([]diag.Diagnostic, error) {
	r := &renderer{w: w, opts: opts, diags: &diag.List{}}
	if opts.Slugger != "" && opts.Slugger != "none" {
		r.slugs = newSlugger(opts.Slugger)
	}
	err := r.node(root)
	if err == nil {
		err = r.flushFootnotes()
	}
	return r.diags.Items(), err
}

// RenderString renders into an in-memory buffer.
func RenderString(root *ast.Node, opts Options) (string, []diag.Diagnostic, error) {
	var sb strings.Builder
	diags, err := Render(&sb, root, opts)
	return sb.String(), diags, err
}

type renderer struct {
	w     io.Writer
	opts  Options
	diags *diag.List
	slugs *slugger

	footnotes []*footnoteUse
	noteIndex map[string]*footnoteUse
	root      *ast.Node
}

type footnoteUse struct {
	num  int
	def  *ast.Node
	refs int
}

func (r *renderer) write(ss ...string) error {
	for _, s := range ss {
		if _, err := io.WriteString(r.w, s); err != nil {
			return err
		}
	}
	return nil
}

// text writes s HTML-escaped.
func (r *renderer) text(s string) error {
	return r.write(htmlEscaper.Replace(s))
}

var htmlEscaper = strings.NewReplacer(
	`"`, "&quot;",
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// htmlLinkEscaper prepares a URL for embedding in an attribute.
var htmlLinkEscaper = strings.NewReplacer(
	`"`, "%22",
	"&", "&amp;",
	"<", "%3C",
	">", "%3E",
	" ", "%20",
	"\\", "%5C",
	"`", "%60",
	"[", "%5B",
	"]", "%5D",
	"^", "%5E",
	"{", "%7B",
	"}", "%7D",
)

func (r *renderer) node(n *ast.Node) error {
	switch n.Kind {
	case ast.NodeRoot:
		r.root = n
		return r.children(n)

	case ast.NodeFrontmatter:
		return nil

	case ast.NodeParagraph:
		if n.FirstChild == nil {
			return nil
		}
		if inTightItem(n) {
			if err := r.children(n); err != nil {
				return err
			}
			return nil
		}
		if err := r.write("<p>"); err != nil {
			return err
		}
		if err := r.children(n); err != nil {
			return err
		}
		return r.write("</p>\n")

	case ast.NodeHeading:
		return r.heading(n)

	case ast.NodeBlockQuote:
		if err := r.write("<blockquote>\n"); err != nil {
			return err
		}
		if err := r.children(n); err != nil {
			return err
		}
		return r.write("</blockquote>\n")

	case ast.NodeList:
		return r.list(n)

	case ast.NodeListItem:
		return r.listItem(n)

	case ast.NodeCodeBlock:
		return r.codeBlock(n)

	case ast.NodeHTMLBlock:
		if r.opts.Unsafe {
			return r.write(n.Value)
		}
		out := sanitizeHTML(n.Value, n.Pos, r.diags)
		if strings.TrimSpace(out) == "" {
			return nil
		}
		return r.write(out)

	case ast.NodeThematicBreak:
		return r.write("<hr />\n")

	case ast.NodeTable:
		return r.table(n)

	case ast.NodeText:
		return r.text(n.Value)

	case ast.NodeSoftBreak:
		return r.write("\n")

	case ast.NodeHardBreak:
		return r.write("<br />\n")

	case ast.NodeEmphasis:
		return r.wrap(n, "<em>", "</em>")

	case ast.NodeStrong:
		return r.wrap(n, "<strong>", "</strong>")

	case ast.NodeDelete:
		return r.wrap(n, "<del>", "</del>")

	case ast.NodeInlineCode:
		if err := r.write("<code>"); err != nil {
			return err
		}
		if err := r.text(n.Value); err != nil {
			return err
		}
		return r.write("</code>")

	case ast.NodeLink:
		return r.link(n)

	case ast.NodeImage:
		return r.image(n)

	case ast.NodeAutolink:
		url := r.checkURL(n.URL, n.Pos)
		if err := r.write(`<a href="`, htmlLinkEscaper.Replace(url), `">`); err != nil {
			return err
		}
		if err := r.children(n); err != nil {
			return err
		}
		return r.write("</a>")

	case ast.NodeHTMLInline:
		if r.opts.Unsafe {
			return r.write(n.Value)
		}
		return r.write(sanitizeHTML(n.Value, n.Pos, r.diags))

	case ast.NodeFootnoteReference:
		return r.footnoteRef(n)

	case ast.NodeMath:
		if err := r.write(`<div class="math math-display">`); err != nil {
			return err
		}
		if err := r.text(n.Value); err != nil {
			return err
		}
		return r.write("</div>\n")

	case ast.NodeInlineMath:
		if err := r.write(`<span class="math math-inline">`); err != nil {
			return err
		}
		if err := r.text(n.Value); err != nil {
			return err
		}
		return r.write("</span>")

	case ast.NodeContainerDirective, ast.NodeLeafDirective:
		return r.directive(n, "div")

	case ast.NodeTextDirective:
		return r.directive(n, "span")

	case ast.NodeMdxEsm, ast.NodeMdxFlowExpression, ast.NodeMdxTextExpression:
		// Executable content never reaches HTML output.
		return nil

	case ast.NodeMdxJsxElement:
		// Without a component table the element renders as its children.
		return r.children(n)

	case ast.NodeFootnoteDefinition, ast.NodeTableRow, ast.NodeTableCell:
		// Rendered by their parents.
		return r.children(n)
	}
	return nil
}

func (r *renderer) children(n *ast.Node) error {
	for c := n.FirstChild; c != nil; c = c.Next {
		if err := r.node(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) wrap(n *ast.Node, open, close string) error {
	if err := r.write(open); err != nil {
		return err
	}
	if err := r.children(n); err != nil {
		return err
	}
	return r.write(close)
}

func (r *renderer) heading(n *ast.Node) error {
	level := n.Depth
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	if err := r.write("<h", strconv.Itoa(level)); err != nil {
		return err
	}
	if r.slugs != nil {
		id := r.slugs.slug(flatText(n))
		if id != "" {
			if err := r.write(` id="`, htmlEscaper.Replace(id), `"`); err != nil {
				return err
			}
		}
	}
	if err := r.write(">"); err != nil {
		return err
	}
	if err := r.children(n); err != nil {
		return err
	}
	return r.write("</h", strconv.Itoa(level), ">\n")
}

func (r *renderer) codeBlock(n *ast.Node) error {
	if err := r.write("<pre><code"); err != nil {
		return err
	}
	if n.Lang != "" {
		if err := r.write(` class="language-`); err != nil {
			return err
		}
		if err := r.text(n.Lang); err != nil {
			return err
		}
		if err := r.write(`"`); err != nil {
			return err
		}
	}
	if err := r.write(">"); err != nil {
		return err
	}
	if r.opts.Highlighter != nil {
		if html, ok := r.opts.Highlighter(n.Value, n.Lang); ok {
			if err := r.write(html); err != nil {
				return err
			}
			return r.write("</code></pre>\n")
		}
	}
	if err := r.text(n.Value); err != nil {
		return err
	}
	return r.write("</code></pre>\n")
}

func (r *renderer) list(n *ast.Node) error {
	if n.Ordered {
		if err := r.write("<ol"); err != nil {
			return err
		}
		if n.Start != 1 {
			if err := r.write(` start="`, strconv.Itoa(n.Start), `"`); err != nil {
				return err
			}
		}
		if err := r.write(">\n"); err != nil {
			return err
		}
	} else {
		if err := r.write("<ul>\n"); err != nil {
			return err
		}
	}
	if err := r.children(n); err != nil {
		return err
	}
	if n.Ordered {
		return r.write("</ol>\n")
	}
	return r.write("</ul>\n")
}

func (r *renderer) listItem(n *ast.Node) error {
	if err := r.write("<li>"); err != nil {
		return err
	}
	if n.Checked != nil {
		box := `<input type="checkbox" disabled="" /> `
		if *n.Checked {
			box = `<input type="checkbox" checked="" disabled="" /> `
		}
		if err := r.write(box); err != nil {
			return err
		}
	}
	tight := n.Parent != nil && n.Parent.Tight
	first := n.FirstChild
	if first != nil && !(tight && first.Kind == ast.NodeParagraph) {
		if err := r.write("\n"); err != nil {
			return err
		}
	}
	for c := first; c != nil; c = c.Next {
		if err := r.node(c); err != nil {
			return err
		}
		if c.Next != nil && tight && c.Kind == ast.NodeParagraph {
			if err := r.write("\n"); err != nil {
				return err
			}
		}
	}
	return r.write("</li>\n")
}

func (r *renderer) table(n *ast.Node) error {
	if err := r.write("<table>\n<thead>\n"); err != nil {
		return err
	}
	aligns := n.Alignments
	row := n.FirstChild
	if row != nil && row.Header {
		if err := r.tableRow(row, "th", aligns); err != nil {
			return err
		}
		row = row.Next
	}
	if err := r.write("</thead>\n"); err != nil {
		return err
	}
	if row != nil {
		if err := r.write("<tbody>\n"); err != nil {
			return err
		}
		for ; row != nil; row = row.Next {
			if err := r.tableRow(row, "td", aligns); err != nil {
				return err
			}
		}
		if err := r.write("</tbody>\n"); err != nil {
			return err
		}
	}
	return r.write("</table>\n")
}

func (r *renderer) tableRow(row *ast.Node, tag string, aligns []ast.Alignment) error {
	if err := r.write("<tr>\n"); err != nil {
		return err
	}
	i := 0
	for cell := row.FirstChild; cell != nil; cell = cell.Next {
		align := ast.AlignNone
		if i < len(aligns) {
			align = aligns[i]
		}
		if err := r.write("<", tag); err != nil {
			return err
		}
		if align != ast.AlignNone {
			if r.opts.AlignClass {
				if err := r.write(` class="text-`, align.String(), `"`); err != nil {
					return err
				}
			} else {
				if err := r.write(` style="text-align:`, align.String(), `"`); err != nil {
					return err
				}
			}
		}
		if err := r.write(">"); err != nil {
			return err
		}
		if err := r.children(cell); err != nil {
			return err
		}
		if err := r.write("</", tag, ">\n"); err != nil {
			return err
		}
		i++
	}
	return r.write("</tr>\n")
}

func (r *renderer) link(n *ast.Node) error {
	url := r.checkURL(n.URL, n.Pos)
	if err := r.write(`<a href="`, htmlLinkEscaper.Replace(url), `"`); err != nil {
		return err
	}
	if n.Title != "" {
		if err := r.write(` title="`, htmlEscaper.Replace(n.Title), `"`); err != nil {
			return err
		}
	}
	if rel := r.externalRel(url); rel != "" {
		if err := r.write(` rel="`, rel, `"`); err != nil {
			return err
		}
	}
	if err := r.write(">"); err != nil {
		return err
	}
	if err := r.children(n); err != nil {
		return err
	}
	return r.write("</a>")
}

func (r *renderer) image(n *ast.Node) error {
	url := r.checkURL(n.URL, n.Pos)
	if err := r.write(`<img src="`, htmlLinkEscaper.Replace(url), `" alt="`,
		htmlEscaper.Replace(n.Alt), `"`); err != nil {
		return err
	}
	if n.Title != "" {
		if err := r.write(` title="`, htmlEscaper.Replace(n.Title), `"`); err != nil {
			return err
		}
	}
	return r.write(` />`)
}

// externalRel returns the rel attribute for links leaving BaseHost.
func (r *renderer) externalRel(url string) string {
	if r.opts.BaseHost == "" {
		return ""
	}
	rest, ok := strings.CutPrefix(url, "https://")
	if !ok {
		rest, ok = strings.CutPrefix(url, "http://")
	}
	if !ok {
		return ""
	}
	host := rest
	for i := 0; i < len(host); i++ {
		if host[i] == '/' || host[i] == ':' || host[i] == '?' || host[i] == '#' {
			host = host[:i]
			break
		}
	}
	if strings.EqualFold(host, r.opts.BaseHost) {
		return ""
	}
	return "nofollow noopener noreferrer"
}

func (r *renderer) footnoteRef(n *ast.Node) error {
	if r.noteIndex == nil {
		r.noteIndex = make(map[string]*footnoteUse)
	}
	key := n.Label
	use, ok := r.noteIndex[key]
	if !ok {
		var def *ast.Node
		if r.root != nil && r.root.Root != nil {
			def = r.root.Root.Footnotes[normalizeKey(key)]
		}
		use = &footnoteUse{num: len(r.footnotes) + 1, def: def}
		r.noteIndex[key] = use
		r.footnotes = append(r.footnotes, use)
	}
	use.refs++
	num := strconv.Itoa(use.num)
	ref := num
	if use.refs > 1 {
		ref += "-" + strconv.Itoa(use.refs)
	}
	return r.write(`<sup class="fn"><a id="fnref-`, ref, `" href="#fn-`, num, `">`, num, `</a></sup>`)
}

// flushFootnotes appends the footnote section once the body is rendered.
func (r *renderer) flushFootnotes() error {
	if len(r.footnotes) == 0 {
		return nil
	}
	if err := r.write("<section class=\"footnotes\">\n<ol>\n"); err != nil {
		return err
	}
	for _, use := range r.footnotes {
		num := strconv.Itoa(use.num)
		if err := r.write(`<li id="fn-`, num, `">`, "\n"); err != nil {
			return err
		}
		if use.def != nil {
			if err := r.children(use.def); err != nil {
				return err
			}
		}
		for i := 1; i <= use.refs; i++ {
			ref := num
			if i > 1 {
				ref += "-" + strconv.Itoa(i)
			}
			if err := r.write(`<a class="fnref" href="#fnref-`, ref, `">↩</a>`, "\n"); err != nil {
				return err
			}
		}
		if err := r.write("</li>\n"); err != nil {
			return err
		}
	}
	return r.write("</ol>\n</section>\n")
}

func (r *renderer) directive(n *ast.Node, tag string) error {
	if err := r.write("<", tag, ` class="`, htmlEscaper.Replace(n.Name), `"`); err != nil {
		return err
	}
	for _, k := range sortedAttrKeys(n.DirAttrs) {
		if k == "class" || k == "id" {
			if err := r.write(" ", k, `="`, htmlEscaper.Replace(n.DirAttrs[k]), `"`); err != nil {
				return err
			}
		}
	}
	if err := r.write(">"); err != nil {
		return err
	}
	if err := r.children(n); err != nil {
		return err
	}
	if tag == "div" {
		return r.write("</", tag, ">\n")
	}
	return r.write("</", tag, ">")
}

func sortedAttrKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

// inTightItem reports whether a paragraph sits directly in a tight list
// item, where it renders without <p> tags.
func inTightItem(n *ast.Node) bool {
	return n.Parent != nil && n.Parent.Kind == ast.NodeListItem &&
		n.Parent.Parent != nil && n.Parent.Parent.Tight
}

// flatText gathers the literal text of a node's descendants.
func flatText(n *ast.Node) string {
	var sb strings.Builder
	ast.Walk(n, func(c *ast.Node) error {
		switch c.Kind {
		case ast.NodeText, ast.NodeInlineCode:
			sb.WriteString(c.Value)
		case ast.NodeSoftBreak, ast.NodeHardBreak:
			sb.WriteByte(' ')
		}
		return nil
	})
	return sb.String()
}

// checkURL applies the scheme allowlist, rewriting disallowed URLs to "#".
func (r *renderer) checkURL(url string, pos *ast.Position) string {
	if r.opts.Unsafe {
		return url
	}
	if safeURL(url) {
		return url
	}
	r.diags.WarnAt(diag.CodeDisallowedScheme, pos,
		"URL scheme of %q is not allowed; rewritten to #", truncate(url, 64))
	return "#"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
