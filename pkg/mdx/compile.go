package mdx

import (
	"fmt"
	"strings"

	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
)

// CompileOptions control the emitted ES module.
type CompileOptions struct {
	// JSXImportSource selects the automatic JSX runtime package; empty
	// emits no runtime pragma.
	JSXImportSource string

	// ProviderImportSource, when set, merges components from a provider:
	// import {useMDXComponents as _provideComponents} from "<source>".
	ProviderImportSource string
}

// CompileResult is the emitted module plus its manifest.
type CompileResult struct {
	ESMSource  string
	Imports    []string
	Exports    []string
	Components []string
	Diags      []diag.Diagnostic
}

// Compile turns a parsed tree into an ES module skeleton: ESM statements
// verbatim at the top in source order, then a default-exported MDXContent
// function returning JSX built from the remaining tree. The emitter is
// deterministic and never evaluates expressions; with fatal diagnostics
// present the source is still emitted best-effort.
func Compile(root *ast.Node, opts CompileOptions) *CompileResult {
	e := &emitter{opts: opts, components: map[string]bool{}}
	return e.compile(root)
}

type emitter struct {
	opts       CompileOptions
	sb         strings.Builder
	body       strings.Builder
	imports    []string
	exports    []string
	components map[string]bool
	diags      diag.List
}

func (e *emitter) compile(root *ast.Node) *CompileResult {
	if e.opts.JSXImportSource != "" {
		fmt.Fprintf(&e.sb, "/* @jsxRuntime automatic @jsxImportSource %s */\n", e.opts.JSXImportSource)
	}
	if e.opts.ProviderImportSource != "" {
		fmt.Fprintf(&e.sb, "import {useMDXComponents as _provideComponents} from %q;\n",
			e.opts.ProviderImportSource)
	}

	// Top-level ESM statements, in source order.
	for c := root.FirstChild; c != nil; c = c.Next {
		if c.Kind != ast.NodeMdxEsm {
			continue
		}
		stmt := strings.TrimRight(c.Value, "\n")
		e.sb.WriteString(stmt)
		e.sb.WriteString("\n")
		e.classifyStatement(stmt)
	}

	if root.Root != nil && root.Root.Frontmatter != nil {
		fmt.Fprintf(&e.sb, "export const frontmatter = %s;\n",
			jsString(root.Root.Frontmatter.Value))
		e.exports = append(e.exports, "frontmatter")
	}

	// Body JSX.
	for c := root.FirstChild; c != nil; c = c.Next {
		if c.Kind == ast.NodeMdxEsm || c.Kind == ast.NodeFrontmatter {
			continue
		}
		e.flowNode(c, 2)
	}

	e.sb.WriteString("export default function MDXContent(props) {\n")
	e.sb.WriteString("  const _components = {\n")
	e.sb.WriteString(`    wrapper: "div", h1: "h1", h2: "h2", h3: "h3", h4: "h4", h5: "h5", h6: "h6",` + "\n")
	e.sb.WriteString(`    p: "p", a: "a", img: "img", em: "em", strong: "strong", del: "del",` + "\n")
	e.sb.WriteString(`    code: "code", pre: "pre", blockquote: "blockquote", hr: "hr",` + "\n")
	e.sb.WriteString(`    ul: "ul", ol: "ol", li: "li", table: "table", thead: "thead",` + "\n")
	e.sb.WriteString(`    tbody: "tbody", tr: "tr", th: "th", td: "td", br: "br",` + "\n")
	if e.opts.ProviderImportSource != "" {
		e.sb.WriteString("    ..._provideComponents(),\n")
	}
	e.sb.WriteString("    ...props.components,\n")
	e.sb.WriteString("  };\n")
	e.sb.WriteString("  return (<>\n")
	e.sb.WriteString(e.body.String())
	e.sb.WriteString("  </>);\n")
	e.sb.WriteString("}\n")
	e.exports = append(e.exports, "default")

	comps := make([]string, 0, len(e.components))
	for name := range e.components {
		comps = append(comps, name)
	}
	sortStrings(comps)

	return &CompileResult{
		ESMSource:  e.sb.String(),
		Imports:    e.imports,
		Exports:    e.exports,
		Components: comps,
		Diags:      e.diags.Items(),
	}
}

// classifyStatement records import and export names for the manifest.
func (e *emitter) classifyStatement(stmt string) {
	trimmed := strings.TrimSpace(stmt)
	switch {
	case strings.HasPrefix(trimmed, "import "):
		if from := importPath(trimmed); from != "" {
			e.imports = append(e.imports, from)
		}
	case strings.HasPrefix(trimmed, "export "):
		if name := exportName(trimmed); name != "" {
			e.exports = append(e.exports, name)
		}
	}
}

func importPath(stmt string) string {
	for _, q := range []byte{'\'', '"'} {
		i := strings.IndexByte(stmt, q)
		if i < 0 {
			continue
		}
		j := strings.IndexByte(stmt[i+1:], q)
		if j < 0 {
			continue
		}
		return stmt[i+1 : i+1+j]
	}
	return ""
}

func exportName(stmt string) string {
	rest := strings.TrimPrefix(stmt, "export ")
	for _, kw := range []string{"const ", "let ", "var ", "function ", "class ", "async function "} {
		if strings.HasPrefix(rest, kw) {
			rest = strings.TrimPrefix(rest, kw)
			i := 0
			for i < len(rest) && (rest[i] == '_' || rest[i] == '$' ||
				rest[i] >= 'a' && rest[i] <= 'z' || rest[i] >= 'A' && rest[i] <= 'Z' ||
				rest[i] >= '0' && rest[i] <= '9') {
				i++
			}
			return rest[:i]
		}
	}
	if strings.HasPrefix(rest, "default") {
		return "default"
	}
	return ""
}

// flowNode emits one block node as JSX.
func (e *emitter) flowNode(n *ast.Node, indent int) {
	pad := strings.Repeat(" ", indent)
	w := &e.body
	switch n.Kind {
	case ast.NodeParagraph:
		fmt.Fprintf(w, "%s<_components.p>", pad)
		e.inlineChildren(n)
		fmt.Fprintf(w, "</_components.p>\n")
	case ast.NodeHeading:
		depth := n.Depth
		if depth < 1 {
			depth = 1
		}
		if depth > 6 {
			depth = 6
		}
		fmt.Fprintf(w, "%s<_components.h%d>", pad, depth)
		e.inlineChildren(n)
		fmt.Fprintf(w, "</_components.h%d>\n", depth)
	case ast.NodeCodeBlock:
		fmt.Fprintf(w, "%s<_components.pre><_components.code", pad)
		if n.Lang != "" {
			fmt.Fprintf(w, " className=%q", "language-"+n.Lang)
		}
		fmt.Fprintf(w, ">{%s}</_components.code></_components.pre>\n", jsString(n.Value))
	case ast.NodeBlockQuote:
		fmt.Fprintf(w, "%s<_components.blockquote>\n", pad)
		for c := n.FirstChild; c != nil; c = c.Next {
			e.flowNode(c, indent+2)
		}
		fmt.Fprintf(w, "%s</_components.blockquote>\n", pad)
	case ast.NodeThematicBreak:
		fmt.Fprintf(w, "%s<_components.hr />\n", pad)
	case ast.NodeList:
		tag := "ul"
		if n.Ordered {
			tag = "ol"
		}
		fmt.Fprintf(w, "%s<_components.%s>\n", pad, tag)
		for c := n.FirstChild; c != nil; c = c.Next {
			e.flowNode(c, indent+2)
		}
		fmt.Fprintf(w, "%s</_components.%s>\n", pad, tag)
	case ast.NodeListItem:
		fmt.Fprintf(w, "%s<_components.li>\n", pad)
		for c := n.FirstChild; c != nil; c = c.Next {
			e.flowNode(c, indent+2)
		}
		fmt.Fprintf(w, "%s</_components.li>\n", pad)
	case ast.NodeTable:
		fmt.Fprintf(w, "%s<_components.table>\n", pad)
		for c := n.FirstChild; c != nil; c = c.Next {
			e.flowNode(c, indent+2)
		}
		fmt.Fprintf(w, "%s</_components.table>\n", pad)
	case ast.NodeTableRow:
		fmt.Fprintf(w, "%s<_components.tr>\n", pad)
		for c := n.FirstChild; c != nil; c = c.Next {
			e.flowNode(c, indent+2)
		}
		fmt.Fprintf(w, "%s</_components.tr>\n", pad)
	case ast.NodeTableCell:
		tag := "td"
		if n.Parent != nil && n.Parent.Header {
			tag = "th"
		}
		fmt.Fprintf(w, "%s<_components.%s>", pad, tag)
		e.inlineChildren(n)
		fmt.Fprintf(w, "</_components.%s>\n", tag)
	case ast.NodeHTMLBlock:
		fmt.Fprintf(w, "%s{/* raw html omitted */}\n", pad)
	case ast.NodeMdxJsxElement:
		e.jsxElement(n, indent, true)
	case ast.NodeMdxFlowExpression:
		fmt.Fprintf(w, "%s{%s}\n", pad, n.Value)
	case ast.NodeMath:
		fmt.Fprintf(w, "%s<_components.pre>{%s}</_components.pre>\n", pad, jsString(n.Value))
	default:
		for c := n.FirstChild; c != nil; c = c.Next {
			e.flowNode(c, indent)
		}
	}
}

// jsxElement re-emits an MDX JSX element, recording capitalized names in
// the component manifest.
func (e *emitter) jsxElement(n *ast.Node, indent int, flow bool) {
	pad := ""
	if flow {
		pad = strings.Repeat(" ", indent)
	}
	w := &e.body
	if n.Name != "" && n.Name[0] >= 'A' && n.Name[0] <= 'Z' {
		e.components[n.Name] = true
	}
	name := n.Name
	fmt.Fprintf(w, "%s<%s", pad, name)
	for _, a := range n.Attrs {
		switch {
		case a.Spread != "":
			fmt.Fprintf(w, " {...%s}", a.Spread)
		case a.IsExpr:
			fmt.Fprintf(w, " %s={%s}", a.Name, a.Expr)
		case a.HasVal:
			fmt.Fprintf(w, " %s=%q", a.Name, a.Value)
		default:
			fmt.Fprintf(w, " %s", a.Name)
		}
	}
	if n.SelfClosing || n.FirstChild == nil && name != "" {
		fmt.Fprintf(w, " />")
		if flow {
			w.WriteString("\n")
		}
		return
	}
	fmt.Fprintf(w, ">")
	for c := n.FirstChild; c != nil; c = c.Next {
		e.inlineNode(c)
	}
	fmt.Fprintf(w, "</%s>", name)
	if flow {
		w.WriteString("\n")
	}
}

func (e *emitter) inlineChildren(n *ast.Node) {
	for c := n.FirstChild; c != nil; c = c.Next {
		e.inlineNode(c)
	}
}

// inlineNode emits one inline node as JSX.
func (e *emitter) inlineNode(n *ast.Node) {
	w := &e.body
	switch n.Kind {
	case ast.NodeText:
		w.WriteString(jsxText(n.Value))
	case ast.NodeEmphasis:
		w.WriteString("<_components.em>")
		e.inlineChildren(n)
		w.WriteString("</_components.em>")
	case ast.NodeStrong:
		w.WriteString("<_components.strong>")
		e.inlineChildren(n)
		w.WriteString("</_components.strong>")
	case ast.NodeDelete:
		w.WriteString("<_components.del>")
		e.inlineChildren(n)
		w.WriteString("</_components.del>")
	case ast.NodeInlineCode:
		fmt.Fprintf(w, "<_components.code>{%s}</_components.code>", jsString(n.Value))
	case ast.NodeLink, ast.NodeAutolink:
		fmt.Fprintf(w, "<_components.a href=%q>", n.URL)
		e.inlineChildren(n)
		w.WriteString("</_components.a>")
	case ast.NodeImage:
		fmt.Fprintf(w, "<_components.img src=%q alt=%q />", n.URL, n.Alt)
	case ast.NodeHardBreak:
		w.WriteString("<_components.br />")
	case ast.NodeSoftBreak:
		w.WriteString("{\"\\n\"}")
	case ast.NodeMdxTextExpression:
		fmt.Fprintf(w, "{%s}", n.Value)
	case ast.NodeMdxJsxElement:
		e.jsxElement(n, 0, false)
	case ast.NodeHTMLInline:
		// Raw HTML has no JSX equivalent without evaluation.
	default:
		e.inlineChildren(n)
	}
}

// jsxText escapes literal text for a JSX child position.
func jsxText(s string) string {
	if !strings.ContainsAny(s, "{}<>") {
		return s
	}
	return "{" + jsString(s) + "}"
}

// jsString renders a Go string as a JS double-quoted literal.
func jsString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j] < ss[j-1]; j-- {
			ss[j], ss[j-1] = ss[j-1], ss[j]
		}
	}
}
