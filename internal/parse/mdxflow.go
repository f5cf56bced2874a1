package parse

import (
	"strings"

	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
	"github.com/jp-knj/jetmd/pkg/mdx"
)

// startMdxEsm consumes an import or export statement at column 1 on a
// paragraph boundary, delegating statement extent to the JsExprParser.
func startMdxEsm(p *parser, s line) (line, bool) {
	if p.para() != nil || s.i != 0 || s.spaces != 0 {
		return s, false
	}
	t := s.text
	if !strings.HasPrefix(t, "import ") && !strings.HasPrefix(t, "export ") {
		return s, false
	}

	raw, end, err := p.cfg.js().ParseStatement(p.src, s.srcOff)
	if err != nil {
		p.diags.WarnAt(diag.CodeMalformedESM, p.posLines(p.lineno, p.lineno),
			"cannot scan ESM statement: %v", err)
		return s, false
	}

	n := ast.NewNode(ast.NodeMdxEsm)
	n.Value = raw
	n.Pos = p.posRange(s.srcOff, s.srcOff+len(raw))
	p.doneBlock(n)
	p.skipUntil = end
	return line{}, true
}

// startMdxJsx consumes a JSX element block opening at a '<' followed by an
// ASCII letter, '_', or '$' (or a fragment "<>") on a paragraph boundary.
func startMdxJsx(p *parser, s line) (line, bool) {
	if p.para() != nil {
		return s, false
	}
	t := s
	t.trimSpace(0, 3, false)
	if t.peek() != '<' {
		return s, false
	}
	rest := t.text[t.i:]
	if len(rest) < 2 || (!isLetter(rest[1]) && rest[1] != '>' && rest[1] != '_' && rest[1] != '$') {
		return s, false
	}

	off := t.srcOff + t.i
	el, end, err := mdx.ParseElement(p.src, off, p.cfg.js())
	if err != nil {
		p.diags.WarnAt(diag.CodeUnclosedJSX, p.posLines(p.lineno, p.lineno),
			"cannot scan JSX element: %v", err)
		return s, false
	}

	n := p.convertJSXElement(el, off, end)
	p.doneBlock(n)
	p.skipUntil = end
	return line{}, true
}

// convertJSXElement turns a scanned element into tree nodes. Text children
// are inline-parsed as Markdown once the definition tables are complete;
// the placeholder span nodes are lifted away after the inline pass.
func (p *parser) convertJSXElement(el *mdx.Element, start, end int) *ast.Node {
	n := ast.NewNode(ast.NodeMdxJsxElement)
	n.Name = el.Name
	n.Attrs = el.Attrs
	n.SelfClosing = el.SelfClosing
	n.Pos = p.posRange(start, end)

	for _, c := range el.Children {
		switch c.Kind {
		case mdx.ChildText:
			text := strings.TrimSpace(c.Text)
			if text == "" {
				continue
			}
			span := ast.NewNode(ast.NodeParagraph)
			span.Pos = p.posRange(c.Off, c.Off+len(c.Text))
			tm := &textmap{}
			tm.add(0, c.Off+strings.Index(c.Text, text), len(text))
			p.addText(span, text, tm)
			p.spans[span] = true
			ast.AppendChild(n, span)
		case mdx.ChildExpression:
			expr := ast.NewNode(ast.NodeMdxTextExpression)
			expr.Value = c.Expr
			expr.Pos = p.posRange(c.Off, c.Off+len(c.Expr)+2)
			ast.AppendChild(n, expr)
		case mdx.ChildElement:
			ast.AppendChild(n, p.convertJSXElement(c.El, c.Off, c.Off))
		}
	}
	return n
}

// startMdxFlowExpression consumes a top-level {expression} block.
func startMdxFlowExpression(p *parser, s line) (line, bool) {
	if p.para() != nil {
		return s, false
	}
	t := s
	t.trimSpace(0, 3, false)
	if t.peek() != '{' {
		return s, false
	}

	off := t.srcOff + t.i
	raw, end, err := p.cfg.js().ParseExpression(p.src, off)
	if err != nil {
		p.diags.WarnAt(diag.CodeUnbalancedExpression, p.posLines(p.lineno, p.lineno),
			"cannot scan expression: %v", err)
		return s, false
	}

	n := ast.NewNode(ast.NodeMdxFlowExpression)
	n.Value = raw
	n.Pos = p.posRange(off, end)
	p.doneBlock(n)
	p.skipUntil = end
	return line{}, true
}
