package mdx

import (
	"fmt"
	"strings"

	"github.com/jp-knj/jetmd/pkg/ast"
)

// Element is a scanned JSX element before conversion into tree nodes.
type Element struct {
	Name        string
	Attrs       []ast.JSXAttr
	SelfClosing bool
	Children    []Child
}

// ChildKind discriminates Element children.
type ChildKind uint8

// Element child kinds.
const (
	ChildText ChildKind = iota
	ChildElement
	ChildExpression
)

// Child is one child of a scanned JSX element.
type Child struct {
	Kind ChildKind
	Text string   // ChildText: literal text
	Expr string   // ChildExpression: raw expression source
	El   *Element // ChildElement
	Off  int      // source offset of the child's start
}

// ParseElement scans a JSX element starting at the '<' at offset, walking
// nested tags with string and attribute-expression awareness until the
// outermost element closes. js supplies expression scanning for attribute
// values and expression children.
func ParseElement(src string, offset int, js JsExprParser) (*Element, int, error) {
	el, end, err := parseElement(src, offset, js, 0)
	if err != nil {
		return nil, 0, err
	}
	return el, end, nil
}

const maxJSXDepth = 64

func parseElement(src string, offset int, js JsExprParser, depth int) (*Element, int, error) {
	if depth > maxJSXDepth {
		return nil, 0, fmt.Errorf("mdx: JSX nested deeper than %d", maxJSXDepth)
	}
	if offset >= len(src) || src[offset] != '<' {
		return nil, 0, fmt.Errorf("mdx: expected '<' at offset %d", offset)
	}

	name, i, err := parseJSXName(src, offset+1)
	if err != nil {
		return nil, 0, err
	}
	el := &Element{Name: name}

	// Attributes until '>' or '/>'.
	for {
		i = skipJSXSpace(src, i)
		if i >= len(src) {
			return nil, 0, fmt.Errorf("mdx: unclosed tag <%s", name)
		}
		if src[i] == '/' {
			if i+1 < len(src) && src[i+1] == '>' {
				el.SelfClosing = true
				return el, i + 2, nil
			}
			return nil, 0, fmt.Errorf("mdx: stray '/' in tag <%s", name)
		}
		if src[i] == '>' {
			i++
			break
		}
		attr, j, err := parseJSXAttr(src, i, js)
		if err != nil {
			return nil, 0, err
		}
		el.Attrs = append(el.Attrs, attr)
		i = j
	}

	// Children until the matching close tag.
	textStart := i
	flushText := func(end int) {
		if end > textStart {
			el.Children = append(el.Children, Child{
				Kind: ChildText,
				Text: src[textStart:end],
				Off:  textStart,
			})
		}
	}
	for i < len(src) {
		switch src[i] {
		case '<':
			if i+1 < len(src) && src[i+1] == '/' {
				flushText(i)
				j := i + 2
				closeName, j, err := parseJSXName(src, j)
				if err != nil {
					return nil, 0, err
				}
				j = skipJSXSpace(src, j)
				if j >= len(src) || src[j] != '>' {
					return nil, 0, fmt.Errorf("mdx: malformed closing tag </%s", closeName)
				}
				if closeName != name {
					return nil, 0, fmt.Errorf("mdx: closing tag </%s> does not match <%s>", closeName, name)
				}
				return el, j + 1, nil
			}
			flushText(i)
			child, j, err := parseElement(src, i, js, depth+1)
			if err != nil {
				return nil, 0, err
			}
			el.Children = append(el.Children, Child{Kind: ChildElement, El: child, Off: i})
			i = j
			textStart = i
		case '{':
			flushText(i)
			expr, j, err := js.ParseExpression(src, i)
			if err != nil {
				return nil, 0, err
			}
			el.Children = append(el.Children, Child{Kind: ChildExpression, Expr: expr, Off: i})
			i = j
			textStart = i
		default:
			i++
		}
	}
	return nil, 0, fmt.Errorf("mdx: element <%s> is never closed", name)
}

// parseJSXName scans a JSX element or fragment name. A fragment has the
// empty name: "<>…</>".
func parseJSXName(src string, i int) (string, int, error) {
	start := i
	if i < len(src) && src[i] == '>' {
		return "", i, nil // fragment
	}
	if i >= len(src) || !isJSXNameStart(src[i]) {
		return "", 0, fmt.Errorf("mdx: invalid JSX name at offset %d", i)
	}
	i++
	for i < len(src) && isJSXNamePart(src[i]) {
		i++
	}
	return src[start:i], i, nil
}

func isJSXNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '$'
}

func isJSXNamePart(c byte) bool {
	return isJSXNameStart(c) || c >= '0' && c <= '9' || c == '.' || c == '-' || c == ':'
}

func skipJSXSpace(src string, i int) int {
	for i < len(src) {
		switch src[i] {
		case ' ', '\t', '\n':
			i++
		default:
			return i
		}
	}
	return i
}

// parseJSXAttr scans one attribute: name, name="value", name={expr}, or
// {...spread}.
func parseJSXAttr(src string, i int, js JsExprParser) (ast.JSXAttr, int, error) {
	if src[i] == '{' {
		expr, j, err := js.ParseExpression(src, i)
		if err != nil {
			return ast.JSXAttr{}, 0, err
		}
		spread := strings.TrimSpace(expr)
		spread = strings.TrimPrefix(spread, "...")
		return ast.JSXAttr{Spread: spread}, j, nil
	}

	if !isJSXNameStart(src[i]) {
		return ast.JSXAttr{}, 0, fmt.Errorf("mdx: invalid attribute at offset %d", i)
	}
	start := i
	for i < len(src) && isJSXNamePart(src[i]) {
		i++
	}
	attr := ast.JSXAttr{Name: src[start:i]}

	j := skipJSXSpace(src, i)
	if j >= len(src) || src[j] != '=' {
		return attr, i, nil // boolean attribute
	}
	j = skipJSXSpace(src, j+1)
	if j >= len(src) {
		return ast.JSXAttr{}, 0, fmt.Errorf("mdx: attribute %s has no value", attr.Name)
	}
	switch src[j] {
	case '"', '\'':
		quote := src[j]
		end := strings.IndexByte(src[j+1:], quote)
		if end < 0 {
			return ast.JSXAttr{}, 0, fmt.Errorf("mdx: unterminated value for %s", attr.Name)
		}
		attr.Value = src[j+1 : j+1+end]
		attr.HasVal = true
		return attr, j + 1 + end + 1, nil
	case '{':
		expr, end, err := js.ParseExpression(src, j)
		if err != nil {
			return ast.JSXAttr{}, 0, err
		}
		attr.Expr = expr
		attr.IsExpr = true
		return attr, end, nil
	}
	return ast.JSXAttr{}, 0, fmt.Errorf("mdx: invalid value for attribute %s", attr.Name)
}
