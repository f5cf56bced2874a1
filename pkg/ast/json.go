package ast

import (
	"encoding/json"
	"fmt"
	"slices"
)

// sortedKeys returns the map keys in sorted order, for deterministic output.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// typeNames maps node kinds to their stable mdast-style JSON type names.
var typeNames = map[NodeKind]string{
	NodeRoot:               "root",
	NodeParagraph:          "paragraph",
	NodeHeading:            "heading",
	NodeBlockQuote:         "blockquote",
	NodeList:               "list",
	NodeListItem:           "listItem",
	NodeCodeBlock:          "code",
	NodeHTMLBlock:          "html",
	NodeThematicBreak:      "thematicBreak",
	NodeTable:              "table",
	NodeTableRow:           "tableRow",
	NodeTableCell:          "tableCell",
	NodeFrontmatter:        "frontmatter",
	NodeFootnoteDefinition: "footnoteDefinition",
	NodeMath:               "math",
	NodeText:               "text",
	NodeEmphasis:           "emphasis",
	NodeStrong:             "strong",
	NodeDelete:             "delete",
	NodeLink:               "link",
	NodeImage:              "image",
	NodeInlineCode:         "inlineCode",
	NodeAutolink:           "autolink",
	NodeFootnoteReference:  "footnoteReference",
	NodeHardBreak:          "break",
	NodeSoftBreak:          "softBreak",
	NodeHTMLInline:         "htmlInline",
	NodeInlineMath:         "inlineMath",
	NodeContainerDirective: "containerDirective",
	NodeLeafDirective:      "leafDirective",
	NodeTextDirective:      "textDirective",
	NodeMdxEsm:             "mdxjsEsm",
	NodeMdxJsxElement:      "mdxJsxFlowElement",
	NodeMdxFlowExpression:  "mdxFlowExpression",
	NodeMdxTextExpression:  "mdxTextExpression",
}

// kindsByName is the inverse of typeNames, built once at init.
var kindsByName = func() map[string]NodeKind {
	m := make(map[string]NodeKind, len(typeNames))
	for k, v := range typeNames {
		m[v] = k
	}
	return m
}()

// String returns the stable type name of the kind.
func (k NodeKind) String() string {
	if s, ok := typeNames[k]; ok {
		return s
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// jsonNode is the wire form of a Node: camelCase property names,
// kind-specific attributes flattened next to type/children/position.
type jsonNode struct {
	Type     string      `json:"type"`
	Value    string      `json:"value,omitempty"`
	Position *Position   `json:"position,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`

	Depth       int               `json:"depth,omitempty"`
	Setext      bool              `json:"setext,omitempty"`
	Ordered     bool              `json:"ordered,omitempty"`
	Start       int               `json:"start,omitempty"`
	Tight       bool              `json:"tight,omitempty"`
	Marker      string            `json:"marker,omitempty"`
	Checked     *bool             `json:"checked,omitempty"`
	Info        string            `json:"info,omitempty"`
	Lang        string            `json:"lang,omitempty"`
	Meta        string            `json:"meta,omitempty"`
	RawKind     int               `json:"rawKind,omitempty"`
	Align       []string          `json:"align,omitempty"`
	Header      bool              `json:"header,omitempty"`
	Format      string            `json:"format,omitempty"`
	URL         string            `json:"url,omitempty"`
	Title       string            `json:"title,omitempty"`
	Alt         string            `json:"alt,omitempty"`
	RefKind     string            `json:"referenceKind,omitempty"`
	Autolink    string            `json:"autolinkKind,omitempty"`
	Label       string            `json:"label,omitempty"`
	Name        string            `json:"name,omitempty"`
	Attrs       []jsonJSXAttr     `json:"attributes,omitempty"`
	SelfClosing bool              `json:"selfClosing,omitempty"`
	DirAttrs    map[string]string `json:"directiveAttributes,omitempty"`
	Data        map[string]any    `json:"data,omitempty"`

	Definitions []jsonDefinition `json:"definitions,omitempty"`
	Footnotes   []*jsonNode      `json:"footnoteDefinitions,omitempty"`
}

type jsonJSXAttr struct {
	Name   string `json:"name,omitempty"`
	Value  string `json:"value,omitempty"`
	Expr   string `json:"expression,omitempty"`
	Spread string `json:"spread,omitempty"`
	HasVal bool   `json:"hasValue,omitempty"`
	IsExpr bool   `json:"isExpression,omitempty"`
}

type jsonDefinition struct {
	Identifier string    `json:"identifier"`
	Label      string    `json:"label,omitempty"`
	URL        string    `json:"url"`
	Title      string    `json:"title,omitempty"`
	Position   *Position `json:"position,omitempty"`
}

var refNames = map[RefKind]string{
	RefInline:    "",
	RefFull:      "full",
	RefCollapsed: "collapsed",
	RefShortcut:  "shortcut",
}

var refKinds = map[string]RefKind{
	"":          RefInline,
	"inline":    RefInline,
	"full":      RefFull,
	"collapsed": RefCollapsed,
	"shortcut":  RefShortcut,
}

func (n *Node) toJSON() *jsonNode {
	j := &jsonNode{
		Type:        n.Kind.String(),
		Value:       n.Value,
		Position:    n.Pos,
		Depth:       n.Depth,
		Setext:      n.Setext,
		Ordered:     n.Ordered,
		Start:       n.Start,
		Tight:       n.Tight,
		Checked:     n.Checked,
		Info:        n.Info,
		Lang:        n.Lang,
		Meta:        n.Meta,
		RawKind:     n.RawKind,
		Header:      n.Header,
		Format:      n.Format,
		URL:         n.URL,
		Title:       n.Title,
		Alt:         n.Alt,
		Label:       n.Label,
		Name:        n.Name,
		SelfClosing: n.SelfClosing,
		DirAttrs:    n.DirAttrs,
		Data:        n.Data,
	}
	if n.Marker != 0 {
		j.Marker = string(n.Marker)
	}
	if n.Kind == NodeLink || n.Kind == NodeImage {
		j.RefKind = refNames[n.Ref]
	}
	if n.Kind == NodeAutolink && n.Autolink == AutolinkEmail {
		j.Autolink = "email"
	}
	for _, a := range n.Alignments {
		j.Align = append(j.Align, a.String())
	}
	for _, a := range n.Attrs {
		j.Attrs = append(j.Attrs, jsonJSXAttr(a))
	}
	for c := n.FirstChild; c != nil; c = c.Next {
		j.Children = append(j.Children, c.toJSON())
	}
	if n.Root != nil {
		for _, key := range sortedKeys(n.Root.Definitions) {
			d := n.Root.Definitions[key]
			j.Definitions = append(j.Definitions, jsonDefinition{
				Identifier: key,
				Label:      d.Label,
				URL:        d.URL,
				Title:      d.Title,
				Position:   d.Pos,
			})
		}
		for _, key := range sortedKeys(n.Root.Footnotes) {
			j.Footnotes = append(j.Footnotes, n.Root.Footnotes[key].toJSON())
		}
	}
	return j
}

func (j *jsonNode) toNode() (*Node, error) {
	kind, ok := kindsByName[j.Type]
	if !ok {
		return nil, fmt.Errorf("ast: unknown node type %q", j.Type)
	}
	n := &Node{
		Kind:        kind,
		Pos:         j.Position,
		Value:       j.Value,
		Depth:       j.Depth,
		Setext:      j.Setext,
		Ordered:     j.Ordered,
		Start:       j.Start,
		Tight:       j.Tight,
		Checked:     j.Checked,
		Info:        j.Info,
		Lang:        j.Lang,
		Meta:        j.Meta,
		RawKind:     j.RawKind,
		Header:      j.Header,
		Format:      j.Format,
		URL:         j.URL,
		Title:       j.Title,
		Alt:         j.Alt,
		Label:       j.Label,
		Name:        j.Name,
		SelfClosing: j.SelfClosing,
		DirAttrs:    j.DirAttrs,
		Data:        j.Data,
	}
	if j.Marker != "" {
		n.Marker = j.Marker[0]
	}
	if kind == NodeLink || kind == NodeImage {
		n.Ref = refKinds[j.RefKind]
	}
	if kind == NodeAutolink && j.Autolink == "email" {
		n.Autolink = AutolinkEmail
	}
	for _, name := range j.Align {
		var a Alignment
		switch name {
		case "left":
			a = AlignLeft
		case "right":
			a = AlignRight
		case "center":
			a = AlignCenter
		}
		n.Alignments = append(n.Alignments, a)
	}
	for _, a := range j.Attrs {
		n.Attrs = append(n.Attrs, JSXAttr(a))
	}
	for _, jc := range j.Children {
		c, err := jc.toNode()
		if err != nil {
			return nil, err
		}
		AppendChild(n, c)
	}
	if kind == NodeRoot {
		n.Root = &RootData{
			Definitions: make(map[string]*Definition),
			Footnotes:   make(map[string]*Node),
		}
		for _, d := range j.Definitions {
			n.Root.Definitions[d.Identifier] = &Definition{
				Label: d.Label,
				URL:   d.URL,
				Title: d.Title,
				Pos:   d.Position,
			}
		}
		for _, jf := range j.Footnotes {
			fn, err := jf.toNode()
			if err != nil {
				return nil, err
			}
			n.Root.Footnotes[fn.Label] = fn
		}
		if n.FirstChild != nil && n.FirstChild.Kind == NodeFrontmatter {
			n.Root.Frontmatter = n.FirstChild
		}
	}
	return n, nil
}

// MarshalJSON encodes the sub-tree rooted at n into the stable wire form.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON())
}

// Decode parses the stable wire form back into a tree.
// Round-tripping a tree through Marshal and Decode yields a tree that is
// semantically equal to the original (node identity is not preserved).
func Decode(data []byte) (*Node, error) {
	var j jsonNode
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("ast: decode: %w", err)
	}
	return j.toNode()
}
