// Package jetmd is the public entry point of the Markdown/MDX processing
// engine: parse to a typed syntax tree, render sanitized HTML, compile MDX
// to an ES module, or hold an incremental session for editor integrations.
//
// The engine is a pure function of (source, options) except for the
// explicitly stateful session API; concurrent parses with independent
// options are safe.
package jetmd

import (
	"io"

	"github.com/jp-knj/jetmd/internal/parse"
	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
	"github.com/jp-knj/jetmd/pkg/mdx"
	renderhtml "github.com/jp-knj/jetmd/pkg/render/html"
	"github.com/jp-knj/jetmd/pkg/session"
)

// ParseResult is the outcome of Parse.
type ParseResult struct {
	// Tree is the document root, or nil after a fatal input error.
	Tree *ast.Node

	// Frontmatter is the leading frontmatter node, if any.
	Frontmatter *ast.Node

	// Diags holds fatal errors and recoverable warnings.
	Diags []diag.Diagnostic

	// Stats summarizes the pass.
	Stats parse.Stats
}

// Ok reports whether the parse produced a tree.
func (r *ParseResult) Ok() bool {
	return r.Tree != nil
}

// Parse runs the block scanner and inline parser over source.
func Parse(source []byte, opts Options) *ParseResult {
	res := parse.Parse(source, opts.parseConfig())
	out := &ParseResult{
		Tree:  res.Root,
		Diags: res.Diags,
		Stats: res.Stats,
	}
	if res.Root != nil && res.Root.Root != nil {
		out.Frontmatter = res.Root.Root.Frontmatter
	}
	return out
}

// RenderResult is the outcome of RenderHTML and RenderHTMLString.
type RenderResult struct {
	HTML  string
	Diags []diag.Diagnostic
}

// RenderHTML parses source and streams HTML to w. RenderTree renders an
// already parsed tree.
// Parse diagnostics and sanitizer diagnostics are combined in order.
func RenderHTML(w io.Writer, source []byte, opts Options) ([]diag.Diagnostic, error) {
	p := Parse(source, opts)
	if !p.Ok() {
		return p.Diags, nil
	}
	rdiags, err := renderhtml.Render(w, p.Tree, opts.renderOptions())
	return append(p.Diags, rdiags...), err
}

// RenderHTMLString renders source into a string.
func RenderHTMLString(source []byte, opts Options) (*RenderResult, error) {
	p := Parse(source, opts)
	if !p.Ok() {
		return &RenderResult{Diags: p.Diags}, nil
	}
	html, rdiags, err := renderhtml.RenderString(p.Tree, opts.renderOptions())
	if err != nil {
		return nil, err
	}
	return &RenderResult{HTML: html, Diags: append(p.Diags, rdiags...)}, nil
}

// RenderTree renders an already parsed tree to w.
func RenderTree(w io.Writer, tree *ast.Node, opts Options) ([]diag.Diagnostic, error) {
	return renderhtml.Render(w, tree, opts.renderOptions())
}

// CompileResult is the outcome of CompileMDX.
type CompileResult struct {
	ESMSource  string
	Imports    []string
	Exports    []string
	Components []string
	Diags      []diag.Diagnostic
}

// CompileMDX parses source with MDX enabled and emits an ES module
// skeleton. With fatal diagnostics present the source is still emitted
// best-effort; callers gate on Diags.
func CompileMDX(source []byte, opts Options) *CompileResult {
	opts.MDX = true
	p := Parse(source, opts)
	if p.Tree == nil {
		return &CompileResult{Diags: p.Diags}
	}
	res := mdx.Compile(p.Tree, opts.compileOptions())
	return &CompileResult{
		ESMSource:  res.ESMSource,
		Imports:    res.Imports,
		Exports:    res.Exports,
		Components: res.Components,
		Diags:      append(p.Diags, res.Diags...),
	}
}

// NewSessionManager creates a registry for incremental sessions.
// With debug set, every edit is cross-checked against a full reparse.
func NewSessionManager(debug bool) *session.Manager {
	return session.NewManager(debug)
}

// OpenSession creates a standalone incremental session.
func OpenSession(id string, source []byte, opts Options) *session.Session {
	return session.Open(id, source, opts.parseConfig())
}

// CreateSession parses source and registers the session under id.
func CreateSession(m *session.Manager, id string, source []byte, opts Options) *session.Session {
	return m.Create(id, source, opts.parseConfig())
}
