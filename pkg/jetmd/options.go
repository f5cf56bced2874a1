package jetmd

import (
	"github.com/jp-knj/jetmd/internal/parse"
	"github.com/jp-knj/jetmd/pkg/mdx"
	renderhtml "github.com/jp-knj/jetmd/pkg/render/html"
)

// Options configure parsing, rendering, and MDX compilation.
// The zero value is the safe default: CommonMark only, frontmatter
// recognized, sanitization on, positions attached.
type Options struct {
	// GFM enables tables, strikethrough, task lists, extended autolinks,
	// and footnotes.
	GFM bool

	// NoFrontmatter disables recognition of a leading ---/+++ block.
	// Frontmatter is recognized by default.
	NoFrontmatter bool

	// MDX enables ESM/JSX blocks and expression spans.
	MDX bool

	// Math recognizes $…$ and $$…$$ spans as opaque math nodes.
	Math bool

	// Directives recognizes ::name{attrs} block, leaf, and text
	// directives.
	Directives bool

	// AllowDangerousHTML combined with SanitizeOff passes raw HTML and
	// URLs through verbatim. Any other combination sanitizes.
	AllowDangerousHTML bool

	// SanitizeOff disables the sanitizer. It only takes effect together
	// with AllowDangerousHTML.
	SanitizeOff bool

	// NoPosition drops source positions from the tree.
	NoPosition bool

	// MaxInputBytes bounds the source size; 0 means 10 MiB.
	MaxInputBytes int64

	// MaxNestingDepth bounds block nesting; 0 means 100.
	MaxNestingDepth int

	// Slugger selects heading id generation: "github", "simple", or
	// "none" (default).
	Slugger string

	// Highlighter optionally converts code blocks to pre-escaped HTML.
	Highlighter renderhtml.Highlighter

	// BaseHost marks http(s) links to other hosts with
	// rel="nofollow noopener noreferrer".
	BaseHost string

	// AlignClass renders table alignment as a class instead of an inline
	// style.
	AlignClass bool

	// JS supplies MDX statement/expression scanning; nil selects the
	// built-in balanced scanner.
	JS mdx.JsExprParser

	// JSXImportSource and ProviderImportSource configure CompileMDX.
	JSXImportSource      string
	ProviderImportSource string
}

// parseConfig maps Options onto the parser configuration.
func (o Options) parseConfig() parse.Config {
	return parse.Config{
		GFM:             o.GFM,
		Frontmatter:     !o.NoFrontmatter,
		MDX:             o.MDX,
		Math:            o.Math,
		Directives:      o.Directives,
		Position:        !o.NoPosition,
		MaxInputBytes:   o.MaxInputBytes,
		MaxNestingDepth: o.MaxNestingDepth,
		JS:              o.JS,
	}
}

// renderOptions maps Options onto the HTML renderer configuration.
func (o Options) renderOptions() renderhtml.Options {
	return renderhtml.Options{
		Unsafe:      o.SanitizeOff && o.AllowDangerousHTML,
		BaseHost:    o.BaseHost,
		Slugger:     o.Slugger,
		Highlighter: o.Highlighter,
		AlignClass:  o.AlignClass,
	}
}

// compileOptions maps Options onto the MDX emitter configuration.
func (o Options) compileOptions() mdx.CompileOptions {
	return mdx.CompileOptions{
		JSXImportSource:      o.JSXImportSource,
		ProviderImportSource: o.ProviderImportSource,
	}
}
