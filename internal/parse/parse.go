// Package parse implements the two-pass CommonMark parser at the heart of
// jetmd: a block scanner that classifies logical lines into a container
// stack, and an inline parser that resolves emphasis, links, code spans,
// raw HTML, and the GFM and MDX extensions inside each inline-bearing block.
//
// The block scanner is an explicit loop over a stack of open containers.
// CommonMark's interruption and lazy-continuation rules defy pure recursive
// descent, so each open container contributes a continuation rule (extend)
// and new constructs register starters that are retried as the container
// stack deepens within a single line.
package parse

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
	"github.com/jp-knj/jetmd/pkg/mdx"
)

// Default limits, overridable through Config.
const (
	DefaultMaxInputBytes   = 10 << 20
	DefaultMaxNestingDepth = 100
)

// Config controls one parse pass.
type Config struct {
	// GFM enables tables, strikethrough, task lists, extended autolinks,
	// and footnotes.
	GFM bool

	// Frontmatter recognizes a leading ---/+++ block.
	Frontmatter bool

	// MDX enables ESM/JSX blocks and brace expression spans.
	MDX bool

	// Math recognizes $…$ and $$…$$ spans as opaque math nodes.
	Math bool

	// Directives recognizes ::name{attrs} block, leaf, and text directives.
	Directives bool

	// Position attaches source positions to every node.
	Position bool

	// MaxInputBytes bounds the source size; 0 means the default 10 MiB.
	MaxInputBytes int64

	// MaxNestingDepth bounds block nesting; 0 means the default 100.
	// Structure beyond the limit is flattened into text with a diagnostic.
	MaxNestingDepth int

	// JS supplies statement/expression scanning for MDX.
	// Nil selects the built-in balanced scanner.
	JS mdx.JsExprParser
}

func (c *Config) maxInput() int64 {
	if c.MaxInputBytes > 0 {
		return c.MaxInputBytes
	}
	return DefaultMaxInputBytes
}

func (c *Config) maxDepth() int {
	if c.MaxNestingDepth > 0 {
		return c.MaxNestingDepth
	}
	return DefaultMaxNestingDepth
}

func (c *Config) js() mdx.JsExprParser {
	if c.JS != nil {
		return c.JS
	}
	return mdx.DefaultParser()
}

// Stats summarizes a parse pass.
type Stats struct {
	TotalNodes int           `json:"totalNodes"`
	ParseTime  time.Duration `json:"parseTimeNs"`
}

// Result is the outcome of one parse pass.
type Result struct {
	Root  *ast.Node
	Diags []diag.Diagnostic
	Stats Stats
}

// Normalize prepares raw source text for scanning: line endings become LF,
// NUL bytes become U+FFFD, and a missing final newline is added.
func Normalize(source []byte) string {
	text := string(source)
	if strings.Contains(text, "\r") {
		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")
	}
	if strings.Contains(text, "\x00") {
		text = strings.ReplaceAll(text, "\x00", "�")
	}
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text
}

// Parse runs the block scanner and inline parser over source.
// Fatal input errors (oversize, invalid encoding) abort with no tree and a
// single error diagnostic; recoverable syntax issues accumulate as warnings
// alongside the tree.
func Parse(source []byte, cfg Config) *Result {
	started := time.Now()

	var diags diag.List
	if int64(len(source)) > cfg.maxInput() {
		diags.Error(diag.CodeInputTooLarge,
			"input is %d bytes, limit is %d", len(source), cfg.maxInput())
		return &Result{Diags: diags.Items(), Stats: Stats{ParseTime: time.Since(started)}}
	}
	if !utf8.Valid(source) {
		diags.Error(diag.CodeInvalidEncoding, "input is not valid UTF-8")
		return &Result{Diags: diags.Items(), Stats: Stats{ParseTime: time.Since(started)}}
	}

	p := &parser{
		cfg:           cfg,
		src:           Normalize(source),
		defs:          make(map[string]*ast.Definition),
		footnotes:     make(map[string]*ast.Node),
		pendingByNode: make(map[*ast.Node]*pendingText),
		empties:       make(map[*ast.Node]bool),
		spans:         make(map[*ast.Node]bool),
	}
	p.diags = &diags
	p.indexLines()
	p.installStarters()

	root := p.run()

	r := &Result{
		Root:  root,
		Diags: diags.Items(),
		Stats: Stats{TotalNodes: root.Count(), ParseTime: time.Since(started)},
	}
	return r
}

// starter attempts to begin a new block at the current line.
type starter func(p *parser, s line) (line, bool)

// blockBuilder is an open block on the container stack.
// extend decides whether the next line continues the block, consuming its
// markers; build assembles the finished node from the accumulated state.
type blockBuilder interface {
	extend(p *parser, s line) (line, bool)
	build(p *parser) *ast.Node
}

// openBlock is one entry on the container stack.
type openBlock struct {
	builder   blockBuilder
	inner     []*ast.Node
	startLine int
	endLine   int
}

type parser struct {
	cfg   Config
	src   string
	diags *diag.List

	lineStarts []int // lineStarts[i] is the offset of line i+1
	lineno     int
	stack      []openBlock
	lineDepth  int

	defs          map[string]*ast.Definition
	footnotes     map[string]*ast.Node
	frontmatter   *ast.Node
	texts         []*pendingText
	pendingByNode map[*ast.Node]*pendingText
	empties       map[*ast.Node]bool
	spans         map[*ast.Node]bool

	starters  []starter
	skipUntil int // skip lines that an MDX scan already consumed

	depthWarned bool

	// Inline parser state; see inline.go.
	s             string
	tm            *textmap
	emitted       int
	list          []inline
	backticks     backtickParser
	noCommentEnd  bool
	noCDATAEnd    bool
	noDeclEnd     bool
	noProcInstEnd bool
}

func (p *parser) indexLines() {
	p.lineStarts = append(p.lineStarts, 0)
	for i := 0; i < len(p.src); i++ {
		if p.src[i] == '\n' {
			p.lineStarts = append(p.lineStarts, i+1)
		}
	}
}

func (p *parser) installStarters() {
	p.starters = []starter{
		startIndentedCodeBlock,
		startFencedCodeBlock,
		startBlockQuote,
		startATXHeading,
		startSetextHeading,
		startThematicBreak,
		newListItem,
	}
	if p.cfg.MDX {
		p.starters = append(p.starters, startMdxEsm, startMdxJsx, startMdxFlowExpression)
	}
	if p.cfg.Math {
		p.starters = append(p.starters, startMathBlock)
	}
	if p.cfg.Directives {
		p.starters = append(p.starters, startContainerDirective, startLeafDirective)
	}
	if p.cfg.GFM {
		p.starters = append(p.starters, startFootnote)
	}
	p.starters = append(p.starters, startHTMLBlock)
}

// run drives the block scanner over all lines, then resolves inlines.
func (p *parser) run() *ast.Node {
	p.stack = append(p.stack, openBlock{builder: &rootBuilder{}, startLine: 1, endLine: 1})

	offset := 0
	if p.cfg.Frontmatter {
		offset = p.scanFrontmatter()
	}

	for offset < len(p.src) {
		nl := strings.IndexByte(p.src[offset:], '\n')
		end := offset + nl // content end; p.src always ends in \n
		p.lineno = p.lineFor(offset)
		if offset < p.skipUntil {
			offset = end + 1
			continue
		}
		p.addLine(makeLine(p.src[offset:end], offset))
		offset = end + 1
	}

	p.trimStack(1)

	root := ast.NewRoot()
	root.Root.Definitions = p.defs
	root.Root.Footnotes = p.footnotes
	if p.frontmatter != nil {
		root.Root.Frontmatter = p.frontmatter
		ast.AppendChild(root, p.frontmatter)
	}
	for _, b := range p.stack[0].inner {
		ast.AppendChild(root, b)
	}
	if p.cfg.Position {
		endPoint := p.pointAt(len(p.src))
		root.Pos = &ast.Position{Start: ast.Point{Line: 1, Column: 1}, End: endPoint}
	}

	// Inline pass: every inline-bearing block recorded during block
	// scanning is resolved now, with the definition tables complete.
	for _, t := range p.texts {
		p.resolveInline(t)
	}

	p.prune(root)
	if !p.cfg.Position {
		stripPositions(root)
	}
	assignIDs(root)
	return root
}

// lineFor maps a byte offset to its 1-based line number.
func (p *parser) lineFor(offset int) int {
	i := sort.SearchInts(p.lineStarts, offset+1) - 1
	return i + 1
}

// pointAt maps a byte offset to a Point. Columns count Unicode scalars.
func (p *parser) pointAt(offset int) ast.Point {
	lineno := p.lineFor(offset)
	start := p.lineStarts[lineno-1]
	return ast.Point{
		Line:   lineno,
		Column: utf8.RuneCountInString(p.src[start:offset]) + 1,
		Offset: offset,
	}
}

// lineEnd returns the offset of the end of the 1-based line's content,
// excluding the newline.
func (p *parser) lineEnd(lineno int) int {
	if lineno >= len(p.lineStarts) {
		return len(p.src)
	}
	return p.lineStarts[lineno] - 1
}

// posLines builds a Position spanning whole lines start..end.
func (p *parser) posLines(start, end int) *ast.Position {
	if start < 1 {
		start = 1
	}
	if end < start {
		end = start
	}
	return &ast.Position{
		Start: p.pointAt(p.lineStarts[start-1]),
		End:   p.pointAt(p.lineEnd(end)),
	}
}

// posRange builds a Position spanning the byte range [start, end).
func (p *parser) posRange(start, end int) *ast.Position {
	return &ast.Position{Start: p.pointAt(start), End: p.pointAt(end)}
}

// addLine feeds one logical line to the container stack.
func (p *parser) addLine(s line) {
	blank := s.isBlank()

	// Walk the open containers; each one's continuation rule decides
	// whether the line continues it.
	// Builders that fail to continue must return the line unchanged;
	// a builder that consumed the line while refusing to continue
	// (a closing fence, say) returns an empty line instead.
	p.lineDepth = 0
	for ; p.lineDepth+1 < len(p.stack); p.lineDepth++ {
		var ok bool
		s, ok = p.stack[p.lineDepth+1].builder.extend(p, s)
		if !ok {
			break
		}
		if !blank {
			p.stack[p.lineDepth+1].endLine = p.lineno
		}
	}

	if s.isBlank() {
		// Either the line is blank, closing any unmatched open blocks,
		// or a leaf builder consumed it whole (then the trim is a no-op).
		p.trimStack(p.lineDepth + 1)
		return
	}

	// Attempt to open new containers and leaf blocks.
Prefixes:
	for _, fn := range p.starters {
		if l, ok := fn(p, s); ok {
			s = l
			if s.isBlank() {
				return
			}
			p.lineDepth++
			goto Prefixes
		}
	}

	startParagraph(p, s)
}

func (p *parser) trimStack(depth int) {
	for len(p.stack) > depth {
		p.closeBlock()
	}
}

// checkDepth enforces the container nesting limit. Structure beyond it is
// flattened into text by refusing the container, with a one-time warning.
func (p *parser) checkDepth() bool {
	if len(p.stack) < p.cfg.maxDepth() {
		return true
	}
	if !p.depthWarned {
		p.depthWarned = true
		p.diags.WarnAt(diag.CodeNestingTooDeep, p.posLines(p.lineno, p.lineno),
			"nesting depth exceeds %d; flattening deeper structure", p.cfg.maxDepth())
	}
	return false
}

// addBlock opens a new block at the current line depth.
func (p *parser) addBlock(c blockBuilder) {
	p.trimStack(p.lineDepth + 1)
	p.stack = append(p.stack, openBlock{
		builder:   c,
		startLine: p.lineno,
		endLine:   p.lineno,
	})
}

// doneBlock records a completed leaf block at the current depth.
func (p *parser) doneBlock(n *ast.Node) {
	p.trimStack(p.lineDepth + 1)
	e := &p.stack[len(p.stack)-1]
	e.endLine = p.lineno
	if n != nil {
		e.inner = append(e.inner, n)
	}
}

// closeBlock pops and builds the top open block, attaching its node to the
// parent entry.
func (p *parser) closeBlock() *ast.Node {
	e := &p.stack[len(p.stack)-1]
	if e.builder == nil {
		return nil
	}
	n := e.builder.build(p)
	p.stack = p.stack[:len(p.stack)-1]
	if n != nil && len(p.stack) > 0 {
		parent := &p.stack[len(p.stack)-1]
		parent.inner = append(parent.inner, n)
		if e.endLine > parent.endLine {
			parent.endLine = e.endLine
		}
	}
	return n
}

// curB returns the builder at the current line depth, if any.
func (p *parser) curB() blockBuilder {
	if p.lineDepth < len(p.stack) {
		return p.stack[p.lineDepth].builder
	}
	return nil
}

// nextB returns the builder one past the current line depth, if any.
func (p *parser) nextB() blockBuilder {
	if p.lineDepth+1 < len(p.stack) {
		return p.stack[p.lineDepth+1].builder
	}
	return nil
}

// para returns the top builder as a paraBuilder, or nil.
func (p *parser) para() *paraBuilder {
	if b, ok := p.stack[len(p.stack)-1].builder.(*paraBuilder); ok {
		return b
	}
	return nil
}

// last returns the most recently completed block at the top of the stack.
func (p *parser) last() *ast.Node {
	e := &p.stack[len(p.stack)-1]
	if len(e.inner) == 0 {
		return nil
	}
	return e.inner[len(e.inner)-1]
}

// deleteLast removes the most recently completed block at the top.
func (p *parser) deleteLast() {
	e := &p.stack[len(p.stack)-1]
	if len(e.inner) > 0 {
		e.inner = e.inner[:len(e.inner)-1]
	}
}

// blocks returns the completed children of the top entry.
func (p *parser) blocks() []*ast.Node {
	e := &p.stack[len(p.stack)-1]
	return e.inner
}

// pos returns the line span of the top entry.
func (p *parser) pos() (startLine, endLine int) {
	e := &p.stack[len(p.stack)-1]
	return e.startLine, e.endLine
}

// nodeAtLines creates a node of the given kind spanning whole lines.
func (p *parser) nodeAtLines(kind ast.NodeKind, start, end int) *ast.Node {
	n := ast.NewNode(kind)
	n.Pos = p.posLines(start, end)
	return n
}

// rootBuilder anchors the bottom of the container stack.
type rootBuilder struct{}

func (b *rootBuilder) extend(p *parser, s line) (line, bool) {
	return s, true
}

func (b *rootBuilder) build(p *parser) *ast.Node {
	return nil
}

// prune removes bookkeeping-only empty paragraphs from the finished tree
// and lifts JSX text-span placeholders into their parents. Footnote
// definition sub-trees hang off the root tables, not the visible tree,
// and are swept too.
func (p *parser) prune(root *ast.Node) {
	var empties, spans []*ast.Node
	collect := func(n *ast.Node) error {
		if p.empties[n] {
			empties = append(empties, n)
		}
		if p.spans[n] {
			spans = append(spans, n)
		}
		return nil
	}
	ast.Walk(root, collect)
	for _, fn := range p.footnotes {
		ast.Walk(fn, collect)
	}
	for _, n := range empties {
		ast.RemoveChild(n.Parent, n)
	}
	for _, n := range spans {
		for n.FirstChild != nil {
			c := n.FirstChild
			ast.RemoveChild(n, c)
			ast.InsertBefore(n, c)
		}
		ast.RemoveChild(n.Parent, n)
	}
}

func stripPositions(root *ast.Node) {
	ast.Walk(root, func(n *ast.Node) error {
		n.Pos = nil
		return nil
	})
}

func assignIDs(root *ast.Node) {
	id := 0
	ast.Walk(root, func(n *ast.Node) error {
		n.ID = id
		id++
		return nil
	})
}
