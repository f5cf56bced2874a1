// Package session implements the stateful incremental-reparse API: each
// session owns a rope-backed buffer and a syntax tree, and edits reparse
// only the affected top-level block span, splicing reused nodes from the
// previous tree generation into the new one. Documents holding link or
// footnote definitions, and edits touching the frontmatter or the first
// block after it, reparse whole.
package session

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jp-knj/jetmd/internal/parse"
	"github.com/jp-knj/jetmd/internal/textbuf"
	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
)

// Errors reported by session operations.
var (
	ErrNotFound     = errors.New("session: not found")
	ErrInvalidPatch = errors.New("session: invalid edit range")
)

// Edit replaces bytes [Start, End) of the pre-edit buffer with Text.
// Offsets refer to the buffer before any edit in the same batch.
type Edit struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Session is one (buffer, tree) pair. It is not safe for concurrent use;
// callers order Edit and Snapshot externally.
type Session struct {
	id     string
	cfg    parse.Config
	debug  bool
	buf    *textbuf.Rope
	tree   *ast.Node
	diags  []diag.Diagnostic
	nextID int

	// Stats accumulate across edits.
	editCount  int
	lastReuse  float64
	totalNodes int
}

// newSession parses text from scratch.
func newSession(id string, source []byte, cfg parse.Config, debug bool) *Session {
	cfg.Position = true // node reuse bookkeeping needs positions
	res := parse.Parse(source, cfg)
	s := &Session{
		id:    id,
		cfg:   cfg,
		debug: debug,
		buf:   textbuf.New(parse.Normalize(source)),
		tree:  res.Root,
		diags: res.Diags,
	}
	if res.Root != nil {
		s.nextID = res.Root.Count()
		s.totalNodes = res.Root.Count()
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Snapshot returns a borrowed view of the current tree. The tree is owned
// by the session and must not be mutated.
func (s *Session) Snapshot() *ast.Node { return s.tree }

// Diags returns the diagnostics from the most recent parse.
func (s *Session) Diags() []diag.Diagnostic { return s.diags }

// Text materializes the current buffer contents.
func (s *Session) Text() string { return s.buf.String() }

// Stats reports the number of edits applied so far, the reuse ratio of
// the most recent edit, and the node count of the current tree.
func (s *Session) Stats() (edits int, reuse float64, nodes int) {
	return s.editCount, s.lastReuse, s.totalNodes
}

// applyEdits validates and applies a batch of edits left-to-right,
// translating later offsets by the cumulative delta. It returns the dirty
// range in pre-edit coordinates and the net byte delta.
func (s *Session) applyEdits(edits []Edit) (dirtyStart, dirtyEnd, delta, lineDelta int, err error) {
	preLen := s.buf.Len()
	preLines := s.buf.NewlineCount()
	for i, e := range edits {
		if e.Start < 0 || e.End < e.Start || e.End > preLen {
			return 0, 0, 0, 0, fmt.Errorf("%w: edit %d [%d,%d) of %d bytes",
				ErrInvalidPatch, i, e.Start, e.End, preLen)
		}
		if i > 0 && e.Start < edits[i-1].End {
			return 0, 0, 0, 0, fmt.Errorf("%w: edit %d overlaps edit %d", ErrInvalidPatch, i, i-1)
		}
	}

	dirtyStart = preLen
	dirtyEnd = 0
	shift := 0
	for _, e := range edits {
		text := normalizeEditText(e.Text)
		res, err := s.buf.Splice(e.Start+shift, e.End+shift, text)
		if err != nil {
			// Bounds were validated; a failure here means non-UTF-8 text.
			return 0, 0, 0, 0, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
		}
		if e.Start < dirtyStart {
			dirtyStart = e.Start
		}
		if e.End > dirtyEnd {
			dirtyEnd = e.End
		}
		shift += res.Delta
	}
	if dirtyEnd < dirtyStart {
		dirtyStart, dirtyEnd = 0, 0
	}
	return dirtyStart, dirtyEnd, shift, s.buf.NewlineCount() - preLines, nil
}

// normalizeEditText applies the same ingest normalization as parsing:
// LF line endings and no NUL bytes.
func normalizeEditText(text string) string {
	if bytes.ContainsAny([]byte(text), "\r\x00") {
		text = string(bytes.ReplaceAll([]byte(text), []byte("\r\n"), []byte("\n")))
		text = string(bytes.ReplaceAll([]byte(text), []byte("\r"), []byte("\n")))
		text = string(bytes.ReplaceAll([]byte(text), []byte("\x00"), []byte("�")))
	}
	return text
}

// Edit applies a batch of edits and incrementally reparses.
// The resulting tree is structurally equal to a full reparse of the
// post-edit buffer; unaffected top-level blocks keep their node identity,
// except when the edit falls back to a whole-document reparse (see
// reparse), which replaces every block.
func (s *Session) Edit(edits []Edit) (*Delta, error) {
	if len(edits) == 0 {
		return &Delta{ReuseRatio: 1}, nil
	}

	dirtyStart, dirtyEnd, delta, lineDelta, err := s.applyEdits(edits)
	if err != nil {
		return nil, err
	}
	s.editCount++

	prevTotal := s.totalNodes
	d := s.reparse(dirtyStart, dirtyEnd, delta, lineDelta)
	s.totalNodes = s.tree.Count()

	if s.debug {
		full := parse.Parse([]byte(s.buf.String()), s.cfg)
		if !treesEqual(s.tree, full.Root) {
			s.diags = append(s.diags, diag.Diagnostic{
				Code:     diag.CodeReparseDiverged,
				Severity: diag.SeverityWarning,
				Message:  "incremental reparse diverged from full reparse; using full result",
			})
			s.tree = full.Root
			s.renumber(full.Root)
			d = &Delta{Inserted: full.Root.Children(), ReuseRatio: 0}
			s.totalNodes = full.Root.Count()
		}
	}

	if prevTotal > 0 {
		reused := s.totalNodes - countInserted(d)
		if reused < 0 {
			reused = 0
		}
		d.ReuseRatio = float64(reused) / float64(s.totalNodes)
	}
	s.lastReuse = d.ReuseRatio
	return d, nil
}

func countInserted(d *Delta) int {
	n := 0
	for _, node := range d.Inserted {
		n += node.Count()
	}
	return n
}

// reparse expands the dirty range to top-level block boundaries, reparses
// the affected span, and splices the result into the tree.
func (s *Session) reparse(dirtyStart, dirtyEnd, delta, lineDelta int) *Delta {
	blocks := s.tree.Children()

	// Definitions and footnotes create cross-block dependencies; when the
	// document carries any, a definition-affecting edit can change distant
	// paragraphs, so reparse whole.
	if s.hasDefinitions() {
		return s.fullReparse()
	}

	// Locate the affected span of top-level blocks in pre-edit offsets.
	first, last := -1, -1
	for i, b := range blocks {
		if b.Pos == nil {
			return s.fullReparse()
		}
		if first < 0 && b.Pos.End.Offset >= dirtyStart {
			first = i
		}
		if b.Pos.Start.Offset <= dirtyEnd {
			last = i
		}
	}
	if first < 0 {
		first = len(blocks)
	}
	if last < first-1 {
		last = first - 1
	}

	// A neighbor with no blank line in between can capture or release
	// lines across the boundary (lazy continuation, setext promotion),
	// so absorb adjacent neighbors; blank-separated ones are safe unless
	// their continuation rules are open-ended (lists, fences).
	for first > 0 && first <= last &&
		(adjacent(blocks[first-1], blocks[first]) || continuationSensitive(blocks[first-1])) {
		first--
	}
	for last >= first && last >= 0 && last+1 < len(blocks) &&
		(adjacent(blocks[last], blocks[last+1]) || continuationSensitive(blocks[last+1])) {
		last++
	}

	// Frontmatter only reparses whole.
	if s.tree.Root != nil && s.tree.Root.Frontmatter != nil {
		if first <= 0 || blocks[0].Kind == ast.NodeFrontmatter && first <= 1 {
			return s.fullReparse()
		}
	}

	// Pre-edit byte span of the affected blocks, snapped to line starts.
	spanStart := 0
	if first > 0 && first-1 < len(blocks) {
		spanStart = lineEndAfter(blocks[first-1])
	}
	spanEndPre := s.buf.Len() - delta
	if last+1 < len(blocks) {
		spanEndPre = blocks[last+1].Pos.Start.Offset
	}

	// Post-edit coordinates: the span start precedes every edit, the span
	// end follows them, so only the end moves.
	spanEndPost := spanEndPre + delta
	if spanEndPost > s.buf.Len() {
		spanEndPost = s.buf.Len()
	}
	if spanStart > spanEndPost {
		return s.fullReparse()
	}

	spanText, err := s.buf.Slice(spanStart, spanEndPost)
	if err != nil {
		return s.fullReparse()
	}

	subCfg := s.cfg
	subCfg.Frontmatter = false
	sub := parse.Parse([]byte(spanText), subCfg)
	if sub.Root == nil || sub.Root.Root != nil && (len(sub.Root.Root.Definitions) > 0 || len(sub.Root.Root.Footnotes) > 0) {
		// The edit introduced definitions; dependencies are unknown.
		return s.fullReparse()
	}

	// Shift the sub-parse into document coordinates.
	startPoint, perr := s.buf.PointAt(spanStart)
	if perr != nil {
		return s.fullReparse()
	}
	inserted := sub.Root.Children()
	for _, n := range inserted {
		ast.RemoveChild(sub.Root, n)
		shiftSubtree(n, spanStart, startPoint.Line-1)
		s.renumber(n)
	}

	// Splice: drop the affected blocks, insert the new ones, shift what
	// follows by the byte and line delta.
	d := &Delta{}

	var anchor *ast.Node
	if last+1 < len(blocks) {
		anchor = blocks[last+1]
	}
	for i := first; i <= last && i < len(blocks); i++ {
		collectIDs(blocks[i], &d.Removed)
		ast.RemoveChild(s.tree, blocks[i])
	}
	for _, n := range inserted {
		if anchor != nil {
			ast.InsertBefore(anchor, n)
		} else {
			ast.AppendChild(s.tree, n)
		}
		d.Inserted = append(d.Inserted, n)
	}
	for i := last + 1; i < len(blocks); i++ {
		shiftSubtreeDelta(blocks[i], delta, lineDelta, &d.Shifted)
	}
	if s.tree.Pos != nil {
		s.tree.Pos.End.Offset = s.buf.Len()
		s.tree.Pos.End.Line += lineDelta
	}

	s.diags = sub.Diags
	return d
}

// hasDefinitions reports whether the tree carries link or footnote
// definitions.
func (s *Session) hasDefinitions() bool {
	if s.tree == nil || s.tree.Root == nil {
		return false
	}
	return len(s.tree.Root.Definitions) > 0 || len(s.tree.Root.Footnotes) > 0
}

// adjacent reports whether no blank line separates two sibling blocks.
func adjacent(a, b *ast.Node) bool {
	if a.Pos == nil || b.Pos == nil {
		return true
	}
	return b.Pos.Start.Line-a.Pos.End.Line <= 1
}

// continuationSensitive reports whether a block's continuation rules can
// reach across a neighboring edit: open-ended constructs like lists and
// fenced code absorb following lines.
func continuationSensitive(b *ast.Node) bool {
	switch b.Kind {
	case ast.NodeList, ast.NodeCodeBlock, ast.NodeHTMLBlock, ast.NodeFootnoteDefinition:
		return true
	}
	return false
}

// fullReparse rebuilds the tree from the whole buffer.
func (s *Session) fullReparse() *Delta {
	old := s.tree
	res := parse.Parse([]byte(s.buf.String()), s.cfg)
	s.tree = res.Root
	s.diags = res.Diags
	s.renumber(res.Root)

	d := &Delta{}
	if old != nil {
		for _, b := range old.Children() {
			collectIDs(b, &d.Removed)
		}
	}
	d.Inserted = s.tree.Children()
	return d
}

// renumber assigns fresh session-scoped IDs to a subtree, keeping inserted
// nodes distinguishable from reused ones.
func (s *Session) renumber(n *ast.Node) {
	ast.Walk(n, func(c *ast.Node) error {
		c.ID = s.nextID
		s.nextID++
		return nil
	})
}

func collectIDs(n *ast.Node, out *[]int) {
	ast.Walk(n, func(c *ast.Node) error {
		*out = append(*out, c.ID)
		return nil
	})
}

// shiftSubtree relocates a sub-parse node into document coordinates.
func shiftSubtree(n *ast.Node, byteOff, lineOff int) {
	ast.Walk(n, func(c *ast.Node) error {
		if c.Pos != nil {
			c.Pos.Shift(byteOff, lineOff)
		}
		return nil
	})
}

// shiftSubtreeDelta shifts a retained subtree and records the root shift.
func shiftSubtreeDelta(n *ast.Node, byteDelta, lineDelta int, out *[]NodeShift) {
	if byteDelta == 0 && lineDelta == 0 {
		return
	}
	*out = append(*out, NodeShift{NodeID: n.ID, DeltaBytes: byteDelta})
	ast.Walk(n, func(c *ast.Node) error {
		if c.Pos != nil {
			c.Pos.Shift(byteDelta, lineDelta)
		}
		return nil
	})
}

// lineEndAfter returns the offset just past the block's final line.
func lineEndAfter(b *ast.Node) int {
	return b.Pos.End.Offset + 1
}

// treesEqual compares two trees structurally through the stable JSON form.
func treesEqual(a, b *ast.Node) bool {
	ja, err1 := a.MarshalJSON()
	jb, err2 := b.MarshalJSON()
	if err1 != nil || err2 != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
