package parse

import (
	"strings"

	"github.com/jp-knj/jetmd/pkg/ast"
	"github.com/jp-knj/jetmd/pkg/diag"
)

// scanFrontmatter recognizes a leading ---/+++ frontmatter block and
// returns the byte offset where Markdown content begins. The value is
// stored raw; the core does not parse YAML or TOML.
func (p *parser) scanFrontmatter() int {
	var marker, format string
	switch {
	case strings.HasPrefix(p.src, "---\n"):
		marker, format = "---", "yaml"
	case strings.HasPrefix(p.src, "+++\n"):
		marker, format = "+++", "toml"
	default:
		return 0
	}

	body := p.src[4:]
	end := -1
	if strings.HasPrefix(body, marker+"\n") {
		end = 0
	} else if i := strings.Index(body, "\n"+marker+"\n"); i >= 0 {
		end = i + 1
	}
	if end < 0 {
		p.diags.WarnAt(diag.CodeUnclosedFrontmatter, p.posLines(1, 1),
			"frontmatter opened with %q is never closed", marker)
		return 0
	}

	contentEnd := 4 + end      // end of frontmatter body
	blockEnd := contentEnd + 4 // past the closing marker line
	value := p.src[4:contentEnd]

	n := ast.NewNode(ast.NodeFrontmatter)
	n.Format = format
	n.Value = strings.TrimSuffix(value, "\n")
	n.Pos = p.posRange(0, blockEnd-1)
	p.frontmatter = n
	return blockEnd
}
