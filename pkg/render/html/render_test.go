package html_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp-knj/jetmd/internal/parse"
	"github.com/jp-knj/jetmd/pkg/diag"
	renderhtml "github.com/jp-knj/jetmd/pkg/render/html"
)

func render(t *testing.T, src string, cfg parse.Config, opts renderhtml.Options) (string, []diag.Diagnostic) {
	t.Helper()
	res := parse.Parse([]byte(src), cfg)
	require.NotNil(t, res.Root)
	out, diags, err := renderhtml.RenderString(res.Root, opts)
	require.NoError(t, err)
	return out, append(res.Diags, diags...)
}

func TestRender_HeadingAndParagraph(t *testing.T) {
	t.Parallel()

	out, _ := render(t, "# Hello\n\nWorld\n", parse.Config{}, renderhtml.Options{})
	assert.Equal(t, "<h1>Hello</h1>\n<p>World</p>\n", out)
}

func TestRender_Sanitization(t *testing.T) {
	t.Parallel()

	src := "<script>alert(1)</script>\n\n[x](javascript:alert(1))\n"
	out, diags := render(t, src, parse.Config{}, renderhtml.Options{})
	assert.Equal(t, "<p><a href=\"#\">x</a></p>\n", out)

	var codes []string
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, diag.CodeDisallowedTag)
	assert.Contains(t, codes, diag.CodeDisallowedScheme)
}

func TestRender_UnsafePassthrough(t *testing.T) {
	t.Parallel()

	src := "<div onclick=\"x()\">raw</div>\n"
	out, _ := render(t, src, parse.Config{}, renderhtml.Options{Unsafe: true})
	assert.Equal(t, "<div onclick=\"x()\">raw</div>\n", out)
}

func TestRender_SanitizerFiltersAttributes(t *testing.T) {
	t.Parallel()

	src := "<div onclick=\"x()\" class=\"ok\">raw</div>\n"
	out, diags := render(t, src, parse.Config{}, renderhtml.Options{})
	assert.Contains(t, out, `<div class="ok">`)
	assert.NotContains(t, out, "onclick")

	found := false
	for _, d := range diags {
		if d.Code == diag.CodeDisallowedAttr {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRender_TableAlignment(t *testing.T) {
	t.Parallel()

	src := "| A | B |\n|:--|--:|\n| 1 | 2 |\n"
	out, _ := render(t, src, parse.Config{GFM: true}, renderhtml.Options{})

	assert.Contains(t, out, `<th style="text-align:left">A</th>`)
	assert.Contains(t, out, `<td style="text-align:right">2</td>`)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<thead>")
	assert.Contains(t, out, "<tbody>")

	classed, _ := render(t, src, parse.Config{GFM: true}, renderhtml.Options{AlignClass: true})
	assert.Contains(t, classed, `<th class="text-left">A</th>`)
}

func TestRender_EmptyTableCell(t *testing.T) {
	t.Parallel()

	src := "| A | B |\n|---|---|\n| 1 |\n"
	out, _ := render(t, src, parse.Config{GFM: true}, renderhtml.Options{})
	assert.Contains(t, out, "<td></td>")
}

func TestRender_TaskList(t *testing.T) {
	t.Parallel()

	src := "- [x] done\n- [ ] todo\n"
	out, _ := render(t, src, parse.Config{GFM: true}, renderhtml.Options{})
	assert.Contains(t, out, `<input type="checkbox" checked="" disabled="" /> done`)
	assert.Contains(t, out, `<input type="checkbox" disabled="" /> todo`)
}

func TestRender_SluggerIDs(t *testing.T) {
	t.Parallel()

	src := "# My Title\n\n# My Title\n\n# Other!\n"
	out, _ := render(t, src, parse.Config{}, renderhtml.Options{Slugger: "github"})

	assert.Contains(t, out, `<h1 id="my-title">My Title</h1>`)
	assert.Contains(t, out, `<h1 id="my-title-1">My Title</h1>`)
	assert.Contains(t, out, `<h1 id="other">Other!</h1>`)

	none, _ := render(t, src, parse.Config{}, renderhtml.Options{})
	assert.NotContains(t, none, "id=")
}

func TestRender_BaseHostRel(t *testing.T) {
	t.Parallel()

	src := "[in](https://mine.dev/x) [out](https://other.example/y) [rel](/local)\n"
	out, _ := render(t, src, parse.Config{}, renderhtml.Options{BaseHost: "mine.dev"})

	assert.Contains(t, out, `<a href="https://mine.dev/x">in</a>`)
	assert.Contains(t, out, `<a href="https://other.example/y" rel="nofollow noopener noreferrer">out</a>`)
	assert.Contains(t, out, `<a href="/local">rel</a>`)
}

func TestRender_Highlighter(t *testing.T) {
	t.Parallel()

	hl := func(code, lang string) (string, bool) {
		if lang == "go" {
			return `<span class="hl">` + strings.TrimSuffix(code, "\n") + `</span>`, true
		}
		return "", false
	}
	src := "```go\ncode\n```\n\n```other\nplain\n```\n"
	out, _ := render(t, src, parse.Config{}, renderhtml.Options{Highlighter: hl})

	assert.Contains(t, out, `<code class="language-go"><span class="hl">code</span></code>`)
	assert.Contains(t, out, `<code class="language-other">plain`)
}

func TestRender_Footnotes(t *testing.T) {
	t.Parallel()

	src := "text[^a]\n\n[^a]: note body\n"
	out, _ := render(t, src, parse.Config{GFM: true}, renderhtml.Options{})

	assert.Contains(t, out, `<sup class="fn"><a id="fnref-1" href="#fn-1">1</a></sup>`)
	assert.Contains(t, out, `<section class="footnotes">`)
	assert.Contains(t, out, `<li id="fn-1">`)
	assert.Contains(t, out, "note body")
	assert.Contains(t, out, `href="#fnref-1"`)
}

func TestRender_Math(t *testing.T) {
	t.Parallel()

	src := "inline $x^2$ math\n\n$$\nE = mc^2\n$$\n"
	out, _ := render(t, src, parse.Config{Math: true}, renderhtml.Options{})

	assert.Contains(t, out, `<span class="math math-inline">x^2</span>`)
	assert.Contains(t, out, `<div class="math math-display">E = mc^2</div>`)
}

func TestRender_MdxNodesAreInert(t *testing.T) {
	t.Parallel()

	src := "import B from './b'\n\n<B x={1}>hi</B>\n"
	out, _ := render(t, src, parse.Config{MDX: true}, renderhtml.Options{})

	assert.NotContains(t, out, "import")
	assert.NotContains(t, out, "{1}")
	assert.Contains(t, out, "hi")
}

type failWriter struct{ n int }

func (w *failWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	if w.n > 8 {
		return 0, errors.New("downstream closed")
	}
	return len(p), nil
}

func TestRender_WriterErrorPropagates(t *testing.T) {
	t.Parallel()

	res := parse.Parse([]byte("# Heading\n\nsome paragraph\n"), parse.Config{})
	require.NotNil(t, res.Root)

	_, err := renderhtml.Render(&failWriter{}, res.Root, renderhtml.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "downstream closed")
}

func TestRender_DisallowedSchemes(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		url  string
		safe bool
	}{
		{"https://x", true},
		{"http://x", true},
		{"mailto:a@b", true},
		{"tel:123", true},
		{"/relative", true},
		{"relative.html", true},
		{"#frag", true},
		{"javascript:alert(1)", false},
		{"vbscript:x", false},
		{"data:text/html,x", false},
		{"file:///etc/passwd", false},
	} {
		src := "[x](" + tc.url + ")\n"
		out, _ := render(t, src, parse.Config{}, renderhtml.Options{})
		if tc.safe {
			assert.NotContains(t, out, `href="#"`, "url %q should be allowed", tc.url)
		} else {
			assert.Contains(t, out, `href="#"`, "url %q should be rewritten", tc.url)
		}
	}
}

func TestRender_TreeWithoutPositions(t *testing.T) {
	t.Parallel()

	res := parse.Parse([]byte("# H\n"), parse.Config{Position: false})
	require.NotNil(t, res.Root)
	out, diags, err := renderhtml.RenderString(res.Root, renderhtml.Options{})
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "<h1>H</h1>\n", out)
}
