package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp-knj/jetmd/internal/cli"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "abc", Date: "today"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCLI_Render(t *testing.T) {
	path := writeFile(t, "doc.md", "# Hello\n\nWorld\n")

	out, err := runCLI(t, "render", path)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hello</h1>\n<p>World</p>\n", out)
}

func TestCLI_RenderGFMFlag(t *testing.T) {
	path := writeFile(t, "doc.md", "~~x~~\n")

	out, err := runCLI(t, "render", "--gfm", path)
	require.NoError(t, err)
	assert.Equal(t, "<p><del>x</del></p>\n", out)

	out, err = runCLI(t, "render", path)
	require.NoError(t, err)
	assert.Equal(t, "<p>~~x~~</p>\n", out)
}

func TestCLI_RenderWithCache(t *testing.T) {
	path := writeFile(t, "doc.md", "# C\n")
	cachePath := filepath.Join(t.TempDir(), "cache.db")

	out, err := runCLI(t, "render", "--cache", cachePath, path)
	require.NoError(t, err)
	assert.Equal(t, "<h1>C</h1>\n", out)

	// Second run is served from the cache and prints identical output.
	out, err = runCLI(t, "render", "--cache", cachePath, path)
	require.NoError(t, err)
	assert.Equal(t, "<h1>C</h1>\n", out)
}

func TestCLI_AST(t *testing.T) {
	path := writeFile(t, "doc.md", "para\n")

	out, err := runCLI(t, "ast", "--compact", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"type":"root"`)
	assert.Contains(t, out, `"type":"paragraph"`)
}

func TestCLI_MDX(t *testing.T) {
	path := writeFile(t, "doc.mdx", "import B from './b'\n\n<B>hi</B>\n")

	out, err := runCLI(t, "mdx", path)
	require.NoError(t, err)
	assert.Contains(t, out, "import B from './b'")
	assert.Contains(t, out, "export default function MDXContent(props)")
}

func TestCLI_Version(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "jetmd test")
	assert.Contains(t, out, "abc")
}
