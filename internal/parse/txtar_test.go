package parse_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/jp-knj/jetmd/internal/parse"
	renderhtml "github.com/jp-knj/jetmd/pkg/render/html"
)

// TestTxtarCases renders each NAME.md entry in the archive and compares it
// byte-for-byte against the paired NAME.html entry.
func TestTxtarCases(t *testing.T) {
	t.Parallel()

	files, err := filepath.Glob("testdata/*.txt")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		file := file
		t.Run(filepath.Base(file), func(t *testing.T) {
			t.Parallel()

			a, err := txtar.ParseFile(file)
			require.NoError(t, err)

			inputs := map[string]string{}
			expected := map[string]string{}
			for _, f := range a.Files {
				switch {
				case strings.HasSuffix(f.Name, ".md"):
					inputs[strings.TrimSuffix(f.Name, ".md")] = string(f.Data)
				case strings.HasSuffix(f.Name, ".html"):
					expected[strings.TrimSuffix(f.Name, ".html")] = string(f.Data)
				}
			}

			for name, src := range inputs {
				want, ok := expected[name]
				require.True(t, ok, "case %s has no expected output", name)

				res := parse.Parse([]byte(src), parse.Config{GFM: true})
				require.NotNil(t, res.Root, "case %s: %v", name, res.Diags)
				got, _, err := renderhtml.RenderString(res.Root, renderhtml.Options{})
				require.NoError(t, err)
				require.Equal(t, want, got, "case %s, input %q", name, src)
			}
		})
	}
}
