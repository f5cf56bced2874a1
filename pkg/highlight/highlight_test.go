package highlight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jp-knj/jetmd/pkg/highlight"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "text", highlight.Detect(nil))
	assert.Equal(t, "bash", highlight.Detect([]byte("#!/bin/sh\necho hi\n")))
	assert.Equal(t, "go", highlight.Detect([]byte("package main\n\nfunc main() {}\n")))
}

func TestWithDetection(t *testing.T) {
	t.Parallel()

	var gotLang string
	hl := highlight.WithDetection(func(code, lang string) (string, bool) {
		gotLang = lang
		return "<hl>" + code + "</hl>", true
	})

	out, ok := hl("package main", "")
	assert.True(t, ok)
	assert.Equal(t, "go", gotLang)
	assert.Equal(t, "<hl>package main</hl>", out)

	out, ok = hl("x", "rust")
	assert.True(t, ok)
	assert.Equal(t, "rust", gotLang)
	assert.Equal(t, "<hl>x</hl>", out)

	// Nil inner highlighter falls through.
	none := highlight.WithDetection(nil)
	_, ok = none("code", "")
	assert.False(t, ok)
}
