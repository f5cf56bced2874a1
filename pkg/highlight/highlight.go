// Package highlight supplies the highlighter capability for code blocks.
// It uses go-enry to detect a language for fenced code that carries no
// info string, so downstream highlighters and language-<lang> classes
// still work on bare fences.
package highlight

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"

	renderhtml "github.com/jp-knj/jetmd/pkg/render/html"
)

// Language constants for commonly detected languages.
const (
	langGo   = "go"
	langText = "text"
	langBash = "bash"
)

// classifierCandidates bounds the classifier to languages that actually
// appear in fenced code.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript", "Ruby", "Rust",
	"Java", "C", "C++", "SQL", "JSON", "YAML", "HTML", "CSS", "Markdown",
	"Dockerfile",
}

// Detect returns the detected language for code content.
// Returns "text" if detection fails or confidence is low.
func Detect(content []byte) string {
	if len(content) == 0 {
		return langText
	}

	// A shebang is the most reliable signal.
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	if bytes.HasPrefix(bytes.TrimSpace(content), []byte("package ")) {
		return langGo
	}

	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}

	return langText
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	if lang == "Shell" {
		return langBash
	}
	return strings.ToLower(lang)
}

// WithDetection wraps a highlighter so code blocks without a language get
// one detected before highlighting.
func WithDetection(h renderhtml.Highlighter) renderhtml.Highlighter {
	return func(code, lang string) (string, bool) {
		if lang == "" {
			lang = Detect([]byte(code))
		}
		if h == nil {
			return "", false
		}
		return h(code, lang)
	}
}
