// Package configloader loads CLI option files. Discovery walks from the
// working directory upward looking for .jetmd.yaml; explicit paths win.
// The core library never reads configuration itself.
package configloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jp-knj/jetmd/pkg/jetmd"
)

// ConfigFileName is the discovered configuration file name.
const ConfigFileName = ".jetmd.yaml"

// FileConfig mirrors the option surface in YAML form.
// Pointer fields distinguish "unset" from an explicit false.
type FileConfig struct {
	GFM                bool   `yaml:"gfm"`
	Frontmatter        *bool  `yaml:"frontmatter"`
	MDX                bool   `yaml:"mdx"`
	Math               bool   `yaml:"math"`
	Directives         bool   `yaml:"directives"`
	AllowDangerousHTML bool   `yaml:"allowDangerousHtml"`
	Sanitize           *bool  `yaml:"sanitize"`
	Position           *bool  `yaml:"position"`
	MaxInputBytes      int64  `yaml:"maxInputBytes"`
	MaxNestingDepth    int    `yaml:"maxNestingDepth"`
	Slugger            string `yaml:"slugger"`
	BaseHost           string `yaml:"baseHost"`
	AlignClass         bool   `yaml:"alignClass"`

	JSXImportSource      string `yaml:"jsxImportSource"`
	ProviderImportSource string `yaml:"providerImportSource"`
}

// Load reads and validates a config file.
func Load(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("configloader: read %s: %w", path, err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("configloader: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configloader: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *FileConfig) validate() error {
	switch c.Slugger {
	case "", "github", "simple", "none":
	default:
		return fmt.Errorf("invalid slugger %q (want github, simple, or none)", c.Slugger)
	}
	if c.MaxInputBytes < 0 {
		return errors.New("maxInputBytes must be non-negative")
	}
	if c.MaxNestingDepth < 0 {
		return errors.New("maxNestingDepth must be non-negative")
	}
	return nil
}

// Discover walks from dir toward the filesystem root looking for a
// config file. It returns the path and whether one was found.
func Discover(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Options converts the file form into engine options.
func (c *FileConfig) Options() jetmd.Options {
	opts := jetmd.Options{
		GFM:                c.GFM,
		MDX:                c.MDX,
		Math:               c.Math,
		Directives:         c.Directives,
		AllowDangerousHTML: c.AllowDangerousHTML,
		MaxInputBytes:      c.MaxInputBytes,
		MaxNestingDepth:    c.MaxNestingDepth,
		Slugger:            c.Slugger,
		BaseHost:           c.BaseHost,
		AlignClass:         c.AlignClass,

		JSXImportSource:      c.JSXImportSource,
		ProviderImportSource: c.ProviderImportSource,
	}
	if c.Frontmatter != nil && !*c.Frontmatter {
		opts.NoFrontmatter = true
	}
	if c.Sanitize != nil && !*c.Sanitize {
		opts.SanitizeOff = true
	}
	if c.Position != nil && !*c.Position {
		opts.NoPosition = true
	}
	return opts
}
