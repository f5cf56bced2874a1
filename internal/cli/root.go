// Package cli provides the Cobra command structure for jetmd.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jp-knj/jetmd/internal/configloader"
	"github.com/jp-knj/jetmd/internal/logging"
	"github.com/jp-knj/jetmd/pkg/jetmd"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// rootFlags are the persistent flags shared by all subcommands.
type rootFlags struct {
	debug      bool
	configPath string
	color      string

	gfm        bool
	mdx        bool
	math       bool
	directives bool
	unsafe     bool
	slugger    string
	baseHost   string
}

// NewRootCommand creates the root jetmd command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "jetmd",
		Short: "A fast Markdown/MDX engine with incremental reparse",
		Long: `jetmd parses CommonMark and GitHub Flavored Markdown into a typed
syntax tree and renders sanitized HTML. It also compiles MDX documents
to ES module skeletons and keeps incremental sessions for editors.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if flags.debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	pf.StringVar(&flags.configPath, "config", "", "path to config file")
	pf.StringVar(&flags.color, "color", "auto", "colorize output: auto, always, never")
	pf.BoolVar(&flags.gfm, "gfm", false, "enable GitHub Flavored Markdown extensions")
	pf.BoolVar(&flags.mdx, "mdx", false, "enable MDX (JSX and ESM in Markdown)")
	pf.BoolVar(&flags.math, "math", false, "recognize $…$ and $$…$$ math spans")
	pf.BoolVar(&flags.directives, "directives", false, "recognize ::name directives")
	pf.BoolVar(&flags.unsafe, "unsafe", false, "disable sanitization and pass raw HTML through")
	pf.StringVar(&flags.slugger, "slugger", "", "heading id style: github, simple, none")
	pf.StringVar(&flags.baseHost, "base-host", "", "host whose external links get rel attributes")

	// Subcommands.
	rootCmd.AddCommand(newRenderCommand(flags))
	rootCmd.AddCommand(newASTCommand(flags))
	rootCmd.AddCommand(newMDXCommand(flags))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

// options assembles engine options from the config file and flags;
// flags win over file values.
func (f *rootFlags) options() (jetmd.Options, error) {
	opts := jetmd.Options{}

	path := f.configPath
	if path == "" {
		if found, ok := configloader.Discover("."); ok {
			path = found
		}
	}
	if path != "" {
		cfg, err := configloader.Load(path)
		if err != nil {
			return opts, err
		}
		opts = cfg.Options()
	}

	if f.gfm {
		opts.GFM = true
	}
	if f.mdx {
		opts.MDX = true
	}
	if f.math {
		opts.Math = true
	}
	if f.directives {
		opts.Directives = true
	}
	if f.unsafe {
		opts.AllowDangerousHTML = true
		opts.SanitizeOff = true
	}
	if f.slugger != "" {
		opts.Slugger = f.slugger
	}
	if f.baseHost != "" {
		opts.BaseHost = f.baseHost
	}
	return opts, nil
}

// readInput loads the named file, or stdin for "-" or no argument.
func readInput(args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		return data, "<stdin>", err
	}
	data, err := os.ReadFile(args[0])
	return data, args[0], err
}
