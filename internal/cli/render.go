package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jp-knj/jetmd/internal/logging"
	"github.com/jp-knj/jetmd/internal/ui/pretty"
	"github.com/jp-knj/jetmd/pkg/diag"
	"github.com/jp-knj/jetmd/pkg/jetmd"
	"github.com/jp-knj/jetmd/pkg/rendercache"
)

func newRenderCommand(flags *rootFlags) *cobra.Command {
	var cachePath string

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render Markdown or MDX to sanitized HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			source, path, err := readInput(args)
			if err != nil {
				return err
			}

			if cachePath != "" {
				return renderCached(cmd, flags, opts, source, path, cachePath)
			}

			diags, err := jetmd.RenderHTML(cmd.OutOrStdout(), source, opts)
			if err != nil {
				return err
			}
			reportDiags(flags, path, diags)
			return nil
		},
	}
	cmd.Flags().StringVar(&cachePath, "cache", "", "path to a render cache database")
	return cmd
}

// renderCached fronts the renderer with the content-hash cache.
func renderCached(cmd *cobra.Command, flags *rootFlags, opts jetmd.Options, source []byte, path, cachePath string) error {
	cache, err := rendercache.Open(cachePath)
	if err != nil {
		return err
	}
	defer cache.Close()

	key := rendercache.Key(source, fmt.Sprintf("%+v", opts))
	if html, ok, err := cache.Get(key); err == nil && ok {
		logging.Default().Debug("render cache hit", logging.FieldPath, path)
		fmt.Fprint(cmd.OutOrStdout(), html)
		return nil
	}

	res, err := jetmd.RenderHTMLString(source, opts)
	if err != nil {
		return err
	}
	reportDiags(flags, path, res.Diags)
	if err := cache.Put(key, res.HTML); err != nil {
		logging.Default().Warn("render cache write failed", logging.FieldError, err)
	}
	fmt.Fprint(cmd.OutOrStdout(), res.HTML)
	return nil
}

// reportDiags prints diagnostics to stderr, styled when the terminal
// supports it.
func reportDiags(flags *rootFlags, path string, diags []diag.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	styles := pretty.NewStyles(pretty.IsColorEnabled(flags.color, os.Stderr))
	width := pretty.TerminalWidth(os.Stderr, 120)
	for _, d := range diags {
		line := styles.FormatDiagnostic(path, d)
		if len(line) > 2*width {
			line = line[:2*width] + "…\n"
		}
		fmt.Fprint(os.Stderr, line)
	}
	fmt.Fprint(os.Stderr, styles.FormatSummary(path, len(diags)))
}
