package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jp-knj/jetmd/pkg/jetmd"
)

func newMDXCommand(flags *rootFlags) *cobra.Command {
	var jsxImportSource, providerImportSource string
	var manifest bool

	cmd := &cobra.Command{
		Use:   "mdx [file]",
		Short: "Compile an MDX document to an ES module",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			if jsxImportSource != "" {
				opts.JSXImportSource = jsxImportSource
			}
			if providerImportSource != "" {
				opts.ProviderImportSource = providerImportSource
			}
			source, path, err := readInput(args)
			if err != nil {
				return err
			}

			res := jetmd.CompileMDX(source, opts)
			reportDiags(flags, path, res.Diags)
			fmt.Fprint(cmd.OutOrStdout(), res.ESMSource)
			if manifest {
				fmt.Fprintf(cmd.OutOrStdout(), "\n// imports: %v\n// exports: %v\n// components: %v\n",
					res.Imports, res.Exports, res.Components)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&jsxImportSource, "jsx-import-source", "", "automatic JSX runtime package")
	cmd.Flags().StringVar(&providerImportSource, "provider-import-source", "", "MDX provider package")
	cmd.Flags().BoolVar(&manifest, "manifest", false, "append an import/export manifest comment")
	return cmd
}
