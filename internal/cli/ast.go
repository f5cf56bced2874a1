package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jp-knj/jetmd/pkg/jetmd"
)

func newASTCommand(flags *rootFlags) *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "ast [file]",
		Short: "Parse Markdown and print the syntax tree as JSON",
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

			res := jetmd.Parse(source, opts)
			reportDiags(flags, path, res.Diags)
			if !res.Ok() {
				return fmt.Errorf("parse failed: %s", path)
			}

			var data []byte
			if compact {
				data, err = json.Marshal(res.Tree)
			} else {
				data, err = json.MarshalIndent(res.Tree, "", "  ")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "emit compact JSON")
	return cmd
}
