package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/stormrepl/internal/convert"
	"github.com/dshills/stormrepl/internal/inspect"
)

func newInspectCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE.json|-",
		Short: "Inspect a JSON document",
		Long:  `Render a JSON document (or standard input for "-") with the value inspector.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			v, err := convert.FromJSON(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			_, err = fmt.Fprintln(out, inspect.Inspect(v, c.inspectOptions(out)...))
			return err
		},
	}
}
