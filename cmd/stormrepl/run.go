package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/stormrepl/internal/repl"
)

// Output formats of the run and watch commands.
const (
	formatText = "text"
	formatJSON = "json"
)

func newRunCmd(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "run FILE|-",
		Short: "Compile and evaluate a script",
		Long: `Compile FILE (or standard input for "-"), print the bytecode listing when
enabled, then evaluate it and print everything the script logged. A runtime
error is reported as the last output line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			session, err := c.session(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var res *repl.Result
			if args[0] == "-" {
				src, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				res = session.Run(cmd.Context(), "stdin", string(src))
			} else {
				res = session.RunFile(cmd.Context(), args[0])
			}

			if err := writeResult(cmd, res, format); err != nil {
				return err
			}
			if !res.OK() {
				return errScriptFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json)")
	return cmd
}

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format %q (must be text or json)", format)
	}
}

// writeResult prints res in the requested format. In text form, an error
// that is not already the last console line goes to stderr.
func writeResult(cmd *cobra.Command, res *repl.Result, format string) error {
	out := cmd.OutOrStdout()

	if format == formatJSON {
		data, err := res.JSON()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	if err := res.WriteText(out); err != nil {
		return err
	}
	if !res.OK() {
		n := len(res.Console)
		if n == 0 || res.Console[n-1] != res.Error {
			fmt.Fprintln(cmd.ErrOrStderr(), res.Error)
		}
	}
	return nil
}
