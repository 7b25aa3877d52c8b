package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/uniseg"
	"github.com/spf13/cobra"

	"github.com/dshills/stormrepl/internal/repl"
)

func newWatchCmd(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-run a script whenever it changes",
		Long: `Run FILE, then run it again every time it is saved, until interrupted.
Bursts of changes are collapsed using the configured debounce delay.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			session, err := c.session(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return session.Watch(cmd.Context(), args[0], func(res *repl.Result) {
				if format == formatText {
					fmt.Fprintln(cmd.ErrOrStderr(), header(res.Name, res.Duration))
				}
				if err := writeResult(cmd, res, format); err != nil {
					c.log.Error("writing result: %v", err)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json)")
	return cmd
}

// headerWidth is the terminal column count a watch header rule fills.
const headerWidth = 60

// header returns the rule printed above each watch run, padded with box
// characters to headerWidth columns.
func header(name string, d time.Duration) string {
	h := fmt.Sprintf("── %s (%s) ", name, d.Round(time.Millisecond))
	if pad := headerWidth - uniseg.StringWidth(h); pad > 0 {
		h += strings.Repeat("─", pad)
	}
	return h
}
