package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/stormrepl/internal/config"
	"github.com/dshills/stormrepl/internal/inspect"
	"github.com/dshills/stormrepl/internal/logging"
	"github.com/dshills/stormrepl/internal/repl"
)

// errScriptFailed is returned when a script fails to compile or run.
var errScriptFailed = errors.New("script failed")

// cli holds the persistent flags and the state derived from them.
type cli struct {
	configPath   string
	depth        int
	noDepthLimit bool
	color        string
	logLevel     string
	listing      bool
	noEval       bool
	timeout      time.Duration

	cfg *config.Config
	log *logging.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "stormrepl",
		Short: "Compile, run and inspect Lua scripts",
		Long: `stormrepl compiles a Lua script, optionally shows its bytecode listing and
evaluates it in a sandbox. Everything the script prints is rendered with a
JavaScript-style value inspector:

  print({ name = "x", list = {1, 2} })   -->   { name: 'x', list: [ 1, 2 ] }

Settings come from built-in defaults, the --config file (TOML or YAML),
STORMREPL_* environment variables and flags, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "Path to configuration file (.toml, .yaml)")
	flags.IntVar(&c.depth, "depth", inspect.DefaultDepth, "Nesting levels shown before [Object]/[Array]")
	flags.BoolVar(&c.noDepthLimit, "no-depth-limit", false, "Render values at any depth")
	flags.StringVar(&c.color, "color", config.ColorAuto, "Colorize output (auto, always, never)")
	flags.StringVar(&c.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.BoolVar(&c.listing, "listing", false, "Show the bytecode listing")
	flags.BoolVar(&c.noEval, "no-eval", false, "Compile only, do not evaluate")
	flags.DurationVar(&c.timeout, "timeout", 5*time.Second, "Evaluation timeout (0 disables)")

	root.AddCommand(
		newRunCmd(c),
		newWatchCmd(c),
		newInspectCmd(c),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration, applies explicitly set flags on top of
// it and builds the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.LoadOptions{Path: c.configPath})
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("depth") {
		cfg.Inspect.Depth = c.depth
	}
	if flags.Changed("no-depth-limit") {
		cfg.Inspect.Unlimited = c.noDepthLimit
	}
	if flags.Changed("color") {
		cfg.Inspect.Colors = c.color
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = c.logLevel
	}
	if flags.Changed("listing") {
		cfg.REPL.ShowListing = c.listing
	}
	if flags.Changed("no-eval") {
		cfg.REPL.Evaluate = !c.noEval
	}
	if flags.Changed("timeout") {
		cfg.REPL.Timeout = c.timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg = cfg
	c.log = logging.NewLogger(logging.Options{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Output: cmd.ErrOrStderr(),
		Name:   "stormrepl",
		Format: cfg.Logging.Format,
	})
	c.log.Debug("config loaded from %q", c.configPath)
	return nil
}

// colors reports whether output written to w should be styled.
func (c *cli) colors(w io.Writer) bool {
	switch c.cfg.Inspect.Colors {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// inspectOptions returns the inspector settings for output written to w.
func (c *cli) inspectOptions(w io.Writer) []inspect.Option {
	opts := []inspect.Option{
		inspect.WithDepth(c.cfg.Inspect.Depth),
		inspect.WithColors(c.colors(w)),
	}
	if c.cfg.Inspect.Unlimited {
		opts = append(opts, inspect.WithUnlimitedDepth())
	}
	return opts
}

// session builds a REPL session for output written to w.
func (c *cli) session(w io.Writer) (*repl.Session, error) {
	opts := []repl.Option{
		repl.WithDepth(c.cfg.Inspect.Depth),
		repl.WithColors(c.colors(w)),
		repl.WithEvaluate(c.cfg.REPL.Evaluate),
		repl.WithListing(c.cfg.REPL.ShowListing),
		repl.WithTimeout(c.cfg.REPL.Timeout),
		repl.WithCapabilities(c.cfg.REPL.Capabilities...),
		repl.WithDebounce(c.cfg.Watch.Debounce),
		repl.WithLogger(c.log),
	}
	if c.cfg.Inspect.Unlimited {
		opts = append(opts, repl.WithUnlimitedDepth())
	}
	return repl.New(opts...)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "stormrepl %s\n", moduleVersion())
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
			return nil
		},
	}
}
