package repl

import (
	"time"

	"github.com/dshills/stormrepl/internal/inspect"
	"github.com/dshills/stormrepl/internal/logging"
	"github.com/dshills/stormrepl/internal/lua"
	"github.com/dshills/stormrepl/internal/watcher"
)

// Options holds the settings of a Session.
type Options struct {
	// Depth limits how deep console output descends into values.
	Depth inspect.Depth

	// Colors styles console output with ANSI sequences.
	Colors bool

	// Evaluate runs the program after compiling it.
	Evaluate bool

	// ShowListing keeps the bytecode listing on the result.
	ShowListing bool

	// Timeout bounds each evaluation. Zero disables it.
	Timeout time.Duration

	// Capabilities widen the sandbox.
	Capabilities []string

	// Debounce is the quiet period Watch waits for after a change.
	Debounce time.Duration

	// Logger receives diagnostics.
	Logger *logging.Logger
}

// DefaultOptions returns the default session settings.
func DefaultOptions() Options {
	return Options{
		Depth:    inspect.Levels(inspect.DefaultDepth),
		Evaluate: true,
		Timeout:  lua.DefaultExecutionTimeout,
		Debounce: watcher.DefaultDebounce,
	}
}

// Option configures a Session.
type Option func(*Options)

// WithDepth sets the inspection depth.
func WithDepth(n int) Option {
	return func(o *Options) {
		o.Depth = inspect.Levels(n)
	}
}

// WithUnlimitedDepth removes the inspection depth limit.
func WithUnlimitedDepth() Option {
	return func(o *Options) {
		o.Depth = inspect.Unlimited
	}
}

// WithColors enables or disables styled console output.
func WithColors(enabled bool) Option {
	return func(o *Options) {
		o.Colors = enabled
	}
}

// WithEvaluate enables or disables evaluation.
func WithEvaluate(enabled bool) Option {
	return func(o *Options) {
		o.Evaluate = enabled
	}
}

// WithListing enables or disables the bytecode listing.
func WithListing(enabled bool) Option {
	return func(o *Options) {
		o.ShowListing = enabled
	}
}

// WithTimeout sets the evaluation timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithCapabilities grants sandbox capabilities by name.
func WithCapabilities(names ...string) Option {
	return func(o *Options) {
		o.Capabilities = append(o.Capabilities, names...)
	}
}

// WithDebounce sets the Watch debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(o *Options) {
		if d >= 0 {
			o.Debounce = d
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}
