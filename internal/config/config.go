package config

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/dshills/stormrepl/internal/config/loader"
)

// Color modes accepted by inspect.colors.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the decoded stormrepl configuration.
type Config struct {
	Inspect Inspect
	REPL    REPL
	Watch   Watch
	Logging Logging
}

// Inspect controls how values are rendered.
type Inspect struct {
	// Depth is the number of nesting levels rendered before a composite
	// collapses to [Object] or [Array].
	Depth int
	// Unlimited disables the depth limit.
	Unlimited bool
	// Colors is one of ColorAuto, ColorAlways or ColorNever.
	Colors string
}

// REPL controls compilation and evaluation.
type REPL struct {
	Evaluate     bool
	ShowListing  bool
	Timeout      time.Duration
	Capabilities []string
}

// Watch controls the watch command.
type Watch struct {
	Debounce time.Duration
}

// Logging controls the diagnostic logger.
type Logging struct {
	Level  string
	Format string
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Inspect: Inspect{
			Depth:  3,
			Colors: ColorAuto,
		},
		REPL: REPL{
			Evaluate: true,
			Timeout:  5 * time.Second,
		},
		Watch: Watch{
			Debounce: 500 * time.Millisecond,
		},
		Logging: Logging{
			Level:  "warn",
			Format: "console",
		},
	}
}

// ToMap returns the configuration as a nested map, the shape every loader
// produces.
func (c *Config) ToMap() map[string]any {
	caps := make([]any, len(c.REPL.Capabilities))
	for i, name := range c.REPL.Capabilities {
		caps[i] = name
	}
	return map[string]any{
		"inspect": map[string]any{
			"depth":     c.Inspect.Depth,
			"unlimited": c.Inspect.Unlimited,
			"colors":    c.Inspect.Colors,
		},
		"repl": map[string]any{
			"evaluate":     c.REPL.Evaluate,
			"showListing":  c.REPL.ShowListing,
			"timeout":      c.REPL.Timeout,
			"capabilities": caps,
		},
		"watch": map[string]any{
			"debounce": c.Watch.Debounce,
		},
		"logging": map[string]any{
			"level":  c.Logging.Level,
			"format": c.Logging.Format,
		},
	}
}

// FromMap decodes m on top of the defaults. Missing settings keep their
// default value; a setting of the wrong type is a *TypeError.
func FromMap(m map[string]any) (*Config, error) {
	c := Default()
	d := decoder{m: m}

	d.integer("inspect.depth", &c.Inspect.Depth)
	d.boolean("inspect.unlimited", &c.Inspect.Unlimited)
	d.str("inspect.colors", &c.Inspect.Colors)
	d.boolean("repl.evaluate", &c.REPL.Evaluate)
	d.boolean("repl.showListing", &c.REPL.ShowListing)
	d.duration("repl.timeout", &c.REPL.Timeout)
	d.list("repl.capabilities", &c.REPL.Capabilities)
	d.duration("watch.debounce", &c.Watch.Debounce)
	d.str("logging.level", &c.Logging.Level)
	d.str("logging.format", &c.Logging.Format)

	if d.err != nil {
		return nil, d.err
	}
	return c, nil
}

// Validate checks every setting and reports all failures at once.
func (c *Config) Validate() error {
	var err error
	if c.Inspect.Depth < 0 {
		err = multierr.Append(err, negative("inspect.depth", c.Inspect.Depth))
	}
	err = multierr.Append(err, oneOf("inspect.colors", c.Inspect.Colors, ColorAuto, ColorAlways, ColorNever))
	if c.REPL.Timeout < 0 {
		err = multierr.Append(err, negative("repl.timeout", c.REPL.Timeout))
	}
	if c.Watch.Debounce < 0 {
		err = multierr.Append(err, negative("watch.debounce", c.Watch.Debounce))
	}
	err = multierr.Append(err, oneOf("logging.level", strings.ToLower(c.Logging.Level), "debug", "info", "warn", "warning", "error"))
	err = multierr.Append(err, oneOf("logging.format", c.Logging.Format, "console", "json"))
	return err
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.REPL.Capabilities = append([]string(nil), c.REPL.Capabilities...)
	return &out
}

func oneOf(path, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{Path: path, Value: value, Problem: ProblemNotAllowed, Allowed: allowed}
}

func negative(path string, value any) error {
	return &ValidationError{Path: path, Value: value, Problem: ProblemNegative}
}

// decoder reads typed settings out of a merged map, keeping every type
// error it meets.
type decoder struct {
	m   map[string]any
	err error
}

func (d *decoder) fail(path, expected string, v any) {
	d.err = multierr.Append(d.err, &TypeError{Path: path, Want: expected, Got: v})
}

func (d *decoder) str(path string, dst *string) {
	v, ok := getPath(d.m, path)
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		d.fail(path, "string", v)
		return
	}
	*dst = s
}

// boolean also accepts integers, which is how the env loader reads 0 and 1.
func (d *decoder) boolean(path string, dst *bool) {
	v, ok := getPath(d.m, path)
	if !ok {
		return
	}
	switch val := v.(type) {
	case bool:
		*dst = val
	case int:
		*dst = val != 0
	case int64:
		*dst = val != 0
	default:
		d.fail(path, "bool", v)
	}
}

func (d *decoder) integer(path string, dst *int) {
	v, ok := getPath(d.m, path)
	if !ok {
		return
	}
	switch val := v.(type) {
	case int:
		*dst = val
	case int64:
		*dst = int(val)
	case float64:
		*dst = int(val)
	default:
		d.fail(path, "int", v)
	}
}

// duration accepts Go duration strings, time.Duration values and plain
// integers counted in milliseconds.
func (d *decoder) duration(path string, dst *time.Duration) {
	v, ok := getPath(d.m, path)
	if !ok {
		return
	}
	switch val := v.(type) {
	case time.Duration:
		*dst = val
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			d.fail(path, "duration", v)
			return
		}
		*dst = parsed
	case int:
		*dst = time.Duration(val) * time.Millisecond
	case int64:
		*dst = time.Duration(val) * time.Millisecond
	case float64:
		*dst = time.Duration(val * float64(time.Millisecond))
	default:
		d.fail(path, "duration", v)
	}
}

// list accepts a list of strings or one comma-separated string.
func (d *decoder) list(path string, dst *[]string) {
	v, ok := getPath(d.m, path)
	if !ok {
		return
	}
	switch val := v.(type) {
	case []string:
		*dst = append([]string(nil), val...)
	case string:
		*dst = splitList(val)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				d.fail(path, "[]string", v)
				return
			}
			out = append(out, s)
		}
		*dst = out
	default:
		d.fail(path, "[]string", v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// Path is the config file. Empty means no file; a missing file is
	// not an error.
	Path string
	// EnvPrefix overrides loader.DefaultEnvPrefix.
	EnvPrefix string
	// FS overrides the OS file system.
	FS loader.FileSystem
	// Env overrides the environment loader.
	Env loader.Loader
}

// Load reads defaults, the config file and the environment, in increasing
// precedence, and returns the validated result.
func Load(opts LoadOptions) (*Config, error) {
	merged := Default().ToMap()

	if opts.Path != "" {
		fileCfg, err := loader.ForPath(opts.FS, opts.Path).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, fileCfg)
	}

	env := opts.Env
	if env == nil {
		prefix := opts.EnvPrefix
		if prefix == "" {
			prefix = loader.DefaultEnvPrefix
		}
		env = loader.NewEnvLoader(prefix)
	}
	envCfg, err := env.Load()
	if err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	merged = loader.DeepMerge(merged, envCfg)

	cfg, err := FromMap(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	current := any(m)
	for _, part := range strings.Split(path, ".") {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = cm[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	case []string:
		return "[]string"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
