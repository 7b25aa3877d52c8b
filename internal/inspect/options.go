package inspect

// DefaultDepth is the number of nested levels rendered before aggregates are
// abbreviated as [Object].
const DefaultDepth = 3

// Depth is a recursion budget. The zero value is a budget of zero levels;
// Unlimited never runs out.
type Depth struct {
	levels    int
	unlimited bool
}

// Unlimited is the budget that never runs out.
var Unlimited = Depth{unlimited: true}

// Levels returns a budget of n nested levels.
func Levels(n int) Depth {
	return Depth{levels: n}
}

// IsUnlimited reports whether d never runs out.
func (d Depth) IsUnlimited() bool {
	return d.unlimited
}

// Levels returns the remaining levels. It is meaningless for Unlimited.
func (d Depth) Levels() int {
	return d.levels
}

// exhausted reports whether the budget went negative.
func (d Depth) exhausted() bool {
	return !d.unlimited && d.levels < 0
}

// next returns the budget one level down.
func (d Depth) next() Depth {
	if d.unlimited {
		return d
	}
	return Depth{levels: d.levels - 1}
}

// Options controls rendering.
type Options struct {
	Depth  Depth
	Colors bool
}

// DefaultOptions returns the options used by Inspect without arguments.
func DefaultOptions() Options {
	return Options{Depth: Levels(DefaultDepth)}
}

// Option configures Options.
type Option func(*Options)

// WithDepth limits rendering to n nested levels.
func WithDepth(n int) Option {
	return func(o *Options) {
		o.Depth = Levels(n)
	}
}

// WithUnlimitedDepth removes the depth limit.
func WithUnlimitedDepth() Option {
	return func(o *Options) {
		o.Depth = Unlimited
	}
}

// WithBudget sets the depth budget directly.
func WithBudget(d Depth) Option {
	return func(o *Options) {
		o.Depth = d
	}
}

// WithColors enables ANSI styling of the output.
func WithColors(enabled bool) Option {
	return func(o *Options) {
		o.Colors = enabled
	}
}
