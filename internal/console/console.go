// Package console captures script output.
//
// A Console is handed to the script runtime in place of the usual print
// functions. Every logged argument is rendered with the inspector, arguments
// are joined with a single space and the result is buffered as one line.
// Buffered lines reach the sink only once the run is flushed; after that,
// every new line is forwarded immediately.
package console

import (
	"io"
	"strings"
	"sync"

	"github.com/dshills/stormrepl/internal/inspect"
)

// Console buffers captured output lines. It is safe for concurrent use.
type Console struct {
	mu sync.Mutex

	lines   []string
	flushed int
	done    bool

	sink    io.Writer
	inspect []inspect.Option
}

// Option configures a Console.
type Option func(*Console)

// WithSink sets the writer that receives lines on Flush.
func WithSink(w io.Writer) Option {
	return func(c *Console) {
		c.sink = w
	}
}

// WithInspectOptions sets the options used to render logged values.
func WithInspectOptions(opts ...inspect.Option) Option {
	return func(c *Console) {
		c.inspect = append(c.inspect, opts...)
	}
}

// New creates an empty console.
func New(opts ...Option) *Console {
	c := &Console{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Format renders args the way Log records them.
func (c *Console) Format(args ...inspect.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = inspect.Inspect(arg, c.inspect...)
	}
	return strings.Join(parts, " ")
}

// InspectOptions returns the options used to render logged values.
func (c *Console) InspectOptions() []inspect.Option {
	out := make([]inspect.Option, len(c.inspect))
	copy(out, c.inspect)
	return out
}

// Log records one line made of the inspected args.
func (c *Console) Log(args ...inspect.Value) {
	c.Write(c.Format(args...))
}

// Write records one raw line.
func (c *Console) Write(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = append(c.lines, line)
	if c.done {
		c.flushLocked()
	}
}

// Flush marks the run as done and writes pending lines to the sink.
func (c *Console) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.done = true
	return c.flushLocked()
}

func (c *Console) flushLocked() error {
	if c.sink == nil {
		c.flushed = len(c.lines)
		return nil
	}
	for c.flushed < len(c.lines) {
		if _, err := io.WriteString(c.sink, c.lines[c.flushed]+"\n"); err != nil {
			return err
		}
		c.flushed++
	}
	return nil
}

// Lines returns a copy of all recorded lines.
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// String returns all recorded lines joined by newlines.
func (c *Console) String() string {
	return strings.Join(c.Lines(), "\n")
}

// Reset drops all lines and re-arms buffering.
func (c *Console) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	c.flushed = 0
	c.done = false
}
