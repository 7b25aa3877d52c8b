// Package watcher reports changes to individual files.
//
// Each watched file is observed through its parent directory, so editors
// that save by writing a temporary file and renaming it over the original
// still produce an event for the original path. Rapid changes to the same
// file are coalesced into one event after a debounce delay.
package watcher

import (
	"errors"
	"strings"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
)

// DefaultDebounce is the delay used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates a file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates a file was written to.
	OpWrite
	// OpRemove indicates a file was removed.
	OpRemove
	// OpRename indicates a file was renamed.
	OpRename
)

var opNames = []struct {
	op   Op
	name string
}{
	{OpCreate, "CREATE"},
	{OpWrite, "WRITE"},
	{OpRemove, "REMOVE"},
	{OpRename, "RENAME"},
}

// String lists the operations in op joined by "|", for example
// "CREATE|WRITE" for a coalesced event.
func (op Op) String() string {
	var names []string
	for _, n := range opNames {
		if op.Has(n.op) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

// Has reports whether every bit of o is set in op.
func (op Op) Has(o Op) bool {
	return o != 0 && op&o == o
}

// Event represents a file change.
type Event struct {
	// Path is the absolute path of the affected file.
	Path string

	// Op is the operation that occurred. Coalesced events carry every
	// operation seen during the debounce window.
	Op Op

	// Timestamp is when the last contributing change occurred.
	Timestamp time.Time

	// Changes counts the raw notifications folded into this event.
	Changes int
}

// Config holds watcher configuration.
type Config struct {
	// Debounce is the quiet period before an event is delivered.
	// Zero delivers every change immediately.
	Debounce time.Duration

	// BufferSize is the capacity of the event and error channels.
	BufferSize int
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() Config {
	return Config{
		Debounce:   DefaultDebounce,
		BufferSize: 100,
	}
}

// Option configures a Watcher.
type Option func(*Config)

// WithDebounce sets the debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.Debounce = d
		}
	}
}

// WithBufferSize sets the channel buffer size.
func WithBufferSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.BufferSize = n
		}
	}
}
