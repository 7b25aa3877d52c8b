package repl

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Result is the outcome of one run.
type Result struct {
	// RunID identifies the run in logs and JSON output.
	RunID uuid.UUID

	// Name is the chunk name used in error positions.
	Name string

	// Listing is the bytecode listing, when enabled and compilation
	// succeeded.
	Listing string

	// Console holds the captured output lines. A runtime error message is
	// the last line.
	Console []string

	// Error is the message of Err, as the user sees it.
	Error string

	// Err is the compile or runtime error, if any.
	Err error

	// Duration is the wall time of the run.
	Duration time.Duration
}

// OK reports whether the run finished without error.
func (r *Result) OK() bool {
	return r.Err == nil
}

// WriteText writes the listing, if any, followed by the console lines.
func (r *Result) WriteText(w io.Writer) error {
	var b strings.Builder
	if r.Listing != "" {
		b.WriteString(r.Listing)
		if !strings.HasSuffix(r.Listing, "\n") {
			b.WriteByte('\n')
		}
	}
	for _, line := range r.Console {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// JSON returns the result as an indented JSON document.
func (r *Result) JSON() ([]byte, error) {
	lines := r.Console
	if lines == nil {
		lines = []string{}
	}

	doc := []byte(`{}`)
	var err error
	set := func(path string, value any) {
		if err == nil {
			doc, err = sjson.SetBytes(doc, path, value)
		}
	}

	set("runId", r.RunID.String())
	set("name", r.Name)
	set("ok", r.OK())
	set("durationMs", r.Duration.Milliseconds())
	if r.Listing != "" {
		set("listing", r.Listing)
	}
	set("console", lines)
	if r.Error != "" {
		set("error", r.Error)
	}
	if err != nil {
		return nil, err
	}
	return pretty.Pretty(doc), nil
}
