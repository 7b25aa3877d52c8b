package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
)

// Format decodes one configuration file syntax.
type Format struct {
	// Name is the short format name used in error messages.
	Name string

	// Decode parses a whole document into a settings map.
	Decode func(data []byte) (map[string]any, error)

	// Position extracts the 1-based line and column of a decode error.
	// A zero line means the position is unknown.
	Position func(err error) (line, column int)
}

// File reads one configuration file in a fixed format.
type File struct {
	fs     FileSystem
	path   string
	format Format
}

// NewFile creates a loader for path decoded with format.
// A nil fsys reads from the OS.
func NewFile(fsys FileSystem, path string, format Format) *File {
	if fsys == nil {
		fsys = DefaultFS()
	}
	return &File{fs: fsys, path: path, format: format}
}

// ForPath returns a loader whose format follows the extension of path.
// Files ending in .yaml or .yml are YAML; everything else is TOML.
func ForPath(fsys FileSystem, path string) *File {
	return NewFile(fsys, path, FormatFor(path))
}

// FormatFor picks the format for a file name.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return TOML
	}
}

// Path returns the file this loader reads.
func (f *File) Path() string { return f.path }

// Format returns the decoder in use.
func (f *File) Format() Format { return f.format }

// Load reads the configured file. A missing file yields nil, nil.
func (f *File) Load() (map[string]any, error) {
	data, err := f.fs.ReadFile(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("reading config file %s: %w", f.path, err)
	}
	return f.decode(f.path, data)
}

// LoadFromReader decodes a document from r instead of the file.
func (f *File) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s config: %w", f.format.Name, err)
	}
	return f.decode("<reader>", data)
}

func (f *File) decode(source string, data []byte) (map[string]any, error) {
	settings, err := f.format.Decode(data)
	if err == nil {
		if settings == nil {
			settings = make(map[string]any)
		}
		return settings, nil
	}

	perr := &ParseError{Path: source, Message: err.Error(), Err: err}
	if f.format.Position != nil {
		perr.Line, perr.Column = f.format.Position(err)
	}
	return nil, perr
}
