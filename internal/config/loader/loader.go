// Package loader reads configuration sources into plain maps.
//
// File loaders parse TOML or YAML depending on the file extension; the
// environment loader maps prefixed variables onto dotted setting paths.
// Sources are combined with DeepMerge, later sources winning.
package loader

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader produces one layer of settings. A source that does not exist
// yields nil, nil.
type Loader interface {
	Load() (map[string]any, error)
}

// FileSystem reads whole files. Missing files must report an error that
// wraps fs.ErrNotExist.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

type osFS struct{}

func (osFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// DefaultFS reads from the operating system.
func DefaultFS() FileSystem { return osFS{} }

// FromFS adapts an fs.FS. Absolute paths are resolved from its root.
func FromFS(fsys fs.FS) FileSystem { return ioFS{fsys} }

type ioFS struct{ fs.FS }

func (f ioFS) ReadFile(path string) ([]byte, error) {
	name := strings.TrimPrefix(filepath.ToSlash(path), "/")
	return fs.ReadFile(f.FS, name)
}
