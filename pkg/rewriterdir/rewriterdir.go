// Package rewriterdir encapsulates all path knowledge for the .rewriter/
// project directory: the config file and the gitignored local/ directory that
// holds persisted settings and the log file.
package rewriterdir

import (
	"os"
	"path/filepath"
)

// Dir is a value object that resolves paths within a .rewriter/ directory.
type Dir struct {
	root string
}

// New creates a Dir rooted at the given path. The path is converted to an
// absolute path. No I/O is performed; use EnsureStructure to create the
// directory layout.
func New(root string) Dir {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	return Dir{root: abs}
}

// Root returns the absolute path to the .rewriter/ directory.
func (d Dir) Root() string { return d.root }

// ConfigPath returns the path to the main config file.
func (d Dir) ConfigPath() string { return filepath.Join(d.root, "config.yaml") }

// LocalDir returns the path to the local (gitignored) runtime state directory.
func (d Dir) LocalDir() string { return filepath.Join(d.root, "local") }

// StoragePath returns the path to the file-backed settings storage.
func (d Dir) StoragePath() string { return filepath.Join(d.root, "local", "storage.json") }

// LogPath returns the path to the log file.
func (d Dir) LogPath() string { return filepath.Join(d.root, "local", "rewriter.log") }

// GitignorePath returns the path to the .gitignore file inside .rewriter/.
func (d Dir) GitignorePath() string { return filepath.Join(d.root, ".gitignore") }

// Exists reports whether the .rewriter/ root directory exists on disk.
func (d Dir) Exists() bool {
	info, err := os.Stat(d.root)

	return err == nil && info.IsDir()
}
