package storage

import (
	"io"
	"log/slog"
	"path/filepath"
)

// Workspace manages per-conversion working subdirectories under a single
// root. Giving every conversion its own directory removes any ambiguity
// between concurrent conversions of same-named uploads.
type Workspace struct {
	root   string
	fs     FileSystem
	logger *slog.Logger
}

// NewWorkspace creates the working-directory root and returns a Workspace
func NewWorkspace(root string, fs FileSystem, logger *slog.Logger) (*Workspace, error) {
	if root == "" {
		root = "./work"
	}
	if fs == nil {
		fs = NewOSFileSystem()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := fs.MkdirAll(root, 0755); err != nil {
		return nil, &StorageError{
			Operation: "init - create working directory",
			Path:      root,
			Err:       err,
		}
	}
	return &Workspace{root: root, fs: fs, logger: logger}, nil
}

// Root returns the shared working-directory root
func (w *Workspace) Root() string {
	return w.root
}

// Dir returns the working subdirectory for a conversion
func (w *Workspace) Dir(conversionID string) string {
	return filepath.Join(w.root, conversionID)
}

// Create creates the working subdirectory for a conversion
func (w *Workspace) Create(conversionID string) (string, error) {
	dir := w.Dir(conversionID)
	if err := w.fs.MkdirAll(dir, 0755); err != nil {
		return "", &StorageError{
			Operation: "create conversion directory",
			Path:      dir,
			Err:       err,
		}
	}
	return dir, nil
}

// Remove deletes a conversion's working subdirectory and everything in it
func (w *Workspace) Remove(conversionID string) error {
	return w.fs.RemoveAll(w.Dir(conversionID))
}
