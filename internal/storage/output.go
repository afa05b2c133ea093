package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentExt is the only extension the output store serves
const DocumentExt = ".pdf"

// OutputStore manages rendered document files in a dedicated output
// directory. Files are not tracked in memory: creation, download and
// expiry all go through the filesystem.
type OutputStore struct {
	dir    string
	fs     FileSystem
	logger *slog.Logger
}

// OutputStoreConfig holds configuration for the output store
type OutputStoreConfig struct {
	Dir        string
	FileSystem FileSystem
	Logger     *slog.Logger
}

// NewOutputStore creates the output directory and returns a store over it
func NewOutputStore(config OutputStoreConfig) (*OutputStore, error) {
	if config.Dir == "" {
		config.Dir = "./rendered"
	}
	if config.FileSystem == nil {
		config.FileSystem = NewOSFileSystem()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := config.FileSystem.MkdirAll(config.Dir, 0755); err != nil {
		return nil, &StorageError{
			Operation: "init - create output directory",
			Path:      config.Dir,
			Err:       err,
		}
	}

	return &OutputStore{
		dir:    config.Dir,
		fs:     config.FileSystem,
		logger: config.Logger,
	}, nil
}

// Dir returns the output directory path
func (s *OutputStore) Dir() string {
	return s.dir
}

// NewDocumentName builds a collision-resistant filename for a rendered
// document: sanitized stem, UTC timestamp and a random suffix.
func (s *OutputStore) NewDocumentName(requested string) string {
	stem := strings.TrimSuffix(filepath.Base(requested), filepath.Ext(requested))
	stem = sanitizeStem(stem)
	if stem == "" {
		stem = "document"
	}
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s-%s-%s%s", stem, time.Now().UTC().Format("20060102T150405"), suffix, DocumentExt)
}

// Path returns the absolute location of a rendered document inside the
// output directory. The filename must already be validated.
func (s *OutputStore) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// ValidateFilename rejects names that could escape the output directory
// or that do not look like a rendered document
func ValidateFilename(filename string) error {
	if filename == "" {
		return &FilenameValidationError{Filename: filename, Reason: "empty filename"}
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		return &FilenameValidationError{Filename: filename, Reason: "path traversal not allowed"}
	}
	if strings.Contains(filename, "\x00") {
		return &FilenameValidationError{Filename: filename, Reason: "null bytes not allowed"}
	}
	return nil
}

// Open validates the filename and opens a rendered document for
// streaming. Returns NotFoundError once the sweeper has reclaimed it.
func (s *OutputStore) Open(filename string) (io.ReadCloser, int64, error) {
	if err := ValidateFilename(filename); err != nil {
		return nil, 0, err
	}
	if !strings.EqualFold(filepath.Ext(filename), DocumentExt) {
		return nil, 0, &FilenameValidationError{Filename: filename, Reason: "unexpected document extension"}
	}

	path := s.Path(filename)
	info, err := s.fs.Stat(path)
	if err != nil {
		return nil, 0, &NotFoundError{Filename: filename}
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return nil, 0, &StorageError{Operation: "open document", Path: path, Err: err}
	}
	return f, info.Size(), nil
}

// Stat returns the size of a rendered document
func (s *OutputStore) Stat(filename string) (int64, error) {
	info, err := s.fs.Stat(s.Path(filename))
	if err != nil {
		return 0, &NotFoundError{Filename: filename}
	}
	return info.Size(), nil
}

// Remove deletes a rendered document
func (s *OutputStore) Remove(filename string) error {
	return s.fs.Remove(s.Path(filename))
}

// CleanupOlderThan deletes rendered documents whose modification time is
// older than the TTL. Per-file errors are logged and skipped so a single
// bad entry never aborts the sweep.
func (s *OutputStore) CleanupOlderThan(ctx context.Context, ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	removed := 0

	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to read output directory for cleanup",
			"error", err,
			"dir", s.dir,
		)
		return 0
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to stat rendered document",
				"error", err,
				"name", entry.Name(),
			)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := s.fs.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete expired rendered document",
				"error", err,
				"name", entry.Name(),
			)
			continue
		}
		removed++
	}

	return removed
}

// sanitizeStem keeps filename stems to a safe character set
func sanitizeStem(stem string) string {
	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
