package assets

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/docbridge/docbridge/internal/storage"
)

// AssetInfo describes one discovered side-asset. Exists=false records a
// dangling reference found in markup but missing on disk; that degrades
// the result instead of failing the conversion.
type AssetInfo struct {
	Filename     string `json:"filename"`
	AbsolutePath string `json:"-"`
	Kind         Kind   `json:"kind"`
	SizeBytes    int64  `json:"sizeBytes"`
	Exists       bool   `json:"exists"`
}

// Entry is the catalog record for one conversion. The asset list is
// append-only at creation time and never mutated afterward.
type Entry struct {
	ConversionID   string
	MarkupFilename string
	Assets         []AssetInfo
	CreatedAt      time.Time
}

// Catalog discovers, verifies and tracks side-assets per conversion, and
// rewrites markup so asset references resolve through the serving
// endpoint. The keyed map is guarded for concurrent access across request
// goroutines and the sweeper.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]*Entry

	workRoot string
	baseURL  string
	fs       storage.FileSystem
	logger   *slog.Logger
}

// CatalogConfig holds configuration for the asset catalog
type CatalogConfig struct {
	WorkRoot   string
	BaseURL    string
	FileSystem storage.FileSystem
	Logger     *slog.Logger
}

// NewCatalog creates an empty catalog
func NewCatalog(config CatalogConfig) *Catalog {
	if config.FileSystem == nil {
		config.FileSystem = storage.NewOSFileSystem()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Catalog{
		entries:  make(map[string]*Entry),
		workRoot: config.WorkRoot,
		baseURL:  strings.TrimRight(config.BaseURL, "/"),
		fs:       config.FileSystem,
		logger:   config.Logger,
	}
}

// Process discovers and verifies every side-asset for a conversion,
// registers the catalog entry and returns the rewritten markup. dir is
// the conversion's working subdirectory and must lie under the work root.
func (c *Catalog) Process(ctx context.Context, conversionID, markupFilename, dir, markup string) (string, *Entry, error) {
	filenames, err := c.discover(dir, markup)
	if err != nil {
		return "", nil, err
	}

	entry := &Entry{
		ConversionID:   conversionID,
		MarkupFilename: markupFilename,
		CreatedAt:      time.Now(),
	}

	for _, name := range filenames {
		info, err := c.inspect(dir, name)
		if err != nil {
			return "", nil, err
		}
		if !info.Exists {
			c.logger.WarnContext(ctx, "referenced asset missing on disk",
				"conversion_id", conversionID,
				"filename", name,
			)
		}
		entry.Assets = append(entry.Assets, info)
	}

	rewritten := RewriteMarkup(markup, c.baseURL)

	c.mu.Lock()
	c.entries[conversionID] = entry
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "asset catalog entry registered",
		"conversion_id", conversionID,
		"asset_count", len(entry.Assets),
	)

	return rewritten, entry, nil
}

// discover merges markup-scanned stylesheet/script references with a
// directory enumeration for font and image files. Fonts and images are
// frequently referenced only from inside embedded stylesheets, so the
// directory listing is the reliable source of truth for them.
func (c *Catalog) discover(dir, markup string) ([]string, error) {
	seen := make(map[string]bool)
	var filenames []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			filenames = append(filenames, name)
		}
	}

	for _, ref := range DiscoverMarkupReferences(markup) {
		add(ref)
	}

	entries, err := c.fs.ReadDir(dir)
	if err != nil {
		return nil, &storage.StorageError{Operation: "scan working directory", Path: dir, Err: err}
	}
	var scanned []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		kind := Classify(e.Name())
		if kind == KindFont || kind == KindImage {
			scanned = append(scanned, e.Name())
		}
	}
	sort.Strings(scanned)
	for _, name := range scanned {
		add(name)
	}

	return filenames, nil
}

// inspect resolves a filename under the working directory and records its
// existence and size. A path escaping the work root is a hard error.
func (c *Catalog) inspect(dir, name string) (AssetInfo, error) {
	abs := filepath.Join(dir, filepath.Base(name))
	rel, err := filepath.Rel(c.workRoot, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return AssetInfo{}, &PathValidationError{Path: name, Reason: "asset path escapes working directory"}
	}

	info := AssetInfo{
		Filename:     filepath.Base(name),
		AbsolutePath: abs,
		Kind:         Classify(name),
	}

	fi, err := c.fs.Stat(abs)
	if err != nil {
		return info, nil
	}
	info.Exists = true
	info.SizeBytes = fi.Size()
	return info, nil
}

// Get returns the catalog entry for a conversion
func (c *Catalog) Get(conversionID string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[conversionID]
	return entry, ok
}

// Len returns the number of tracked conversions
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ReadAsset validates a bare filename, locates it in the catalog and
// returns its bytes plus content type. Traversal attempts are rejected
// before any filesystem access.
func (c *Catalog) ReadAsset(filename string) ([]byte, string, error) {
	if filename == "" ||
		strings.Contains(filename, "..") ||
		strings.ContainsAny(filename, "/\\") {
		return nil, "", &PathValidationError{Path: filename, Reason: "path traversal not allowed"}
	}

	c.mu.RLock()
	var found *AssetInfo
	for _, entry := range c.entries {
		for i := range entry.Assets {
			if entry.Assets[i].Filename == filename {
				found = &entry.Assets[i]
				break
			}
		}
		if found != nil {
			break
		}
	}
	c.mu.RUnlock()

	if found == nil || !found.Exists {
		return nil, "", &AssetNotFoundError{Filename: filename}
	}

	data, err := c.fs.ReadFile(found.AbsolutePath)
	if err != nil {
		return nil, "", &AssetNotFoundError{Filename: filename}
	}
	return data, MIMEType(filename), nil
}

// SweepOlderThan removes entries older than maxAge and best-effort deletes
// each tracked asset file. Disk-deletion failures are logged and never
// block catalog-entry removal.
func (c *Catalog) SweepOlderThan(ctx context.Context, maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	c.mu.Lock()
	var expired []*Entry
	for id, entry := range c.entries {
		if entry.CreatedAt.Before(cutoff) {
			expired = append(expired, entry)
			delete(c.entries, id)
		}
	}
	c.mu.Unlock()

	for _, entry := range expired {
		for _, asset := range entry.Assets {
			if !asset.Exists {
				continue
			}
			if err := c.fs.Remove(asset.AbsolutePath); err != nil {
				c.logger.WarnContext(ctx, "failed to delete expired asset file",
					"conversion_id", entry.ConversionID,
					"filename", asset.Filename,
					"error", err,
				)
			}
		}
		if err := c.fs.RemoveAll(filepath.Join(c.workRoot, entry.ConversionID)); err != nil {
			c.logger.WarnContext(ctx, "failed to remove conversion working directory",
				"conversion_id", entry.ConversionID,
				"error", err,
			)
		}
	}

	return len(expired)
}
