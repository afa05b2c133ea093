package pipeline

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docbridge/docbridge/internal/assets"
	"github.com/docbridge/docbridge/internal/converter"
	"github.com/docbridge/docbridge/internal/storage"
)

// markupExtensions are the output extensions the converter may produce
var markupExtensions = map[string]bool{
	".html": true,
	".htm":  true,
}

// Result is what a successful conversion hands back to the caller. The
// pipeline retains no reference to it.
type Result struct {
	Markup           string    `json:"markup"`
	OriginalFilename string    `json:"originalFilename"`
	ConvertedAt      time.Time `json:"convertedAt"`
	ProcessingTimeMs int64     `json:"processingTimeMs"`
	ConversionID     string    `json:"conversionId"`
	AssetCount       int       `json:"assetCount"`
}

// Pipeline drives one conversion end-to-end: converter invocation, output
// discovery, asset cataloging and deterministic cleanup on every exit path.
type Pipeline struct {
	conv      converter.Converter
	catalog   *assets.Catalog
	workspace *storage.Workspace
	fs        storage.FileSystem
	logger    *slog.Logger
}

// Config holds the pipeline's collaborators
type Config struct {
	Converter  converter.Converter
	Catalog    *assets.Catalog
	Workspace  *storage.Workspace
	FileSystem storage.FileSystem
	Logger     *slog.Logger
}

// New creates a conversion pipeline
func New(config Config) *Pipeline {
	if config.FileSystem == nil {
		config.FileSystem = storage.NewOSFileSystem()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		conv:      config.Converter,
		catalog:   config.Catalog,
		workspace: config.Workspace,
		fs:        config.FileSystem,
		logger:    config.Logger,
	}
}

// Convert runs one conversion over the document at inputPath. Each
// conversion gets its own working subdirectory keyed by the conversion id,
// so concurrent conversions of same-named uploads cannot interfere.
func (p *Pipeline) Convert(ctx context.Context, inputPath string, opts converter.Options) (*Result, error) {
	start := time.Now()
	conversionID := uuid.NewString()

	originalFilename := filepath.Base(inputPath)
	stem := strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename))
	predictedOutput := stem + ".html"

	dir, err := p.workspace.Create(conversionID)
	if err != nil {
		return nil, err
	}

	result, err := p.convertInDir(ctx, conversionID, dir, inputPath, stem, predictedOutput, opts)
	if err != nil {
		p.cleanupFailed(ctx, conversionID, dir, stem, predictedOutput)
		return nil, err
	}

	result.OriginalFilename = originalFilename
	result.ConvertedAt = time.Now()
	result.ProcessingTimeMs = time.Since(start).Milliseconds()

	p.logger.InfoContext(ctx, "conversion completed",
		"conversion_id", conversionID,
		"input", originalFilename,
		"asset_count", result.AssetCount,
		"elapsed_ms", result.ProcessingTimeMs,
	)

	return result, nil
}

// convertInDir performs steps 2-6: invoke the converter, locate its real
// output, catalog the assets and absorb the intermediate markup file.
func (p *Pipeline) convertInDir(ctx context.Context, conversionID, dir, inputPath, stem, predictedOutput string, opts converter.Options) (*Result, error) {
	input, err := p.fs.ReadFile(inputPath)
	if err != nil {
		return nil, &storage.StorageError{Operation: "read input document", Path: inputPath, Err: err}
	}
	localInput := filepath.Base(inputPath)
	if err := p.fs.WriteFile(filepath.Join(dir, localInput), input, 0644); err != nil {
		return nil, &storage.StorageError{Operation: "stage input document", Path: dir, Err: err}
	}

	if err := p.conv.Convert(ctx, dir, localInput, predictedOutput, opts); err != nil {
		return nil, err
	}

	// The tool may choose its own output name, so the predicted one is
	// not trusted literally.
	outputName, err := p.findOutput(dir, stem)
	if err != nil {
		return nil, err
	}

	outputPath := filepath.Join(dir, outputName)
	raw, err := p.fs.ReadFile(outputPath)
	if err != nil {
		return nil, &storage.StorageError{Operation: "read converter output", Path: outputPath, Err: err}
	}

	markup, entry, err := p.catalog.Process(ctx, conversionID, outputName, dir, string(raw))
	if err != nil {
		return nil, err
	}

	// The markup has been fully absorbed into the returned string; it
	// must not be servable from disk.
	if err := p.fs.Remove(outputPath); err != nil {
		p.logger.WarnContext(ctx, "failed to delete intermediate markup file",
			"conversion_id", conversionID,
			"path", outputPath,
			"error", err,
		)
	}
	if err := p.fs.Remove(filepath.Join(dir, localInput)); err != nil {
		p.logger.WarnContext(ctx, "failed to delete staged input document",
			"conversion_id", conversionID,
			"error", err,
		)
	}

	return &Result{
		Markup:       markup,
		ConversionID: conversionID,
		AssetCount:   len(entry.Assets),
	}, nil
}

// findOutput lists the working directory, filters to markup-extension
// files and selects the one whose name contains the input's base name.
// Matches are sorted so selection is deterministic when ambiguous.
func (p *Pipeline) findOutput(dir, stem string) (string, error) {
	entries, err := p.fs.ReadDir(dir)
	if err != nil {
		return "", &storage.StorageError{Operation: "list working directory", Path: dir, Err: err}
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if markupExtensions[strings.ToLower(filepath.Ext(name))] && strings.Contains(name, stem) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return "", &OutputNotFoundError{Stem: stem, Dir: dir}
	}
	sort.Strings(matches)
	return matches[0], nil
}

// cleanupFailed is the best-effort cleanup run on every failure path. It
// deletes the predicted output, any matching markup file and the
// conversion's working directory. Deletion failures are logged and
// swallowed so the original error surfaces unobscured.
func (p *Pipeline) cleanupFailed(ctx context.Context, conversionID, dir, stem, predictedOutput string) {
	if err := p.fs.Remove(filepath.Join(dir, predictedOutput)); err != nil {
		p.logger.DebugContext(ctx, "cleanup: predicted output not removed",
			"conversion_id", conversionID,
			"name", predictedOutput,
			"error", err,
		)
	}

	entries, err := p.fs.ReadDir(dir)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if markupExtensions[strings.ToLower(filepath.Ext(name))] && strings.Contains(name, stem) {
				if err := p.fs.Remove(filepath.Join(dir, name)); err != nil {
					p.logger.DebugContext(ctx, "cleanup: markup file not removed",
						"conversion_id", conversionID,
						"name", name,
						"error", err,
					)
				}
			}
		}
	}

	if err := p.workspace.Remove(conversionID); err != nil {
		p.logger.WarnContext(ctx, "cleanup: working directory not removed",
			"conversion_id", conversionID,
			"error", err,
		)
	}
}
