package sweeper

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/docbridge/docbridge/internal/assets"
	"github.com/docbridge/docbridge/internal/storage"
)

// Default schedules. Asset entries live long enough to cover an editing
// session; rendered documents only need to survive the download.
const (
	DefaultAssetTTL       = 24 * time.Hour
	DefaultAssetInterval  = time.Hour
	DefaultRenderTTL      = time.Hour
	DefaultRenderInterval = 10 * time.Minute
)

// Sweeper runs two independent periodic reclamation jobs: one over the
// in-memory asset catalog and its files, one over the rendered-output
// directory by file modification time. Neither job ever raises; per-entry
// failures are logged and the sweep continues.
type Sweeper struct {
	catalog *assets.Catalog
	outputs *storage.OutputStore
	logger  *slog.Logger

	assetTTL       time.Duration
	assetInterval  time.Duration
	renderTTL      time.Duration
	renderInterval time.Duration
}

// Config holds the sweeper's collaborators and schedules
type Config struct {
	Catalog *assets.Catalog
	Outputs *storage.OutputStore
	Logger  *slog.Logger

	AssetTTL       time.Duration
	AssetInterval  time.Duration
	RenderTTL      time.Duration
	RenderInterval time.Duration
}

// New creates a sweeper with defaults filled in
func New(config Config) *Sweeper {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.AssetTTL == 0 {
		config.AssetTTL = DefaultAssetTTL
	}
	if config.AssetInterval == 0 {
		config.AssetInterval = DefaultAssetInterval
	}
	if config.RenderTTL == 0 {
		config.RenderTTL = DefaultRenderTTL
	}
	if config.RenderInterval == 0 {
		config.RenderInterval = DefaultRenderInterval
	}
	return &Sweeper{
		catalog:        config.Catalog,
		outputs:        config.Outputs,
		logger:         config.Logger,
		assetTTL:       config.AssetTTL,
		assetInterval:  config.AssetInterval,
		renderTTL:      config.RenderTTL,
		renderInterval: config.RenderInterval,
	}
}

// Start launches both periodic jobs. They stop when the context is
// cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.loop(ctx, "assets", s.assetInterval, s.SweepAssets)
	go s.loop(ctx, "rendered", s.renderInterval, s.SweepRendered)

	s.logger.InfoContext(ctx, "sweeper started",
		"asset_ttl", s.assetTTL,
		"asset_interval", s.assetInterval,
		"render_ttl", s.renderTTL,
		"render_interval", s.renderInterval,
	)
}

func (s *Sweeper) loop(ctx context.Context, name string, interval time.Duration, sweep func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "sweep loop stopped", "sweep", name)
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}

// SweepAssets removes catalog entries older than the asset TTL along with
// their tracked files
func (s *Sweeper) SweepAssets(ctx context.Context) {
	removed := s.catalog.SweepOlderThan(ctx, s.assetTTL)
	if removed > 0 {
		s.logger.InfoContext(ctx, "asset sweep completed",
			"removed_entries", removed,
			"remaining", s.catalog.Len(),
		)
	}
}

// SweepRendered deletes rendered documents whose modification time has
// passed the render TTL
func (s *Sweeper) SweepRendered(ctx context.Context) {
	removed := s.outputs.CleanupOlderThan(ctx, s.renderTTL)
	if removed > 0 {
		s.logger.InfoContext(ctx, "render sweep completed", "removed_files", removed)
	}
}
