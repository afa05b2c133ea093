package sweeper

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbridge/docbridge/internal/assets"
	"github.com/docbridge/docbridge/internal/storage"
)

func newTestSweeper(t *testing.T, assetTTL, renderTTL time.Duration) (*Sweeper, *assets.Catalog, *storage.OutputStore, storage.FileSystem) {
	t.Helper()
	fs := storage.NewMemMapFileSystem()
	require.NoError(t, fs.MkdirAll("/work", 0755))

	catalog := assets.NewCatalog(assets.CatalogConfig{
		WorkRoot:   "/work",
		BaseURL:    "http://localhost:8080",
		FileSystem: fs,
	})
	outputs, err := storage.NewOutputStore(storage.OutputStoreConfig{Dir: "/rendered", FileSystem: fs})
	require.NoError(t, err)

	s := New(Config{
		Catalog:   catalog,
		Outputs:   outputs,
		AssetTTL:  assetTTL,
		RenderTTL: renderTTL,
	})
	return s, catalog, outputs, fs
}

func registerEntry(t *testing.T, catalog *assets.Catalog, fs storage.FileSystem, id string) {
	t.Helper()
	dir := filepath.Join("/work", id)
	require.NoError(t, fs.MkdirAll(dir, 0755))
	require.NoError(t, fs.WriteFile(filepath.Join(dir, "doc.css"), []byte("body{}"), 0644))
	markup := `<link rel="stylesheet" href="doc.css"/>`
	_, _, err := catalog.Process(context.Background(), id, "doc.html", dir, markup)
	require.NoError(t, err)
}

func TestSweeper_SweepAssets(t *testing.T) {
	ctx := context.Background()

	t.Run("entry survives before its ttl elapses", func(t *testing.T) {
		s, catalog, _, fs := newTestSweeper(t, time.Hour, time.Hour)
		registerEntry(t, catalog, fs, "conv1")

		s.SweepAssets(ctx)
		assert.Equal(t, 1, catalog.Len())
	})

	t.Run("entry and files are reclaimed after the ttl", func(t *testing.T) {
		s, catalog, _, fs := newTestSweeper(t, 5*time.Millisecond, time.Hour)
		registerEntry(t, catalog, fs, "conv1")

		time.Sleep(20 * time.Millisecond)
		s.SweepAssets(ctx)

		assert.Zero(t, catalog.Len())
		_, err := fs.Stat("/work/conv1/doc.css")
		assert.Error(t, err)
	})
}

func TestSweeper_SweepRendered(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh documents survive, stale ones go", func(t *testing.T) {
		s, _, _, fs := newTestSweeper(t, time.Hour, time.Hour)
		require.NoError(t, fs.WriteFile("/rendered/keep.pdf", []byte("a"), 0644))
		require.NoError(t, fs.WriteFile("/rendered/drop.pdf", []byte("b"), 0644))
		stale := time.Now().Add(-2 * time.Hour)
		require.NoError(t, fs.Chtimes("/rendered/drop.pdf", stale, stale))

		s.SweepRendered(ctx)

		_, err := fs.Stat("/rendered/keep.pdf")
		assert.NoError(t, err)
		_, err = fs.Stat("/rendered/drop.pdf")
		assert.Error(t, err)
	})
}

func TestSweeper_Start(t *testing.T) {
	t.Run("loops stop on context cancellation", func(t *testing.T) {
		s, catalog, _, fs := newTestSweeper(t, 5*time.Millisecond, time.Hour)
		s.assetInterval = 10 * time.Millisecond
		s.renderInterval = 10 * time.Millisecond
		registerEntry(t, catalog, fs, "conv1")

		ctx, cancel := context.WithCancel(context.Background())
		s.Start(ctx)

		require.Eventually(t, func() bool {
			return catalog.Len() == 0
		}, time.Second, 5*time.Millisecond)

		cancel()
	})
}

func TestNew_Defaults(t *testing.T) {
	s := New(Config{})
	assert.Equal(t, DefaultAssetTTL, s.assetTTL)
	assert.Equal(t, DefaultAssetInterval, s.assetInterval)
	assert.Equal(t, DefaultRenderTTL, s.renderTTL)
	assert.Equal(t, DefaultRenderInterval, s.renderInterval)
}
