package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docbridge/docbridge/internal/assets"
	"github.com/docbridge/docbridge/internal/converter"
	"github.com/docbridge/docbridge/internal/pipeline"
	"github.com/docbridge/docbridge/internal/renderer"
	"github.com/docbridge/docbridge/internal/storage"
	"github.com/docbridge/docbridge/internal/sweeper"
)

// Server wires the conversion pipeline, asset catalog, render service and
// sweeper behind a plain HTTP mux
type Server struct {
	config    Config
	logger    *slog.Logger
	catalog   *assets.Catalog
	pipeline  *pipeline.Pipeline
	renderer  *renderer.Service
	outputs   *storage.OutputStore
	workspace *storage.Workspace
	sweeper   *sweeper.Sweeper
	fs        storage.FileSystem
}

// NewServer builds the full service from configuration
func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	fs := storage.NewOSFileSystem()

	workspace, err := storage.NewWorkspace(cfg.WorkDir, fs, logger)
	if err != nil {
		return nil, fmt.Errorf("workspace init: %w", err)
	}

	outputs, err := storage.NewOutputStore(storage.OutputStoreConfig{
		Dir:        cfg.OutputDir,
		FileSystem: fs,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("output store init: %w", err)
	}

	catalog := assets.NewCatalog(assets.CatalogConfig{
		WorkRoot:   workspace.Root(),
		BaseURL:    cfg.BaseURL,
		FileSystem: fs,
		Logger:     logger,
	})

	conv := converter.NewPDF2HTMLConverter(converter.PDF2HTMLConfig{
		RuntimeBin: cfg.ConverterRuntime,
		Image:      cfg.ConverterImage,
		Logger:     logger,
	})
	if !conv.IsAvailable() {
		logger.WarnContext(context.Background(), "converter runtime not found, conversions will fail",
			"runtime", cfg.ConverterRuntime,
		)
	}

	pipe := pipeline.New(pipeline.Config{
		Converter:  conv,
		Catalog:    catalog,
		Workspace:  workspace,
		FileSystem: fs,
		Logger:     logger,
	})

	render := renderer.NewService(renderer.ServiceConfig{
		Pool:           renderer.NewPool(renderer.ResolvePoolSize(cfg.RenderPoolSize)),
		Store:          outputs,
		Logger:         logger,
		LoadTimeout:    cfg.RenderTimeout,
		StabilizeDelay: cfg.StabilizeDelay,
		DownloadPrefix: "/api/download",
	})

	sw := sweeper.New(sweeper.Config{
		Catalog:        catalog,
		Outputs:        outputs,
		Logger:         logger,
		AssetTTL:       cfg.AssetTTL,
		AssetInterval:  cfg.AssetSweepInterval,
		RenderTTL:      cfg.RenderTTL,
		RenderInterval: cfg.RenderSweepInterval,
	})

	return &Server{
		config:    cfg,
		logger:    logger,
		catalog:   catalog,
		pipeline:  pipe,
		renderer:  render,
		outputs:   outputs,
		workspace: workspace,
		sweeper:   sw,
		fs:        fs,
	}, nil
}

// Handler returns the HTTP routing for the service
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/convert", s.handleConvert)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /api/download/{filename}", s.handleDownload)
	mux.HandleFunc("GET /assets/{filename}", s.handleAsset)
	mux.HandleFunc("GET /health/live", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	return mux
}

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal
const shutdownTimeout = 15 * time.Second

// ListenAndServe starts the sweeper and the HTTP server, then blocks
// until the server fails or the context is cancelled (SIGINT and SIGTERM
// cancel it). Shutdown drains in-flight requests before the browser pool
// is released.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.sweeper.Start(ctx)
	defer func() {
		if err := s.renderer.Close(); err != nil {
			s.logger.ErrorContext(ctx, "failed to close renderer", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	s.logger.InfoContext(ctx, "starting conversion service",
		"port", s.config.Port,
		"base_url", s.config.BaseURL,
		"endpoints", []string{"/api/convert", "/api/render", "/api/download/", "/assets/", "/health/live"},
	)

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.InfoContext(ctx, "shutting down conversion service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.ErrorContext(ctx, "graceful shutdown incomplete", "error", err)
		return err
	}
	return nil
}
