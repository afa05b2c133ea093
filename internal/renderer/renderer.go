package renderer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/playwright-community/playwright-go"

	"github.com/docbridge/docbridge/internal/storage"
)

// Layout constants. The paper scale is slightly reduced to keep content
// from overflowing onto extra pages; the value was chosen empirically.
const (
	defaultViewportWidth  = 1280
	defaultViewportHeight = 1024
	viewportGrowMargin    = 50

	defaultPaperFormat = "A4"
	defaultMarginMm    = 10.0
	defaultPaperScale  = 0.95

	DefaultLoadTimeout    = 30 * time.Second
	DefaultStabilizeDelay = 1500 * time.Millisecond
)

// Service renders markup to paginated PDF documents on disk. Browsers
// come from a bounded pool; one is checked out per request and always
// checked back in, including on every error path.
type Service struct {
	pool           *Pool
	store          *storage.OutputStore
	logger         *slog.Logger
	loadTimeout    time.Duration
	stabilizeDelay time.Duration
	downloadPrefix string
}

// ServiceConfig holds configuration for the render service
type ServiceConfig struct {
	Pool           *Pool
	Store          *storage.OutputStore
	Logger         *slog.Logger
	LoadTimeout    time.Duration
	StabilizeDelay time.Duration
	DownloadPrefix string // URL prefix for download handles, e.g. "/api/download"
}

// NewService creates a render service
func NewService(config ServiceConfig) *Service {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.LoadTimeout == 0 {
		config.LoadTimeout = DefaultLoadTimeout
	}
	if config.StabilizeDelay == 0 {
		config.StabilizeDelay = DefaultStabilizeDelay
	}
	if config.DownloadPrefix == "" {
		config.DownloadPrefix = "/api/download"
	}
	return &Service{
		pool:           config.Pool,
		store:          config.Store,
		logger:         config.Logger,
		loadTimeout:    config.LoadTimeout,
		stabilizeDelay: config.StabilizeDelay,
		downloadPrefix: config.DownloadPrefix,
	}
}

// Close releases the browser pool
func (s *Service) Close() error {
	return s.pool.Close()
}

// Render lays out the markup in a headless browser, measures the true
// content size, and writes a paginated document to the output directory.
// A load timeout is fatal for the request and is not retried.
func (s *Service) Render(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	inst, err := s.pool.Acquire()
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(inst)

	page, err := inst.browser.NewPage(playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{Width: defaultViewportWidth, Height: defaultViewportHeight},
	})
	if err != nil {
		return nil, &RenderError{Stage: StageLaunch, Err: err, Hint: "failed to create page"}
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			s.logger.DebugContext(ctx, "error closing page", "error", closeErr)
		}
	}()

	if err := page.SetContent(req.Markup, playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(s.loadTimeout.Milliseconds())),
	}); err != nil {
		return nil, &RenderError{Stage: StageLoad, Err: err, Hint: "page did not settle within the load timeout"}
	}

	// Fixed grace period for residual layout work (fonts, async CSS).
	page.WaitForTimeout(float64(s.stabilizeDelay.Milliseconds()))

	width, height, err := measureContent(page)
	if err != nil {
		return nil, &RenderError{Stage: StageMeasure, Err: err}
	}

	// The nominal viewport is frequently smaller than converted-document
	// content; grow it once and let layout settle again.
	if width > defaultViewportWidth || height > defaultViewportHeight {
		if err := page.SetViewportSize(width+viewportGrowMargin, height+viewportGrowMargin); err != nil {
			return nil, &RenderError{Stage: StageMeasure, Err: err, Hint: "failed to resize viewport"}
		}
		page.WaitForTimeout(float64(s.stabilizeDelay.Milliseconds()))
	}

	mode := req.Mode
	if mode == ModeAuto {
		mode = SniffMode(req.Markup)
	}

	filename := s.store.NewDocumentName(req.Filename)
	outPath := s.store.Path(filename)

	pdfOpts := buildPDFOptions(mode, req, width, height)
	pdfOpts.Path = playwright.String(outPath)

	if _, err := page.PDF(pdfOpts); err != nil {
		return nil, &RenderError{Stage: StageEmit, Err: err}
	}

	size, err := s.store.Stat(filename)
	if err != nil {
		return nil, &RenderError{Stage: StageEmit, Err: err, Hint: "document missing after emit"}
	}

	pageCount, err := api.PageCountFile(outPath)
	if err != nil {
		if removeErr := s.store.Remove(filename); removeErr != nil {
			s.logger.WarnContext(ctx, "failed to remove invalid document", "filename", filename, "error", removeErr)
		}
		return nil, &RenderError{Stage: StageEmit, Err: err, Hint: "emitted document failed validation"}
	}

	result := &Result{
		DownloadURL:      s.downloadPrefix + "/" + filename,
		Filename:         filename,
		FileSizeBytes:    size,
		PageCount:        pageCount,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}

	s.logger.InfoContext(ctx, "render completed",
		"filename", filename,
		"mode", string(mode),
		"size_bytes", size,
		"pages", pageCount,
		"elapsed_ms", result.ProcessingTimeMs,
	)

	return result, nil
}

// measureContent queries the rendered document's true dimensions: the max
// of scroll, offset and client measurements on body and root
func measureContent(page playwright.Page) (width, height int, err error) {
	raw, err := page.Evaluate(`() => ({
		width: Math.max(
			document.body.scrollWidth, document.body.offsetWidth,
			document.documentElement.clientWidth,
			document.documentElement.scrollWidth, document.documentElement.offsetWidth),
		height: Math.max(
			document.body.scrollHeight, document.body.offsetHeight,
			document.documentElement.clientHeight,
			document.documentElement.scrollHeight, document.documentElement.offsetHeight)
	})`)
	if err != nil {
		return 0, 0, err
	}
	dims, ok := raw.(map[string]interface{})
	if !ok {
		return 0, 0, fmt.Errorf("unexpected measurement result %T", raw)
	}
	return toInt(dims["width"]), toInt(dims["height"]), nil
}

// buildPDFOptions maps the sizing mode onto Chromium print parameters
func buildPDFOptions(mode Mode, req Request, contentWidth, contentHeight int) playwright.PagePdfOptions {
	if mode == ModeNativeSize {
		zero := playwright.String("0")
		return playwright.PagePdfOptions{
			Width:           playwright.String(fmt.Sprintf("%dpx", contentWidth)),
			Height:          playwright.String(fmt.Sprintf("%dpx", contentHeight)),
			Scale:           playwright.Float(1.0),
			PrintBackground: playwright.Bool(true),
			Margin:          &playwright.Margin{Top: zero, Right: zero, Bottom: zero, Left: zero},
		}
	}

	format := req.Format
	if format == "" {
		format = defaultPaperFormat
	}
	marginMm := req.MarginMm
	if marginMm <= 0 {
		marginMm = defaultMarginMm
	}
	scale := req.Scale
	if scale <= 0 {
		scale = defaultPaperScale
	}
	margin := playwright.String(fmt.Sprintf("%gmm", marginMm))

	return playwright.PagePdfOptions{
		Format:          playwright.String(format),
		Landscape:       playwright.Bool(req.Orientation == "landscape"),
		Scale:           playwright.Float(scale),
		PrintBackground: playwright.Bool(true),
		Margin:          &playwright.Margin{Top: margin, Right: margin, Bottom: margin, Left: margin},
	}
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
