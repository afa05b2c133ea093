package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/docbridge/docbridge/internal/assets"
	"github.com/docbridge/docbridge/internal/converter"
	"github.com/docbridge/docbridge/internal/pipeline"
	"github.com/docbridge/docbridge/internal/renderer"
	"github.com/docbridge/docbridge/internal/storage"
)

// maxUploadBytes caps uploaded document size
const maxUploadBytes = 64 << 20

// HealthResponse represents the JSON response for the health endpoint
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing left to do for this response.
		return
	}
}

// writeError maps the error taxonomy onto HTTP statuses
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var pathErr *assets.PathValidationError
	var nameErr *storage.FilenameValidationError
	var valErr *pipeline.ValidationError
	var assetMissing *assets.AssetNotFoundError
	var docMissing *storage.NotFoundError
	var convErr *converter.ConversionError
	var outErr *pipeline.OutputNotFoundError

	switch {
	case errors.As(err, &pathErr), errors.As(err, &nameErr), errors.As(err, &valErr):
		status = http.StatusBadRequest
	case errors.As(err, &assetMissing), errors.As(err, &docMissing):
		status = http.StatusNotFound
	case errors.As(err, &convErr), errors.As(err, &outErr):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"path", r.URL.Path,
		)
	} else {
		s.logger.WarnContext(r.Context(), "request rejected",
			"error", err,
			"path", r.URL.Path,
			"status", status,
		)
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// handleConvert accepts a multipart upload and runs it through the
// conversion pipeline
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, &pipeline.ValidationError{Field: "file", Reason: "missing or unreadable multipart file"})
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			s.logger.DebugContext(ctx, "error closing upload", "error", closeErr)
		}
	}()

	filename := filepath.Base(header.Filename)
	if err := storage.ValidateFilename(filename); err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	// Stage the upload under the work root; the pipeline copies it into
	// the conversion's own directory.
	uploadDir := filepath.Join(s.workspace.Root(), "uploads", uuid.NewString())
	fs := s.fs
	if err := fs.MkdirAll(uploadDir, 0755); err != nil {
		s.writeError(w, r, err)
		return
	}
	uploadPath := filepath.Join(uploadDir, filename)
	if err := fs.WriteFile(uploadPath, data, 0644); err != nil {
		s.writeError(w, r, err)
		return
	}
	defer func() {
		if rmErr := fs.RemoveAll(uploadDir); rmErr != nil {
			s.logger.DebugContext(ctx, "error removing upload staging dir", "error", rmErr)
		}
	}()

	opts, err := parseOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.pipeline.Convert(ctx, uploadPath, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// parseOptions reads conversion options from the multipart form. Absent
// fields stay nil so the adapter default (maximal embedding) applies.
func parseOptions(r *http.Request) (converter.Options, error) {
	var opts converter.Options

	boolField := func(key string) (*bool, error) {
		v := r.FormValue(key)
		if v == "" {
			return nil, nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, &pipeline.ValidationError{Field: key, Value: v, Reason: "must be a boolean"}
		}
		return &b, nil
	}

	var err error
	if opts.EmbedFonts, err = boolField("embedFonts"); err != nil {
		return opts, err
	}
	if opts.EmbedImages, err = boolField("embedImages"); err != nil {
		return opts, err
	}
	if opts.EmbedScripts, err = boolField("embedScripts"); err != nil {
		return opts, err
	}
	if opts.EmbedOutline, err = boolField("embedOutline"); err != nil {
		return opts, err
	}
	if opts.SplitPages, err = boolField("splitPages"); err != nil {
		return opts, err
	}

	if v := r.FormValue("zoom"); v != "" {
		zoom, err := strconv.ParseFloat(v, 64)
		if err != nil || zoom <= 0 {
			return opts, &pipeline.ValidationError{Field: "zoom", Value: v, Reason: "must be a positive number"}
		}
		opts.Zoom = zoom
	}
	if v := r.FormValue("dpi"); v != "" {
		dpi, err := strconv.Atoi(v)
		if err != nil || dpi <= 0 {
			return opts, &pipeline.ValidationError{Field: "dpi", Value: v, Reason: "must be a positive integer"}
		}
		opts.DPI = dpi
	}

	return opts, nil
}

// handleRender renders submitted markup to a paginated document and
// returns a download handle
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderer.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, &pipeline.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	if req.Markup == "" {
		s.writeError(w, r, &pipeline.ValidationError{Field: "markup", Reason: "must not be empty"})
		return
	}

	result, err := s.renderer.Render(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAsset serves a cataloged side-asset by bare filename
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	data, mimeType, err := s.catalog.ReadAsset(filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		s.logger.DebugContext(r.Context(), "error writing asset response", "error", err)
	}
}

// handleDownload streams a rendered document. Returns 404 once the
// sweeper has reclaimed the file.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	f, size, err := s.outputs.Open(filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			s.logger.DebugContext(r.Context(), "error closing document", "error", closeErr)
		}
	}()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := io.Copy(w, f); err != nil {
		s.logger.DebugContext(r.Context(), "error streaming document", "error", err)
	}
}

// handleHealth reports process liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "docbridge",
	})
}

// handleIndex returns the service information page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "docbridge conversion service\n\n")
	fmt.Fprintf(w, "Endpoints:\n")
	fmt.Fprintf(w, "  POST /api/convert             - Convert an uploaded document to markup\n")
	fmt.Fprintf(w, "  POST /api/render              - Render markup to a paginated document\n")
	fmt.Fprintf(w, "  GET  /api/download/{filename} - Fetch a rendered document\n")
	fmt.Fprintf(w, "  GET  /assets/{filename}       - Fetch a conversion side-asset\n")
	fmt.Fprintf(w, "  GET  /health/live             - Liveness probe\n")
}
