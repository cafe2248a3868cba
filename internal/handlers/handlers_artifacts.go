package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"foldpanel/internal/artifacts"
	"foldpanel/internal/catalog"
	"foldpanel/internal/metrics"
)

// handleCatalog walks the published run directory and returns the category
// buckets. A mid-walk filesystem error degrades to a warning alongside the
// partial result instead of failing the request.
func (h *Handlers) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	dir := h.runner.CurrentDir()

	result, err := catalog.Walk(dir)
	payload := map[string]any{
		"output_dir": dir,
		"total":      result.Total(),
		"files":      result,
	}
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dir).Msg("catalog walk incomplete")
		payload["warning"] = fmt.Sprintf("catalog incomplete: %v", err)
	}
	respondJSON(w, http.StatusOK, payload)
}

// artifactPath validates the path query parameter against the published run
// directory.
func (h *Handlers) artifactPath(r *http.Request) (string, error) {
	path := r.URL.Query().Get("path")
	if path == "" {
		return "", errors.New("path query parameter is required")
	}
	dir := h.runner.CurrentDir()
	if dir == "" {
		return "", errors.New("no run output has been published yet")
	}
	path = filepath.Clean(path)
	if !catalog.Contains(dir, path) {
		return "", errors.New("path is outside the current run directory")
	}
	return path, nil
}

func (h *Handlers) handlePreview(w http.ResponseWriter, r *http.Request) {
	path, err := h.artifactPath(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	preview, err := artifacts.Build(path, catalog.Classify(filepath.Base(path)))
	if err != nil {
		// The file vanished or became unreadable between cataloging and
		// rendering; only this artifact's view fails.
		respondError(w, http.StatusNotFound, err)
		return
	}
	respondJSON(w, http.StatusOK, preview)
}

// handleDownload serves the artifact's current on-disk bytes under its
// original filename. Bytes are re-read at request time, never cached from
// the cataloging step.
func (h *Handlers) handleDownload(w http.ResponseWriter, r *http.Request) {
	path, err := h.artifactPath(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		respondError(w, http.StatusNotFound, fmt.Errorf("open artifact: %w", err))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))

	if _, err := io.Copy(w, file); err != nil {
		h.log.Error().Err(err).Str("path", path).Msg("download aborted")
		return
	}
	metrics.ArtifactDownloads.Inc()
}

// handleBundle streams the whole published run tree as one tar.zst archive.
func (h *Handlers) handleBundle(w http.ResponseWriter, _ *http.Request) {
	dir := h.runner.CurrentDir()
	if dir == "" {
		respondError(w, http.StatusNotFound, errors.New("no run output has been published yet"))
		return
	}

	w.Header().Set("Content-Type", "application/zstd")
	w.Header().Set("Content-Disposition", `attachment; filename="results.tar.zst"`)

	if err := artifacts.WriteBundle(dir, w); err != nil {
		h.log.Error().Err(err).Str("dir", dir).Msg("bundle stream failed")
	}
}
