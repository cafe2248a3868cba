package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"foldpanel/internal/metrics"
)

// handleStageInput accepts a multipart upload under the "file" field,
// verifies the payload is well-formed JSON, and stages it for a run.
func (h *Handlers) handleStageInput(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("file field is required"))
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	// Well-formedness only; the predictor owns schema validation.
	if !json.Valid(payload) {
		respondError(w, http.StatusBadRequest, errors.New("uploaded payload is not valid JSON"))
		return
	}

	path, err := h.stager.Stage(payload, header.Filename)
	if err != nil {
		h.log.Error().Err(err).Str("name", header.Filename).Msg("staging failed")
		respondError(w, http.StatusInternalServerError, fmt.Errorf("stage input: %w", err))
		return
	}

	metrics.StagedInputs.Inc()
	h.log.Info().Str("path", path).Int("size_bytes", len(payload)).Msg("input staged")

	respondJSON(w, http.StatusCreated, map[string]any{
		"path":          path,
		"original_name": header.Filename,
		"size_bytes":    len(payload),
	})
}
