package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"foldpanel/internal/runner"
)

// handleRunStart launches one prediction invocation and streams its progress
// as Server-Sent Events. The handler blocks for the full duration of the
// child process; closing the connection cancels the run through the request
// context.
//
// Events, in order: one "command" with the argv about to execute, a
// "progress" per output line carrying the recent-lines window, and a single
// terminal "result".
func (h *Handlers) handleRunStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InputPath string `json:"input_path"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.InputPath == "" {
		respondError(w, http.StatusBadRequest, errors.New("input_path is required"))
		return
	}
	if !h.stager.Contains(req.InputPath) {
		respondError(w, http.StatusBadRequest, errors.New("input_path is not a staged input"))
		return
	}
	if _, err := os.Stat(req.InputPath); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("staged input: %w", err))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	// The run directory is not known before Preparing, so the command event
	// echoes the template with the directory elided.
	_ = writeEvent(w, flusher, "command", map[string]any{
		"command": h.runner.Command(req.InputPath, "<run dir>"),
	})

	result, err := h.runner.Run(r.Context(), req.InputPath, func(p runner.Progress) {
		_ = writeEvent(w, flusher, "progress", p)
	})
	if err != nil {
		_ = writeEvent(w, flusher, "result", map[string]any{"error": err.Error()})
		return
	}

	_ = writeEvent(w, flusher, "result", result)
}

// handleRunCurrent reports the last terminal run, if any.
func (h *Handlers) handleRunCurrent(w http.ResponseWriter, _ *http.Request) {
	result := h.runner.Current()
	if result == nil {
		respondError(w, http.StatusNotFound, errors.New("no run has completed yet"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"run": result})
}

// handleStatus reports predictor availability and the configured
// directories.
func (h *Handlers) handleStatus(w http.ResponseWriter, _ *http.Request) {
	path, available := h.runner.Available()
	payload := map[string]any{
		"predictor_available": available,
		"staging_dir":         h.stager.Dir(),
		"output_root":         h.cfg.OutputRoot,
		"state":               h.runner.State(),
	}
	if available {
		payload["predictor_path"] = path
	}
	respondJSON(w, http.StatusOK, payload)
}
