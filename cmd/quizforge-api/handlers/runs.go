package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atlasedu/quizforge/internal/pipeline"
)

// RunsHandler serves run progress polling.
type RunsHandler struct {
	checkpoints *pipeline.CheckpointStore
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(checkpoints *pipeline.CheckpointStore) *RunsHandler {
	return &RunsHandler{checkpoints: checkpoints}
}

// GetRun handles GET /runs/{runId}.
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runId")

	cp, err := h.checkpoints.Load(r.Context(), runID)
	if errors.Is(err, pipeline.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load run", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, cp)
}
