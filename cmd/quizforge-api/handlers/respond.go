// Package handlers provides HTTP handlers for the QuizForge API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atlasedu/quizforge/internal/pipeline"
	"github.com/atlasedu/quizforge/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}

// writePipelineError maps the pipeline error taxonomy onto HTTP status
// codes: bad input is the caller's fault, an unconfigured stage is a
// 503, an upstream failure is a 502, and unusable model output is 422.
func writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case pipeline.IsValidation(err):
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
	case pipeline.IsUnavailable(err):
		writeError(w, http.StatusServiceUnavailable, "stage not configured", err.Error())
	default:
		var contentErr *pipeline.ContentError
		if errors.As(err, &contentErr) {
			writeError(w, http.StatusUnprocessableEntity, "content error", err.Error())
			return
		}
		if stage, ok := pipeline.FailedStage(err); ok {
			writeError(w, http.StatusBadGateway, "stage "+string(stage)+" failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "pipeline failed", err.Error())
	}
}

func writeStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found", "")
		return
	}
	writeError(w, http.StatusInternalServerError, "storage error", err.Error())
}
