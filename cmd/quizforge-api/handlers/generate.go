package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/atlasedu/quizforge/cmd/quizforge-api/middleware"
	"github.com/atlasedu/quizforge/internal/observability"
	"github.com/atlasedu/quizforge/internal/pipeline"
)

// GenerateHandler handles quiz generation requests.
type GenerateHandler struct {
	logger         *observability.Logger
	orchestrator   *pipeline.Orchestrator
	checkpoints    *pipeline.CheckpointStore
	maxUploadBytes int64
	runTimeout     time.Duration
}

// NewGenerateHandler creates a new generation handler.
func NewGenerateHandler(logger *observability.Logger, orchestrator *pipeline.Orchestrator, checkpoints *pipeline.CheckpointStore) *GenerateHandler {
	return &GenerateHandler{
		logger:         logger,
		orchestrator:   orchestrator,
		checkpoints:    checkpoints,
		maxUploadBytes: 32 << 20,
		runTimeout:     10 * time.Minute,
	}
}

// GenerateRequestDTO represents the API request for generation from
// inline text or a stored document.
type GenerateRequestDTO struct {
	Title        string `json:"title"`
	Subject      string `json:"subject,omitempty"`
	Grade        string `json:"grade,omitempty"`
	Topic        string `json:"topic,omitempty"`
	SourceType   string `json:"sourceType"`
	SourceText   string `json:"sourceText,omitempty"`
	DocumentID   string `json:"documentId,omitempty"`
	NumQuestions int    `json:"numQuestions"`
	Difficulty   string `json:"difficulty,omitempty"`
	QuestionType string `json:"questionType,omitempty"`
	Language     string `json:"language,omitempty"`
	Wait         bool   `json:"wait,omitempty"`
}

// RunAcceptedDTO is the asynchronous 202 response.
type RunAcceptedDTO struct {
	RunID  string `json:"runId"`
	Status string `json:"status"`
}

// RunResultDTO is the synchronous completion response.
type RunResultDTO struct {
	RunID     string              `json:"runId"`
	QuizID    string              `json:"quizId"`
	Summary   string              `json:"summary"`
	Questions []pipeline.Question `json:"questions"`
}

// Generate handles POST /quizzes/generate.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var dto GenerateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if dto.SourceType == string(pipeline.SourceUpload) {
		writeError(w, http.StatusBadRequest, "use the upload endpoint for file sources", "")
		return
	}

	req := pipeline.Request{
		TeacherID:    middleware.TeacherFromContext(r.Context()),
		RunID:        uuid.New().String(),
		Title:        dto.Title,
		Subject:      dto.Subject,
		Grade:        dto.Grade,
		Topic:        dto.Topic,
		SourceType:   pipeline.SourceType(dto.SourceType),
		SourceText:   dto.SourceText,
		DocumentID:   dto.DocumentID,
		NumQuestions: dto.NumQuestions,
		Difficulty:   dto.Difficulty,
		QuestionType: dto.QuestionType,
		Language:     dto.Language,
	}

	h.dispatch(w, r, req, dto.Wait)
}

// GenerateUpload handles POST /quizzes/generate/upload with a multipart
// form carrying the source file.
func (h *GenerateHandler) GenerateUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required", err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file", err.Error())
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	numQuestions, _ := strconv.Atoi(r.FormValue("numQuestions"))

	req := pipeline.Request{
		TeacherID:    middleware.TeacherFromContext(r.Context()),
		RunID:        uuid.New().String(),
		Title:        r.FormValue("title"),
		Subject:      r.FormValue("subject"),
		Grade:        r.FormValue("grade"),
		Topic:        r.FormValue("topic"),
		SourceType:   pipeline.SourceUpload,
		File:         data,
		FileName:     header.Filename,
		FileMIME:     mimeType,
		NumQuestions: numQuestions,
		Difficulty:   r.FormValue("difficulty"),
		QuestionType: r.FormValue("questionType"),
		Language:     r.FormValue("language"),
	}

	h.dispatch(w, r, req, r.FormValue("wait") == "true")
}

// dispatch runs the pipeline either synchronously within the request or
// on a detached goroutine whose progress is polled by run id.
func (h *GenerateHandler) dispatch(w http.ResponseWriter, r *http.Request, req pipeline.Request, wait bool) {
	if wait {
		result, err := h.orchestrator.Generate(r.Context(), req)
		if err != nil {
			writePipelineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, RunResultDTO{
			RunID:     req.RunID,
			QuizID:    result.QuizID,
			Summary:   result.Summary,
			Questions: result.Questions,
		})
		return
	}

	// Seed the run trail so polling immediately after the 202 finds
	// the run instead of a 404.
	if h.checkpoints != nil {
		_ = h.checkpoints.Save(r.Context(), pipeline.Checkpoint{
			RunID:   req.RunID,
			Stage:   pipeline.StageIdle,
			Message: "Run accepted",
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.runTimeout)
		defer cancel()

		if _, err := h.orchestrator.Generate(ctx, req); err != nil {
			h.logger.Error().Err(err).Str("run_id", req.RunID).Msg("async run failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, RunAcceptedDTO{RunID: req.RunID, Status: "accepted"})
}
