package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atlasedu/quizforge/cmd/quizforge-api/middleware"
	"github.com/atlasedu/quizforge/internal/observability"
	"github.com/atlasedu/quizforge/internal/pipeline"
	"github.com/atlasedu/quizforge/internal/quiz"
	"github.com/atlasedu/quizforge/internal/storage"
)

// QuizzesHandler handles quiz read, publish, and scoring requests.
type QuizzesHandler struct {
	logger *observability.Logger
	repos  *storage.Repositories
}

// NewQuizzesHandler creates a new quizzes handler.
func NewQuizzesHandler(logger *observability.Logger, repos *storage.Repositories) *QuizzesHandler {
	return &QuizzesHandler{logger: logger, repos: repos}
}

// List handles GET /quizzes.
func (h *QuizzesHandler) List(w http.ResponseWriter, r *http.Request) {
	teacherID := middleware.TeacherFromContext(r.Context())

	quizzes, err := h.repos.Quizzes.ListByTeacher(r.Context(), teacherID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if quizzes == nil {
		quizzes = []*storage.Quiz{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"quizzes": quizzes})
}

// Get handles GET /quizzes/{quizId}.
func (h *QuizzesHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Publish handles POST /quizzes/{quizId}/publish. Only a ready quiz can
// be published.
func (h *QuizzesHandler) Publish(w http.ResponseWriter, r *http.Request) {
	q, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}

	switch q.Status {
	case storage.QuizStatusPublished:
		writeJSON(w, http.StatusOK, q)
		return
	case storage.QuizStatusReady:
	default:
		writeError(w, http.StatusConflict, "quiz is not ready to publish", string(q.Status))
		return
	}

	teacherID := middleware.TeacherFromContext(r.Context())
	if err := h.repos.Quizzes.UpdateStatus(r.Context(), teacherID, q.ID, storage.QuizStatusPublished); err != nil {
		writeStorageError(w, err)
		return
	}

	h.logger.Info().
		Str("teacher_id", teacherID).
		Str("quiz_id", q.ID.String()).
		Msg("quiz published")

	q.Status = storage.QuizStatusPublished
	writeJSON(w, http.StatusOK, q)
}

// ScoreRequestDTO carries a student's answers; -1 marks a skipped
// question.
type ScoreRequestDTO struct {
	Answers []int `json:"answers"`
}

// Score handles POST /quizzes/{quizId}/score.
func (h *QuizzesHandler) Score(w http.ResponseWriter, r *http.Request) {
	q, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}

	var dto ScoreRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	answers := make([]quiz.Answer, len(dto.Answers))
	for i, a := range dto.Answers {
		answers[i] = quiz.Answer(a)
	}

	result := quiz.Score([]pipeline.Question(q.Questions), answers)
	writeJSON(w, http.StatusOK, result)
}

func (h *QuizzesHandler) loadQuiz(w http.ResponseWriter, r *http.Request) (*storage.Quiz, bool) {
	quizID, err := uuid.Parse(chi.URLParam(r, "quizId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quizId", err.Error())
		return nil, false
	}

	teacherID := middleware.TeacherFromContext(r.Context())
	q, err := h.repos.Quizzes.GetByID(r.Context(), teacherID, quizID)
	if err != nil {
		writeStorageError(w, err)
		return nil, false
	}
	return q, true
}
