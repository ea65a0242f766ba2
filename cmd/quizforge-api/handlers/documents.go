package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atlasedu/quizforge/cmd/quizforge-api/middleware"
	"github.com/atlasedu/quizforge/internal/observability"
	"github.com/atlasedu/quizforge/internal/storage"
)

// DocumentsHandler handles the stored-document catalog: text registered
// here can seed quiz runs by document id without re-uploading.
type DocumentsHandler struct {
	logger *observability.Logger
	repos  *storage.Repositories
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(logger *observability.Logger, repos *storage.Repositories) *DocumentsHandler {
	return &DocumentsHandler{logger: logger, repos: repos}
}

// CreateDocumentDTO represents the API request for registering a document.
type CreateDocumentDTO struct {
	Name     string `json:"name"`
	Text     string `json:"text"`
	MIMEType string `json:"mimeType,omitempty"`
}

// Create handles POST /documents.
func (h *DocumentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateDocumentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if dto.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", "")
		return
	}
	if strings.TrimSpace(dto.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required", "")
		return
	}

	doc := &storage.Document{
		TeacherID: middleware.TeacherFromContext(r.Context()),
		Name:      dto.Name,
		MIMEType:  dto.MIMEType,
		Text:      dto.Text,
	}
	if err := h.repos.Documents.Create(r.Context(), doc); err != nil {
		writeStorageError(w, err)
		return
	}

	h.logger.Info().
		Str("teacher_id", doc.TeacherID).
		Str("document_id", doc.ID.String()).
		Msg("document registered")

	writeJSON(w, http.StatusCreated, doc)
}

// List handles GET /documents.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	teacherID := middleware.TeacherFromContext(r.Context())

	docs, err := h.repos.Documents.ListByTeacher(r.Context(), teacherID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if docs == nil {
		docs = []*storage.Document{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}
