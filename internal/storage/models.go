// Package storage provides database models and repositories for quiz
// and document persistence.
package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atlasedu/quizforge/internal/pipeline"
)

// QuizStatus represents the lifecycle state of a stored quiz.
type QuizStatus string

const (
	QuizStatusDraft      QuizStatus = "draft"
	QuizStatusProcessing QuizStatus = "processing"
	QuizStatusReady      QuizStatus = "ready"
	QuizStatusPublished  QuizStatus = "published"
	QuizStatusFailed     QuizStatus = "failed"
)

// QuestionList stores generated questions as a JSON column.
type QuestionList []pipeline.Question

// Value implements driver.Valuer.
func (q QuestionList) Value() (driver.Value, error) {
	if q == nil {
		return "[]", nil
	}
	data, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("marshal questions: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (q *QuestionList) Scan(src interface{}) error {
	if src == nil {
		*q = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported questions column type %T", src)
	}
	return json.Unmarshal(data, q)
}

// Quiz is a persisted quiz with its generated questions.
type Quiz struct {
	ID            uuid.UUID    `json:"id"`
	TeacherID     string       `json:"teacherId"`
	Title         string       `json:"title"`
	Subject       string       `json:"subject,omitempty"`
	Grade         string       `json:"grade,omitempty"`
	Topic         string       `json:"topic,omitempty"`
	Summary       string       `json:"summary,omitempty"`
	Questions     QuestionList `json:"questions"`
	QuestionCount int          `json:"questionCount"`
	Language      string       `json:"language"`
	Difficulty    string       `json:"difficulty"`
	Status        QuizStatus   `json:"status"`
	SourceType    string       `json:"sourceType"`
	SourceObject  string       `json:"sourceObject,omitempty"`
	FileName      string       `json:"fileName,omitempty"`
	DocumentID    string       `json:"documentId,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Document is a previously ingested source document whose extracted
// text can seed new quiz runs without re-uploading.
type Document struct {
	ID         uuid.UUID `json:"id"`
	TeacherID  string    `json:"teacherId"`
	Name       string    `json:"name"`
	MIMEType   string    `json:"mimeType"`
	ObjectPath string    `json:"objectPath,omitempty"`
	Text       string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}
