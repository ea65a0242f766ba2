package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/atlasedu/quizforge/internal/pipeline"
)

// Gateway adapts the repositories to the pipeline's persistence
// interfaces. The pipeline hands over a finished quiz in one call and
// fetches previously ingested document text by id.
type Gateway struct {
	repos *Repositories
}

// NewGateway creates a Gateway over the given repositories.
func NewGateway(repos *Repositories) *Gateway {
	return &Gateway{repos: repos}
}

// SaveQuiz persists a completed quiz and returns its id. Source
// provenance (the source variant, stored object path, original filename,
// document id) is carried onto the record verbatim.
func (g *Gateway) SaveQuiz(ctx context.Context, input pipeline.QuizInput) (string, error) {
	quiz := &Quiz{
		TeacherID:    input.TeacherID,
		Title:        input.Title,
		Subject:      input.Subject,
		Grade:        input.Grade,
		Topic:        input.Topic,
		Summary:      input.Summary,
		Questions:    QuestionList(input.Questions),
		Language:     input.Language,
		Difficulty:   input.Difficulty,
		Status:       QuizStatusReady,
		SourceType:   string(input.SourceType),
		SourceObject: input.FilePath,
		FileName:     input.FileName,
		DocumentID:   input.DocumentID,
	}
	if err := g.repos.Quizzes.Create(ctx, quiz); err != nil {
		return "", fmt.Errorf("create quiz: %w", err)
	}
	return quiz.ID.String(), nil
}

// DocumentText returns the extracted text of a stored document.
func (g *Gateway) DocumentText(ctx context.Context, documentID string) (string, error) {
	id, err := uuid.Parse(documentID)
	if err != nil {
		return "", fmt.Errorf("invalid document id %q: %w", documentID, err)
	}
	doc, err := g.repos.Documents.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}
