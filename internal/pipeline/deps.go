package pipeline

import (
	"context"
	"time"
)

// Extractor pulls machine-readable text out of raw file bytes.
// "No text found" is a normal result (empty Text, NeedsOCR set when the
// MIME type allows an OCR fallback); errors are reserved for genuine
// parse failures such as a corrupt file.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (*ExtractedDocument, error)
}

// OCRService converts scanned pages into markdown. It re-fetches the file
// through a time-limited signed URL rather than receiving raw bytes.
type OCRService interface {
	Process(ctx context.Context, fileURL, filename string) (*OCRDocument, error)
}

// Summarizer condenses extracted text into a summary suitable for
// question generation.
type Summarizer interface {
	Summarize(ctx context.Context, text, style, language string) (*SummaryResult, error)
}

// QuestionGenerator produces multiple choice questions from a summary.
// The returned count is a best-effort match to the requested count.
type QuestionGenerator interface {
	Generate(ctx context.Context, summary string, params GenerationParams) ([]Question, error)
}

// QuizStore is the persistence gateway: the single point at which a quiz
// record becomes visible to other readers.
type QuizStore interface {
	SaveQuiz(ctx context.Context, input QuizInput) (string, error)
}

// Uploader persists uploaded file bytes to the object store and mints
// signed access URLs for collaborators that re-fetch them.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte, contentType string) (path string, err error)
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// DocumentSource resolves the text of a previously ingested document.
type DocumentSource interface {
	DocumentText(ctx context.Context, documentID string) (string, error)
}

// Dependencies bundles the stage collaborators injected into the
// orchestrator. Optional collaborators (OCR, Uploader, Documents) may be
// nil; whether a capability is "configured" is exactly whether its
// dependency is present.
type Dependencies struct {
	Extractor  Extractor
	OCR        OCRService
	Summarizer Summarizer
	Generator  QuestionGenerator
	Store      QuizStore
	Uploader   Uploader
	Documents  DocumentSource
}
