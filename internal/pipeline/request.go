package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Options holds pipeline-wide limits and defaults, normally fed from
// config.PipelineConfig and config.StorageConfig.
type Options struct {
	MinContentLength  int
	MaxQuestions      int
	DefaultDifficulty string
	DefaultLanguage   string
	DefaultType       string

	// SignedURLTTL bounds the lifetime of the URL handed to the OCR
	// collaborator; UploadTimeout bounds the object store upload call.
	SignedURLTTL  time.Duration
	UploadTimeout time.Duration
}

// DefaultOptions returns the platform defaults.
func DefaultOptions() Options {
	return Options{
		MinContentLength:  50,
		MaxQuestions:      50,
		DefaultDifficulty: DifficultyMedium,
		DefaultLanguage:   "tr",
		DefaultType:       "mixed",
		SignedURLTTL:      15 * time.Minute,
	}
}

// Request is the single configuration object a pipeline invocation takes:
// the source specification, generation parameters, quiz metadata, and an
// optional progress observer.
type Request struct {
	TeacherID string

	// RunID is optional. Callers that poll progress by run id assign it
	// up front; when empty the orchestrator generates one.
	RunID string

	Title   string
	Subject string
	Grade   string
	Topic   string

	SourceType SourceType
	SourceText string // text variant
	DocumentID string // document variant
	File       []byte // upload variant
	FileName   string
	FileMIME   string

	NumQuestions int
	Difficulty   string
	QuestionType string
	Language     string

	Observer Observer
}

// normalize fills defaulted generation parameters in place.
func (r *Request) normalize(opts Options) {
	if r.Difficulty == "" {
		r.Difficulty = opts.DefaultDifficulty
	}
	if r.Language == "" {
		r.Language = opts.DefaultLanguage
	}
	if r.QuestionType == "" {
		r.QuestionType = opts.DefaultType
	}
}

// validate checks the request before any network call is made.
func (r *Request) validate(opts Options) error {
	if r.TeacherID == "" {
		return &ValidationError{Reason: "teacherId is required"}
	}

	switch r.SourceType {
	case SourceText:
		if strings.TrimSpace(r.SourceText) == "" {
			return &ValidationError{Reason: "sourceText is required for the text source"}
		}
	case SourceDocument:
		if r.DocumentID == "" {
			return &ValidationError{Reason: "documentId is required for the document source"}
		}
	case SourceUpload:
		if len(r.File) == 0 {
			return &ValidationError{Reason: "file is required for the upload source"}
		}
		if r.FileName == "" {
			return &ValidationError{Reason: "fileName is required for the upload source"}
		}
	default:
		return &ValidationError{Reason: fmt.Sprintf("unknown source type %q", r.SourceType)}
	}

	if r.NumQuestions < 1 || r.NumQuestions > opts.MaxQuestions {
		return &ValidationError{
			Reason: fmt.Sprintf("numQuestions must be between 1 and %d", opts.MaxQuestions),
		}
	}

	switch r.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return &ValidationError{Reason: fmt.Sprintf("unknown difficulty %q", r.Difficulty)}
	}

	if len(r.Language) != 2 {
		return &ValidationError{Reason: "language must be a two-letter code"}
	}

	return nil
}

// params returns the generation parameters carried by the request.
func (r *Request) params() GenerationParams {
	return GenerationParams{
		NumQuestions: r.NumQuestions,
		Difficulty:   r.Difficulty,
		QuestionType: r.QuestionType,
		Topic:        r.Topic,
		Language:     r.Language,
	}
}

// pageMarkerRe matches structural page markers emitted by extractors and
// OCR: "--- Page 3 ---", "[PAGE 3]", bare "---" separator lines, and
// form feeds.
var pageMarkerRe = regexp.MustCompile(`(?mi)^\s*(?:-{3,}\s*(?:page|sayfa)?\s*\d*\s*-{0,3}|\[page\s+\d+\])\s*$`)

// StripPageMarkers removes structural page-marker tokens so that content
// length checks measure real content only.
func StripPageMarkers(text string) string {
	text = strings.ReplaceAll(text, "\f", "\n")
	return pageMarkerRe.ReplaceAllString(text, "")
}

// contentLength measures content in runes after trimming whitespace.
func contentLength(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}
