// Package pipeline implements the document-to-quiz generation pipeline:
// a sequential orchestrator that extracts text from a source, falls back
// to OCR for scanned PDFs, summarizes the content, generates multiple
// choice questions, and persists the finished quiz.
package pipeline

// SourceType describes where the input content originates.
type SourceType string

const (
	// SourceText is inline raw text supplied by the caller.
	SourceText SourceType = "text"
	// SourceDocument references a previously ingested document.
	SourceDocument SourceType = "document"
	// SourceUpload is a fresh file upload.
	SourceUpload SourceType = "upload"
)

// Difficulty levels accepted by the question generator.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// MIMEPDF is the only MIME type for which OCR fallback is attempted.
const MIMEPDF = "application/pdf"

// ExtractedDocument is the text extractor's output. An empty Text with
// NeedsOCR false is a normal result, not an error.
type ExtractedDocument struct {
	Text     string
	NeedsOCR bool
}

// OCRPage is one page of OCR output.
type OCRPage struct {
	Index    int
	Markdown string
}

// OCRImage is an embedded image extracted during OCR.
type OCRImage struct {
	ID          string
	PageIndex   int
	BoundingBox *BoundingBox
	MIMEType    string
	Data        []byte
}

// BoundingBox locates an image on its page, in pixels.
type BoundingBox struct {
	TopLeftX     int
	TopLeftY     int
	BottomRightX int
	BottomRightY int
}

// OCRDocument is the OCR stage's output.
type OCRDocument struct {
	Pages  []OCRPage
	Images []OCRImage
}

// Markdown returns the combined markdown of all pages, separated by a
// page break marker when the document has more than one page.
func (d *OCRDocument) Markdown() string {
	if len(d.Pages) == 1 {
		return d.Pages[0].Markdown
	}
	var out string
	for i, p := range d.Pages {
		if i > 0 {
			out += "\n\n---\n\n"
		}
		out += p.Markdown
	}
	return out
}

// Question is one generated multiple choice question. CorrectAnswer is a
// 0-based index into Options; consumers must treat an out-of-range index
// as unscoreable rather than panic.
type Question struct {
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
}

// SummaryResult is the summarizer's output.
type SummaryResult struct {
	Summary   string
	WordCount int
}

// GenerationParams are the caller-supplied question generation knobs.
type GenerationParams struct {
	NumQuestions int
	Difficulty   string
	QuestionType string
	Topic        string
	Language     string
}

// QuizInput is the persistence gateway's input: everything needed to
// create the durable quiz record in a single call.
type QuizInput struct {
	TeacherID  string
	Title      string
	Subject    string
	Grade      string
	Topic      string
	Difficulty string
	Language   string
	SourceType SourceType
	DocumentID string
	FilePath   string
	FileName   string
	Summary    string
	Questions  []Question
}

// Result is the pipeline's terminal success value.
type Result struct {
	QuizID    string
	Questions []Question
	Summary   string
}
