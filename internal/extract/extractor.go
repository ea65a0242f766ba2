// Package extract implements the synchronous text extraction stage for
// uploaded files. PDF text layers are read with go-fitz; text-native
// formats are decoded directly. Absence of text is a normal result, not
// an error: for PDFs below the content threshold it flips the OCR flag.
package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"

	"github.com/atlasedu/quizforge/internal/pipeline"
)

// pageSeparator joins per-page text in multi-page PDFs. The orchestrator
// strips it again before measuring content length.
const pageSeparator = "\n\n---\n\n"

// Service implements pipeline.Extractor.
type Service struct {
	minContentLength int
}

// NewService creates an extractor. minContentLength is the clean-text
// threshold below which a PDF is considered scanned.
func NewService(minContentLength int) *Service {
	if minContentLength <= 0 {
		minContentLength = 50
	}
	return &Service{minContentLength: minContentLength}
}

// Extract pulls machine-readable text out of data according to its
// declared MIME type. NeedsOCR is set only for PDFs whose stripped text
// falls below the content threshold; other formats never request OCR.
func (s *Service) Extract(ctx context.Context, data []byte, mimeType string) (*pipeline.ExtractedDocument, error) {
	if len(data) == 0 {
		return &pipeline.ExtractedDocument{}, nil
	}

	switch normalizeMIME(mimeType) {
	case pipeline.MIMEPDF:
		return s.extractPDF(ctx, data)
	default:
		return s.extractPlain(data), nil
	}
}

func (s *Service) extractPDF(ctx context.Context, data []byte) (*pipeline.ExtractedDocument, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := doc.Text(i)
		if err != nil {
			// A single unreadable page does not fail extraction;
			// the threshold check decides whether OCR is needed.
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	combined := strings.Join(pages, pageSeparator)
	clean := strings.TrimSpace(pipeline.StripPageMarkers(combined))

	return &pipeline.ExtractedDocument{
		Text:     combined,
		NeedsOCR: utf8.RuneCountInString(clean) < s.minContentLength,
	}, nil
}

func (s *Service) extractPlain(data []byte) *pipeline.ExtractedDocument {
	if !utf8.Valid(data) {
		// Binary content in a non-PDF format: no text, and no OCR
		// fallback either.
		return &pipeline.ExtractedDocument{}
	}
	return &pipeline.ExtractedDocument{Text: string(data)}
}

// normalizeMIME drops parameters such as "; charset=utf-8".
func normalizeMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
