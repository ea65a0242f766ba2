package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PlainText(t *testing.T) {
	s := NewService(50)
	content := strings.Repeat("Ders notları burada. ", 10)

	doc, err := s.Extract(context.Background(), []byte(content), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, content, doc.Text)
	assert.False(t, doc.NeedsOCR)
}

func TestExtract_MIMEParametersIgnored(t *testing.T) {
	s := NewService(50)

	doc, err := s.Extract(context.Background(), []byte("merhaba"), "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "merhaba", doc.Text)
}

func TestExtract_EmptyInput(t *testing.T) {
	s := NewService(50)

	doc, err := s.Extract(context.Background(), nil, "text/plain")
	require.NoError(t, err)
	assert.Empty(t, doc.Text)
	assert.False(t, doc.NeedsOCR)
}

func TestExtract_BinaryNonPDFHasNoTextAndNoOCR(t *testing.T) {
	s := NewService(50)

	// Invalid UTF-8 in a declared text format: not an error, just no
	// text. OCR is reserved for PDFs.
	doc, err := s.Extract(context.Background(), []byte{0xff, 0xfe, 0x00, 0x81}, "image/png")
	require.NoError(t, err)
	assert.Empty(t, doc.Text)
	assert.False(t, doc.NeedsOCR)
}

func TestExtract_CorruptPDFFails(t *testing.T) {
	s := NewService(50)

	_, err := s.Extract(context.Background(), []byte("not a pdf at all"), "application/pdf")
	assert.Error(t, err)
}

func TestNormalizeMIME(t *testing.T) {
	assert.Equal(t, "application/pdf", normalizeMIME("Application/PDF"))
	assert.Equal(t, "text/plain", normalizeMIME(" text/plain ; charset=iso-8859-9"))
}
