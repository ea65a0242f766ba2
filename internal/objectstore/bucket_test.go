package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "notes.pdf", "notes.pdf"},
		{"spaces", "ders notlari final.pdf", "ders_notlari_final.pdf"},
		{"path stripped", "/tmp/secret/notes.pdf", "notes.pdf"},
		{"windows path stripped", "C:\\Users\\teacher\\notes.pdf", "notes.pdf"},
		{"unicode replaced", "özet.pdf", "_zet.pdf"},
		{"empty", "", "upload"},
		{"dot only", ".", "upload"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, sanitizeFilename(tc.input))
		})
	}
}

func TestObjectNameUsesPrefixAndIsUnique(t *testing.T) {
	b := &Bucket{prefix: "documents"}

	first := b.objectName("notes.pdf")
	second := b.objectName("notes.pdf")

	assert.True(t, len(first) > len("documents/"))
	assert.Contains(t, first, "documents/")
	assert.Contains(t, first, "-notes.pdf")
	assert.NotEqual(t, first, second)
}

func TestNewBucketRequiresName(t *testing.T) {
	_, err := NewBucket(nil, Config{})
	assert.Error(t, err)
}
