package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return client
}

func TestNewClient_NoAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestProcess_SinglePage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ocr", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		doc := req["document"].(map[string]any)
		assert.Equal(t, "document_url", doc["type"])
		assert.Contains(t, doc["document_url"], "signed")

		json.NewEncoder(w).Encode(map[string]any{
			"pages": []map[string]any{
				{"index": 0, "markdown": "# Başlık\n\nTaranmış içerik."},
			},
		})
	})

	doc, err := client.Process(context.Background(), "https://bucket/signed?sig=x", "scan.pdf")
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, "# Başlık\n\nTaranmış içerik.", doc.Markdown())
}

func TestProcess_MultiPageJoinsWithSeparator(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"pages": []map[string]any{
				{"index": 0, "markdown": "birinci"},
				{"index": 1, "markdown": "ikinci"},
			},
		})
	})

	doc, err := client.Process(context.Background(), "https://bucket/f", "scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "birinci\n\n---\n\nikinci", doc.Markdown())
}

func TestProcess_DecodesEmbeddedImages(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff})
	x1, y1, x2, y2 := 10, 20, 110, 220

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"pages": []map[string]any{
				{
					"index":    0,
					"markdown": "![img](img-0.jpeg)",
					"images": []map[string]any{
						{
							"id":             "img-0.jpeg",
							"top_left_x":     x1,
							"top_left_y":     y1,
							"bottom_right_x": x2,
							"bottom_right_y": y2,
							"image_base64":   "data:image/jpeg;base64," + payload,
						},
					},
				},
			},
		})
	})

	doc, err := client.Process(context.Background(), "https://bucket/f", "scan.pdf")
	require.NoError(t, err)
	require.Len(t, doc.Images, 1)

	img := doc.Images[0]
	assert.Equal(t, "img-0.jpeg", img.ID)
	assert.Equal(t, 0, img.PageIndex)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, img.Data)
	require.NotNil(t, img.BoundingBox)
	assert.Equal(t, 10, img.BoundingBox.TopLeftX)
	assert.Equal(t, 220, img.BoundingBox.BottomRightY)
}

func TestProcess_ProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"message": "unsupported document"})
	})

	_, err := client.Process(context.Background(), "https://bucket/f", "scan.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "unsupported document")
}

func TestProcess_EmptyPagesIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"pages": []any{}})
	})

	_, err := client.Process(context.Background(), "https://bucket/f", "scan.pdf")
	assert.Error(t, err)
}

func TestProcess_MalformedBodyIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.Process(context.Background(), "https://bucket/f", "scan.pdf")
	assert.Error(t, err)
}

func TestDecodeImagePayload(t *testing.T) {
	mime, data := decodeImagePayload("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png")))
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte("png"), data)

	mime, data = decodeImagePayload("")
	assert.Empty(t, mime)
	assert.Nil(t, data)

	_, data = decodeImagePayload("data:image/png;base64,!!notbase64!!")
	assert.Nil(t, data)
}
