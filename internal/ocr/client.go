// Package ocr provides the OCR stage adapter backed by the Mistral OCR
// API. The document is referenced by a signed URL, not raw bytes: the
// provider fetches the file itself.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atlasedu/quizforge/internal/pipeline"
)

// ErrUnavailable indicates the OCR provider is not configured. Callers
// should surface this as "feature disabled", not "try again".
var ErrUnavailable = errors.New("ocr provider is not configured")

// Client calls the Mistral OCR endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Config holds OCR client configuration.
type Config struct {
	APIKey  string
	BaseURL string // Default: https://api.mistral.ai/v1
	Model   string // Default: mistral-ocr-latest
	Timeout time.Duration
}

// NewClient creates a new OCR client. Returns ErrUnavailable when no API
// key is configured so callers can wire the dependency as absent.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrUnavailable
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "mistral-ocr-latest"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}, nil
}

type ocrRequest struct {
	Model              string      `json:"model"`
	Document           ocrDocument `json:"document"`
	IncludeImageBase64 bool        `json:"include_image_base64"`
}

type ocrDocument struct {
	Type         string `json:"type"`
	DocumentURL  string `json:"document_url"`
	DocumentName string `json:"document_name,omitempty"`
}

type ocrResponse struct {
	Pages []ocrPage `json:"pages"`
}

type ocrPage struct {
	Index    int        `json:"index"`
	Markdown string     `json:"markdown"`
	Images   []ocrImage `json:"images"`
}

type ocrImage struct {
	ID           string `json:"id"`
	TopLeftX     *int   `json:"top_left_x"`
	TopLeftY     *int   `json:"top_left_y"`
	BottomRightX *int   `json:"bottom_right_x"`
	BottomRightY *int   `json:"bottom_right_y"`
	ImageBase64  string `json:"image_base64"`
}

type ocrError struct {
	Message string `json:"message"`
}

// Process runs OCR over the document behind fileURL and returns per-page
// markdown plus any embedded images.
func (c *Client) Process(ctx context.Context, fileURL, filename string) (*pipeline.OCRDocument, error) {
	body, err := json.Marshal(ocrRequest{
		Model: c.model,
		Document: ocrDocument{
			Type:         "document_url",
			DocumentURL:  fileURL,
			DocumentName: filename,
		},
		IncludeImageBase64: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read ocr response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr ocrError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("ocr provider returned %d: %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("ocr provider returned %d", resp.StatusCode)
	}

	var decoded ocrResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode ocr response: %w", err)
	}
	if len(decoded.Pages) == 0 {
		return nil, fmt.Errorf("ocr provider returned no pages")
	}

	return convertDocument(decoded), nil
}

func convertDocument(resp ocrResponse) *pipeline.OCRDocument {
	doc := &pipeline.OCRDocument{}
	for _, p := range resp.Pages {
		doc.Pages = append(doc.Pages, pipeline.OCRPage{Index: p.Index, Markdown: p.Markdown})
		for _, img := range p.Images {
			converted := pipeline.OCRImage{
				ID:        img.ID,
				PageIndex: p.Index,
			}
			if img.TopLeftX != nil && img.TopLeftY != nil && img.BottomRightX != nil && img.BottomRightY != nil {
				converted.BoundingBox = &pipeline.BoundingBox{
					TopLeftX:     *img.TopLeftX,
					TopLeftY:     *img.TopLeftY,
					BottomRightX: *img.BottomRightX,
					BottomRightY: *img.BottomRightY,
				}
			}
			converted.MIMEType, converted.Data = decodeImagePayload(img.ImageBase64)
			doc.Images = append(doc.Images, converted)
		}
	}
	return doc
}

// decodeImagePayload parses a data URI such as
// "data:image/jpeg;base64,<payload>". A bare base64 string is accepted
// with the MIME type left empty; undecodable payloads are dropped.
func decodeImagePayload(payload string) (string, []byte) {
	if payload == "" {
		return "", nil
	}

	mimeType := ""
	if strings.HasPrefix(payload, "data:") {
		rest := strings.TrimPrefix(payload, "data:")
		header, b64, ok := strings.Cut(rest, ",")
		if !ok {
			return "", nil
		}
		mimeType = strings.TrimSuffix(header, ";base64")
		payload = b64
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return mimeType, nil
	}
	return mimeType, data
}
