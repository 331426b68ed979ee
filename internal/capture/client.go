// Package capture talks to the face extraction model server and prepares
// camera frames for it. The server runs the detection and embedding models;
// this package only ships pixels and receives vectors.
package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/satriadp/hadirku/internal/config"
	"github.com/satriadp/hadirku/internal/embedding"
)

var (
	// ErrNoFace means the extractor processed the image but found no face.
	ErrNoFace = errors.New("no face detected in image")
	// ErrExtractionTimeout means the extractor did not answer in time.
	ErrExtractionTimeout = errors.New("embedding extraction timed out")
)

// Client computes face embeddings using the extraction server.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates an extraction client from config.
func NewClient(cfg *config.ExtractorConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}
}

// representResponse represents the response from the extraction server.
type representResponse struct {
	FacesCount int       `json:"faces_count"`
	Embedding  []float32 `json:"embedding"`
	Model      string    `json:"model"`
	Dim        int       `json:"dim"`
}

// ExtractFace sends an image to the extraction server and returns the
// embedding of the detected face. Returns ErrNoFace when the server found no
// face and ErrExtractionTimeout when the request deadline passed.
func (c *Client) ExtractFace(ctx context.Context, imageData []byte) (embedding.Vector, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	mimeType := detectMIMEType(imageData)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.WriteField("model", c.model); err != nil {
		return nil, fmt.Errorf("failed to write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/represent", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, ErrExtractionTimeout
		}
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, ErrNoFace
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction server error (status %d): %s", resp.StatusCode, string(body))
	}

	var rr representResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if rr.FacesCount == 0 || len(rr.Embedding) == 0 {
		return nil, ErrNoFace
	}

	return embedding.Vector(rr.Embedding), nil
}

// Model returns the model name being used.
func (c *Client) Model() string {
	return c.model
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

// detectMIMEType detects the MIME type from image data.
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
