package face

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"geoattend/internal/face/models"
)

// Encoder extracts face encodings from a photo. Implementations return one
// encoding per face found in the image; zero and multiple faces are valid
// outcomes, not errors.
type Encoder interface {
	Encode(ctx context.Context, photo []byte) ([][]float64, error)
}

// HTTPEncoder calls an external face service over HTTP. The service accepts a
// multipart upload and responds with the encodings it found.
type HTTPEncoder struct {
	baseURL string
	client  *http.Client
}

func NewHTTPEncoder(baseURL string) *HTTPEncoder {
	return &HTTPEncoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (e *HTTPEncoder) Encode(ctx context.Context, photo []byte) ([][]float64, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("photo", "photo.jpg")
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/encodings", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("face service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("face service returned %d: %s", resp.StatusCode, payload)
	}

	var decoded struct {
		Encodings [][]float64 `json:"encodings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode face service response: %w", err)
	}
	for _, encoding := range decoded.Encodings {
		if len(encoding) != models.EncodingLength {
			return nil, fmt.Errorf("face service returned encoding of length %d, want %d",
				len(encoding), models.EncodingLength)
		}
	}
	return decoded.Encodings, nil
}

// UnavailableEncoder rejects every extraction. Enrollment against it fails
// cleanly instead of creating profiles that could never be matched.
type UnavailableEncoder struct{}

func (UnavailableEncoder) Encode(context.Context, []byte) ([][]float64, error) {
	return nil, errors.New("face encoding service is not configured")
}

// StaticEncoder returns fixed encodings regardless of input. Used in tests and
// in deployments without a face service.
type StaticEncoder struct {
	Encodings [][]float64
	Err       error
}

func (e *StaticEncoder) Encode(context.Context, []byte) ([][]float64, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Encodings, nil
}
