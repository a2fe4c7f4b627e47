package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// veniceImageRequest is the wire format for Venice's /image/generate route.
type veniceImageRequest struct {
	Model       string `json:"model"`
	Prompt      string `json:"prompt"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      string `json:"format"`
	SafeMode    bool   `json:"safe_mode"`
	StylePreset string `json:"style_preset,omitempty"`
}

type veniceImageResponse struct {
	Images []string `json:"images"` // base64-encoded
}

// GenerateImage renders a single image. A single attempt is made; callers
// own the retry policy.
func (c *VeniceClient) GenerateImage(ctx context.Context, req *ImageRequest) (*ImageResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload := veniceImageRequest{
		Model:       c.imageModel,
		Prompt:      req.Prompt,
		Width:       req.Width,
		Height:      req.Height,
		Format:      "webp",
		SafeMode:    true,
		StylePreset: req.StyleHint,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal image request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image response: %v", ErrRemoteUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		if isRetryableStatus(resp.StatusCode) {
			return nil, fmt.Errorf("%w: image endpoint returned status %d", ErrRemoteUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("image endpoint rejected request (status %d)", resp.StatusCode)
	}

	var decoded veniceImageResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode image response: %w", err)
	}
	if len(decoded.Images) == 0 {
		return nil, fmt.Errorf("image response contained no images")
	}

	data, err := base64.StdEncoding.DecodeString(decoded.Images[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode image bytes: %w", err)
	}

	return &ImageResult{
		Data:          data,
		Format:        "webp",
		Width:         req.Width,
		Height:        req.Height,
		RequestID:     requestID,
		ExecutionTime: time.Since(start),
	}, nil
}

// Verify interfaces
var (
	_ LLMClient   = (*VeniceClient)(nil)
	_ ImageClient = (*VeniceClient)(nil)
)
