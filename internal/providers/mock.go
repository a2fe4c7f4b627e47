package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const MockName = "mock"

// MockClient is an LLMClient and ImageClient for testing. Completion
// behavior is scripted per schema name; image behavior is scripted per
// prompt or globally.
type MockClient struct {
	mu sync.Mutex

	// Responses maps schema name to the JSON payload to return.
	Responses map[string]string

	// Errors maps schema name to an error to return instead of a response.
	Errors map[string]error

	// Malformed maps schema name to raw non-conforming text; the call
	// fails with *MalformedResponseError carrying that text.
	Malformed map[string]string

	// FreeText is returned for requests without a ResponseFormat.
	FreeText string

	// ImageErr, when set, fails every image call.
	ImageErr error

	// ImageDelay, when set, is applied per image request (keyed by prompt)
	// to exercise out-of-order completion.
	ImageDelay func(prompt string) time.Duration

	completions []string // schema names in call order
	imageCalls  []string // prompts in dispatch order

	inFlightImages    int
	maxInFlightImages int
}

// NewMockClient creates an empty mock.
func NewMockClient() *MockClient {
	return &MockClient{
		Responses: make(map[string]string),
		Errors:    make(map[string]error),
		Malformed: make(map[string]string),
		FreeText:  "mock response",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string { return MockName }

// Complete returns the scripted behavior for the request's schema.
func (c *MockClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := ""
	if req.ResponseFormat != nil {
		name = req.ResponseFormat.Name
	}

	c.mu.Lock()
	c.completions = append(c.completions, name)
	scriptedErr := c.Errors[name]
	malformed, hasMalformed := c.Malformed[name]
	response, hasResponse := c.Responses[name]
	c.mu.Unlock()

	if scriptedErr != nil {
		return nil, scriptedErr
	}
	if hasMalformed {
		return nil, &MalformedResponseError{
			Schema: name,
			Raw:    malformed,
			Reason: fmt.Errorf("scripted malformed response"),
		}
	}

	result := &CompletionResult{
		Provider:  MockName,
		ModelUsed: req.Model,
		RequestID: fmt.Sprintf("mock-%d", len(c.completions)),
	}

	if req.ResponseFormat == nil {
		result.Content = c.FreeText
		return result, nil
	}

	if !hasResponse {
		return nil, fmt.Errorf("mock: no scripted response for schema %q", name)
	}
	result.Content = response
	result.ParsedJSON = json.RawMessage(response)
	return result, nil
}

// GenerateImage returns bytes derived from the prompt so tests can verify
// image-to-section association regardless of completion order.
func (c *MockClient) GenerateImage(ctx context.Context, req *ImageRequest) (*ImageResult, error) {
	c.mu.Lock()
	c.imageCalls = append(c.imageCalls, req.Prompt)
	c.inFlightImages++
	if c.inFlightImages > c.maxInFlightImages {
		c.maxInFlightImages = c.inFlightImages
	}
	delayFn := c.ImageDelay
	imageErr := c.ImageErr
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlightImages--
		c.mu.Unlock()
	}()

	if delayFn != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delayFn(req.Prompt)):
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if imageErr != nil {
		return nil, imageErr
	}

	return &ImageResult{
		Data:   []byte("img:" + req.Prompt),
		Format: "webp",
		Width:  req.Width,
		Height: req.Height,
	}, nil
}

// CompletionCalls returns the schema names requested, in order.
func (c *MockClient) CompletionCalls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.completions))
	copy(out, c.completions)
	return out
}

// ImageCalls returns the image prompts dispatched, in order.
func (c *MockClient) ImageCalls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.imageCalls))
	copy(out, c.imageCalls)
	return out
}

// MaxInFlightImages reports the peak number of concurrent image requests.
func (c *MockClient) MaxInFlightImages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxInFlightImages
}

// Verify interfaces
var (
	_ LLMClient   = (*MockClient)(nil)
	_ ImageClient = (*MockClient)(nil)
)
