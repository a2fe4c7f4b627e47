// Package providers wraps authenticated access to the remote model API:
// a structured chat-completion capability and an image-generation capability.
package providers

import (
	"context"
	"encoding/json"
	"time"
)

// LLMClient is the interface for structured completion requests.
type LLMClient interface {
	// Complete sends a completion request. When req.ResponseFormat is set,
	// the returned result carries schema-validated ParsedJSON, or the call
	// fails with *MalformedResponseError.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)

	// Name returns the client identifier (e.g., "venice").
	Name() string
}

// ImageClient is the interface for image-generation requests.
type ImageClient interface {
	// GenerateImage renders a single image from a prompt.
	GenerateImage(ctx context.Context, req *ImageRequest) (*ImageResult, error)

	// Name returns the client identifier.
	Name() string
}

// ResponseFormat requests strict schema-conforming JSON output.
type ResponseFormat struct {
	// Name identifies the schema (e.g., "key_takeaways").
	Name string `json:"name"`

	// Schema is the JSON Schema document the response must conform to.
	// Strict semantics: required fields enumerated, no additional properties.
	Schema json.RawMessage `json:"schema"`
}

// CompletionRequest is a request to the text-completion endpoint.
type CompletionRequest struct {
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Model selection (client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Structured output
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// CompletionResult is the response from a completion call.
type CompletionResult struct {
	// Content is the raw text returned by the model.
	Content string `json:"content"`

	// ParsedJSON is set when ResponseFormat was requested; it has been
	// validated against the request schema.
	ParsedJSON json.RawMessage `json:"parsed_json,omitempty"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID     string        `json:"request_id"`
	ExecutionTime time.Duration `json:"execution_time"`
}

// ImageRequest is a request to the image-generation endpoint.
type ImageRequest struct {
	Prompt    string `json:"prompt"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	StyleHint string `json:"style_hint,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// ImageResult carries decoded image bytes from a generation call.
type ImageResult struct {
	Data   []byte `json:"-"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	RequestID     string        `json:"request_id"`
	ExecutionTime time.Duration `json:"execution_time"`
}
