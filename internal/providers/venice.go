package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"golang.org/x/time/rate"
)

const (
	VeniceName    = "venice"
	VeniceBaseURL = "https://api.venice.ai/api/v1"

	defaultSummarizationModel = "qwen3-235b"
	defaultImageModel         = "qwen-image"
)

// VeniceConfig holds configuration for the Venice client.
type VeniceConfig struct {
	APIKey  string
	BaseURL string

	// Model defaults per capability
	SummarizationModel string
	ImageModel         string

	// Request pacing and bounds
	Timeout           time.Duration // per-request HTTP timeout
	RequestsPerSecond float64       // shared across completion and image calls

	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client
}

// VeniceClient implements LLMClient and ImageClient against the Venice API.
// Completions go through the OpenAI-compatible chat endpoint via the
// official SDK; image generation uses Venice's own /image/generate route.
//
// The client is read-only after construction and safe for concurrent use.
// It never retries: retry policy belongs to the caller, since not all
// stages are safe or cheap to retry.
type VeniceClient struct {
	chat       openai.Client
	httpClient *http.Client
	limiter    *rate.Limiter

	apiKey       string
	baseURL      string
	chatModel    string
	imageModel   string
}

// NewVeniceClient creates a Venice client with defaults applied.
func NewVeniceClient(cfg VeniceConfig) *VeniceClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = VeniceBaseURL
	}
	if cfg.SummarizationModel == "" {
		cfg.SummarizationModel = defaultSummarizationModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = defaultImageModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2.0
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	chat := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &VeniceClient{
		chat:       chat,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		chatModel:  cfg.SummarizationModel,
		imageModel: cfg.ImageModel,
	}
}

// Name returns the client identifier.
func (c *VeniceClient) Name() string { return VeniceName }

// Complete sends a chat completion request.
func (c *VeniceClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.chatModel
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	if req.ResponseFormat != nil {
		var schemaDoc any
		if err := json.Unmarshal(req.ResponseFormat.Schema, &schemaDoc); err != nil {
			return nil, fmt.Errorf("invalid response schema %q: %w", req.ResponseFormat.Name, err)
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.ResponseFormat.Name,
					Schema: schemaDoc,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	resp, err := c.chat.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classifyTransportErr(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: completion returned no choices", ErrRemoteUnavailable)
	}

	content := resp.Choices[0].Message.Content
	result := &CompletionResult{
		Content:          content,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
		Provider:         VeniceName,
		ModelUsed:        resp.Model,
		RequestID:        requestID,
		ExecutionTime:    time.Since(start),
	}

	if req.ResponseFormat != nil {
		parsed, perr := parseStructured(req.ResponseFormat, content)
		if perr != nil {
			return nil, &MalformedResponseError{
				Schema: req.ResponseFormat.Name,
				Raw:    content,
				Reason: perr,
			}
		}
		result.ParsedJSON = parsed
	}

	return result, nil
}

// classifyTransportErr maps SDK and transport failures onto the error
// taxonomy. Timeouts, network errors, rate limits, and server-side errors
// become ErrRemoteUnavailable; other API errors pass through with the
// status attached. The credential never appears in returned errors.
func classifyTransportErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apierr *openai.Error
	if errors.As(err, &apierr) {
		if isRetryableStatus(apierr.StatusCode) {
			return fmt.Errorf("%w: completion endpoint returned status %d", ErrRemoteUnavailable, apierr.StatusCode)
		}
		return fmt.Errorf("completion endpoint rejected request (status %d)", apierr.StatusCode)
	}

	// Anything else is a transport-level failure (DNS, refused, timeout).
	return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
