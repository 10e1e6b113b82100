package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	GroqName           = "groq"
	GroqBaseURL        = "https://api.groq.com/openai/v1"
	GroqDefaultModel   = "llama-3.3-70b-versatile"
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

// OpenAIConfig holds configuration for any OpenAI-compatible chat endpoint.
type OpenAIConfig struct {
	Name        string // registry name, defaults to "groq"
	APIKey      string
	BaseURL     string // defaults to Groq
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // per HTTP request
	MaxRetries  int           // SDK transport retries
	RPM         int           // requests per minute
	HTTPClient  *http.Client  // Optional (tests)
}

// OpenAIClient implements LLMClient with the official OpenAI SDK. Groq serves
// the same API, so this client talks to Groq by default.
type OpenAIClient struct {
	name        string
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	rpm         int
	limiter     *RateLimiter
	client      openai.Client
}

// NewOpenAIClient creates a client, filling unset fields with Groq defaults.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Name == "" {
		cfg.Name = GroqName
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = GroqDefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	)

	return &OpenAIClient{
		name:        cfg.Name,
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		rpm:         cfg.RPM,
		limiter:     NewRateLimiter(cfg.RPM),
		client:      client,
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return c.name
}

// Model returns the configured default model.
func (c *OpenAIClient) Model() string {
	return c.model
}

// RateLimiter exposes the client's limiter for status reporting.
func (c *OpenAIClient) RateLimiter() *RateLimiter {
	return c.limiter
}

// HealthCheck lists models to confirm the key and endpoint work.
func (c *OpenAIClient) HealthCheck(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx); err != nil {
		return fmt.Errorf("%s models list failed: %w", c.name, mapOpenAIError(err))
	}
	return nil
}

// Chat sends a chat completion request. When req.ResponseFormat is set the
// reply is parsed as JSON, validated against the schema if one is given, and
// the model is asked to repair invalid output a bounded number of times.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	model := req.Model
	if model == "" {
		model = c.model
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  c.name,
		ModelUsed: model,
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+2)
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return result, result.fail("rate_limit_wait", err, start)
		}

		params := openai.ChatCompletionNewParams{
			Model:       model,
			Messages:    messages,
			Temperature: openai.Float(temperature),
			MaxTokens:   openai.Int(int64(maxTokens)),
		}
		if req.ResponseFormat != nil {
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
			}
		}

		result.Attempts++
		execStart := time.Now()
		resp, err := c.client.Chat.Completions.New(ctx, params)
		result.ExecutionTime += time.Since(execStart)
		if err != nil {
			err = mapOpenAIError(err)
			if rle, ok := IsRateLimitError(err); ok {
				c.limiter.Record429(rle.RetryAfter)
			}
			return result, result.fail("http_error", err, start)
		}
		if len(resp.Choices) == 0 {
			return result, result.fail("empty_response", errors.New("no choices in response"), start)
		}

		content := resp.Choices[0].Message.Content
		result.Content = content
		if resp.Model != "" {
			result.ModelUsed = resp.Model
		}
		result.PromptTokens += int(resp.Usage.PromptTokens)
		result.CompletionTokens += int(resp.Usage.CompletionTokens)
		result.TotalTokens += int(resp.Usage.TotalTokens)

		if req.ResponseFormat == nil {
			break
		}

		parsed, perr := ParseStructuredJSON(content)
		if perr == nil {
			perr = ValidateStructuredJSON(req.ResponseFormat.JSONSchema, parsed)
		}
		if perr == nil {
			result.ParsedJSON = parsed
			break
		}
		if attempt >= maxStructuredRepairAttempts {
			return result, result.fail("json_parse", perr, start)
		}
		messages = append(messages,
			openai.AssistantMessage(content),
			openai.UserMessage(structuredRepairPrompt(req.ResponseFormat.JSONSchema, content, perr)),
		)
	}

	result.Success = true
	result.TotalTime = time.Since(start)
	return result, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.StatusCode == http.StatusTooManyRequests {
		var retryAfter time.Duration
		if apiErr.Response != nil {
			retryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
		}
		return &RateLimitError{
			Message:    fmt.Sprintf("rate limited: %s", apiErr.Message),
			RetryAfter: retryAfter,
			StatusCode: apiErr.StatusCode,
		}
	}
	return &StatusError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
}

// Verify interface
var _ LLMClient = (*OpenAIClient)(nil)
