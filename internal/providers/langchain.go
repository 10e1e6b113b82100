package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

// LangChainConfig configures a LangChainClient.
type LangChainConfig struct {
	Name        string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// LangChainClient implements LLMClient on top of langchaingo, for backends
// reachable through its OpenAI-compatible driver.
type LangChainClient struct {
	name        string
	model       string
	temperature float64
	maxTokens   int
	llm         llms.Model
}

// NewLangChainClient creates a client. It fails only if the driver rejects
// the configuration.
func NewLangChainClient(cfg LangChainConfig) (*LangChainClient, error) {
	if cfg.Name == "" {
		cfg.Name = "langchain"
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

	llm, err := lcopenai.New(
		lcopenai.WithToken(cfg.APIKey),
		lcopenai.WithModel(cfg.Model),
		lcopenai.WithBaseURL(cfg.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create langchain client: %w", err)
	}
	return newLangChainClient(cfg, llm), nil
}

func newLangChainClient(cfg LangChainConfig, llm llms.Model) *LangChainClient {
	return &LangChainClient{
		name:        cfg.Name,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		llm:         llm,
	}
}

// Name returns the client identifier.
func (c *LangChainClient) Name() string {
	return c.name
}

// Chat sends the request through langchaingo.
func (c *LangChainClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	result := &ChatResult{
		RequestID: requestID,
		Provider:  c.name,
		ModelUsed: c.model,
		Attempts:  1,
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	messages := make([]llms.MessageContent, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := llms.ChatMessageTypeHuman
		switch m.Role {
		case "system":
			role = llms.ChatMessageTypeSystem
		case "assistant":
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, m.Content))
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	opts := []llms.CallOption{
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	}
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
		result.ModelUsed = req.Model
	}
	if req.ResponseFormat != nil {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := c.llm.GenerateContent(ctx, messages, opts...)
	result.ExecutionTime = time.Since(start)
	if err != nil {
		return result, result.fail("http_error", err, start)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return result, result.fail("empty_response", errors.New("no choices in response"), start)
	}

	choice := resp.Choices[0]
	result.Content = choice.Content
	result.PromptTokens = generationInt(choice.GenerationInfo, "PromptTokens")
	result.CompletionTokens = generationInt(choice.GenerationInfo, "CompletionTokens")
	result.TotalTokens = generationInt(choice.GenerationInfo, "TotalTokens")

	if req.ResponseFormat != nil {
		parsed, perr := ParseStructuredJSON(choice.Content)
		if perr == nil {
			perr = ValidateStructuredJSON(req.ResponseFormat.JSONSchema, parsed)
		}
		if perr != nil {
			return result, result.fail("json_parse", perr, start)
		}
		result.ParsedJSON = parsed
	}

	result.Success = true
	result.TotalTime = time.Since(start)
	return result, nil
}

func generationInt(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Verify interface
var _ LLMClient = (*LangChainClient)(nil)
