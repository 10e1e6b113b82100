package annotate

import (
	"encoding/json"
	"fmt"

	"github.com/jackzampolin/postgen/internal/providers"
)

// Input contains the data needed for one classification request.
type Input struct {
	Text string

	// SystemPromptOverride replaces the embedded system prompt when set.
	SystemPromptOverride string
}

// BuildRequest creates the chat request that classifies one post.
func BuildRequest(input Input) *providers.ChatRequest {
	system := input.SystemPromptOverride
	if system == "" {
		system = SystemPrompt()
	}
	return &providers.ChatRequest{
		Messages: []providers.Message{
			providers.SystemMessage(system),
			providers.UserMessage(UserPrompt(input.Text)),
		},
		ResponseFormat: buildResponseFormat(),
		Temperature:    0.1,
		MaxTokens:      512,
	}
}

// ParseResult decodes the model's JSON object into an untyped bag. Anything
// other than a JSON object is an error.
func ParseResult(parsedJSON json.RawMessage) (map[string]any, error) {
	var result map[string]any
	if err := json.Unmarshal(parsedJSON, &result); err != nil {
		return nil, fmt.Errorf("classification result is not a JSON object: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("classification result is null")
	}
	return result, nil
}

func buildResponseFormat() *providers.ResponseFormat {
	schema, _ := json.Marshal(ResponseSchema)
	return &providers.ResponseFormat{
		Type:       "json_object",
		JSONSchema: schema,
	}
}
