package config

import "github.com/jackzampolin/postgen/internal/providers"

// DefaultProvider is the name of the provider in the default configuration.
const DefaultProvider = providers.GroqName

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			DefaultProvider: {
				Type:           "openai",
				BaseURL:        providers.GroqBaseURL,
				Model:          providers.GroqDefaultModel,
				APIKey:         "${GROQ_API_KEY}",
				Temperature:    0.7,
				MaxTokens:      1000,
				TimeoutSeconds: 30,
				MaxRetries:     3,
				RateLimit:      30,
				Enabled:        true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: DefaultProvider,
		},
		Generation: GenerationCfg{
			MaxExamples:       2,
			RetryAttempts:     3,
			RetryDelaySeconds: 1,
		},
		Data: DataCfg{
			DefaultDataset: "processed_posts.json",
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}
