package config

import "strings"

// Config holds postgen configuration.
// Stored at: {home}/config.yaml or ./config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers" json:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults" json:"defaults"`
	Generation   GenerationCfg             `mapstructure:"generation" yaml:"generation" json:"generation"`
	Data         DataCfg                   `mapstructure:"data" yaml:"data" json:"data"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server" json:"server"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type           string  `mapstructure:"type" yaml:"type" json:"type"`             // "openai" or "langchain"
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url" json:"base_url"` // OpenAI-compatible endpoint
	Model          string  `mapstructure:"model" yaml:"model" json:"model"`
	APIKey         string  `mapstructure:"api_key" yaml:"api_key" json:"api_key"` // API key (supports ${ENV_VAR} syntax)
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature" json:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens" yaml:"max_tokens" json:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
	MaxRetries     int     `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`
	RateLimit      int     `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"` // Requests per minute
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
}

// DefaultsCfg specifies default provider selections.
type DefaultsCfg struct {
	LLMProvider        string `mapstructure:"llm_provider" yaml:"llm_provider" json:"llm_provider"`                      // Generation provider
	AnnotationProvider string `mapstructure:"annotation_provider" yaml:"annotation_provider" json:"annotation_provider"` // Empty means LLMProvider
}

// GenerationCfg tunes prompt assembly and collaborator retries.
type GenerationCfg struct {
	MaxExamples       int     `mapstructure:"max_examples" yaml:"max_examples" json:"max_examples"`
	RetryAttempts     int     `mapstructure:"retry_attempts" yaml:"retry_attempts" json:"retry_attempts"`
	RetryDelaySeconds float64 `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds" json:"retry_delay_seconds"`
}

// DataCfg locates datasets.
type DataCfg struct {
	Dir            string `mapstructure:"dir" yaml:"dir" json:"dir"` // Empty means {home}/data
	DefaultDataset string `mapstructure:"default_dataset" yaml:"default_dataset" json:"default_dataset"`
}

// ServerCfg configures the HTTP interface.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host" json:"host"`
	Port string `mapstructure:"port" yaml:"port" json:"port"`
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}

// AnnotationProvider returns the provider used for classification.
func (c *Config) AnnotationProvider() string {
	if c.Defaults.AnnotationProvider != "" {
		return c.Defaults.AnnotationProvider
	}
	return c.Defaults.LLMProvider
}

// Redacted returns a copy safe to display. Literal API keys are masked;
// ${ENV_VAR} references are kept since they name, not hold, the secret.
func (c *Config) Redacted() Config {
	out := *c
	out.LLMProviders = make(map[string]LLMProviderCfg, len(c.LLMProviders))
	for name, p := range c.LLMProviders {
		if p.APIKey != "" && !strings.HasPrefix(p.APIKey, "${") {
			p.APIKey = "********"
		}
		out.LLMProviders[name] = p
	}
	return out
}
