package providers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Registry holds LLM clients by name. It is built from configuration, can be
// reloaded when the config file changes, and is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]LLMClient
	configs map[string]LLMProviderConfig
	logger  *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]LLMClient),
		configs: make(map[string]LLMProviderConfig),
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register adds or replaces a client by name.
func (r *Registry) Register(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	delete(r.configs, name)
	r.logger.Info("registered LLM client", "name", name)
}

// Unregister removes a client by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, name)
	delete(r.configs, name)
	r.logger.Info("unregistered LLM client", "name", name)
}

// Get returns a client by name.
func (r *Registry) Get(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// Has reports whether a client is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[name]
	return ok
}

// List returns registered client names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a client that resolves name on every call, so callers that
// hold it keep working across Reload.
func (r *Registry) Lookup(name string) LLMClient {
	return &lookupClient{registry: r, name: name}
}

type lookupClient struct {
	registry *Registry
	name     string
}

func (c *lookupClient) Name() string { return c.name }

func (c *lookupClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	client, err := c.registry.Get(c.name)
	if err != nil {
		return nil, err
	}
	return client.Chat(ctx, req)
}

// RegistryConfig defines the providers to instantiate from config.
type RegistryConfig struct {
	LLMProviders map[string]LLMProviderConfig
}

// LLMProviderConfig mirrors config.LLMProviderCfg with the API key resolved.
type LLMProviderConfig struct {
	Type        string // "openai" (any OpenAI-compatible API) or "langchain"
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
	RPM         int
	Enabled     bool
}

// NewRegistryFromConfig creates a registry with providers based on configuration.
// Only enabled providers with an API key are registered.
func NewRegistryFromConfig(cfg RegistryConfig) *Registry {
	r := NewRegistry()
	r.Reload(cfg)
	return r
}

// Reload brings the registry in line with cfg. Providers no longer configured
// are removed; providers whose settings changed are rebuilt.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool)
	for name, provCfg := range cfg.LLMProviders {
		if !provCfg.Enabled || provCfg.APIKey == "" {
			continue
		}
		want[name] = true

		old, exists := r.configs[name]
		if exists && old == provCfg {
			continue
		}
		client, err := createLLMClient(name, provCfg)
		if err != nil {
			r.logger.Warn("failed to create LLM client", "name", name, "type", provCfg.Type, "error", err)
			continue
		}
		r.clients[name] = client
		r.configs[name] = provCfg
		if exists {
			r.logger.Info("updated LLM client", "name", name, "type", provCfg.Type)
		} else {
			r.logger.Info("registered LLM client", "name", name, "type", provCfg.Type)
		}
	}

	for name := range r.configs {
		if !want[name] {
			delete(r.clients, name)
			delete(r.configs, name)
			r.logger.Info("unregistered LLM client", "name", name)
		}
	}
}

func createLLMClient(name string, cfg LLMProviderConfig) (LLMClient, error) {
	switch cfg.Type {
	case "", "openai":
		return NewOpenAIClient(OpenAIConfig{
			Name:        name,
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
			MaxRetries:  cfg.MaxRetries,
			RPM:         cfg.RPM,
		}), nil
	case "langchain":
		return NewLangChainClient(LangChainConfig{
			Name:        name,
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}
