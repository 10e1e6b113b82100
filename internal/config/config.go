// Package config loads postgen configuration from YAML, the environment and
// an optional .env file, and hot-reloads it on change.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/postgen/internal/providers"
)

// Environment overrides applied to the default LLM provider after the file
// and POSTGEN_ variables are read.
const (
	EnvModelName        = "MODEL_NAME"
	EnvModelTemperature = "MODEL_TEMPERATURE"
	EnvModelMaxTokens   = "MODEL_MAX_TOKENS"
)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v         *viper.Viper
	logger    *slog.Logger
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
// cfgFile may be empty to search ./config.yaml and ~/.postgen/config.yaml.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		logger:    slog.Default(),
		callbacks: make([]func(*Config), 0),
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// LoadDotEnv loads variables from a .env file without overriding ones that
// are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	v := cm.v
	defaults := DefaultConfig()
	v.SetDefault("llm_providers", defaults.LLMProviders)
	v.SetDefault("defaults", defaults.Defaults)
	v.SetDefault("generation", defaults.Generation)
	v.SetDefault("data", defaults.Data)
	v.SetDefault("server", defaults.Server)

	// Environment variables with POSTGEN_ prefix, e.g. POSTGEN_SERVER_PORT
	v.SetEnvPrefix("POSTGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.postgen")
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.applyModelEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyModelEnv applies MODEL_NAME, MODEL_TEMPERATURE and MODEL_MAX_TOKENS to
// the default LLM provider.
func (c *Config) applyModelEnv() error {
	p, ok := c.LLMProviders[c.Defaults.LLMProvider]
	if !ok {
		return nil
	}
	if v := os.Getenv(EnvModelName); v != "" {
		p.Model = v
	}
	if v := os.Getenv(EnvModelTemperature); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvModelTemperature, v, err)
		}
		p.Temperature = t
	}
	if v := os.Getenv(EnvModelMaxTokens); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvModelMaxTokens, v, err)
		}
		p.MaxTokens = n
	}
	c.LLMProviders[c.Defaults.LLMProvider] = p
	return nil
}

// ConfigFile returns the file the configuration was read from, if any.
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			cm.logger.Warn("ignoring invalid config change", "file", e.Name, "error", err)
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		cm.logger.Info("config reloaded", "file", e.Name)
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ToProviderRegistryConfig converts the config to a format suitable for providers.Registry.
// It resolves all ${ENV_VAR} references in API keys.
func (c *Config) ToProviderRegistryConfig() providers.RegistryConfig {
	cfg := providers.RegistryConfig{
		LLMProviders: make(map[string]providers.LLMProviderConfig),
	}

	for name, llm := range c.LLMProviders {
		cfg.LLMProviders[name] = providers.LLMProviderConfig{
			Type:        llm.Type,
			BaseURL:     llm.BaseURL,
			Model:       llm.Model,
			APIKey:      ResolveEnvVars(llm.APIKey),
			Temperature: llm.Temperature,
			MaxTokens:   llm.MaxTokens,
			Timeout:     time.Duration(llm.TimeoutSeconds) * time.Second,
			MaxRetries:  llm.MaxRetries,
			RPM:         llm.RateLimit,
			Enabled:     llm.Enabled,
		}
	}

	return cfg
}

// RetryDelay returns the generation retry delay as a duration.
func (g GenerationCfg) RetryDelay() time.Duration {
	return time.Duration(g.RetryDelaySeconds * float64(time.Second))
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# postgen configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set GROQ_API_KEY in your shell or in a .env file next to where you run postgen.
# MODEL_NAME, MODEL_TEMPERATURE and MODEL_MAX_TOKENS override the default provider.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
