package annotate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	annotateprompt "github.com/jackzampolin/postgen/internal/prompts/annotate"
	"github.com/jackzampolin/postgen/internal/providers"
)

// Classifier is the annotation collaborator. Implementations return the
// model's raw metadata, which must go through Normalize before use.
type Classifier interface {
	Classify(ctx context.Context, text string) (map[string]any, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, text string) (map[string]any, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) (map[string]any, error) {
	return f(ctx, text)
}

// LLMClassifier asks an LLM to classify posts.
type LLMClassifier struct {
	client       providers.LLMClient
	attempts     uint
	delay        time.Duration
	systemPrompt string
	logger       *slog.Logger
}

// LLMClassifierConfig configures an LLMClassifier.
type LLMClassifierConfig struct {
	Client       providers.LLMClient
	Attempts     int           // total attempts per post, default 3
	Delay        time.Duration // delay between attempts, default 1s
	SystemPrompt string        // optional override of the embedded prompt
	Logger       *slog.Logger
}

// NewLLMClassifier creates a classifier.
func NewLLMClassifier(cfg LLMClassifierConfig) *LLMClassifier {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &LLMClassifier{
		client:       cfg.Client,
		attempts:     uint(cfg.Attempts),
		delay:        cfg.Delay,
		systemPrompt: cfg.SystemPrompt,
		logger:       cfg.Logger,
	}
}

// Classify returns the raw metadata for text. Failures are
// *providers.CollaboratorError.
func (c *LLMClassifier) Classify(ctx context.Context, text string) (map[string]any, error) {
	var raw map[string]any
	err := retry.Do(
		func() error {
			req := annotateprompt.BuildRequest(annotateprompt.Input{
				Text:                 text,
				SystemPromptOverride: c.systemPrompt,
			})
			result, err := c.client.Chat(ctx, req)
			if err != nil {
				return err
			}
			raw, err = annotateprompt.ParseResult(result.ParsedJSON)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying classification", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, providers.AsCollaboratorError(c.client.Name(), "classify", err)
	}
	return raw, nil
}
