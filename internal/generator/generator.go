// Package generator assembles generation prompts from few-shot examples and
// turns them into post text through the generation collaborator.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/jackzampolin/postgen/internal/corpus"
	"github.com/jackzampolin/postgen/internal/fewshot"
	"github.com/jackzampolin/postgen/internal/metrics"
	"github.com/jackzampolin/postgen/internal/post"
	"github.com/jackzampolin/postgen/internal/prompts"
	"github.com/jackzampolin/postgen/internal/prompts/generate"
	"github.com/jackzampolin/postgen/internal/providers"
)

// Prompt kinds, used in results and metrics.
const (
	KindPost    = "post"
	KindCustom  = "custom"
	KindStudent = "student"
)

// Config configures a Generator.
type Config struct {
	Client      providers.LLMClient
	Resolver    *prompts.Resolver // optional; needed for saved templates
	MaxExamples int               // default fewshot.DefaultMaxExamples
	Attempts    int               // total attempts per request, default 3
	Delay       time.Duration     // default 1s
	Temperature float64           // 0 uses the client default
	MaxTokens   int               // 0 uses the client default
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Generator produces posts.
type Generator struct {
	client      providers.LLMClient
	resolver    *prompts.Resolver
	maxExamples int
	attempts    uint
	delay       time.Duration
	temperature float64
	maxTokens   int
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// New creates a generator.
func New(cfg Config) *Generator {
	if cfg.MaxExamples <= 0 {
		cfg.MaxExamples = fewshot.DefaultMaxExamples
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Generator{
		client:      cfg.Client,
		resolver:    cfg.Resolver,
		maxExamples: cfg.MaxExamples,
		attempts:    uint(cfg.Attempts),
		delay:       cfg.Delay,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
}

// Request is a few-shot generation request.
type Request struct {
	Length          post.Length   `json:"length"`
	Language        post.Language `json:"language"`
	Tag             string        `json:"tag"`
	Tone            post.Tone     `json:"tone,omitempty"`
	IncludeHashtags bool          `json:"include_hashtags"`
	IncludeEmojis   bool          `json:"include_emojis"`
	AddCTA          bool          `json:"add_cta"`
	Professional    bool          `json:"professional"`
	Template        string        `json:"template,omitempty"` // saved template name
}

// CustomRequest fully describes a post without using examples.
type CustomRequest struct {
	Topic    string        `json:"topic"`
	Audience post.Audience `json:"audience"`
	Purpose  string        `json:"purpose"`
	Length   post.Length   `json:"length"`
	Language post.Language `json:"language"`
	Style    string        `json:"style"`
	Context  string        `json:"context,omitempty"`
	Keywords []string      `json:"keywords,omitempty"`
	Template string        `json:"template,omitempty"`
}

// StudentRequest asks for a post from a college student's perspective.
type StudentRequest struct {
	Year      string        `json:"year"`
	EventType string        `json:"event_type"`
	Subject   string        `json:"subject,omitempty"`
	Emotion   string        `json:"emotion,omitempty"`
	Length    post.Length   `json:"length,omitempty"`
	Language  post.Language `json:"language,omitempty"`
	Template  string        `json:"template,omitempty"`
}

// Prompt is an assembled prompt and the examples it was built from.
type Prompt struct {
	Kind     string        `json:"kind"`
	Text     string        `json:"text"`
	Examples []post.Record `json:"examples,omitempty"`
	Template string        `json:"template,omitempty"`
}

// Result is a generated post.
type Result struct {
	Content      string        `json:"content"`
	Prompt       *Prompt       `json:"prompt"`
	Provider     string        `json:"provider"`
	Model        string        `json:"model"`
	RequestID    string        `json:"request_id"`
	PromptTokens int           `json:"prompt_tokens"`
	OutputTokens int           `json:"output_tokens"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Prompt builds the few-shot prompt. Examples come from c in corpus order;
// a nil or empty corpus produces a prompt without examples.
func (g *Generator) Prompt(c *corpus.Corpus, req Request) (*Prompt, error) {
	if req.Tone == "" {
		req.Tone = post.Professional
	}
	examples := fewshot.Examples(c, fewshot.Query{Length: req.Length, Language: req.Language, Tag: req.Tag}, g.maxExamples)
	texts := make([]string, len(examples))
	for i, e := range examples {
		texts[i] = e.Text
	}

	p := &Prompt{Kind: KindPost, Examples: examples, Template: req.Template}
	var err error
	if req.Template != "" {
		p.Text, err = g.renderSaved(generate.PostPromptKey, req.Template, map[string]string{
			"topic":            req.Tag,
			"tag":              req.Tag,
			"length":           generate.LengthDescription(req.Length),
			"language":         string(req.Language),
			"tone":             string(req.Tone),
			"include_hashtags": strconv.FormatBool(req.IncludeHashtags),
			"include_emojis":   strconv.FormatBool(req.IncludeEmojis),
			"add_cta":          strconv.FormatBool(req.AddCTA),
			"professional":     strconv.FormatBool(req.Professional),
			"examples":         strings.Join(texts, "\n\n"),
		})
	} else {
		p.Text, err = generate.RenderPost(generate.PostData{
			Tag:             req.Tag,
			LengthLines:     generate.LengthDescription(req.Length),
			Language:        req.Language,
			Tone:            req.Tone,
			IncludeHashtags: req.IncludeHashtags,
			IncludeEmojis:   req.IncludeEmojis,
			AddCTA:          req.AddCTA,
			Professional:    req.Professional,
			Examples:        texts,
		})
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CustomPrompt builds the custom prompt.
func (g *Generator) CustomPrompt(req CustomRequest) (*Prompt, error) {
	p := &Prompt{Kind: KindCustom, Template: req.Template}
	data := generate.CustomData{
		Topic:       req.Topic,
		Audience:    req.Audience,
		Purpose:     req.Purpose,
		LengthLines: generate.LengthDescription(req.Length),
		Language:    req.Language,
		Style:       req.Style,
		Context:     req.Context,
		Keywords:    req.Keywords,
	}
	var err error
	if req.Template != "" {
		p.Text, err = g.renderSaved(generate.CustomPromptKey, req.Template, map[string]string{
			"topic":    data.Topic,
			"audience": string(data.Audience),
			"purpose":  data.Purpose,
			"length":   data.LengthLines,
			"language": string(data.Language),
			"style":    data.Style,
			"context":  data.Context,
			"keywords": data.KeywordList(),
		})
	} else {
		p.Text, err = generate.RenderCustom(data)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// StudentPrompt builds the college-student prompt. Subject defaults to
// Computer Science, emotion to excited, length to Medium.
func (g *Generator) StudentPrompt(req StudentRequest) (*Prompt, error) {
	if req.Subject == "" {
		req.Subject = "Computer Science"
	}
	if req.Emotion == "" {
		req.Emotion = "excited"
	}
	if req.Length == "" {
		req.Length = post.Medium
	}
	if req.Language == "" {
		req.Language = post.English
	}
	data := generate.StudentData{
		Year:        req.Year,
		EventType:   req.EventType,
		Subject:     req.Subject,
		Emotion:     req.Emotion,
		LengthLines: generate.LengthDescription(req.Length),
		Language:    req.Language,
	}

	p := &Prompt{Kind: KindStudent, Template: req.Template}
	var err error
	if req.Template != "" {
		p.Text, err = g.renderSaved(generate.StudentPromptKey, req.Template, map[string]string{
			"year":       data.Year,
			"event_type": data.EventType,
			"subject":    data.Subject,
			"emotion":    data.Emotion,
			"length":     data.LengthLines,
			"language":   string(data.Language),
		})
	} else {
		p.Text, err = generate.RenderStudent(data)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (g *Generator) renderSaved(key, name string, vars map[string]string) (string, error) {
	if g.resolver == nil {
		return "", fmt.Errorf("template %q requested but no templates are configured", name)
	}
	resolved, err := g.resolver.Resolve(key, name)
	if err != nil {
		return "", err
	}
	return prompts.RenderPlaceholders(resolved.Text, vars), nil
}

// Generate builds the few-shot prompt and completes it.
func (g *Generator) Generate(ctx context.Context, c *corpus.Corpus, req Request) (*Result, error) {
	p, err := g.Prompt(c, req)
	if err != nil {
		return nil, err
	}
	return g.Complete(ctx, p)
}

// GenerateCustom builds the custom prompt and completes it.
func (g *Generator) GenerateCustom(ctx context.Context, req CustomRequest) (*Result, error) {
	p, err := g.CustomPrompt(req)
	if err != nil {
		return nil, err
	}
	return g.Complete(ctx, p)
}

// GenerateStudent builds the student prompt and completes it.
func (g *Generator) GenerateStudent(ctx context.Context, req StudentRequest) (*Result, error) {
	p, err := g.StudentPrompt(req)
	if err != nil {
		return nil, err
	}
	return g.Complete(ctx, p)
}

// Complete sends p to the collaborator and validates the reply. Failures are
// *providers.CollaboratorError.
func (g *Generator) Complete(ctx context.Context, p *Prompt) (*Result, error) {
	if g.client == nil {
		return nil, fmt.Errorf("no generation client configured")
	}
	start := time.Now()
	requestID := uuid.New().String()

	var out *Result
	err := retry.Do(
		func() error {
			result, err := g.client.Chat(ctx, &providers.ChatRequest{
				Messages:    []providers.Message{providers.UserMessage(p.Text)},
				Temperature: g.temperature,
				MaxTokens:   g.maxTokens,
				RequestID:   requestID,
			})
			if err != nil {
				return err
			}
			if err := ValidateResponse(result.Content, g.logger); err != nil {
				return err
			}
			out = &Result{
				Content:      result.Content,
				Prompt:       p,
				Provider:     result.Provider,
				Model:        result.ModelUsed,
				RequestID:    requestID,
				PromptTokens: result.PromptTokens,
				OutputTokens: result.CompletionTokens,
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(g.attempts),
		retry.Delay(g.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			g.logger.Debug("retrying generation", "kind", p.Kind, "attempt", n+1, "error", err)
		}),
	)
	g.metrics.RecordGeneration(p.Kind, err)
	if err != nil {
		g.logger.Error("post generation failed", "kind", p.Kind, "error", err)
		return nil, providers.AsCollaboratorError(g.client.Name(), "generate", err)
	}
	out.Elapsed = time.Since(start)
	g.logger.Info("post generated", "kind", p.Kind, "examples", len(p.Examples), "elapsed", out.Elapsed)
	return out, nil
}
