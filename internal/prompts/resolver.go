package prompts

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ErrTemplateNotFound is returned when a named saved template does not exist.
var ErrTemplateNotFound = errors.New("template not found")

// Resolver looks up prompts by key. A saved template, when named, takes the
// place of the embedded default.
type Resolver struct {
	store    *Store
	embedded map[string]EmbeddedPrompt
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewResolver creates a new prompt resolver. store may be nil.
func NewResolver(store *Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:    store,
		embedded: make(map[string]EmbeddedPrompt),
		logger:   logger,
	}
}

// Register registers an embedded prompt.
func (r *Resolver) Register(prompt EmbeddedPrompt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prompt.Hash == "" {
		prompt.Hash = HashText(prompt.Text)
	}
	if prompt.Variables == nil {
		prompt.Variables = ExtractVariables(prompt.Text)
	}

	r.embedded[prompt.Key] = prompt
	r.logger.Debug("registered embedded prompt", "key", prompt.Key, "vars", prompt.Variables)
}

// Resolve returns the saved template called templateName if one is given and
// exists, otherwise the embedded prompt registered under key.
func (r *Resolver) Resolve(key, templateName string) (*ResolvedPrompt, error) {
	if templateName != "" {
		if r.store == nil {
			return nil, fmt.Errorf("template %q requested but no template store configured", templateName)
		}
		saved, err := r.store.Get(templateName)
		if err != nil {
			return nil, fmt.Errorf("failed to load template %q: %w", templateName, err)
		}
		if saved == nil {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateName)
		}
		return &ResolvedPrompt{
			Key:        key,
			Text:       saved.Prompt,
			Variables:  Placeholders(saved.Prompt),
			IsOverride: true,
			Hash:       HashText(saved.Prompt),
		}, nil
	}

	r.mu.RLock()
	embedded, ok := r.embedded[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", key)
	}
	return &ResolvedPrompt{
		Key:       key,
		Text:      embedded.Text,
		Variables: embedded.Variables,
		Hash:      embedded.Hash,
	}, nil
}

// GetEmbedded returns the embedded default for a key.
func (r *Resolver) GetEmbedded(key string) (*EmbeddedPrompt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.embedded[key]
	return &p, ok
}

// AllEmbedded returns all registered embedded prompts sorted by key.
func (r *Resolver) AllEmbedded() []EmbeddedPrompt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]EmbeddedPrompt, 0, len(r.embedded))
	for _, p := range r.embedded {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}
