// Package prompts manages the prompt texts sent to the LLM collaborators.
//
// Built-in prompts are embedded .tmpl files registered by the subpackages
// (annotate, generate). Users may also save their own templates, which are
// stored in prompt_templates.json inside the data directory and can replace
// the built-in generation prompt by name.
package prompts

import (
	"time"
)

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   // Hierarchical key: generate.post
	Text        string   // The prompt text (Go template)
	Description string   // Human-readable description
	Variables   []string // Extracted template variables
	Hash        string   // SHA256 hash of the text for change detection
}

// SavedTemplate is a user-authored prompt. Placeholders use single braces,
// e.g. "Write about {topic} in {length}".
type SavedTemplate struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Prompt      string    `json:"prompt"`
	CreatedAt   time.Time `json:"created_at"`
}

// ResolvedPrompt is the result of resolving a prompt key.
type ResolvedPrompt struct {
	Key        string   `json:"key"`
	Text       string   `json:"text"`
	Variables  []string `json:"variables,omitempty"`
	IsOverride bool     `json:"is_override"` // true if from a saved template
	Hash       string   `json:"hash"`
}
