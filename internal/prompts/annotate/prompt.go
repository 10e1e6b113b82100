// Package annotate holds the prompts and response schema used to ask an LLM
// for metadata about a raw post.
package annotate

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/jackzampolin/postgen/internal/prompts"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// Prompt keys
const (
	SystemPromptKey = "annotate.system"
	UserPromptKey   = "annotate.user"
)

// SystemPrompt returns the system prompt for post classification.
func SystemPrompt() string {
	return systemPrompt
}

// UserPromptData is the data for the user prompt template.
type UserPromptData struct {
	Text string
}

// UserPrompt builds the user prompt for one post.
func UserPrompt(text string) string {
	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, UserPromptData{Text: text}); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}

// RegisterPrompts registers the classification prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Post classification system prompt - extracts language, tags, tone and audience",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Post classification user prompt template",
	})
}
