// Package generate holds the prompts that turn a request plus few-shot
// examples into instructions for the generation collaborator.
package generate

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/jackzampolin/postgen/internal/post"
	"github.com/jackzampolin/postgen/internal/prompts"
)

//go:embed post.tmpl
var postPromptTmpl string

//go:embed custom.tmpl
var customPromptTmpl string

//go:embed student.tmpl
var studentPromptTmpl string

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

var (
	postTemplate    = template.Must(template.New("post").Funcs(funcs).Parse(postPromptTmpl))
	customTemplate  = template.Must(template.New("custom").Parse(customPromptTmpl))
	studentTemplate = template.Must(template.New("student").Parse(studentPromptTmpl))
)

// Prompt keys
const (
	PostPromptKey    = "generate.post"
	CustomPromptKey  = "generate.custom"
	StudentPromptKey = "generate.student"
)

// LengthDescription is the line range a length bucket asks the model for.
// Unknown buckets fall back to the Short range.
func LengthDescription(l post.Length) string {
	switch l {
	case post.Medium:
		return "6 to 10 lines"
	case post.Long:
		return "11 to 15 lines"
	default:
		return "1 to 5 lines"
	}
}

// PostData is the data for the few-shot post prompt.
type PostData struct {
	Tag             string
	LengthLines     string
	Language        post.Language
	Tone            post.Tone
	IncludeHashtags bool
	IncludeEmojis   bool
	AddCTA          bool
	Professional    bool
	Examples        []string
}

// CustomData is the data for the fully specified custom prompt.
type CustomData struct {
	Topic             string
	Audience          post.Audience
	Purpose           string
	LengthLines       string
	Language          post.Language
	Style             string
	Context           string
	Keywords          []string
	StyleGuideline    string
	AudienceGuideline string
	PurposeGuideline  string
}

// KeywordList joins keywords for display.
func (d CustomData) KeywordList() string {
	if len(d.Keywords) == 0 {
		return "None specified"
	}
	return strings.Join(d.Keywords, ", ")
}

// StudentData is the data for the college-student prompt.
type StudentData struct {
	Year        string
	EventType   string
	Subject     string
	Emotion     string
	LengthLines string
	Language    post.Language
}

// RenderPost renders the few-shot post prompt.
func RenderPost(data PostData) (string, error) {
	return execute(postTemplate, data)
}

// RenderCustom renders the custom prompt, filling guideline text from the
// style, audience and purpose when not already set.
func RenderCustom(data CustomData) (string, error) {
	if data.StyleGuideline == "" {
		data.StyleGuideline = StyleGuideline(data.Style)
	}
	if data.AudienceGuideline == "" {
		data.AudienceGuideline = AudienceGuideline(data.Audience)
	}
	if data.PurposeGuideline == "" {
		data.PurposeGuideline = PurposeGuideline(data.Purpose)
	}
	return execute(customTemplate, data)
}

// RenderStudent renders the college-student prompt.
func RenderStudent(data StudentData) (string, error) {
	return execute(studentTemplate, data)
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// RegisterPrompts registers the generation prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PostPromptKey,
		Text:        postPromptTmpl,
		Description: "Few-shot post generation prompt",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         CustomPromptKey,
		Text:        customPromptTmpl,
		Description: "Custom post prompt with audience, purpose and style guidelines",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         StudentPromptKey,
		Text:        studentPromptTmpl,
		Description: "College student perspective prompt",
	})
}
