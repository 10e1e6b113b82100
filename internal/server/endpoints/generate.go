package endpoints

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/postgen/internal/api"
	"github.com/jackzampolin/postgen/internal/generator"
	"github.com/jackzampolin/postgen/internal/history"
	"github.com/jackzampolin/postgen/internal/post"
	"github.com/jackzampolin/postgen/internal/svcctx"
)

// GenerateRequest is the request body for POST /generate.
type GenerateRequest struct {
	generator.Request
	Dataset string `json:"dataset,omitempty"`
	DryRun  bool   `json:"dry_run,omitempty"`
}

// CustomGenerateRequest is the request body for POST /generate/custom.
type CustomGenerateRequest struct {
	generator.CustomRequest
	DryRun bool `json:"dry_run,omitempty"`
}

// StudentGenerateRequest is the request body for POST /generate/student.
type StudentGenerateRequest struct {
	generator.StudentRequest
	DryRun bool `json:"dry_run,omitempty"`
}

// GenerateResponse is a generated post, or only its prompt for a dry run.
type GenerateResponse struct {
	Content   string            `json:"content,omitempty"`
	Prompt    *generator.Prompt `json:"prompt"`
	Provider  string            `json:"provider,omitempty"`
	Model     string            `json:"model,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	HistoryID string            `json:"history_id,omitempty"`
}

// PlainText returns the generated post, or the prompt for a dry run.
func (r GenerateResponse) PlainText() string {
	if r.Content == "" && r.Prompt != nil {
		return r.Prompt.Text
	}
	return r.Content
}

// HistoryResponse lists generated posts, newest first.
type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}

func generatorOrUnavailable(w http.ResponseWriter, r *http.Request) *generator.Generator {
	gen := svcctx.GeneratorFrom(r.Context())
	if gen == nil {
		writeError(w, http.StatusServiceUnavailable, "generator not initialized")
	}
	return gen
}

// respondGenerated completes p unless dryRun is set, records the post in the
// history log, and writes the response.
func respondGenerated(w http.ResponseWriter, r *http.Request, gen *generator.Generator, p *generator.Prompt, dryRun bool, metadata map[string]any) {
	if dryRun {
		writeJSON(w, http.StatusOK, GenerateResponse{Prompt: p})
		return
	}

	logger := svcctx.LoggerFrom(r.Context())
	result, err := gen.Complete(r.Context(), p)
	if err != nil {
		logger.Error("generation failed", "kind", p.Kind, "error", err)
		writeErr(w, err)
		return
	}

	resp := GenerateResponse{
		Content:   result.Content,
		Prompt:    result.Prompt,
		Provider:  result.Provider,
		Model:     result.Model,
		RequestID: result.RequestID,
	}
	if datasets := svcctx.DatasetsFrom(r.Context()); datasets != nil {
		metadata["kind"] = p.Kind
		metadata["provider"] = result.Provider
		metadata["model"] = result.Model
		entry, err := history.Append(datasets.Path(history.FileName), result.Content, metadata, time.Now())
		if err != nil {
			logger.Warn("failed to record generation history", "error", err)
		} else {
			resp.HistoryID = entry.ID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GenerateEndpoint handles POST /generate.
type GenerateEndpoint struct{}

func (e *GenerateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/generate", e.handler
}

func (e *GenerateEndpoint) RequiresInit() bool { return true }

func (e *GenerateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	gen := generatorOrUnavailable(w, r)
	if gen == nil {
		return
	}
	var req GenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.Length.Valid() || !req.Language.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid length %q or language %q", req.Length, req.Language))
		return
	}
	if req.Tone != "" && !req.Tone.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid tone %q", req.Tone))
		return
	}

	c, err := loadCorpus(r, req.Dataset)
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := gen.Prompt(c, req.Request)
	if err != nil {
		writeErr(w, err)
		return
	}
	respondGenerated(w, r, gen, p, req.DryRun, map[string]any{
		"tag":      req.Tag,
		"length":   req.Length,
		"language": req.Language,
		"dataset":  c.Path(),
		"examples": len(p.Examples),
	})
}

func (e *GenerateEndpoint) Command(getServerURL func() string) *cobra.Command {
	var req GenerateRequest
	var length, language, tone string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a post from examples in a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Length = post.Length(length)
			req.Language = post.Language(language)
			req.Tone = post.Tone(tone)
			client := api.NewClient(getServerURL())
			var resp GenerateResponse
			if err := client.Post(cmd.Context(), "/generate", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&req.Tag, "tag", "", "Topic tag to draw examples from")
	cmd.Flags().StringVar(&length, "length", string(post.Medium), "Length bucket (Short, Medium, Long)")
	cmd.Flags().StringVar(&language, "language", string(post.English), "Language (English, Hinglish)")
	cmd.Flags().StringVar(&tone, "tone", string(post.Professional), "Tone")
	cmd.Flags().BoolVar(&req.IncludeHashtags, "hashtags", false, "Include hashtags")
	cmd.Flags().BoolVar(&req.IncludeEmojis, "emojis", false, "Include emojis")
	cmd.Flags().BoolVar(&req.AddCTA, "cta", false, "End with a call to action")
	cmd.Flags().BoolVar(&req.Professional, "professional", false, "Keep the post strictly professional")
	cmd.Flags().StringVar(&req.Template, "template", "", "Saved template to use instead of the built-in prompt")
	cmd.Flags().StringVar(&req.Dataset, "dataset", "", "Dataset file or path (default: current)")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "Return the prompt without calling the model")
	cmd.MarkFlagRequired("tag")
	return cmd
}

// GenerateCustomEndpoint handles POST /generate/custom.
type GenerateCustomEndpoint struct{}

func (e *GenerateCustomEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/generate/custom", e.handler
}

func (e *GenerateCustomEndpoint) RequiresInit() bool { return true }

func (e *GenerateCustomEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	gen := generatorOrUnavailable(w, r)
	if gen == nil {
		return
	}
	var req CustomGenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}
	p, err := gen.CustomPrompt(req.CustomRequest)
	if err != nil {
		writeErr(w, err)
		return
	}
	respondGenerated(w, r, gen, p, req.DryRun, map[string]any{
		"topic":    req.Topic,
		"audience": req.Audience,
		"length":   req.Length,
		"language": req.Language,
	})
}

func (e *GenerateCustomEndpoint) Command(getServerURL func() string) *cobra.Command {
	var req CustomGenerateRequest
	var audience, length, language string

	cmd := &cobra.Command{
		Use:   "custom",
		Short: "Generate a post from a full description, without examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Audience = post.Audience(audience)
			req.Length = post.Length(length)
			req.Language = post.Language(language)
			client := api.NewClient(getServerURL())
			var resp GenerateResponse
			if err := client.Post(cmd.Context(), "/generate/custom", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&req.Topic, "topic", "", "Post topic")
	cmd.Flags().StringVar(&audience, "audience", string(post.General), "Target audience")
	cmd.Flags().StringVar(&req.Purpose, "purpose", "", "What the post should achieve")
	cmd.Flags().StringVar(&length, "length", string(post.Medium), "Length bucket (Short, Medium, Long)")
	cmd.Flags().StringVar(&language, "language", string(post.English), "Language (English, Hinglish)")
	cmd.Flags().StringVar(&req.Style, "style", "", "Writing style")
	cmd.Flags().StringVar(&req.Context, "context", "", "Extra context for the post")
	cmd.Flags().StringSliceVar(&req.Keywords, "keyword", nil, "Keyword to include (repeatable)")
	cmd.Flags().StringVar(&req.Template, "template", "", "Saved template to use instead of the built-in prompt")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "Return the prompt without calling the model")
	cmd.MarkFlagRequired("topic")
	return cmd
}

// GenerateStudentEndpoint handles POST /generate/student.
type GenerateStudentEndpoint struct{}

func (e *GenerateStudentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/generate/student", e.handler
}

func (e *GenerateStudentEndpoint) RequiresInit() bool { return true }

func (e *GenerateStudentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	gen := generatorOrUnavailable(w, r)
	if gen == nil {
		return
	}
	var req StudentGenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Year == "" || req.EventType == "" {
		writeError(w, http.StatusBadRequest, "year and event_type are required")
		return
	}
	p, err := gen.StudentPrompt(req.StudentRequest)
	if err != nil {
		writeErr(w, err)
		return
	}
	respondGenerated(w, r, gen, p, req.DryRun, map[string]any{
		"year":       req.Year,
		"event_type": req.EventType,
		"subject":    req.Subject,
	})
}

func (e *GenerateStudentEndpoint) Command(getServerURL func() string) *cobra.Command {
	var req StudentGenerateRequest
	var length, language string

	cmd := &cobra.Command{
		Use:   "student",
		Short: "Generate a post from a college student's perspective",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Length = post.Length(length)
			req.Language = post.Language(language)
			client := api.NewClient(getServerURL())
			var resp GenerateResponse
			if err := client.Post(cmd.Context(), "/generate/student", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&req.Year, "year", "", "Year of study (e.g. 2nd Year)")
	cmd.Flags().StringVar(&req.EventType, "event", "", "What happened (e.g. hackathon win)")
	cmd.Flags().StringVar(&req.Subject, "subject", "", "Field of study (default: Computer Science)")
	cmd.Flags().StringVar(&req.Emotion, "emotion", "", "Emotion to convey (default: excited)")
	cmd.Flags().StringVar(&length, "length", "", "Length bucket (default: Medium)")
	cmd.Flags().StringVar(&language, "language", "", "Language (default: English)")
	cmd.Flags().StringVar(&req.Template, "template", "", "Saved template to use instead of the built-in prompt")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "Return the prompt without calling the model")
	cmd.MarkFlagRequired("year")
	cmd.MarkFlagRequired("event")
	return cmd
}

// HistoryEndpoint handles GET /history.
type HistoryEndpoint struct{}

func (e *HistoryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/history", e.handler
}

func (e *HistoryEndpoint) RequiresInit() bool { return true }

func (e *HistoryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	datasets := datasetsOrUnavailable(w, r)
	if datasets == nil {
		return
	}
	entries, err := history.Load(datasets.Path(history.FileName))
	if err != nil {
		writeErr(w, err)
		return
	}
	limit := len(entries)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = min(n, len(entries))
	}
	out := make([]history.Entry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Entries: out})
}

func (e *HistoryEndpoint) Command(getServerURL func() string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently generated posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HistoryResponse
			if err := client.GetQuery(cmd.Context(), "/history", map[string]string{"limit": strconv.Itoa(limit)}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum entries to show")
	return cmd
}
