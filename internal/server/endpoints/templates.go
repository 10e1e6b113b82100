package endpoints

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/postgen/internal/api"
	"github.com/jackzampolin/postgen/internal/prompts"
	"github.com/jackzampolin/postgen/internal/svcctx"
)

// BuiltinPrompt describes an embedded prompt that a saved template may replace.
type BuiltinPrompt struct {
	Key         string   `json:"key"`
	Description string   `json:"description,omitempty"`
	Variables   []string `json:"variables,omitempty"`
	Hash        string   `json:"hash"`
}

// TemplatesResponse lists saved templates and the built-in prompts.
type TemplatesResponse struct {
	Templates []prompts.SavedTemplate `json:"templates"`
	Builtin   []BuiltinPrompt         `json:"builtin"`
}

// SaveTemplateRequest is the request body for POST /templates.
type SaveTemplateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
}

// SaveTemplateResponse reports a saved template and its placeholders.
type SaveTemplateResponse struct {
	Name         string   `json:"name"`
	Placeholders []string `json:"placeholders"`
}

func templatesOrUnavailable(w http.ResponseWriter, r *http.Request) *prompts.Store {
	store := svcctx.TemplatesFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "template store not initialized")
	}
	return store
}

// ListTemplatesEndpoint handles GET /templates.
type ListTemplatesEndpoint struct{}

func (e *ListTemplatesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/templates", e.handler
}

func (e *ListTemplatesEndpoint) RequiresInit() bool { return true }

func (e *ListTemplatesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := templatesOrUnavailable(w, r)
	if store == nil {
		return
	}
	saved, err := store.List()
	if err != nil {
		writeErr(w, err)
		return
	}
	resp := TemplatesResponse{Templates: saved, Builtin: []BuiltinPrompt{}}
	if resp.Templates == nil {
		resp.Templates = []prompts.SavedTemplate{}
	}
	if resolver := svcctx.PromptResolverFrom(r.Context()); resolver != nil {
		for _, p := range resolver.AllEmbedded() {
			resp.Builtin = append(resp.Builtin, BuiltinPrompt{
				Key:         p.Key,
				Description: p.Description,
				Variables:   p.Variables,
				Hash:        p.Hash,
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListTemplatesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved and built-in prompt templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp TemplatesResponse
			if err := client.Get(cmd.Context(), "/templates", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// SaveTemplateEndpoint handles POST /templates.
type SaveTemplateEndpoint struct{}

func (e *SaveTemplateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/templates", e.handler
}

func (e *SaveTemplateEndpoint) RequiresInit() bool { return true }

func (e *SaveTemplateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := templatesOrUnavailable(w, r)
	if store == nil {
		return
	}
	var req SaveTemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "name and prompt are required")
		return
	}
	err := store.Save(prompts.SavedTemplate{
		Name:        req.Name,
		Description: req.Description,
		Prompt:      req.Prompt,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SaveTemplateResponse{
		Name:         req.Name,
		Placeholders: prompts.Placeholders(req.Prompt),
	})
}

func (e *SaveTemplateEndpoint) Command(getServerURL func() string) *cobra.Command {
	var req SaveTemplateRequest
	cmd := &cobra.Command{
		Use:   "save <name> <prompt>",
		Short: "Save a prompt template; placeholders use {name} syntax",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name, req.Prompt = args[0], args[1]
			client := api.NewClient(getServerURL())
			var resp SaveTemplateResponse
			if err := client.Post(cmd.Context(), "/templates", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&req.Description, "description", "", "Template description")
	return cmd
}

// DeleteTemplateEndpoint handles DELETE /templates/{name}.
type DeleteTemplateEndpoint struct{}

func (e *DeleteTemplateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/templates/{name}", e.handler
}

func (e *DeleteTemplateEndpoint) RequiresInit() bool { return true }

func (e *DeleteTemplateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := templatesOrUnavailable(w, r)
	if store == nil {
		return
	}
	name := r.PathValue("name")
	deleted, err := store.Delete(name)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !deleted {
		writeErr(w, fmt.Errorf("%w: %s", prompts.ErrTemplateNotFound, name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteTemplateEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/templates/"+url.PathEscape(args[0])); err != nil {
				return err
			}
			fmt.Printf("Deleted template %s\n", args[0])
			return nil
		},
	}
}
