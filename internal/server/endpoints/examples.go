package endpoints

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/postgen/internal/api"
	"github.com/jackzampolin/postgen/internal/corpus"
	"github.com/jackzampolin/postgen/internal/fewshot"
	"github.com/jackzampolin/postgen/internal/post"
	"github.com/jackzampolin/postgen/internal/svcctx"
)

// ExamplesResponse lists the records matching a few-shot query.
type ExamplesResponse struct {
	Dataset  string        `json:"dataset"`
	Query    fewshot.Query `json:"query"`
	Count    int           `json:"count"`
	Examples []post.Record `json:"examples"`
}

// TagsResponse lists the distinct tags of a dataset.
type TagsResponse struct {
	Dataset string   `json:"dataset"`
	Tags    []string `json:"tags"`
}

// loadCorpus loads the named dataset, or the current one when dataset is
// empty. A missing file yields an empty corpus.
func loadCorpus(r *http.Request, dataset string) (*corpus.Corpus, error) {
	datasets := svcctx.DatasetsFrom(r.Context())
	if datasets == nil {
		return nil, fmt.Errorf("dataset registry not initialized")
	}
	c, err := corpus.Load(datasets.Resolve(dataset), svcctx.LoggerFrom(r.Context()))
	if err != nil {
		return nil, err
	}
	if dataset == "" {
		svcctx.MetricsFrom(r.Context()).SetCorpusRecords(c.Len())
	}
	return c, nil
}

// ExamplesEndpoint handles GET /examples.
type ExamplesEndpoint struct{}

func (e *ExamplesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/examples", e.handler
}

func (e *ExamplesEndpoint) RequiresInit() bool { return true }

func (e *ExamplesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := fewshot.Query{
		Length:   post.Length(q.Get("length")),
		Language: post.Language(q.Get("language")),
		Tag:      q.Get("tag"),
	}
	if !query.Length.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid length %q", query.Length))
		return
	}
	if !query.Language.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid language %q", query.Language))
		return
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = n
	}

	c, err := loadCorpus(r, q.Get("dataset"))
	if err != nil {
		writeErr(w, err)
		return
	}
	examples := fewshot.Examples(c, query, limit)
	if examples == nil {
		examples = []post.Record{}
	}
	writeJSON(w, http.StatusOK, ExamplesResponse{
		Dataset:  c.Path(),
		Query:    query,
		Count:    len(examples),
		Examples: examples,
	})
}

func (e *ExamplesEndpoint) Command(getServerURL func() string) *cobra.Command {
	var length, language, tag, dataset string
	var limit int

	cmd := &cobra.Command{
		Use:   "examples",
		Short: "List records matching a length, language and tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := map[string]string{
				"length":   length,
				"language": language,
				"tag":      tag,
				"dataset":  dataset,
			}
			if limit > 0 {
				query["limit"] = strconv.Itoa(limit)
			}
			client := api.NewClient(getServerURL())
			var resp ExamplesResponse
			if err := client.GetQuery(cmd.Context(), "/examples", query, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&length, "length", string(post.Medium), "Length bucket (Short, Medium, Long)")
	cmd.Flags().StringVar(&language, "language", string(post.English), "Language (English, Hinglish)")
	cmd.Flags().StringVar(&tag, "tag", "", "Tag to match")
	cmd.Flags().StringVar(&dataset, "dataset", "", "Dataset file or path (default: current)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum examples to return (0 for all)")
	return cmd
}

// TagsEndpoint handles GET /tags.
type TagsEndpoint struct{}

func (e *TagsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/tags", e.handler
}

func (e *TagsEndpoint) RequiresInit() bool { return true }

func (e *TagsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c, err := loadCorpus(r, r.URL.Query().Get("dataset"))
	if err != nil {
		writeErr(w, err)
		return
	}
	tags := c.UniqueTags()
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, TagsResponse{Dataset: c.Path(), Tags: tags})
}

func (e *TagsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var dataset string
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the distinct tags of a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp TagsResponse
			if err := client.GetQuery(cmd.Context(), "/tags", map[string]string{"dataset": dataset}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "Dataset file or path (default: current)")
	return cmd
}
