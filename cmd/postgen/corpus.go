package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/postgen/internal/api"
	"github.com/jackzampolin/postgen/internal/config"
	"github.com/jackzampolin/postgen/internal/corpus"
	"github.com/jackzampolin/postgen/internal/fewshot"
	"github.com/jackzampolin/postgen/internal/generator"
	"github.com/jackzampolin/postgen/internal/post"
	"github.com/jackzampolin/postgen/internal/server/endpoints"
	"github.com/jackzampolin/postgen/internal/svcctx"
)

var (
	queryDataset  string
	queryLength   string
	queryLanguage string
	queryTag      string
	queryLimit    int
)

// loadLocalCorpus loads --dataset, or the default dataset when it is empty.
func loadLocalCorpus(svc *svcctx.Services) (*corpus.Corpus, error) {
	return corpus.Load(resolveDataset(svc.Datasets, queryDataset), svc.Logger)
}

func parseQuery() (fewshot.Query, error) {
	q := fewshot.Query{
		Length:   post.Length(queryLength),
		Language: post.Language(queryLanguage),
		Tag:      queryTag,
	}
	if !q.Length.Valid() {
		return q, fmt.Errorf("invalid length %q", q.Length)
	}
	if !q.Language.Valid() {
		return q, fmt.Errorf("invalid language %q", q.Language)
	}
	return q, nil
}

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "List records matching a length, language and tag",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := parseQuery()
		if err != nil {
			return err
		}
		svc, err := localServices()
		if err != nil {
			return err
		}
		c, err := loadLocalCorpus(svc)
		if err != nil {
			return err
		}
		examples := fewshot.Examples(c, q, queryLimit)
		if examples == nil {
			examples = []post.Record{}
		}
		return api.Output(endpoints.ExamplesResponse{
			Dataset:  c.Path(),
			Query:    q,
			Count:    len(examples),
			Examples: examples,
		})
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the distinct tags in a dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := localServices()
		if err != nil {
			return err
		}
		c, err := loadLocalCorpus(svc)
		if err != nil {
			return err
		}
		return api.Output(endpoints.TagsResponse{Dataset: c.Path(), Tags: c.UniqueTags()})
	},
}

var (
	promptTone     string
	promptTemplate string
	promptOptions  generator.Request
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the few-shot prompt a generation request would send",
	Long: `Prompt assembles the generation prompt locally, with the same examples
and template a server request would use, without calling any provider.
The prompt text is printed as is unless --output selects yaml or json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := parseQuery()
		if err != nil {
			return err
		}
		req := promptOptions
		req.Length, req.Language, req.Tag = q.Length, q.Language, q.Tag
		req.Tone = post.Tone(promptTone)
		req.Template = promptTemplate
		if !req.Tone.Valid() {
			return fmt.Errorf("invalid tone %q", req.Tone)
		}

		svc, err := localServices()
		if err != nil {
			return err
		}
		c, err := loadLocalCorpus(svc)
		if err != nil {
			return err
		}
		p, err := svc.Generator.Prompt(c, req)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("output") {
			return api.OutputTo(os.Stdout, api.OutputFormatText, promptOutput{*p})
		}
		return api.Output(promptOutput{*p})
	},
}

// promptOutput prints as the bare prompt text in text mode.
type promptOutput struct {
	generator.Prompt `yaml:",inline"`
}

func (p promptOutput) PlainText() string { return p.Text }

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the home directory and a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, _, err := loadHomeAndConfig()
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		if h.ConfigExists() && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", h.ConfigPath())
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", h.ConfigPath())
		return nil
	},
}

func addQueryFlags(cmd *cobra.Command, withTag bool) {
	cmd.Flags().StringVar(&queryDataset, "dataset", "", "Dataset file or path (default: default dataset)")
	if !withTag {
		return
	}
	cmd.Flags().StringVar(&queryLength, "length", string(post.Medium), "Length bucket (Short, Medium, Long)")
	cmd.Flags().StringVar(&queryLanguage, "language", string(post.English), "Language (English, Hinglish)")
	cmd.Flags().StringVar(&queryTag, "tag", "", "Tag to match")
}

func init() {
	addQueryFlags(examplesCmd, true)
	examplesCmd.Flags().IntVar(&queryLimit, "limit", 0, "Maximum examples to return (0 for all)")
	addQueryFlags(tagsCmd, false)

	addQueryFlags(promptCmd, true)
	promptCmd.Flags().StringVar(&promptTone, "tone", string(post.Professional), "Tone")
	promptCmd.Flags().StringVar(&promptTemplate, "template", "", "Saved template to use instead of the built-in prompt")
	promptCmd.Flags().BoolVar(&promptOptions.IncludeHashtags, "hashtags", false, "Include hashtags")
	promptCmd.Flags().BoolVar(&promptOptions.IncludeEmojis, "emojis", false, "Include emojis")
	promptCmd.Flags().BoolVar(&promptOptions.AddCTA, "cta", false, "End with a call to action")
	promptCmd.Flags().BoolVar(&promptOptions.Professional, "professional", false, "Keep the post strictly professional")
	promptCmd.MarkFlagRequired("tag")

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")

	rootCmd.AddCommand(examplesCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(initCmd)
}
