package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/postgen/internal/api"
	"github.com/jackzampolin/postgen/internal/corpus"
	"github.com/jackzampolin/postgen/internal/processor"
	"github.com/jackzampolin/postgen/internal/registry"
	"github.com/jackzampolin/postgen/internal/server/endpoints"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Work with datasets in the data directory",
	Long: `Dataset commands read and write the data directory directly; no server
is needed. A dataset argument is either a path to an existing file or a file
name inside the data directory. Omitting it selects the default dataset.`,
}

// resolveDataset prefers an existing file at arg, then a name in the data dir.
func resolveDataset(reg *registry.Registry, arg string) string {
	if arg != "" {
		if _, err := os.Stat(arg); err == nil {
			return arg
		}
	}
	return reg.Resolve(arg)
}

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List processed and raw datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := localServices()
		if err != nil {
			return err
		}
		processed, err := svc.Datasets.Processed()
		if err != nil {
			return err
		}
		raw, err := svc.Datasets.Raw()
		if err != nil {
			return err
		}
		return api.Output(endpoints.DatasetsResponse{
			Current:     svc.Datasets.Current(),
			CurrentName: svc.Datasets.CurrentName(),
			Processed:   processed,
			Raw:         raw,
		})
	},
}

var datasetsValidateCmd = &cobra.Command{
	Use:   "validate [dataset]",
	Short: "Check a dataset against the corpus schema",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := localServices()
		if err != nil {
			return err
		}
		path := resolveDataset(svc.Datasets, firstArg(args))
		n, err := corpus.ValidateFile(path, svc.Logger)
		if err != nil {
			return err
		}
		return api.Output(endpoints.ValidateResponse{Path: path, Valid: true, Records: n})
	},
}

var datasetsStatsCmd = &cobra.Command{
	Use:   "stats [dataset]",
	Short: "Summarize a dataset by tone, length, language and tag",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := localServices()
		if err != nil {
			return err
		}
		stats, err := svc.Datasets.Stats(resolveDataset(svc.Datasets, firstArg(args)))
		if err != nil {
			return err
		}
		return api.Output(stats)
	},
}

var datasetsBackupCmd = &cobra.Command{
	Use:   "backup [dataset]",
	Short: "Copy a dataset into the backups directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := localServices()
		if err != nil {
			return err
		}
		if err := svc.Home.EnsureBackupsDir(); err != nil {
			return err
		}
		dst, err := corpus.Backup(resolveDataset(svc.Datasets, firstArg(args)), svc.Home.BackupsPath(), time.Now())
		if err != nil {
			return err
		}
		return api.Output(map[string]string{"backup": dst})
	},
}

var datasetsRemoveCmd = &cobra.Command{
	Use:   "remove <file>",
	Short: "Delete a dataset and its metadata from the data directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := localServices()
		if err != nil {
			return err
		}
		name := args[0]
		if filepath.Base(name) != name || !registry.Eligible(name) {
			return fmt.Errorf("%q is not a dataset file in the data directory", name)
		}
		if err := svc.Datasets.Remove(svc.Datasets.Path(name)); err != nil {
			return err
		}
		return api.Output(endpoints.RemoveResponse{Removed: name, Current: svc.Datasets.Current()})
	},
}

var (
	processOutput      string
	processDisplayName string
)

var datasetsProcessCmd = &cobra.Command{
	Use:   "process <raw-dataset>",
	Short: "Annotate a raw dataset and write the processed dataset",
	Long: `Process sends every post in a raw dataset to the annotation provider and
writes a processed dataset plus its metadata sidecar. Posts with empty text are
skipped; posts the provider cannot classify get fallback annotations.

The output defaults to processed_<raw name>.json in the data directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := localServices()
		if err != nil {
			return err
		}
		rawPath := resolveDataset(svc.Datasets, args[0])
		out := processOutput
		if out == "" {
			_, processed := processor.FileNames(strings.TrimSuffix(filepath.Base(rawPath), ".json"))
			out = svc.Datasets.Path(processed)
		}

		var bar *progressbar.ProgressBar
		progress := func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("annotating"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetWidth(30),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			_ = bar.Set(done)
		}

		records, err := svc.Processor.ProcessFile(cmd.Context(), rawPath, out, progress)
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			return err
		}
		if processDisplayName != "" {
			if err := svc.Datasets.SetDisplayName(out, processDisplayName); err != nil {
				return err
			}
		}
		return api.Output(processor.UploadResult{
			RawPath:        rawPath,
			ProcessedPath:  out,
			ProcessedPosts: len(records),
		})
	},
}

var uploadDisplayName string

var datasetsImportCmd = &cobra.Command{
	Use:   "import <name> <file>",
	Short: "Copy a JSON array of posts into the data directory and process it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := localServices()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		result, err := svc.Processor.Upload(cmd.Context(), processor.UploadRequest{
			Name:        args[0],
			DisplayName: uploadDisplayName,
			Data:        data,
		})
		if errors.Is(err, processor.ErrInvalidName) {
			return fmt.Errorf("%w; use a plain name like my_posts", err)
		}
		if err != nil {
			return err
		}
		return api.Output(result)
	},
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	datasetsProcessCmd.Flags().StringVar(&processOutput, "out", "", "Processed dataset path")
	datasetsProcessCmd.Flags().StringVar(&processDisplayName, "display-name", "", "Display name to record for the processed dataset")
	datasetsImportCmd.Flags().StringVar(&uploadDisplayName, "display-name", "", "Display name to record for the processed dataset")

	datasetsCmd.AddCommand(datasetsListCmd)
	datasetsCmd.AddCommand(datasetsValidateCmd)
	datasetsCmd.AddCommand(datasetsStatsCmd)
	datasetsCmd.AddCommand(datasetsBackupCmd)
	datasetsCmd.AddCommand(datasetsRemoveCmd)
	datasetsCmd.AddCommand(datasetsProcessCmd)
	datasetsCmd.AddCommand(datasetsImportCmd)

	rootCmd.AddCommand(datasetsCmd)
}
