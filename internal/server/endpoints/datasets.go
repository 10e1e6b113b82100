package endpoints

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/postgen/internal/api"
	"github.com/jackzampolin/postgen/internal/corpus"
	"github.com/jackzampolin/postgen/internal/registry"
	"github.com/jackzampolin/postgen/internal/svcctx"
)

// DatasetsResponse lists the datasets in the data directory.
type DatasetsResponse struct {
	Current     string             `json:"current"`
	CurrentName string             `json:"current_name"`
	Processed   []registry.Dataset `json:"processed"`
	Raw         []registry.Dataset `json:"raw"`
}

// CurrentDatasetResponse describes the current dataset.
type CurrentDatasetResponse struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
}

// PathRequest names a dataset by file name or path.
type PathRequest struct {
	Path string `json:"path"`
}

// ValidateResponse reports a dataset that passed strict validation.
type ValidateResponse struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Records int    `json:"records"`
}

// RemoveResponse reports a removed dataset and the resulting current one.
type RemoveResponse struct {
	Removed string `json:"removed"`
	Current string `json:"current"`
}

func datasetsOrUnavailable(w http.ResponseWriter, r *http.Request) *registry.Registry {
	datasets := svcctx.DatasetsFrom(r.Context())
	if datasets == nil {
		writeError(w, http.StatusServiceUnavailable, "dataset registry not initialized")
	}
	return datasets
}

func currentDataset(datasets *registry.Registry) CurrentDatasetResponse {
	current := datasets.Current()
	return CurrentDatasetResponse{
		Path:   current,
		Name:   datasets.CurrentName(),
		Exists: datasets.Exists(current),
	}
}

// ListDatasetsEndpoint handles GET /datasets.
type ListDatasetsEndpoint struct{}

func (e *ListDatasetsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/datasets", e.handler
}

func (e *ListDatasetsEndpoint) RequiresInit() bool { return true }

func (e *ListDatasetsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	datasets := datasetsOrUnavailable(w, r)
	if datasets == nil {
		return
	}
	all, err := datasets.Scan()
	if err != nil {
		writeErr(w, err)
		return
	}
	resp := DatasetsResponse{
		Current:     datasets.Current(),
		CurrentName: datasets.CurrentName(),
		Processed:   []registry.Dataset{},
		Raw:         []registry.Dataset{},
	}
	for _, d := range all {
		if d.Processed {
			resp.Processed = append(resp.Processed, d)
		} else {
			resp.Raw = append(resp.Raw, d)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListDatasetsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List processed and raw datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp DatasetsResponse
			if err := client.Get(cmd.Context(), "/datasets", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetCurrentDatasetEndpoint handles GET /datasets/current.
type GetCurrentDatasetEndpoint struct{}

func (e *GetCurrentDatasetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/datasets/current", e.handler
}

func (e *GetCurrentDatasetEndpoint) RequiresInit() bool { return true }

func (e *GetCurrentDatasetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	datasets := datasetsOrUnavailable(w, r)
	if datasets == nil {
		return
	}
	writeJSON(w, http.StatusOK, currentDataset(datasets))
}

func (e *GetCurrentDatasetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp CurrentDatasetResponse
			if err := client.Get(cmd.Context(), "/datasets/current", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// SetCurrentDatasetEndpoint handles PUT /datasets/current.
type SetCurrentDatasetEndpoint struct{}

func (e *SetCurrentDatasetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/datasets/current", e.handler
}

func (e *SetCurrentDatasetEndpoint) RequiresInit() bool { return true }

func (e *SetCurrentDatasetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	datasets := datasetsOrUnavailable(w, r)
	if datasets == nil {
		return
	}
	var req PathRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	path := datasets.Resolve(req.Path)
	if !datasets.Exists(path) {
		writeErr(w, &corpus.NotFoundError{Path: path})
		return
	}
	datasets.SetCurrent(path)
	writeJSON(w, http.StatusOK, currentDataset(datasets))
}

func (e *SetCurrentDatasetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "use <path>",
		Short: "Switch the current dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp CurrentDatasetResponse
			if err := client.Put(cmd.Context(), "/datasets/current", PathRequest{Path: args[0]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ValidateDatasetEndpoint handles POST /datasets/validate.
type ValidateDatasetEndpoint struct{}

func (e *ValidateDatasetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/datasets/validate", e.handler
}

func (e *ValidateDatasetEndpoint) RequiresInit() bool { return true }

func (e *ValidateDatasetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	datasets := datasetsOrUnavailable(w, r)
	if datasets == nil {
		return
	}
	var req PathRequest
	if !decodeBody(w, r, &req) {
		return
	}
	path := datasets.Resolve(req.Path)
	n, err := corpus.ValidateFile(path, svcctx.LoggerFrom(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{Path: path, Valid: true, Records: n})
}

func (e *ValidateDatasetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Strictly validate a processed dataset (default: current)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req PathRequest
			if len(args) == 1 {
				req.Path = args[0]
			}
			client := api.NewClient(getServerURL())
			var resp ValidateResponse
			if err := client.Post(cmd.Context(), "/datasets/validate", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DatasetStatsEndpoint handles GET /datasets/stats.
type DatasetStatsEndpoint struct{}

func (e *DatasetStatsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/datasets/stats", e.handler
}

func (e *DatasetStatsEndpoint) RequiresInit() bool { return true }

func (e *DatasetStatsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	datasets := datasetsOrUnavailable(w, r)
	if datasets == nil {
		return
	}
	stats, err := datasets.Stats(datasets.Resolve(r.URL.Query().Get("path")))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (e *DatasetStatsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [path]",
		Short: "Summarize a dataset (default: current)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := map[string]string{}
			if len(args) == 1 {
				query["path"] = args[0]
			}
			client := api.NewClient(getServerURL())
			var resp corpus.Stats
			if err := client.GetQuery(cmd.Context(), "/datasets/stats", query, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteDatasetEndpoint handles DELETE /datasets/{file}.
type DeleteDatasetEndpoint struct{}

func (e *DeleteDatasetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/datasets/{file}", e.handler
}

func (e *DeleteDatasetEndpoint) RequiresInit() bool { return true }

func (e *DeleteDatasetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	datasets := datasetsOrUnavailable(w, r)
	if datasets == nil {
		return
	}
	file := r.PathValue("file")
	if file == "" || filepath.Base(file) != file || !registry.Eligible(file) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("not a dataset file: %q", file))
		return
	}
	path := datasets.Path(file)
	if err := datasets.Remove(path); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RemoveResponse{Removed: path, Current: datasets.Current()})
}

func (e *DeleteDatasetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file>",
		Short: "Delete a dataset from the data directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/datasets/"+url.PathEscape(args[0])); err != nil {
				return err
			}
			fmt.Printf("Removed %s\n", args[0])
			return nil
		},
	}
}
