package endpoints

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/postgen/internal/api"
	"github.com/jackzampolin/postgen/internal/processor"
	"github.com/jackzampolin/postgen/internal/svcctx"
)

// UploadRequest is the request body for POST /datasets/upload.
type UploadRequest struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name,omitempty"`
	Posts       json.RawMessage `json:"posts"`
	AutoSwitch  bool            `json:"auto_switch"`
}

// UploadDatasetEndpoint handles POST /datasets/upload. The raw posts are
// saved, annotated, and written as a processed dataset before it returns.
type UploadDatasetEndpoint struct{}

var _ api.Endpoint = (*UploadDatasetEndpoint)(nil)

func (e *UploadDatasetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/datasets/upload", e.handler
}

func (e *UploadDatasetEndpoint) RequiresInit() bool { return true }

func (e *UploadDatasetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	proc := svcctx.ProcessorFrom(r.Context())
	if proc == nil {
		writeError(w, http.StatusServiceUnavailable, "processor not initialized")
		return
	}

	var req UploadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if posts := bytes.TrimSpace(req.Posts); len(posts) == 0 || string(posts) == "null" {
		writeError(w, http.StatusBadRequest, "posts is required")
		return
	}

	logger := svcctx.LoggerFrom(r.Context())
	logger.Info("dataset upload received", "name", req.Name, "bytes", len(req.Posts))

	result, err := proc.Upload(r.Context(), processor.UploadRequest{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Data:        req.Posts,
		AutoSwitch:  req.AutoSwitch,
	})
	if err != nil {
		logger.Error("dataset upload failed", "name", req.Name, "error", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (e *UploadDatasetEndpoint) Command(getServerURL func() string) *cobra.Command {
	var name, displayName string
	var autoSwitch bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a raw dataset and annotate it on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			if !json.Valid(data) {
				return fmt.Errorf("%s is not valid JSON", args[0])
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), ".json")
			}

			client := api.NewClient(getServerURL())
			var resp processor.UploadResult
			req := UploadRequest{Name: name, DisplayName: displayName, Posts: data, AutoSwitch: autoSwitch}
			if err := client.Post(cmd.Context(), "/datasets/upload", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Dataset name (default: file name)")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name recorded for the processed dataset")
	cmd.Flags().BoolVar(&autoSwitch, "auto-switch", false, "Make the processed dataset current")
	return cmd
}
