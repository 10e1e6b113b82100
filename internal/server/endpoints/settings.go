package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/postgen/internal/api"
	"github.com/jackzampolin/postgen/internal/config"
	"github.com/jackzampolin/postgen/internal/svcctx"
)

// SettingsResponse is the effective configuration with API keys masked.
type SettingsResponse struct {
	ConfigFile string        `json:"config_file,omitempty"`
	Settings   config.Config `json:"settings"`
}

// SettingsEndpoint handles GET /settings.
type SettingsEndpoint struct{}

func (e *SettingsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/settings", e.handler
}

func (e *SettingsEndpoint) RequiresInit() bool { return false }

func (e *SettingsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	mgr := svcctx.ConfigFrom(r.Context())
	if mgr == nil {
		writeError(w, http.StatusServiceUnavailable, "config not available")
		return
	}
	writeJSON(w, http.StatusOK, SettingsResponse{
		ConfigFile: mgr.ConfigFile(),
		Settings:   mgr.Get().Redacted(),
	})
}

func (e *SettingsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Show the server's effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SettingsResponse
			if err := client.Get(cmd.Context(), "/settings", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
