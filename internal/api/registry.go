package api

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

// Registry holds all registered endpoints.
type Registry struct {
	endpoints []Endpoint
}

// NewRegistry creates a new endpoint registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds endpoints to the registry.
func (r *Registry) Register(eps ...Endpoint) {
	r.endpoints = append(r.endpoints, eps...)
}

// Endpoints returns all registered endpoints.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}

// RegisterRoutes mounts every endpoint on mux under "METHOD /path".
// Endpoints that need services are wrapped with requireInit. instrument,
// when non-nil, wraps each route and receives its pattern as the label.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, requireInit func(http.HandlerFunc) http.HandlerFunc, instrument func(pattern string, h http.Handler) http.Handler) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		if ep.RequiresInit() {
			handler = requireInit(handler)
		}
		pattern := method + " " + path
		if instrument != nil {
			mux.Handle(pattern, instrument(pattern, handler))
			continue
		}
		mux.HandleFunc(pattern, handler)
	}
}

// BuildCommands returns the "api" command tree, grouped by the first path
// segment. An endpoint whose command is named after its single-segment path
// (GET /status → "status", POST /generate → "generate") sits at the top level
// and parents the deeper paths under it (/generate/custom → "generate custom").
// Other paths share a plain group command (/datasets/current → "datasets current").
func (r *Registry) BuildCommands(getServerURL func() string) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call the running postgen server via HTTP.

These commands require a running server (postgen serve).
Use --server to specify a custom server URL.

Examples:
  postgen api status                          # Current dataset and providers
  postgen api datasets list                   # List processed and raw datasets
  postgen api generate --tag Career           # Generate a post
  postgen api generate custom --topic "..."   # Generate from a free topic`,
	}

	type entry struct {
		cmd  *cobra.Command
		segs []string
	}
	parents := map[string]*cobra.Command{}
	var nested []entry
	for _, ep := range r.endpoints {
		_, path, _ := ep.Route()
		e := entry{cmd: ep.Command(getServerURL), segs: pathSegments(path)}
		if len(e.segs) == 1 && e.cmd.Name() == e.segs[0] {
			parents[e.segs[0]] = e.cmd
			apiCmd.AddCommand(e.cmd)
			continue
		}
		nested = append(nested, e)
	}

	for _, e := range nested {
		if len(e.segs) == 0 {
			apiCmd.AddCommand(e.cmd)
			continue
		}
		group, ok := parents[e.segs[0]]
		if !ok {
			group = &cobra.Command{
				Use:   e.segs[0],
				Short: "Commands under /" + e.segs[0],
			}
			parents[e.segs[0]] = group
			apiCmd.AddCommand(group)
		}
		group.AddCommand(e.cmd)
	}

	return apiCmd
}

func pathSegments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
