// Package api ties each HTTP operation of the postgen server to the CLI
// command that calls it, and holds the client and output helpers those
// commands share.
package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Endpoint is one server operation: its route, and a `postgen api` command
// that calls the route over HTTP and prints the response.
type Endpoint interface {
	// Route returns the method, ServeMux path pattern and handler.
	Route() (method, path string, handler http.HandlerFunc)

	// RequiresInit reports whether the handler reads the dataset, processing
	// or generation services, which exist only after the server has started.
	RequiresInit() bool

	// Command builds the CLI command. getServerURL is read when the command
	// runs, after --server has been parsed.
	Command(getServerURL func() string) *cobra.Command
}
