package api

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how CLI commands print results.
type OutputFormat string

const (
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatText prints a post or prompt body as is. Values without a
	// plain text form fall back to YAML.
	OutputFormatText OutputFormat = "text"
)

// PlainTexter is implemented by results with a natural plain text form,
// such as a generated post.
type PlainTexter interface {
	PlainText() string
}

// outputFormat is set by the root command's --output flag.
var outputFormat = OutputFormatYAML

// SetOutputFormat sets the format used by Output.
func SetOutputFormat(format string) error {
	switch f := OutputFormat(strings.ToLower(format)); f {
	case OutputFormatYAML, OutputFormatJSON, OutputFormatText:
		outputFormat = f
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want yaml, json or text)", format)
	}
}

// Output writes data to stdout in the configured format.
func Output(data any) error {
	return OutputTo(os.Stdout, outputFormat, data)
}

// OutputTo writes data to w in the given format.
func OutputTo(w io.Writer, format OutputFormat, data any) error {
	switch format {
	case OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	case OutputFormatText:
		if t, ok := data.(PlainTexter); ok {
			_, err := fmt.Fprintln(w, strings.TrimRight(t.PlainText(), "\n"))
			return err
		}
		return OutputTo(w, OutputFormatYAML, data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
