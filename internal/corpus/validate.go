package corpus

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/postgen/internal/post"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "postgen://corpus.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add corpus schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// ValidateFile checks a dataset without coercing anything. It returns the
// number of posts on success. An empty array is valid and logs a warning.
//
// Errors are *NotFoundError, *FormatError, or *post.ValidationError naming the
// first offending post.
func ValidateFile(path string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, &NotFoundError{Path: path}
		}
		return 0, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return validateDocument(path, data, logger)
}

func validateDocument(path string, data []byte, logger *slog.Logger) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return 0, &FormatError{Path: path, Err: err}
	}
	items, ok := doc.([]any)
	if !ok {
		return 0, &FormatError{Path: path, Err: errors.New("dataset must be a list of posts")}
	}
	if len(items) == 0 {
		logger.Warn("dataset is empty", "path", path)
		return 0, nil
	}
	for i, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return 0, &FormatError{Path: path, Err: fmt.Errorf("post at index %d is not an object", i)}
		}
	}

	schema, err := compiledSchema()
	if err != nil {
		return 0, err
	}
	if err := schema.Validate(doc); err != nil {
		var vErr *jsonschema.ValidationError
		if errors.As(err, &vErr) {
			return 0, toValidationError(vErr)
		}
		return 0, fmt.Errorf("failed to validate %s: %w", path, err)
	}
	return len(items), nil
}

// toValidationError reduces a schema failure to the first offending post.
func toValidationError(root *jsonschema.ValidationError) *post.ValidationError {
	var best *post.ValidationError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		v := leafError(e)
		if best == nil || (v.Index >= 0 && (best.Index < 0 || v.Index < best.Index)) {
			best = v
		}
	}
	walk(root)
	if best == nil {
		best = &post.ValidationError{Index: -1, Reason: root.Message}
	}
	return best
}

func leafError(e *jsonschema.ValidationError) *post.ValidationError {
	v := &post.ValidationError{Index: -1, Reason: e.Message}
	parts := strings.Split(strings.TrimPrefix(e.InstanceLocation, "/"), "/")
	if len(parts) > 0 {
		if i, err := strconv.Atoi(parts[0]); err == nil {
			v.Index = i
		}
	}
	switch {
	case len(parts) > 1:
		v.Field = parts[1]
	case strings.HasSuffix(e.KeywordLocation, "/required"):
		v.Field = "text"
		v.Reason = "is required"
	}
	return v
}
