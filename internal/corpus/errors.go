package corpus

import (
	"fmt"
	"io/fs"
)

// FormatError reports a corpus document that is not well-formed: invalid JSON,
// or valid JSON that is not an array of objects.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid corpus document: %v", e.Err)
	}
	return fmt.Sprintf("invalid corpus document %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// NotFoundError reports a dataset file that does not exist. It matches
// fs.ErrNotExist under errors.Is.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dataset not found: %s", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == fs.ErrNotExist
}
