package post

import "fmt"

// ValidationError reports a record that fails the strict field checks.
// Index is the record's position in its document, or -1 when unknown.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid post at index %d: field %q %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid post: field %q %s", e.Field, e.Reason)
}

// AtIndex returns a copy of e attributed to the record at index i.
func (e *ValidationError) AtIndex(i int) *ValidationError {
	c := *e
	c.Index = i
	return &c
}
