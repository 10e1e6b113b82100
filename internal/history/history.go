// Package history keeps a bounded log of generated posts.
package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/postgen/internal/jsonfile"
)

// FileName is the history document's name inside the data directory.
const FileName = "generated_posts_history.json"

// MaxEntries is how many entries Append keeps.
const MaxEntries = 100

// Entry is one generated post.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Load returns all entries, oldest first. A missing file yields no entries.
func Load(path string) ([]Entry, error) {
	var entries []Entry
	if _, err := jsonfile.Read(path, &entries); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return entries, nil
}

// Append adds an entry and trims the log to the newest MaxEntries.
func Append(path, content string, metadata map[string]any, now time.Time) (Entry, error) {
	entries, err := Load(path)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		ID:        uuid.New().String(),
		Timestamp: now.UTC(),
		Content:   content,
		Metadata:  metadata,
	}
	entries = append(entries, e)
	if len(entries) > MaxEntries {
		entries = entries[len(entries)-MaxEntries:]
	}
	if err := jsonfile.Write(path, entries); err != nil {
		return Entry{}, fmt.Errorf("failed to write history: %w", err)
	}
	return e, nil
}
