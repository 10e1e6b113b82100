// Package registry enumerates the corpus documents in a data directory and
// owns the process-wide "current dataset" slot.
package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jackzampolin/postgen/internal/corpus"
	"github.com/jackzampolin/postgen/internal/history"
	"github.com/jackzampolin/postgen/internal/jsonfile"
	"github.com/jackzampolin/postgen/internal/prompts"
)

// DefaultDataset is used as the current dataset when no processed dataset
// exists yet.
const DefaultDataset = "processed_posts.json"

// MappingsFileName stores custom display names keyed by file name.
const MappingsFileName = "dataset_mappings.json"

// Filename suffixes for sidecar documents that are never datasets.
const (
	MetadataSuffix = "_metadata.json"
	HistorySuffix  = "_history.json"
)

var reserved = map[string]bool{
	MappingsFileName:          true,
	prompts.TemplatesFileName: true,
	history.FileName:          true,
	"analytics_report.json":   true,
}

// Dataset is one corpus document found in the data directory.
type Dataset struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	File      string `json:"file"`
	Processed bool   `json:"processed"`
}

// Registry lists datasets under one directory and tracks the current one.
// The current slot is last-writer-wins; it is not invalidated if the file is
// later deleted, so callers check Exists before use.
type Registry struct {
	dataDir     string
	defaultFile string
	logger      *slog.Logger

	mu      sync.RWMutex
	current string
}

// New creates a registry over dataDir.
func New(dataDir string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{dataDir: dataDir, defaultFile: DefaultDataset, logger: logger}
}

// SetDefaultDataset replaces the file used when no processed dataset exists.
// Empty keeps DefaultDataset.
func (r *Registry) SetDefaultDataset(file string) {
	if file == "" {
		return
	}
	r.mu.Lock()
	r.defaultFile = file
	r.mu.Unlock()
}

// DataDir returns the directory being scanned.
func (r *Registry) DataDir() string {
	return r.dataDir
}

// Path returns the path of file inside the data directory.
func (r *Registry) Path(file string) string {
	return filepath.Join(r.dataDir, file)
}

// Eligible reports whether a file name can be a dataset at all.
func Eligible(name string) bool {
	return strings.HasSuffix(name, ".json") &&
		!strings.HasSuffix(name, MetadataSuffix) &&
		!strings.HasSuffix(name, HistorySuffix) &&
		!reserved[name]
}

// IsProcessed reports whether the document at path is ready for few-shot
// use: its first record has text and a non-empty tags list. Unreadable or
// malformed documents count as raw.
func IsProcessed(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || len(items) == 0 {
		return false
	}
	first := items[0]
	if _, ok := first["text"]; !ok {
		return false
	}
	var tags []any
	if err := json.Unmarshal(first["tags"], &tags); err != nil {
		return false
	}
	return len(tags) > 0
}

// Scan lists every eligible dataset in file name order. A missing data
// directory yields no datasets.
func (r *Registry) Scan() ([]Dataset, error) {
	entries, err := os.ReadDir(r.dataDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}
	mappings := r.mappings()

	var out []Dataset
	for _, e := range entries {
		if e.IsDir() || !Eligible(e.Name()) {
			continue
		}
		path := r.Path(e.Name())
		processed := IsProcessed(path)
		name, ok := mappings[e.Name()]
		if !ok || name == "" {
			name = DisplayName(e.Name(), !processed)
		}
		out = append(out, Dataset{
			Name:      name,
			Path:      path,
			File:      e.Name(),
			Processed: processed,
		})
	}
	return out, nil
}

// Processed lists datasets usable for generation.
func (r *Registry) Processed() ([]Dataset, error) {
	return r.filter(true)
}

// Raw lists datasets that still need processing.
func (r *Registry) Raw() ([]Dataset, error) {
	return r.filter(false)
}

func (r *Registry) filter(processed bool) ([]Dataset, error) {
	all, err := r.Scan()
	if err != nil {
		return nil, err
	}
	var out []Dataset
	for _, d := range all {
		if d.Processed == processed {
			out = append(out, d)
		}
	}
	return out, nil
}

// Current returns the current dataset path. The first call picks the first
// processed dataset, or the default dataset when there is none.
func (r *Registry) Current() string {
	r.mu.RLock()
	current := r.current
	r.mu.RUnlock()
	if current != "" {
		return current
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == "" {
		r.current = r.firstProcessed()
		r.logger.Debug("current dataset initialized", "path", r.current)
	}
	return r.current
}

func (r *Registry) firstProcessed() string {
	processed, err := r.Processed()
	if err != nil {
		r.logger.Warn("failed to scan datasets", "error", err)
	}
	if len(processed) > 0 {
		return processed[0].Path
	}
	return r.Path(r.defaultFile)
}

// SetCurrent replaces the current dataset path. An empty path clears the
// slot so the next Current picks the first processed dataset again.
func (r *Registry) SetCurrent(path string) {
	if path != "" {
		path = filepath.Clean(path)
	}
	r.mu.Lock()
	r.current = path
	r.mu.Unlock()
	r.logger.Info("current dataset changed", "path", path)
}

// CurrentName returns the display name of the current dataset.
func (r *Registry) CurrentName() string {
	current := r.Current()
	processed, _ := r.Processed()
	for _, d := range processed {
		if d.Path == current {
			return d.Name
		}
	}
	return titleCase(strings.ReplaceAll(strings.TrimSuffix(filepath.Base(current), ".json"), "_", " "))
}

// Resolve maps a dataset argument to a path. Empty means the current
// dataset; a bare file name is looked up in the data directory.
func (r *Registry) Resolve(nameOrPath string) string {
	switch {
	case nameOrPath == "":
		return r.Current()
	case filepath.Base(nameOrPath) == nameOrPath:
		return r.Path(nameOrPath)
	default:
		return filepath.Clean(nameOrPath)
	}
}

// Exists reports whether a dataset file exists.
func (r *Registry) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes a dataset and its metadata sidecar. If it was current, the
// first remaining processed dataset becomes current.
func (r *Registry) Remove(path string) error {
	if !r.Exists(path) {
		return &corpus.NotFoundError{Path: path}
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove dataset: %w", err)
	}
	if err := os.Remove(MetadataPath(path)); err != nil && !os.IsNotExist(err) {
		r.logger.Warn("failed to remove metadata sidecar", "path", MetadataPath(path), "error", err)
	}
	r.logger.Info("dataset removed", "path", path)

	if r.Current() == filepath.Clean(path) {
		r.mu.Lock()
		r.current = r.firstProcessed()
		r.mu.Unlock()
	}
	return nil
}

// Stats loads a dataset and summarizes it.
func (r *Registry) Stats(path string) (*corpus.Stats, error) {
	if !r.Exists(path) {
		return nil, &corpus.NotFoundError{Path: path}
	}
	c, err := corpus.Load(path, r.logger)
	if err != nil {
		return nil, err
	}
	s := c.Stats()
	return &s, nil
}

// MetadataPath returns the sidecar path for a dataset document.
func MetadataPath(path string) string {
	return strings.TrimSuffix(path, ".json") + MetadataSuffix
}

// SetDisplayName records a custom display name for a dataset file.
func (r *Registry) SetDisplayName(path, name string) error {
	m := r.mappings()
	m[filepath.Base(path)] = name
	if err := jsonfile.Write(r.Path(MappingsFileName), m); err != nil {
		return fmt.Errorf("failed to save dataset mappings: %w", err)
	}
	return nil
}

func (r *Registry) mappings() map[string]string {
	m := map[string]string{}
	if _, err := jsonfile.Read(r.Path(MappingsFileName), &m); err != nil {
		r.logger.Warn("ignoring unreadable dataset mappings", "error", err)
		return map[string]string{}
	}
	return m
}
