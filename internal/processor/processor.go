// Package processor turns raw post uploads into annotated corpus documents.
//
// Items are annotated one at a time, in order. A classifier failure for one
// item never aborts the batch: that item gets the fallback bundle instead.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackzampolin/postgen/internal/annotate"
	"github.com/jackzampolin/postgen/internal/corpus"
	"github.com/jackzampolin/postgen/internal/jsonfile"
	"github.com/jackzampolin/postgen/internal/metrics"
	"github.com/jackzampolin/postgen/internal/post"
	"github.com/jackzampolin/postgen/internal/registry"
)

// Version is written to every metadata sidecar.
const Version = "2.0.0"

// ErrInvalidName is returned by Upload for an empty dataset name or one
// containing a path separator.
var ErrInvalidName = errors.New("invalid dataset name")

// ProgressFunc is called after each item with the number of items handled
// so far and the total.
type ProgressFunc func(done, total int)

// Metadata is the sidecar written next to each processed document.
type Metadata struct {
	ProcessedAt      time.Time `json:"processed_at"`
	TotalPosts       int       `json:"total_posts"`
	ProcessorVersion string    `json:"processor_version"`
}

// Config configures a Processor.
type Config struct {
	Classifier annotate.Classifier
	Registry   *registry.Registry // optional; required by Upload
	Metrics    *metrics.Metrics   // optional
	Logger     *slog.Logger
	Now        func() time.Time // optional clock for sidecar timestamps
}

// Processor annotates raw datasets.
type Processor struct {
	classifier annotate.Classifier
	registry   *registry.Registry
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a processor.
func New(cfg Config) *Processor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Processor{
		classifier: cfg.Classifier,
		registry:   cfg.Registry,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
}

// Process annotates every post with text and returns the records in input
// order. The only error is ctx cancellation, checked between items.
func (p *Processor) Process(ctx context.Context, posts []RawPost, progress ProgressFunc) ([]post.Record, error) {
	records := make([]post.Record, 0, len(posts))
	for i, raw := range posts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if rec, ok := p.processOne(ctx, i, raw); ok {
			records = append(records, rec)
		}
		if progress != nil {
			progress(i+1, len(posts))
		}
	}
	return records, nil
}

func (p *Processor) processOne(ctx context.Context, index int, raw RawPost) (post.Record, bool) {
	if raw.Text == "" {
		p.logger.Warn("skipping post without text content", "index", index)
		p.metrics.RecordAnnotation(metrics.OutcomeSkipped)
		return post.Record{}, false
	}

	var bundle annotate.Bundle
	meta, err := p.classifier.Classify(ctx, raw.Text)
	if err != nil {
		p.logger.Warn("classification failed, using default metadata", "index", index, "error", err)
		p.metrics.RecordAnnotation(metrics.OutcomeFallback)
		bundle = annotate.Fallback(raw.Text)
	} else {
		p.metrics.RecordAnnotation(metrics.OutcomeClassified)
		bundle = annotate.Normalize(meta, raw.Text)
	}
	return bundle.Record(raw.Text, raw.Engagement), true
}

// Save writes records as a corpus document at path plus its metadata sidecar.
func (p *Processor) Save(path string, records []post.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := corpus.WriteRecords(path, records); err != nil {
		return fmt.Errorf("failed to save processed dataset: %w", err)
	}
	meta := Metadata{
		ProcessedAt:      p.now(),
		TotalPosts:       len(records),
		ProcessorVersion: Version,
	}
	if err := jsonfile.Write(registry.MetadataPath(path), meta); err != nil {
		return fmt.Errorf("failed to save dataset metadata: %w", err)
	}
	p.logger.Info("processed dataset saved", "path", path, "posts", len(records))
	return nil
}

// LoadMetadata reads the sidecar for a processed document.
func LoadMetadata(path string) (*Metadata, error) {
	var meta Metadata
	found, err := jsonfile.Read(registry.MetadataPath(path), &meta)
	if err != nil {
		return nil, &corpus.FormatError{Path: registry.MetadataPath(path), Err: err}
	}
	if !found {
		return nil, &corpus.NotFoundError{Path: registry.MetadataPath(path)}
	}
	return &meta, nil
}

// ProcessFile annotates the raw document at rawPath and writes the result to
// processedPath. The raw document is never overwritten.
func (p *Processor) ProcessFile(ctx context.Context, rawPath, processedPath string, progress ProgressFunc) ([]post.Record, error) {
	if filepath.Clean(rawPath) == filepath.Clean(processedPath) {
		return nil, fmt.Errorf("refusing to overwrite raw dataset %s", rawPath)
	}
	data, err := os.ReadFile(rawPath)
	if os.IsNotExist(err) {
		return nil, &corpus.NotFoundError{Path: rawPath}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read raw dataset: %w", err)
	}
	doc, err := DecodeRaw(data)
	if err != nil {
		var fe *corpus.FormatError
		if errors.As(err, &fe) {
			fe.Path = rawPath
		}
		return nil, err
	}

	p.logger.Info("processing raw dataset", "path", rawPath, "posts", len(doc.Posts))
	records, err := p.Process(ctx, doc.Posts, progress)
	if err != nil {
		return nil, err
	}
	if err := p.Save(processedPath, records); err != nil {
		return nil, err
	}
	return records, nil
}

// UploadRequest describes a raw dataset upload.
type UploadRequest struct {
	Name        string // dataset name; raw_ prefix optional
	DisplayName string // optional label recorded in the registry mappings
	Data        []byte // JSON array of {text, engagement}
	AutoSwitch  bool   // make the processed dataset current
	Progress    ProgressFunc
}

// UploadResult reports where an upload was written.
type UploadResult struct {
	RawPath        string `json:"raw_path"`
	ProcessedPath  string `json:"processed_path"`
	TotalPosts     int    `json:"total_posts"`
	ProcessedPosts int    `json:"processed_posts"`
}

// FileNames returns the raw and processed file names for a dataset name.
func FileNames(name string) (raw, processed string) {
	if strings.HasPrefix(name, "raw_") {
		return name + ".json", "processed_" + name + ".json"
	}
	return "raw_" + name + ".json", "processed_raw_" + name + ".json"
}

// Upload saves a raw dataset into the registry's data directory, processes
// it, and writes the processed document and sidecar.
func (p *Processor) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if p.registry == nil {
		return nil, fmt.Errorf("upload requires a dataset registry")
	}
	name := strings.TrimSuffix(strings.TrimSpace(req.Name), ".json")
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w %q", ErrInvalidName, req.Name)
	}
	doc, err := DecodeRaw(req.Data)
	if err != nil {
		return nil, err
	}

	rawFile, processedFile := FileNames(name)
	rawPath := p.registry.Path(rawFile)
	processedPath := p.registry.Path(processedFile)

	if err := os.MkdirAll(p.registry.DataDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := jsonfile.Write(rawPath, doc.Items); err != nil {
		return nil, fmt.Errorf("failed to save raw dataset: %w", err)
	}
	p.logger.Info("raw dataset saved", "path", rawPath, "posts", len(doc.Items))

	records, err := p.Process(ctx, doc.Posts, req.Progress)
	if err != nil {
		return nil, err
	}
	if err := p.Save(processedPath, records); err != nil {
		return nil, err
	}
	if req.DisplayName != "" {
		if err := p.registry.SetDisplayName(processedPath, req.DisplayName); err != nil {
			p.logger.Warn("failed to record display name", "error", err)
		}
	}
	if req.AutoSwitch {
		p.registry.SetCurrent(processedPath)
	}

	return &UploadResult{
		RawPath:        rawPath,
		ProcessedPath:  processedPath,
		TotalPosts:     len(doc.Items),
		ProcessedPosts: len(records),
	}, nil
}
