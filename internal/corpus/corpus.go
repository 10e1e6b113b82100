// Package corpus loads, saves, and merges collections of post records backed by
// a single JSON document.
//
// Load is best-effort: it backfills derived fields and coerces loosely typed
// values. ValidateFile is the strict counterpart and never coerces.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/jackzampolin/postgen/internal/jsonfile"
	"github.com/jackzampolin/postgen/internal/post"
)

// Corpus is an ordered sequence of records. Order is exactly the order the
// records were read or added in; example selection depends on it.
type Corpus struct {
	path    string
	records []post.Record
}

// New creates an in-memory corpus holding copies of records.
func New(records ...post.Record) *Corpus {
	c := &Corpus{}
	for _, r := range records {
		c.records = append(c.records, r.Clone())
	}
	return c
}

// BucketLength is the load-time length rule: fewer than 5 lines is Short,
// 5 through 10 is Medium, anything longer is Long.
//
// annotate.BucketLength classifies exactly 5 lines as Short. The two rules are
// kept separate on purpose; backfill on load and Add use this one.
func BucketLength(lineCount int) post.Length {
	switch {
	case lineCount < 5:
		return post.Short
	case lineCount <= 10:
		return post.Medium
	default:
		return post.Long
	}
}

// Load reads the corpus document at path.
//
// A missing file yields an empty corpus and a warning, not an error. A document
// that is not a JSON array of objects fails with *FormatError.
func Load(path string, logger *slog.Logger) (*Corpus, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("corpus file not found, using empty corpus", "path", path)
			return &Corpus{path: path}, nil
		}
		return nil, fmt.Errorf("failed to read corpus %s: %w", path, err)
	}

	records, err := Decode(data)
	if err != nil {
		var fErr *FormatError
		if errors.As(err, &fErr) {
			fErr.Path = path
		}
		return nil, err
	}

	logger.Debug("loaded corpus", "path", path, "posts", len(records))
	return &Corpus{path: path, records: records}, nil
}

// Decode parses a corpus document, backfilling derived fields the same way
// Load does.
func Decode(data []byte) ([]post.Record, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &FormatError{Err: fmt.Errorf("dataset must be a JSON array of posts: %w", err)}
	}
	if items == nil {
		return nil, &FormatError{Err: errors.New("dataset must be a JSON array of posts")}
	}

	records := make([]post.Record, 0, len(items))
	for i, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			return nil, &FormatError{Err: fmt.Errorf("post at index %d is not an object", i)}
		}
		records = append(records, decodeRecord(fields))
	}
	return records, nil
}

func decodeRecord(fields map[string]json.RawMessage) post.Record {
	var r post.Record

	_ = json.Unmarshal(fields["text"], &r.Text)

	if raw, ok := fields["engagement"]; ok {
		var n float64
		if json.Unmarshal(raw, &n) == nil {
			r.Engagement = n
		}
	}

	r.LineCount = post.LineCount(r.Text)
	if raw, ok := fields["line_count"]; ok {
		var n float64
		if json.Unmarshal(raw, &n) == nil && n == math.Trunc(n) && n > 0 {
			r.LineCount = int(n)
		}
	}

	r.Length = post.Length(decodeString(fields["length"]))
	if !r.Length.Valid() {
		r.Length = BucketLength(r.LineCount)
	}

	if l := post.Language(decodeString(fields["language"])); l.Valid() {
		r.Language = l
	}
	if t := post.Tone(decodeString(fields["tone"])); t.Valid() {
		r.Tone = t
	}
	if a := post.Audience(decodeString(fields["target_audience"])); a.Valid() {
		r.TargetAudience = a
	}

	r.Tags = decodeTags(fields["tags"])
	return r
}

func decodeString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// decodeTags coerces a tags value: a string becomes a one-element list, a list
// keeps its string entries, anything else becomes empty.
func decodeTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var single string
	if json.Unmarshal(raw, &single) == nil {
		return []string{single}
	}
	var list []any
	if json.Unmarshal(raw, &list) != nil {
		return nil
	}
	tags := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

// Path returns the document path the corpus was loaded from, if any.
func (c *Corpus) Path() string {
	return c.path
}

// Len returns the number of records.
func (c *Corpus) Len() int {
	return len(c.records)
}

// Empty reports whether the corpus has no records. Callers treat an empty
// corpus as "no examples available".
func (c *Corpus) Empty() bool {
	return len(c.records) == 0
}

// Records returns copies of all records in corpus order.
func (c *Corpus) Records() []post.Record {
	out := make([]post.Record, len(c.records))
	for i, r := range c.records {
		out[i] = r.Clone()
	}
	return out
}

// Each calls fn for every record in order without copying. fn must not retain
// or modify the record's tags.
func (c *Corpus) Each(fn func(i int, r post.Record) bool) {
	for i, r := range c.records {
		if !fn(i, r) {
			return
		}
	}
}

// Add appends copies of records, backfilling line_count, length and tags the
// way Load does.
func (c *Corpus) Add(records ...post.Record) {
	for _, r := range records {
		r = r.Clone()
		if r.LineCount <= 0 {
			r.LineCount = post.LineCount(r.Text)
		}
		if !r.Length.Valid() {
			r.Length = BucketLength(r.LineCount)
		}
		if r.Tags == nil {
			r.Tags = []string{}
		}
		c.records = append(c.records, r)
	}
}

// Merge concatenates a and b and drops every record whose text was already
// seen, keeping the first occurrence. The result takes a's path.
func Merge(a, b *Corpus) *Corpus {
	out := &Corpus{path: a.path}
	seen := make(map[string]struct{}, a.Len()+b.Len())
	for _, src := range []*Corpus{a, b} {
		for _, r := range src.records {
			if _, ok := seen[r.Text]; ok {
				continue
			}
			seen[r.Text] = struct{}{}
			out.records = append(out.records, r.Clone())
		}
	}
	return out
}

// UniqueTags returns the union of all record tags, sorted.
func (c *Corpus) UniqueTags() []string {
	set := make(map[string]struct{})
	for _, r := range c.records {
		for _, t := range r.Tags {
			set[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Search returns records whose text contains query, ignoring case.
func (c *Corpus) Search(query string) []post.Record {
	q := strings.ToLower(query)
	var out []post.Record
	for _, r := range c.records {
		if strings.Contains(strings.ToLower(r.Text), q) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// ByEngagement returns records with min <= engagement <= max.
func (c *Corpus) ByEngagement(min, max float64) []post.Record {
	var out []post.Record
	for _, r := range c.records {
		if r.Engagement >= min && r.Engagement <= max {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Save writes the corpus to path, or to the path it was loaded from when path
// is empty.
func (c *Corpus) Save(path string) error {
	if path == "" {
		path = c.path
	}
	if path == "" {
		return fmt.Errorf("no destination path for corpus")
	}
	return WriteRecords(path, c.records)
}

// WriteRecords serializes records as a JSON array. Non-ASCII text is written
// literally. The file is replaced via rename so readers never see a partial
// document.
func WriteRecords(path string, records []post.Record) error {
	if records == nil {
		records = []post.Record{}
	}
	return jsonfile.Write(path, records)
}

// Contains reports whether a record with exactly this text exists.
func (c *Corpus) Contains(text string) bool {
	return slices.ContainsFunc(c.records, func(r post.Record) bool { return r.Text == text })
}
