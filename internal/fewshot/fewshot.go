// Package fewshot selects processed records from a corpus to use as style
// references in a generation prompt.
package fewshot

import (
	"github.com/jackzampolin/postgen/internal/corpus"
	"github.com/jackzampolin/postgen/internal/post"
)

// DefaultMaxExamples is how many matches a generation prompt shows.
const DefaultMaxExamples = 2

// Query identifies the examples to select. All three fields must match
// exactly; comparison is case-sensitive.
type Query struct {
	Length   post.Length   `json:"length"`
	Language post.Language `json:"language"`
	Tag      string        `json:"tag"`
}

// Matches reports whether r satisfies q. Raw records never match.
func (q Query) Matches(r post.Record) bool {
	return r.IsProcessed() && r.Length == q.Length && r.Language == q.Language && r.HasTag(q.Tag)
}

// Select returns copies of every record matching q, in corpus order.
func Select(c *corpus.Corpus, q Query) []post.Record {
	return Examples(c, q, 0)
}

// Examples returns at most max matching records in corpus order. A max of zero
// or less means no limit.
func Examples(c *corpus.Corpus, q Query, max int) []post.Record {
	var out []post.Record
	if c == nil {
		return out
	}
	c.Each(func(_ int, r post.Record) bool {
		if q.Matches(r) {
			out = append(out, r.Clone())
		}
		return max <= 0 || len(out) < max
	})
	return out
}
