// Package annotate turns untrusted classifier output into a valid metadata
// bundle for a post.
package annotate

import (
	"github.com/jackzampolin/postgen/internal/post"
)

// Bundle is the metadata attached to a post during processing. Every field of
// a Bundle returned by this package holds a valid value.
type Bundle struct {
	LineCount      int           `json:"line_count"`
	Language       post.Language `json:"language"`
	Tags           []string      `json:"tags"`
	Length         post.Length   `json:"length"`
	Tone           post.Tone     `json:"tone"`
	TargetAudience post.Audience `json:"target_audience"`
}

// BucketLength is the annotation-time length rule: up to 5 lines is Short,
// 6 through 10 is Medium, anything longer is Long.
//
// corpus.BucketLength classifies exactly 5 lines as Medium. Processing uses
// this rule; loading and adding posts use that one.
func BucketLength(lineCount int) post.Length {
	switch {
	case lineCount <= 5:
		return post.Short
	case lineCount <= 10:
		return post.Medium
	default:
		return post.Long
	}
}

// Normalize builds a Bundle from raw classifier output and the post text.
// It never fails and has no side effects.
//
// line_count and length always come from text; a supplied line_count or
// length is ignored. Tags are coerced to a list and cut to post.MaxTags.
// Unknown language, tone and audience values fall back to English,
// Professional and General.
func Normalize(raw map[string]any, text string) Bundle {
	lines := post.LineCount(text)
	b := Bundle{
		LineCount:      lines,
		Length:         BucketLength(lines),
		Tags:           normalizeTags(raw["tags"]),
		Language:       post.English,
		Tone:           post.Professional,
		TargetAudience: post.General,
	}
	if l := post.Language(stringValue(raw["language"])); l.Valid() {
		b.Language = l
	}
	if t := post.Tone(stringValue(raw["tone"])); t.Valid() {
		b.Tone = t
	}
	if a := post.Audience(stringValue(raw["target_audience"])); a.Valid() {
		b.TargetAudience = a
	}
	return b
}

// Fallback is the bundle used when the classifier could not be reached or
// returned nothing usable.
func Fallback(text string) Bundle {
	lines := post.LineCount(text)
	return Bundle{
		LineCount:      lines,
		Length:         BucketLength(lines),
		Language:       post.English,
		Tags:           []string{"General"},
		Tone:           post.Professional,
		TargetAudience: post.General,
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func normalizeTags(v any) []string {
	var tags []string
	switch t := v.(type) {
	case string:
		tags = []string{t}
	case []string:
		tags = append(tags, t...)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
	}
	if tags == nil {
		tags = []string{}
	}
	if len(tags) > post.MaxTags {
		tags = tags[:post.MaxTags]
	}
	return tags
}

// Map renders b in the same shape the classifier returns, so a bundle can be
// fed back through Normalize.
func (b Bundle) Map() map[string]any {
	tags := make([]any, len(b.Tags))
	for i, t := range b.Tags {
		tags[i] = t
	}
	return map[string]any{
		"line_count":      b.LineCount,
		"language":        string(b.Language),
		"tags":            tags,
		"length":          string(b.Length),
		"tone":            string(b.Tone),
		"target_audience": string(b.TargetAudience),
	}
}

// Record combines b with the post text and engagement.
func (b Bundle) Record(text string, engagement float64) post.Record {
	return post.Record{
		Text:           text,
		Engagement:     engagement,
		LineCount:      b.LineCount,
		Language:       b.Language,
		Tags:           append([]string{}, b.Tags...),
		Length:         b.Length,
		Tone:           b.Tone,
		TargetAudience: b.TargetAudience,
	}
}
