// Package post defines the normalized schema for a single annotated social post.
//
// A Record is "processed" (usable as a few-shot example) when it has text, at
// least one tag, and a valid length and language. Anything else is raw and is
// never returned by example selection.
package post

import (
	"slices"
	"strings"
)

// MaxTags is the maximum number of tags kept on a processed record.
const MaxTags = 4

// Length is the size bucket of a post, derived from its line count.
type Length string

const (
	Short  Length = "Short"
	Medium Length = "Medium"
	Long   Length = "Long"
)

// Lengths lists the valid length buckets in display order.
var Lengths = []Length{Short, Medium, Long}

// Valid reports whether l is one of the known buckets.
func (l Length) Valid() bool {
	return slices.Contains(Lengths, l)
}

// Language is the language a post is written in.
type Language string

const (
	English  Language = "English"
	Hinglish Language = "Hinglish" // Hindi and English mixed, Latin script
)

// Languages lists the valid languages.
var Languages = []Language{English, Hinglish}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return slices.Contains(Languages, l)
}

// Tone is the writing register of a post.
type Tone string

const (
	Professional  Tone = "Professional"
	Casual        Tone = "Casual"
	Humorous      Tone = "Humorous"
	Inspirational Tone = "Inspirational"
	Educational   Tone = "Educational"
)

// Tones lists the valid tones.
var Tones = []Tone{Professional, Casual, Humorous, Inspirational, Educational}

// Valid reports whether t is a known tone.
func (t Tone) Valid() bool {
	return slices.Contains(Tones, t)
}

// Audience is who a post is written for.
type Audience string

const (
	Students      Audience = "Students"
	Professionals Audience = "Professionals"
	JobSeekers    Audience = "Job Seekers"
	Entrepreneurs Audience = "Entrepreneurs"
	General       Audience = "General"
)

// Audiences lists the valid target audiences.
var Audiences = []Audience{Students, Professionals, JobSeekers, Entrepreneurs, General}

// Valid reports whether a is a known audience.
func (a Audience) Valid() bool {
	return slices.Contains(Audiences, a)
}

// Record is one post in a corpus document.
//
// Language, Tone and TargetAudience are stored exactly as read; raw records may
// leave them empty. Use annotate.Normalize to produce a fully valid bundle.
type Record struct {
	Text           string   `json:"text"`
	Engagement     float64  `json:"engagement"`
	LineCount      int      `json:"line_count"`
	Language       Language `json:"language,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Length         Length   `json:"length"`
	Tone           Tone     `json:"tone,omitempty"`
	TargetAudience Audience `json:"target_audience,omitempty"`
}

// LineCount counts newline-separated segments. Empty text counts as one line.
func LineCount(text string) int {
	return strings.Count(text, "\n") + 1
}

// IsProcessed reports whether r can be used as a few-shot example.
func (r Record) IsProcessed() bool {
	return r.Text != "" && len(r.Tags) > 0 && r.Length.Valid() && r.Language.Valid()
}

// HasTag reports whether tag is literally present in r.Tags.
func (r Record) HasTag(tag string) bool {
	return slices.Contains(r.Tags, tag)
}

// Clone returns a copy of r that shares no memory with it.
func (r Record) Clone() Record {
	r.Tags = slices.Clone(r.Tags)
	return r
}

// Validate checks r against the strict field rules. It never coerces.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return &ValidationError{Index: -1, Field: "text", Reason: "cannot be empty"}
	}
	if r.Engagement < 0 {
		return &ValidationError{Index: -1, Field: "engagement", Reason: "must be non-negative"}
	}
	if r.LineCount < 0 {
		return &ValidationError{Index: -1, Field: "line_count", Reason: "cannot be negative"}
	}
	if r.Language != "" && !r.Language.Valid() {
		return &ValidationError{Index: -1, Field: "language", Reason: "must be 'English' or 'Hinglish'"}
	}
	if r.Length != "" && !r.Length.Valid() {
		return &ValidationError{Index: -1, Field: "length", Reason: "must be 'Short', 'Medium', or 'Long'"}
	}
	if r.Tone != "" && !r.Tone.Valid() {
		return &ValidationError{Index: -1, Field: "tone", Reason: "unknown tone " + string(r.Tone)}
	}
	if r.TargetAudience != "" && !r.TargetAudience.Valid() {
		return &ValidationError{Index: -1, Field: "target_audience", Reason: "unknown audience " + string(r.TargetAudience)}
	}
	if len(r.Tags) > MaxTags {
		return &ValidationError{Index: -1, Field: "tags", Reason: "at most 4 tags are allowed"}
	}
	return nil
}
