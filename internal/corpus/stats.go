package corpus

import "github.com/jackzampolin/postgen/internal/post"

// Stats summarizes a corpus for display.
type Stats struct {
	TotalPosts    int            `json:"total_posts"`
	Languages     map[string]int `json:"languages"`
	Lengths       map[string]int `json:"lengths"`
	Tones         map[string]int `json:"tones"`
	Audiences     map[string]int `json:"audiences"`
	TotalTags     int            `json:"total_tags"`
	AvgEngagement float64        `json:"avg_engagement"`
}

const unknown = "Unknown"

// Stats computes distribution counts over all records. Empty fields are
// counted as "Unknown".
func (c *Corpus) Stats() Stats {
	s := Stats{
		TotalPosts: len(c.records),
		Languages:  map[string]int{},
		Lengths:    map[string]int{},
		Tones:      map[string]int{},
		Audiences:  map[string]int{},
		TotalTags:  len(c.UniqueTags()),
	}
	var engagement float64
	for _, r := range c.records {
		s.Languages[orUnknown(string(r.Language))]++
		s.Lengths[orUnknown(string(r.Length))]++
		s.Tones[orUnknown(string(r.Tone))]++
		s.Audiences[orUnknown(string(r.TargetAudience))]++
		engagement += r.Engagement
	}
	if len(c.records) > 0 {
		s.AvgEngagement = engagement / float64(len(c.records))
	}
	return s
}

// Processed returns the records usable as few-shot examples.
func (c *Corpus) Processed() []post.Record {
	var out []post.Record
	for _, r := range c.records {
		if r.IsProcessed() {
			out = append(out, r.Clone())
		}
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
