package fewshot

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/postgen/internal/corpus"
	"github.com/jackzampolin/postgen/internal/post"
)

func testCorpus() *corpus.Corpus {
	return corpus.New(
		post.Record{Text: "first", Language: post.English, Length: post.Short, Tags: []string{"Career"}},
		post.Record{Text: "wrong case", Language: post.English, Length: post.Short, Tags: []string{"career"}},
		post.Record{Text: "hinglish", Language: post.Hinglish, Length: post.Short, Tags: []string{"Career"}},
		post.Record{Text: "medium", Language: post.English, Length: post.Medium, Tags: []string{"Career"}},
		post.Record{Text: "second", Language: post.English, Length: post.Short, Tags: []string{"Growth", "Career"}},
		post.Record{Text: "third", Language: post.English, Length: post.Short, Tags: []string{"Career"}},
		post.Record{Text: "raw", Length: post.Short, Tags: []string{"Career"}},
	)
}

func texts(records []post.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Text
	}
	return out
}

func TestSelect(t *testing.T) {
	c := testCorpus()

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{
			name:  "all predicates in corpus order",
			query: Query{Length: post.Short, Language: post.English, Tag: "Career"},
			want:  []string{"first", "second", "third"},
		},
		{
			name:  "tag match is case sensitive",
			query: Query{Length: post.Short, Language: post.English, Tag: "career"},
			want:  []string{"wrong case"},
		},
		{
			name:  "language filters",
			query: Query{Length: post.Short, Language: post.Hinglish, Tag: "Career"},
			want:  []string{"hinglish"},
		},
		{
			name:  "length filters",
			query: Query{Length: post.Medium, Language: post.English, Tag: "Career"},
			want:  []string{"medium"},
		},
		{
			name:  "no partial tag matches",
			query: Query{Length: post.Short, Language: post.English, Tag: "Care"},
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(Select(c, tt.query))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("selection mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExamples_Limit(t *testing.T) {
	q := Query{Length: post.Short, Language: post.English, Tag: "Career"}
	got := texts(Examples(testCorpus(), q, DefaultMaxExamples))
	if diff := cmp.Diff([]string{"first", "second"}, got); diff != "" {
		t.Errorf("examples mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_DoesNotMutateCorpus(t *testing.T) {
	c := testCorpus()
	q := Query{Length: post.Short, Language: post.English, Tag: "Career"}

	got := Select(c, q)
	got[0].Tags[0] = "Mutated"
	got[0].Text = "changed"

	again := Select(c, q)
	if again[0].Text != "first" || again[0].Tags[0] != "Career" {
		t.Errorf("corpus was mutated through selection result: %+v", again[0])
	}
}

func TestSelect_EmptyCorpus(t *testing.T) {
	if got := Select(corpus.New(), Query{Tag: "x"}); len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
	if got := Select(nil, Query{Tag: "x"}); len(got) != 0 {
		t.Errorf("expected no matches for nil corpus, got %d", len(got))
	}
}

func TestSelect_SkipsRawRecords(t *testing.T) {
	records, err := corpus.Decode([]byte(`[
		{"text": "", "tags": ["AI"], "language": "English"},
		{"text": "no lang", "tags": ["AI"]},
		{"text": "untagged", "language": "English"},
		{"text": "ready", "tags": ["AI"], "language": "English"}
	]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	c := corpus.New(records...)

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"empty text and untagged excluded", Query{Length: post.Short, Language: post.English, Tag: "AI"}, []string{"ready"}},
		{"missing language never matches empty query", Query{Length: post.Short, Tag: "AI"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(Select(c, tt.query))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("selection mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
