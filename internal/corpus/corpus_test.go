package corpus

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/postgen/internal/post"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestBucketLength(t *testing.T) {
	tests := []struct {
		lines int
		want  post.Length
	}{
		{1, post.Short},
		{4, post.Short},
		{5, post.Medium},
		{10, post.Medium},
		{11, post.Long},
		{40, post.Long},
	}
	for _, tt := range tests {
		if got := BucketLength(tt.lines); got != tt.want {
			t.Errorf("BucketLength(%d) = %s, want %s", tt.lines, got, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields empty corpus", func(t *testing.T) {
		c, err := Load(filepath.Join(t.TempDir(), "nope.json"), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !c.Empty() {
			t.Errorf("expected empty corpus, got %d records", c.Len())
		}
	})

	t.Run("backfills derived fields", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "posts.json", `[{"text": "a\nb\nc\nd\ne\nf", "tags": "Career"}]`)
		c, err := Load(path, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []post.Record{{
			Text:      "a\nb\nc\nd\ne\nf",
			LineCount: 6,
			Length:    post.Medium,
			Tags:      []string{"Career"},
		}}
		if diff := cmp.Diff(want, c.Records()); diff != "" {
			t.Errorf("records mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("keeps supplied fields", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "posts.json",
			`[{"text": "hi", "engagement": 120, "line_count": 7, "length": "Long", "language": "Hinglish", "tags": ["A", 3, "B"], "extra": true}]`)
		c, err := Load(path, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := c.Records()[0]
		if got.LineCount != 7 || got.Length != post.Long || got.Language != post.Hinglish || got.Engagement != 120 {
			t.Errorf("supplied fields not kept: %+v", got)
		}
		if diff := cmp.Diff([]string{"A", "B"}, got.Tags); diff != "" {
			t.Errorf("tags mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("non-list tags become empty", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "posts.json", `[{"text": "hi", "tags": {"a": 1}}]`)
		c, err := Load(path, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tags := c.Records()[0].Tags; len(tags) != 0 {
			t.Errorf("expected no tags, got %v", tags)
		}
	})

	t.Run("invalid length is recomputed", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "posts.json", `[{"text": "one", "length": "Huge"}]`)
		c, err := Load(path, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l := c.Records()[0].Length; l != post.Short {
			t.Errorf("expected Short, got %s", l)
		}
	})

	formatCases := map[string]string{
		"malformed json": `[{"text": "x"`,
		"bare object":    `{"text": "x"}`,
		"array of ints":  `[1, 2]`,
		"null document":  `null`,
		"padded null":    " null \n",
	}
	for name, content := range formatCases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "posts.json", content)
			_, err := Load(path, nil)
			var fErr *FormatError
			if !errors.As(err, &fErr) {
				t.Fatalf("expected FormatError, got %v", err)
			}
			if fErr.Path != path {
				t.Errorf("expected path %s, got %s", path, fErr.Path)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posts.json")

	orig := New(
		post.Record{Text: "Namaste 🙏\nकैसे हो", Engagement: 42, LineCount: 2, Language: post.Hinglish, Tags: []string{"Greetings"}, Length: post.Short},
		post.Record{Text: "<b>bold</b> & more", LineCount: 1, Language: post.English, Tags: []string{"Career", "Growth"}, Length: post.Short, Tone: post.Casual, TargetAudience: post.Students},
	)
	if err := orig.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "कैसे हो") {
		t.Error("expected non-ASCII text to be written literally")
	}
	if !strings.Contains(string(raw), "<b>bold</b> & more") {
		t.Error("expected HTML characters to be written unescaped")
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(orig.Records(), loaded.Records()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the saved file in dir, found %d entries", len(entries))
	}
}

func TestSave_NoPath(t *testing.T) {
	if err := New().Save(""); err == nil {
		t.Error("expected error when no path is known")
	}
}

func TestMerge(t *testing.T) {
	a := New(
		post.Record{Text: "x", Engagement: 1},
		post.Record{Text: "y"},
	)
	b := New(
		post.Record{Text: "x", Engagement: 99},
		post.Record{Text: "z"},
	)

	merged := Merge(a, b)
	want := []post.Record{
		{Text: "x", Engagement: 1},
		{Text: "y"},
		{Text: "z"},
	}
	if diff := cmp.Diff(want, merged.Records()); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
	if a.Len() != 2 || b.Len() != 2 {
		t.Error("merge must not modify its inputs")
	}
}

func TestUniqueTags(t *testing.T) {
	c := New(
		post.Record{Text: "1", Tags: []string{"Career", "AI"}},
		post.Record{Text: "2", Tags: []string{"AI"}},
		post.Record{Text: "3"},
	)
	if diff := cmp.Diff([]string{"AI", "Career"}, c.UniqueTags()); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	if tags := New().UniqueTags(); len(tags) != 0 {
		t.Errorf("expected no tags for empty corpus, got %v", tags)
	}
}

func TestAdd(t *testing.T) {
	c := New()
	c.Add(post.Record{Text: "a\nb\nc\nd\ne"})
	got := c.Records()[0]
	if got.LineCount != 5 || got.Length != post.Medium {
		t.Errorf("expected backfilled line_count 5 and Medium, got %d %s", got.LineCount, got.Length)
	}
	if got.Tags == nil {
		t.Error("expected empty tag list, got nil")
	}
}

func TestSearchAndEngagement(t *testing.T) {
	c := New(
		post.Record{Text: "Landed my first Internship", Engagement: 10},
		post.Record{Text: "Shipping code", Engagement: 500},
	)
	if got := c.Search("internship"); len(got) != 1 || got[0].Engagement != 10 {
		t.Errorf("unexpected search result: %+v", got)
	}
	if got := c.ByEngagement(100, 1000); len(got) != 1 || got[0].Text != "Shipping code" {
		t.Errorf("unexpected engagement result: %+v", got)
	}
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid dataset", func(t *testing.T) {
		path := writeFile(t, dir, "ok.json", `[{"text": "hello", "engagement": 42.5, "tags": ["A"], "line_count": 1, "language": "English"}]`)
		n, err := ValidateFile(path, nil)
		if err != nil || n != 1 {
			t.Errorf("expected 1 post and no error, got %d, %v", n, err)
		}
	})

	t.Run("empty array is valid", func(t *testing.T) {
		path := writeFile(t, dir, "empty.json", `[]`)
		n, err := ValidateFile(path, nil)
		if err != nil || n != 0 {
			t.Errorf("expected 0 posts and no error, got %d, %v", n, err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ValidateFile(filepath.Join(dir, "missing.json"), nil)
		var nf *NotFoundError
		if !errors.As(err, &nf) || !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})

	for name, content := range map[string]string{"obj.json": `{"text": "x"}`, "null.json": `null`} {
		t.Run("not a list "+name, func(t *testing.T) {
			path := writeFile(t, dir, name, content)
			_, err := ValidateFile(path, nil)
			var fErr *FormatError
			if !errors.As(err, &fErr) {
				t.Errorf("expected FormatError, got %v", err)
			}
			if _, err := Load(path, nil); !errors.As(err, &fErr) {
				t.Errorf("Load should agree with ValidateFile, got %v", err)
			}
		})
	}

	invalid := []struct {
		name    string
		content string
		index   int
		field   string
	}{
		{"missing text", `[{"text": "ok"}, {"tags": []}]`, 1, "text"},
		{"blank text", `[{"text": "ok"}, {"text": "ok"}, {"text": "   "}]`, 2, "text"},
		{"tags not a list", `[{"text": "ok", "tags": "Career"}]`, 0, "tags"},
		{"zero line count", `[{"text": "ok", "line_count": 0}]`, 0, "line_count"},
		{"fractional line count", `[{"text": "ok", "line_count": 2.5}]`, 0, "line_count"},
		{"unknown language", `[{"text": "ok", "language": "French"}]`, 0, "language"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".json", tt.content)
			_, err := ValidateFile(path, nil)
			var vErr *post.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Index != tt.index || vErr.Field != tt.field {
				t.Errorf("expected index %d field %q, got index %d field %q (%v)", tt.index, tt.field, vErr.Index, vErr.Field, vErr)
			}
		})
	}
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "posts.json", `[{"text": "x"}]`)
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	dest, err := Backup(path, filepath.Join(dir, "backups"), now)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if filepath.Base(dest) != "posts.json.backup_20240309_140507" {
		t.Errorf("unexpected backup name %s", filepath.Base(dest))
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != `[{"text": "x"}]` {
		t.Errorf("backup content mismatch: %q, %v", data, err)
	}

	if _, err := Backup(filepath.Join(dir, "missing.json"), "", now); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestStats(t *testing.T) {
	c := New(
		post.Record{Text: "a", Engagement: 10, Language: post.English, Length: post.Short, Tags: []string{"AI", "Jobs"}, Tone: post.Casual, TargetAudience: post.Students},
		post.Record{Text: "b", Engagement: 30, Language: post.Hinglish, Length: post.Short, Tags: []string{"AI"}},
	)
	got := c.Stats()
	want := Stats{
		TotalPosts:    2,
		Languages:     map[string]int{"English": 1, "Hinglish": 1},
		Lengths:       map[string]int{"Short": 2},
		Tones:         map[string]int{"Casual": 1, "Unknown": 1},
		Audiences:     map[string]int{"Students": 1, "Unknown": 1},
		TotalTags:     2,
		AvgEngagement: 20,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}
	if n := len(c.Processed()); n != 2 {
		t.Errorf("expected 2 processed records, got %d", n)
	}
	if s := New().Stats(); s.AvgEngagement != 0 || s.TotalPosts != 0 {
		t.Errorf("empty corpus stats = %+v", s)
	}
}
