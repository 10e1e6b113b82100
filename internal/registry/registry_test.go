package registry

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const (
	processedDoc = `[{"text": "Hello", "tags": ["AI"], "length": "Short", "language": "English"}]`
	rawDoc       = `[{"text": "Hello", "engagement": 3}]`
)

func setup(t *testing.T, files map[string]string) *Registry {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return New(dir, nil)
}

func TestIsProcessed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"processed", processedDoc, true},
		{"no tags", rawDoc, false},
		{"empty tags", `[{"text": "a", "tags": []}]`, false},
		{"string tags", `[{"text": "a", "tags": "AI"}]`, false},
		{"no text", `[{"tags": ["AI"]}]`, false},
		{"empty list", `[]`, false},
		{"object", `{"text": "a", "tags": ["AI"]}`, false},
		{"malformed", `[{`, false},
		{"only first record counts", `[{"text": "a"}, {"text": "b", "tags": ["AI"]}]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "d.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if got := IsProcessed(path); got != tt.want {
				t.Errorf("IsProcessed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScan(t *testing.T) {
	r := setup(t, map[string]string{
		"processed_raw_tech_students.json":          processedDoc,
		"raw_tech_students.json":                    rawDoc,
		"processed_raw_tech_students_metadata.json": `{"total_posts": 1}`,
		"generated_posts_history.json":              `[]`,
		"dataset_mappings.json":                     `{}`,
		"prompt_templates.json":                     `[]`,
		"analytics_report.json":                     `{}`,
		"chat_history.json":                         `[]`,
		"notes.txt":                                 "x",
	})

	processed, err := r.Processed()
	if err != nil {
		t.Fatalf("Processed() error = %v", err)
	}
	raw, err := r.Raw()
	if err != nil {
		t.Fatalf("Raw() error = %v", err)
	}

	wantProcessed := []Dataset{{Name: "Tech Students", Path: r.Path("processed_raw_tech_students.json"), File: "processed_raw_tech_students.json", Processed: true}}
	wantRaw := []Dataset{{Name: "Tech Students (Raw)", Path: r.Path("raw_tech_students.json"), File: "raw_tech_students.json"}}
	if diff := cmp.Diff(wantProcessed, processed); diff != "" {
		t.Errorf("Processed() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantRaw, raw); diff != "" {
		t.Errorf("Raw() mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_MissingDir(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "nope"), nil)
	got, err := r.Scan()
	if err != nil || len(got) != 0 {
		t.Fatalf("Scan() = %v, %v; want empty, nil", got, err)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		file string
		raw  bool
		want string
	}{
		{"raw_tech_students.json", true, "Tech Students (Raw)"},
		{"raw_tech_students.json", false, "Tech Students"},
		{"processed_raw_tech_students.json", false, "Tech Students"},
		{"processed_something.json", false, "Something"},
		{"processed_posts.json", false, "Posts"},
		{"college_student_posts.json", false, "College Student Journey"},
		{"sample_raw_dataset.json", true, "Sample Dataset (Raw)"},
		{"sample_raw_dataset.json", false, "Sample Dataset"},
		{"my_posts.json", false, "My Posts"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.file, tt.raw); got != tt.want {
			t.Errorf("DisplayName(%q, %v) = %q, want %q", tt.file, tt.raw, got, tt.want)
		}
	}
}

func TestCurrent(t *testing.T) {
	r := setup(t, map[string]string{
		"b_processed.json": processedDoc,
		"a_raw.json":       rawDoc,
		"c_processed.json": processedDoc,
	})

	if got, want := r.Current(), r.Path("b_processed.json"); got != want {
		t.Errorf("Current() = %q, want first processed %q", got, want)
	}

	r.SetCurrent(r.Path("c_processed.json"))
	r.SetCurrent(r.Path("a_raw.json"))
	if got, want := r.Current(), r.Path("a_raw.json"); got != want {
		t.Errorf("Current() = %q, want last set %q", got, want)
	}

	r.SetCurrent("")
	if got, want := r.Current(), r.Path("b_processed.json"); got != want {
		t.Errorf("Current() after clearing = %q, want first processed %q", got, want)
	}
}

func TestCurrent_Default(t *testing.T) {
	r := setup(t, map[string]string{"raw_x.json": rawDoc})
	if got, want := r.Current(), r.Path(DefaultDataset); got != want {
		t.Errorf("Current() = %q, want %q", got, want)
	}
	if got := r.CurrentName(); got != "Processed Posts" {
		t.Errorf("CurrentName() = %q", got)
	}
}

func TestSetDefaultDataset(t *testing.T) {
	r := setup(t, nil)
	r.SetDefaultDataset("")
	r.SetDefaultDataset("college_student_posts.json")
	if got, want := r.Current(), r.Path("college_student_posts.json"); got != want {
		t.Errorf("Current() = %q, want %q", got, want)
	}
	if got := r.CurrentName(); got != "College Student Posts" {
		t.Errorf("CurrentName() = %q", got)
	}
}

func TestCurrent_NotInvalidatedByDelete(t *testing.T) {
	r := setup(t, map[string]string{"processed_a.json": processedDoc})
	path := r.Current()
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if r.Current() != path {
		t.Error("current dataset should not change when its file disappears")
	}
	if r.Exists(path) {
		t.Error("Exists() should report the deleted file as missing")
	}
}

func TestRemove(t *testing.T) {
	r := setup(t, map[string]string{
		"processed_a.json":          processedDoc,
		"processed_a_metadata.json": `{}`,
		"processed_b.json":          processedDoc,
	})
	r.SetCurrent(r.Path("processed_a.json"))

	if err := r.Remove(r.Path("processed_a.json")); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if got, want := r.Current(), r.Path("processed_b.json"); got != want {
		t.Errorf("Current() after remove = %q, want %q", got, want)
	}
	if r.Exists(r.Path("processed_a_metadata.json")) {
		t.Error("metadata sidecar should be removed with its dataset")
	}

	err := r.Remove(r.Path("processed_a.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Remove() of missing dataset error = %v, want not-exist", err)
	}
}

func TestSetDisplayName(t *testing.T) {
	r := setup(t, map[string]string{"processed_raw_x.json": processedDoc})
	if err := r.SetDisplayName(r.Path("processed_raw_x.json"), "Campus Life"); err != nil {
		t.Fatalf("SetDisplayName() error = %v", err)
	}
	r.SetCurrent(r.Path("processed_raw_x.json"))
	if got := r.CurrentName(); got != "Campus Life" {
		t.Errorf("CurrentName() = %q, want mapped name", got)
	}
}

func TestStats(t *testing.T) {
	r := setup(t, map[string]string{"processed_a.json": processedDoc})
	s, err := r.Stats(r.Path("processed_a.json"))
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if s.TotalPosts != 1 || s.Languages["English"] != 1 {
		t.Errorf("unexpected stats: %+v", s)
	}
	if _, err := r.Stats(r.Path("missing.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stats() of missing dataset error = %v", err)
	}
}

func TestResolve(t *testing.T) {
	r := setup(t, map[string]string{"processed_a.json": processedDoc})

	tests := []struct {
		arg  string
		want string
	}{
		{"", r.Path("processed_a.json")},
		{"processed_b.json", r.Path("processed_b.json")},
		{"/srv/data/../x.json", "/srv/x.json"},
		{"data/x.json", filepath.Join("data", "x.json")},
	}
	for _, tt := range tests {
		if got := r.Resolve(tt.arg); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.arg, got, tt.want)
		}
	}
}
