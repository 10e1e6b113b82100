package prompts

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractVariables(t *testing.T) {
	got := ExtractVariables("Topic: {{.Tag}} in {{ .Language }} ({{.Tag}})")
	if diff := cmp.Diff([]string{"Language", "Tag"}, got); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
}

func TestPlaceholders(t *testing.T) {
	text := "Write about {topic} for {audience}, {topic} again, {{.NotThis}}"
	if diff := cmp.Diff([]string{"audience", "topic"}, Placeholders(text)); diff != "" {
		t.Errorf("placeholders mismatch (-want +got):\n%s", diff)
	}

	got := RenderPlaceholders("Write about {topic} in {length}, keep {unknown}", map[string]string{
		"topic":  "AI",
		"length": "1 to 5 lines",
	})
	if want := "Write about AI in 1 to 5 lines, keep {unknown}"; got != want {
		t.Errorf("RenderPlaceholders() = %q, want %q", got, want)
	}
}

func TestStore(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), TemplatesFileName), nil)

	templates, err := s.List()
	if err != nil || len(templates) != 0 {
		t.Fatalf("expected empty list, got %v, %v", templates, err)
	}

	if err := s.Save(SavedTemplate{Name: "", Prompt: "x"}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := s.Save(SavedTemplate{Name: "hook", Description: "v1", Prompt: "Hook about {topic}"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(SavedTemplate{Name: "list", Prompt: "List about {topic}"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(SavedTemplate{Name: "hook", Description: "v2", Prompt: "Better hook about {topic}"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	templates, _ = s.List()
	if len(templates) != 2 || templates[0].Description != "v2" || templates[1].Name != "list" {
		t.Errorf("unexpected templates after replace: %+v", templates)
	}

	got, err := s.Get("list")
	if err != nil || got == nil || got.Prompt != "List about {topic}" {
		t.Errorf("Get() = %+v, %v", got, err)
	}
	if got, _ := s.Get("missing"); got != nil {
		t.Errorf("expected nil for missing template, got %+v", got)
	}

	deleted, err := s.Delete("hook")
	if err != nil || !deleted {
		t.Fatalf("Delete() = %v, %v", deleted, err)
	}
	if deleted, _ := s.Delete("hook"); deleted {
		t.Error("second delete should report nothing removed")
	}
	templates, _ = s.List()
	if len(templates) != 1 {
		t.Errorf("expected 1 template left, got %d", len(templates))
	}
}

func TestResolver(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), TemplatesFileName), nil)
	r := NewResolver(store, nil)
	r.Register(EmbeddedPrompt{Key: "generate.post", Text: "Topic: {{.Tag}}"})

	res, err := r.Resolve("generate.post", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.IsOverride || res.Text != "Topic: {{.Tag}}" || res.Hash != HashText(res.Text) {
		t.Errorf("unexpected embedded resolution: %+v", res)
	}

	if err := store.Save(SavedTemplate{Name: "mine", Prompt: "My take on {topic}"}); err != nil {
		t.Fatal(err)
	}
	res, err = r.Resolve("generate.post", "mine")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.IsOverride || res.Text != "My take on {topic}" {
		t.Errorf("unexpected override resolution: %+v", res)
	}

	if _, err := r.Resolve("generate.post", "nope"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Resolve() of unknown template error = %v, want ErrTemplateNotFound", err)
	}
	if _, err := r.Resolve("unknown", ""); err == nil {
		t.Error("expected error for unknown key")
	}
}
