package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/postgen/internal/registry"
)

func TestResolveDataset(t *testing.T) {
	dataDir := t.TempDir()
	outside := filepath.Join(t.TempDir(), "raw_export.json")
	if err := os.WriteFile(outside, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}
	reg := registry.New(dataDir, nil)

	tests := []struct {
		name string
		arg  string
		want string
	}{
		{"existing file is used as given", outside, outside},
		{"bare name resolves into the data dir", "processed_posts.json", filepath.Join(dataDir, "processed_posts.json")},
		{"missing path is cleaned, not rebased", "/nowhere/../postgen-missing/x.json", "/postgen-missing/x.json"},
		{"empty selects the default dataset", "", filepath.Join(dataDir, registry.DefaultDataset)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveDataset(reg, tt.arg); got != tt.want {
				t.Errorf("resolveDataset(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestFirstArg(t *testing.T) {
	if got := firstArg(nil); got != "" {
		t.Errorf("firstArg(nil) = %q", got)
	}
	if got := firstArg([]string{"a.json", "b.json"}); got != "a.json" {
		t.Errorf("firstArg = %q", got)
	}
}
