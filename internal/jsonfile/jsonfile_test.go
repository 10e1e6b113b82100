package jsonfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")
	in := map[string]string{"greeting": "नमस्ते <friend> & co"}

	if err := Write(path, in); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "नमस्ते <friend> & co") {
		t.Errorf("expected literal text, got %s", raw)
	}
	if !strings.Contains(string(raw), "\n"+Indent+`"greeting"`) {
		t.Errorf("expected %q indentation, got %s", Indent, raw)
	}

	var out map[string]string
	found, err := Read(path, &out)
	if err != nil || !found {
		t.Fatalf("Read() = %v, %v", found, err)
	}
	if out["greeting"] != in["greeting"] {
		t.Errorf("round trip mismatch: %v", out)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected no temp files left behind, found %d entries", len(entries))
	}
}

func TestRead_Missing(t *testing.T) {
	var out []string
	found, err := Read(filepath.Join(t.TempDir(), "missing.json"), &out)
	if err != nil || found {
		t.Errorf("expected not found without error, got %v, %v", found, err)
	}
}

func TestRead_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if _, err := Read(path, &out); err == nil {
		t.Error("expected decode error")
	}
}
