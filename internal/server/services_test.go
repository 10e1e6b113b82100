package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/postgen/internal/home"
	"github.com/jackzampolin/postgen/internal/prompts"
	"github.com/jackzampolin/postgen/internal/registry"
)

func TestBuildServices_Defaults(t *testing.T) {
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	svc, err := BuildServices(ServicesConfig{Home: h})
	if err != nil {
		t.Fatalf("BuildServices() error = %v", err)
	}
	if svc.Providers == nil || svc.Processor == nil || svc.Generator == nil || svc.Resolver == nil {
		t.Fatalf("BuildServices() left a service nil: %+v", svc)
	}
	if got, want := svc.Datasets.DataDir(), h.DataPath(); got != want {
		t.Errorf("DataDir() = %q, want %q", got, want)
	}
	if got, want := svc.Templates.Path(), filepath.Join(h.DataPath(), prompts.TemplatesFileName); got != want {
		t.Errorf("Templates.Path() = %q, want %q", got, want)
	}
	if got, want := svc.Datasets.Current(), filepath.Join(h.DataPath(), registry.DefaultDataset); got != want {
		t.Errorf("Current() = %q, want %q", got, want)
	}
	if _, err := os.Stat(h.DataPath()); err != nil {
		t.Errorf("data directory was not created: %v", err)
	}
}
