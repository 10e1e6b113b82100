package prompts

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jackzampolin/postgen/internal/jsonfile"
)

// TemplatesFileName is the saved-template document inside the data directory.
const TemplatesFileName = "prompt_templates.json"

// Store persists user-authored templates as a JSON array.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewStore creates a store backed by the document at path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the backing document path.
func (s *Store) Path() string {
	return s.path
}

// List returns all saved templates in the order they were created.
func (s *Store) List() ([]SavedTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]SavedTemplate, error) {
	var templates []SavedTemplate
	if _, err := jsonfile.Read(s.path, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Get returns the template named name, or nil if there is none.
func (s *Store) Get(name string) (*SavedTemplate, error) {
	templates, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range templates {
		if templates[i].Name == name {
			return &templates[i], nil
		}
	}
	return nil, nil
}

// Save adds t, replacing any template with the same name. Name and prompt are
// required.
func (s *Store) Save(t SavedTemplate) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" || strings.TrimSpace(t.Prompt) == "" {
		return fmt.Errorf("template name and prompt are required")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range templates {
		if templates[i].Name == t.Name {
			templates[i] = t
			replaced = true
		}
	}
	if !replaced {
		templates = append(templates, t)
	}
	if err := jsonfile.Write(s.path, templates); err != nil {
		return err
	}
	s.logger.Info("saved prompt template", "name", t.Name, "replaced", replaced)
	return nil
}

// Delete removes the template named name. It reports whether one existed.
func (s *Store) Delete(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.load()
	if err != nil {
		return false, err
	}
	kept := templates[:0]
	for _, t := range templates {
		if t.Name != name {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(templates) {
		return false, nil
	}
	if err := jsonfile.Write(s.path, kept); err != nil {
		return false, err
	}
	return true, nil
}
