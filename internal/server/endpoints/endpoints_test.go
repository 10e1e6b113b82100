package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/postgen/internal/annotate"
	"github.com/jackzampolin/postgen/internal/api"
	"github.com/jackzampolin/postgen/internal/corpus"
	"github.com/jackzampolin/postgen/internal/generator"
	"github.com/jackzampolin/postgen/internal/history"
	"github.com/jackzampolin/postgen/internal/processor"
	"github.com/jackzampolin/postgen/internal/prompts"
	"github.com/jackzampolin/postgen/internal/prompts/generate"
	"github.com/jackzampolin/postgen/internal/providers"
	"github.com/jackzampolin/postgen/internal/registry"
	"github.com/jackzampolin/postgen/internal/svcctx"
)

const careerDoc = `[
  {"text": "Landed my first job", "engagement": 10, "line_count": 1, "language": "English", "tags": ["Career"], "length": "Short"},
  {"text": "Promotion day", "engagement": 20, "line_count": 1, "language": "English", "tags": ["Career", "Growth"], "length": "Short"},
  {"text": "Third career story", "engagement": 30, "line_count": 1, "language": "English", "tags": ["Career"], "length": "Short"}
]`

type testEnv struct {
	handler http.Handler
	dir     string
	mock    *providers.MockClient
	svcs    *svcctx.Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "processed_career.json"), []byte(careerDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	datasets := registry.New(dir, nil)
	classifier := annotate.ClassifierFunc(func(ctx context.Context, text string) (map[string]any, error) {
		return map[string]any{"tags": []any{"AI"}, "language": "English", "tone": "Casual"}, nil
	})
	store := prompts.NewStore(filepath.Join(dir, prompts.TemplatesFileName), nil)
	resolver := prompts.NewResolver(store, nil)
	generate.RegisterPrompts(resolver)
	mock := providers.NewMockClient()
	mock.ResponseText = "A freshly generated post about careers."

	svcs := &svcctx.Services{
		Providers: providers.NewRegistry(),
		Datasets:  datasets,
		Processor: processor.New(processor.Config{Classifier: classifier, Registry: datasets}),
		Generator: generator.New(generator.Config{Client: mock, Resolver: resolver, Attempts: 1, Delay: time.Millisecond}),
		Templates: store,
		Resolver:  resolver,
	}

	reg := api.NewRegistry()
	for _, ep := range All() {
		reg.Register(ep)
	}
	mux := http.NewServeMux()
	reg.RegisterRoutes(mux, func(h http.HandlerFunc) http.HandlerFunc { return h }, nil)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(svcctx.WithServices(r.Context(), svcs)))
	})
	return &testEnv{handler: handler, dir: dir, mock: mock, svcs: svcs}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decoding %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

func TestHealthAndStatus(t *testing.T) {
	env := newTestEnv(t)

	var health HealthResponse
	if code := env.do(t, "GET", "/health", nil, &health); code != http.StatusOK || health.Status != "ok" {
		t.Errorf("GET /health = %d %+v", code, health)
	}

	var status StatusResponse
	if code := env.do(t, "GET", "/status", nil, &status); code != http.StatusOK {
		t.Fatalf("GET /status = %d", code)
	}
	if status.DataDir != env.dir || !status.Dataset.Exists || status.Dataset.Name != "Career" {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestDatasets(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(filepath.Join(env.dir, "raw_notes.json"), []byte(`[{"text": "hi", "engagement": 1}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	var list DatasetsResponse
	if code := env.do(t, "GET", "/datasets", nil, &list); code != http.StatusOK {
		t.Fatalf("GET /datasets = %d", code)
	}
	if len(list.Processed) != 1 || list.Processed[0].File != "processed_career.json" {
		t.Errorf("processed = %+v", list.Processed)
	}
	if len(list.Raw) != 1 || list.Raw[0].Name != "Notes (Raw)" {
		t.Errorf("raw = %+v", list.Raw)
	}
	if list.Current != filepath.Join(env.dir, "processed_career.json") {
		t.Errorf("current = %q", list.Current)
	}

	if code := env.do(t, "PUT", "/datasets/current", PathRequest{Path: "missing.json"}, nil); code != http.StatusNotFound {
		t.Errorf("PUT missing current = %d, want 404", code)
	}
	var current CurrentDatasetResponse
	if code := env.do(t, "PUT", "/datasets/current", PathRequest{Path: "raw_notes.json"}, &current); code != http.StatusOK {
		t.Fatalf("PUT current = %d", code)
	}
	if current.Path != filepath.Join(env.dir, "raw_notes.json") || !current.Exists {
		t.Errorf("current = %+v", current)
	}
}

func TestValidateAndStats(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(filepath.Join(env.dir, "broken.json"), []byte(`{"text": "not a list"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var valid ValidateResponse
	if code := env.do(t, "POST", "/datasets/validate", PathRequest{}, &valid); code != http.StatusOK || !valid.Valid || valid.Records != 3 {
		t.Errorf("validate current = %d %+v", code, valid)
	}

	var errResp ErrorResponse
	if code := env.do(t, "POST", "/datasets/validate", PathRequest{Path: "broken.json"}, &errResp); code != http.StatusUnprocessableEntity {
		t.Errorf("validate broken = %d, want 422", code)
	}
	if code := env.do(t, "POST", "/datasets/validate", PathRequest{Path: "nope.json"}, nil); code != http.StatusNotFound {
		t.Errorf("validate missing = %d, want 404", code)
	}

	var stats corpus.Stats
	if code := env.do(t, "GET", "/datasets/stats", nil, &stats); code != http.StatusOK {
		t.Fatalf("GET /datasets/stats = %d", code)
	}
	if stats.TotalPosts != 3 || stats.AvgEngagement != 20 || stats.Lengths["Short"] != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDeleteDataset(t *testing.T) {
	env := newTestEnv(t)

	if code := env.do(t, "DELETE", "/datasets/dataset_mappings.json", nil, nil); code != http.StatusBadRequest {
		t.Errorf("DELETE reserved = %d, want 400", code)
	}
	if code := env.do(t, "DELETE", "/datasets/other.json", nil, nil); code != http.StatusNotFound {
		t.Errorf("DELETE missing = %d, want 404", code)
	}

	var resp RemoveResponse
	if code := env.do(t, "DELETE", "/datasets/processed_career.json", nil, &resp); code != http.StatusOK {
		t.Fatalf("DELETE = %d", code)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "processed_career.json")); !errors.Is(err, os.ErrNotExist) {
		t.Error("dataset file still exists")
	}
	if resp.Current != filepath.Join(env.dir, registry.DefaultDataset) {
		t.Errorf("current after delete = %q", resp.Current)
	}
}

func TestUploadDataset(t *testing.T) {
	env := newTestEnv(t)

	req := UploadRequest{
		Name:        "weekly",
		DisplayName: "Weekly Wins",
		Posts:       json.RawMessage(`[{"text": "one\ntwo", "engagement": 4}, {"text": ""}]`),
		AutoSwitch:  true,
	}
	var result processor.UploadResult
	if code := env.do(t, "POST", "/datasets/upload", req, &result); code != http.StatusOK {
		t.Fatalf("upload = %d", code)
	}
	if result.TotalPosts != 2 || result.ProcessedPosts != 1 {
		t.Errorf("result = %+v", result)
	}
	if result.ProcessedPath != filepath.Join(env.dir, "processed_raw_weekly.json") {
		t.Errorf("processed path = %q", result.ProcessedPath)
	}
	if got := env.svcs.Datasets.Current(); got != result.ProcessedPath {
		t.Errorf("current = %q, want auto-switched", got)
	}
	if got := env.svcs.Datasets.CurrentName(); got != "Weekly Wins" {
		t.Errorf("current name = %q", got)
	}

	bad := UploadRequest{Name: "obj", Posts: json.RawMessage(`{"text": "a"}`)}
	if code := env.do(t, "POST", "/datasets/upload", bad, nil); code != http.StatusUnprocessableEntity {
		t.Errorf("upload object = %d, want 422", code)
	}
	bad = UploadRequest{Name: "../escape", Posts: json.RawMessage(`[]`)}
	if code := env.do(t, "POST", "/datasets/upload", bad, nil); code != http.StatusBadRequest {
		t.Errorf("upload bad name = %d, want 400", code)
	}
	if code := env.do(t, "POST", "/datasets/upload", UploadRequest{Name: "empty"}, nil); code != http.StatusBadRequest {
		t.Errorf("upload without posts = %d, want 400", code)
	}
	for _, body := range []any{
		map[string]any{"name": "nulls", "posts": nil},
		map[string]any{"name": "nulls"},
	} {
		if code := env.do(t, "POST", "/datasets/upload", body, nil); code != http.StatusBadRequest {
			t.Errorf("upload %v = %d, want 400", body, code)
		}
	}
}

func TestExamplesAndTags(t *testing.T) {
	env := newTestEnv(t)

	var examples ExamplesResponse
	code := env.do(t, "GET", "/examples?length=Short&language=English&tag=Career&limit=2", nil, &examples)
	if code != http.StatusOK {
		t.Fatalf("GET /examples = %d", code)
	}
	if examples.Count != 2 || examples.Examples[0].Text != "Landed my first job" || examples.Examples[1].Text != "Promotion day" {
		t.Errorf("examples = %+v", examples)
	}

	examples = ExamplesResponse{}
	env.do(t, "GET", "/examples?length=Long&language=English&tag=Career", nil, &examples)
	if examples.Count != 0 || examples.Examples == nil {
		t.Errorf("expected an empty, non-null list: %+v", examples)
	}

	if code := env.do(t, "GET", "/examples?length=Huge&language=English&tag=Career", nil, nil); code != http.StatusBadRequest {
		t.Errorf("invalid length = %d, want 400", code)
	}
	if code := env.do(t, "GET", "/examples?length=Short&language=English&tag=Career&limit=x", nil, nil); code != http.StatusBadRequest {
		t.Errorf("invalid limit = %d, want 400", code)
	}

	var tags TagsResponse
	if code := env.do(t, "GET", "/tags", nil, &tags); code != http.StatusOK {
		t.Fatalf("GET /tags = %d", code)
	}
	if strings.Join(tags.Tags, ",") != "Career,Growth" {
		t.Errorf("tags = %v", tags.Tags)
	}
}

func TestGenerate(t *testing.T) {
	env := newTestEnv(t)
	req := GenerateRequest{Request: generator.Request{Length: "Short", Language: "English", Tag: "Career"}}

	req.DryRun = true
	var dry GenerateResponse
	if code := env.do(t, "POST", "/generate", req, &dry); code != http.StatusOK {
		t.Fatalf("dry run = %d", code)
	}
	if dry.Content != "" || dry.Prompt == nil || len(dry.Prompt.Examples) != 2 {
		t.Errorf("dry run response = %+v", dry)
	}
	if env.mock.RequestCount() != 0 {
		t.Error("dry run called the model")
	}

	req.DryRun = false
	var resp GenerateResponse
	if code := env.do(t, "POST", "/generate", req, &resp); code != http.StatusOK {
		t.Fatalf("generate = %d", code)
	}
	if resp.Content != env.mock.ResponseText || resp.Provider != providers.MockClientName || resp.HistoryID == "" {
		t.Errorf("generate response = %+v", resp)
	}

	entries, err := history.Load(filepath.Join(env.dir, history.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ID != resp.HistoryID || entries[0].Metadata["tag"] != "Career" {
		t.Errorf("history = %+v", entries)
	}

	var hist HistoryResponse
	if code := env.do(t, "GET", "/history?limit=5", nil, &hist); code != http.StatusOK || len(hist.Entries) != 1 {
		t.Errorf("GET /history = %d %+v", code, hist)
	}

	if code := env.do(t, "POST", "/generate", GenerateRequest{Request: generator.Request{Length: "Tiny", Language: "English"}}, nil); code != http.StatusBadRequest {
		t.Errorf("invalid length = %d, want 400", code)
	}
}

func TestGenerate_CollaboratorFailure(t *testing.T) {
	env := newTestEnv(t)
	env.mock.Err = errors.New("connection refused")

	var errResp ErrorResponse
	req := GenerateRequest{Request: generator.Request{Length: "Short", Language: "English", Tag: "Career"}}
	if code := env.do(t, "POST", "/generate", req, &errResp); code != http.StatusBadGateway {
		t.Fatalf("generate = %d, want 502", code)
	}
	if errResp.Error != "Network error. Please check your internet connection." {
		t.Errorf("error message = %q", errResp.Error)
	}
	if _, err := os.Stat(filepath.Join(env.dir, history.FileName)); !errors.Is(err, os.ErrNotExist) {
		t.Error("failed generation should not be recorded")
	}
}

func TestGenerateCustomAndStudent(t *testing.T) {
	env := newTestEnv(t)

	var resp GenerateResponse
	custom := CustomGenerateRequest{CustomRequest: generator.CustomRequest{Topic: "Remote work", Audience: "Professionals", Length: "Medium", Language: "English"}, DryRun: true}
	if code := env.do(t, "POST", "/generate/custom", custom, &resp); code != http.StatusOK {
		t.Fatalf("custom = %d", code)
	}
	if resp.Prompt.Kind != generator.KindCustom || !strings.Contains(resp.Prompt.Text, "Remote work") {
		t.Errorf("custom prompt = %+v", resp.Prompt)
	}
	if code := env.do(t, "POST", "/generate/custom", CustomGenerateRequest{}, nil); code != http.StatusBadRequest {
		t.Errorf("custom without topic = %d, want 400", code)
	}

	resp = GenerateResponse{}
	student := StudentGenerateRequest{StudentRequest: generator.StudentRequest{Year: "3rd Year", EventType: "hackathon win"}}
	if code := env.do(t, "POST", "/generate/student", student, &resp); code != http.StatusOK {
		t.Fatalf("student = %d", code)
	}
	if resp.Content == "" || resp.Prompt.Kind != generator.KindStudent {
		t.Errorf("student response = %+v", resp)
	}
	if code := env.do(t, "POST", "/generate/student", StudentGenerateRequest{}, nil); code != http.StatusBadRequest {
		t.Errorf("student without year = %d, want 400", code)
	}
}

func TestTemplates(t *testing.T) {
	env := newTestEnv(t)

	var saved SaveTemplateResponse
	body := SaveTemplateRequest{Name: "hook", Prompt: "Open with a question about {topic} in {language}"}
	if code := env.do(t, "POST", "/templates", body, &saved); code != http.StatusOK {
		t.Fatalf("save = %d", code)
	}
	if strings.Join(saved.Placeholders, ",") != "language,topic" {
		t.Errorf("placeholders = %v", saved.Placeholders)
	}

	var list TemplatesResponse
	if code := env.do(t, "GET", "/templates", nil, &list); code != http.StatusOK {
		t.Fatalf("list = %d", code)
	}
	if len(list.Templates) != 1 || list.Templates[0].Name != "hook" || len(list.Builtin) == 0 {
		t.Errorf("templates = %+v", list)
	}

	var resp GenerateResponse
	req := GenerateRequest{Request: generator.Request{Length: "Short", Language: "English", Tag: "Career", Template: "hook"}, DryRun: true}
	if code := env.do(t, "POST", "/generate", req, &resp); code != http.StatusOK {
		t.Fatalf("generate with template = %d", code)
	}
	if resp.Prompt.Text != "Open with a question about Career in English" {
		t.Errorf("templated prompt = %q", resp.Prompt.Text)
	}

	req.Template = "missing"
	if code := env.do(t, "POST", "/generate", req, nil); code != http.StatusNotFound {
		t.Errorf("generate with missing template = %d, want 404", code)
	}

	if code := env.do(t, "DELETE", "/templates/hook", nil, nil); code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", code)
	}
	if code := env.do(t, "DELETE", "/templates/hook", nil, nil); code != http.StatusNotFound {
		t.Errorf("delete again = %d, want 404", code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"format", &corpus.FormatError{Err: errors.New("bad")}, http.StatusUnprocessableEntity},
		{"not found", &corpus.NotFoundError{Path: "x.json"}, http.StatusNotFound},
		{"collaborator", providers.AsCollaboratorError("groq", "generate", errors.New("boom")), http.StatusBadGateway},
		{"invalid name", processor.ErrInvalidName, http.StatusBadRequest},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}
