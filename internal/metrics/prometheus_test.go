package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jackzampolin/postgen/internal/providers"
)

func TestInstrument(t *testing.T) {
	m := New("test", "abc")
	mock := providers.NewMockClient()
	client := m.Instrument(mock, "generate")

	if client.Name() != providers.MockClientName {
		t.Errorf("expected wrapped name, got %s", client.Name())
	}
	if _, err := client.Chat(context.Background(), &providers.ChatRequest{Messages: []providers.Message{providers.UserMessage("hello there")}}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	mock.Err = errors.New("down")
	_, _ = client.Chat(context.Background(), &providers.ChatRequest{})

	if got := testutil.ToFloat64(m.llmRequests.WithLabelValues("mock", "generate", "success")); got != 1 {
		t.Errorf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(m.llmRequests.WithLabelValues("mock", "generate", "error")); got != 1 {
		t.Errorf("expected 1 error, got %v", got)
	}
}

func TestRecorders(t *testing.T) {
	m := New("test", "abc")
	m.RecordAnnotation(OutcomeClassified)
	m.RecordAnnotation(OutcomeClassified)
	m.RecordAnnotation(OutcomeFallback)
	m.RecordGeneration("post", nil)
	m.SetCorpusRecords(42)

	if got := testutil.ToFloat64(m.annotations.WithLabelValues(OutcomeClassified)); got != 2 {
		t.Errorf("expected 2 classified, got %v", got)
	}
	if got := testutil.ToFloat64(m.corpusRecords); got != 42 {
		t.Errorf("expected 42 records, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordAnnotation(OutcomeSkipped)
	m.RecordGeneration("post", nil)
	m.ObserveChat("x", "y", nil, nil, 0)
	mock := providers.NewMockClient()
	if m.Instrument(mock, "op") != providers.LLMClient(mock) {
		t.Error("nil metrics should return the client unchanged")
	}
}

func TestHandlerAndMiddleware(t *testing.T) {
	m := New("1.2.3", "deadbeef")
	h := m.Middleware("GET /health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`postgen_http_requests_total{method="GET",path="GET /health",status="418"} 1`,
		`postgen_service_info{commit="deadbeef",version="1.2.3"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
