// Package metrics exposes Prometheus collectors for collaborator calls,
// dataset processing and the HTTP interface.
//
// A nil *Metrics is valid and records nothing, so callers never need to
// check whether metrics are enabled.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jackzampolin/postgen/internal/providers"
)

const namespace = "postgen"

// Annotation outcomes.
const (
	OutcomeClassified = "classified"
	OutcomeFallback   = "fallback"
	OutcomeSkipped    = "skipped"
)

// Metrics holds all collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	llmRequests   *prometheus.CounterVec
	llmDuration   *prometheus.HistogramVec
	llmTokens     *prometheus.CounterVec
	annotations   *prometheus.CounterVec
	generations   *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	serviceInfo   *prometheus.GaugeVec
	corpusRecords prometheus.Gauge
}

// New creates and registers all collectors.
func New(version, commit string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "LLM collaborator calls by provider, operation and status",
		}, []string{"provider", "op", "status"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM collaborator call latency",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"provider", "op"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens consumed by provider and kind",
		}, []string{"provider", "kind"}),
		annotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_total",
			Help:      "Raw posts processed by outcome (classified, fallback, skipped)",
		}, []string{"outcome"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Post generation requests by prompt kind and status",
		}, []string{"kind", "status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		serviceInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_info",
			Help:      "Build information",
		}, []string{"version", "commit"}),
		corpusRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_corpus_records",
			Help:      "Records in the current dataset at last load",
		}),
	}

	m.registry.MustRegister(
		m.llmRequests, m.llmDuration, m.llmTokens,
		m.annotations, m.generations,
		m.httpRequests, m.httpDuration,
		m.serviceInfo, m.corpusRecords,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.serviceInfo.WithLabelValues(version, commit).Set(1)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveChat records one collaborator call.
func (m *Metrics) ObserveChat(provider, op string, result *providers.ChatResult, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		if _, ok := providers.IsRateLimitError(err); ok {
			status = "rate_limited"
		}
	}
	m.llmRequests.WithLabelValues(provider, op, status).Inc()
	m.llmDuration.WithLabelValues(provider, op).Observe(elapsed.Seconds())
	if result != nil {
		m.llmTokens.WithLabelValues(provider, "prompt").Add(float64(result.PromptTokens))
		m.llmTokens.WithLabelValues(provider, "completion").Add(float64(result.CompletionTokens))
	}
}

// RecordAnnotation counts one processed raw post.
func (m *Metrics) RecordAnnotation(outcome string) {
	if m == nil {
		return
	}
	m.annotations.WithLabelValues(outcome).Inc()
}

// RecordGeneration counts one generation request.
func (m *Metrics) RecordGeneration(kind string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.generations.WithLabelValues(kind, status).Inc()
}

// SetCorpusRecords reports the size of the current dataset.
func (m *Metrics) SetCorpusRecords(n int) {
	if m == nil {
		return
	}
	m.corpusRecords.Set(float64(n))
}

// Instrument wraps client so every Chat call is observed under op.
func (m *Metrics) Instrument(client providers.LLMClient, op string) providers.LLMClient {
	if m == nil {
		return client
	}
	return &instrumentedClient{LLMClient: client, metrics: m, op: op}
}

type instrumentedClient struct {
	providers.LLMClient
	metrics *Metrics
	op      string
}

func (c *instrumentedClient) Chat(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResult, error) {
	start := time.Now()
	result, err := c.LLMClient.Chat(ctx, req)
	c.metrics.ObserveChat(c.LLMClient.Name(), c.op, result, err, time.Since(start))
	return result, err
}

// Middleware records request counts and latency. pattern is the route
// pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) Middleware(pattern string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.httpRequests.WithLabelValues(r.Method, pattern, strconv.Itoa(sw.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
