// Package metrics exposes triage measurements in the Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/mikey/email-triage/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "email_triage"

// Recorder implements core.MetricsRecorder on its own Prometheus registry
type Recorder struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	classifications *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	llmDuration     *prometheus.HistogramVec
}

// NewRecorder creates a recorder with process and Go runtime collectors
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Triage requests by outcome.",
		}, []string{"outcome"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Emails classified by category.",
		}, []string{"category"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Classification cache lookups by result.",
		}, []string{"result"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_duration_seconds",
			Help:      "Latency of LLM calls by operation.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"operation"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requests,
		r.classifications,
		r.cacheLookups,
		r.llmDuration,
	)
	return r
}

// ObserveRequest counts a finished triage request
func (r *Recorder) ObserveRequest(outcome string) {
	r.requests.WithLabelValues(outcome).Inc()
}

// ObserveClassification counts a classified email
func (r *Recorder) ObserveClassification(category core.Category) {
	r.classifications.WithLabelValues(string(category)).Inc()
}

// ObserveCacheLookup counts a cache hit or miss
func (r *Recorder) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveLLMDuration records the latency of one LLM call
func (r *Recorder) ObserveLLMDuration(operation string, d time.Duration) {
	r.llmDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
