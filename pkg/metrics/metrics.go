// Package metrics defines the Prometheus metric collectors used across the
// services and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInFlight   prometheus.Gauge
	SearchQueriesTotal     *prometheus.CounterVec
	SearchLatency          prometheus.Histogram
	SearchResultsCount     *prometheus.HistogramVec
	CacheHitsTotal         prometheus.Counter
	CacheMissesTotal       prometheus.Counter
	IndexBuildsTotal       *prometheus.CounterVec
	IndexBuildDuration     prometheus.Histogram
	IndexedDocuments       *prometheus.GaugeVec
	SelectionsTotal        *prometheus.CounterVec
	DocumentsUploadedTotal *prometheus.CounterVec
}

// New creates all collectors and registers them with reg. Passing nil uses
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by outcome (prompt, no_matches, matches).",
			},
			[]string{"status"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Query engine latency in seconds, including any index rebuild.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
		),
		SearchResultsCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per query by result kind.",
				Buckets: []float64{0, 1, 2, 5, 8, 10, 23},
			},
			[]string{"kind"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of result cache misses.",
			},
		),
		IndexBuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "index_builds_total",
				Help: "Index set requests by outcome (rebuilt, reused).",
			},
			[]string{"outcome"},
		),
		IndexBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "index_build_duration_seconds",
				Help:    "Time taken to rebuild the three search indexes.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
		),
		IndexedDocuments: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "indexed_documents",
				Help: "Documents held by each search index after the last rebuild.",
			},
			[]string{"index"},
		),
		SelectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_selections_total",
				Help: "Committed selections by target kind.",
			},
			[]string{"kind"},
		),
		DocumentsUploadedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_uploaded_total",
				Help: "Uploaded documents by status (accepted, rejected, failed).",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.IndexBuildsTotal,
		m.IndexBuildDuration,
		m.IndexedDocuments,
		m.SelectionsTotal,
		m.DocumentsUploadedTotal,
	)

	return m
}

// IndexReused records a build request served from the memoized index set.
func (m *Metrics) IndexReused() {
	if m == nil {
		return
	}
	m.IndexBuildsTotal.WithLabelValues("reused").Inc()
}

// IndexRebuilt records a full rebuild and the resulting document counts.
func (m *Metrics) IndexRebuilt(docs map[string]int, took time.Duration) {
	if m == nil {
		return
	}
	m.IndexBuildsTotal.WithLabelValues("rebuilt").Inc()
	m.IndexBuildDuration.Observe(took.Seconds())
	for name, n := range docs {
		m.IndexedDocuments.WithLabelValues(name).Set(float64(n))
	}
}

// QueryExecuted records one query outcome and the per-kind result counts.
func (m *Metrics) QueryExecuted(status string, counts map[string]int, took time.Duration) {
	if m == nil {
		return
	}
	m.SearchQueriesTotal.WithLabelValues(status).Inc()
	m.SearchLatency.Observe(took.Seconds())
	for kind, n := range counts {
		m.SearchResultsCount.WithLabelValues(kind).Observe(float64(n))
	}
}

// CacheLookup records a result cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.Inc()
		return
	}
	m.CacheMissesTotal.Inc()
}

// Selected records a committed selection.
func (m *Metrics) Selected(kind string) {
	if m == nil {
		return
	}
	m.SelectionsTotal.WithLabelValues(kind).Inc()
}

// Uploaded records the outcome of a document upload.
func (m *Metrics) Uploaded(status string) {
	if m == nil {
		return
	}
	m.DocumentsUploadedTotal.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
