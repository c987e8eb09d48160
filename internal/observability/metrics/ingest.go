// Package metrics provides Prometheus metric collectors for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics contains Prometheus metrics for the show data ingest pipeline
type IngestMetrics struct {
	registry *prometheus.Registry

	ingestRunsTotal   *prometheus.CounterVec
	ingestRunDuration prometheus.Histogram

	fetchesTotal  *prometheus.CounterVec
	fetchDuration prometheus.Histogram

	recordsParsedTotal prometheus.Counter

	insertsTotal *prometheus.CounterVec
}

// NewIngestMetrics creates and registers new ingest metrics
func NewIngestMetrics(registry *prometheus.Registry) (*IngestMetrics, error) {
	m := &IngestMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *IngestMetrics) initMetrics() {
	m.ingestRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Total number of ingest pipeline runs",
		},
		[]string{"status"}, // status: success, error
	)

	m.ingestRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Time taken for one full ingest pipeline run",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	m.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_fetches_total",
			Help: "Total number of source page fetch operations",
		},
		[]string{"status"}, // status: success, not_found, error
	)

	m.fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_fetch_duration_seconds",
			Help:    "Time taken to fetch the source listing page",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	m.recordsParsedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_records_parsed_total",
			Help: "Total number of show records parsed from the source page",
		},
	)

	m.insertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_inserts_total",
			Help: "Total number of upsert attempts by entity and outcome",
		},
		[]string{"entity", "status"}, // entity: venue, artist, show; status: created, duplicate, error
	)
}

// RecordRun records the outcome and duration of one pipeline run
func (m *IngestMetrics) RecordRun(status string, seconds float64) {
	m.ingestRunsTotal.WithLabelValues(status).Inc()
	m.ingestRunDuration.Observe(seconds)
}

// RecordFetch records the outcome and duration of a source page fetch
func (m *IngestMetrics) RecordFetch(status string, seconds float64) {
	m.fetchesTotal.WithLabelValues(status).Inc()
	m.fetchDuration.Observe(seconds)
}

// RecordParsed records the number of records parsed from a page
func (m *IngestMetrics) RecordParsed(count int) {
	m.recordsParsedTotal.Add(float64(count))
}

// RecordInsert records one upsert attempt outcome
func (m *IngestMetrics) RecordInsert(entity, status string) {
	m.insertsTotal.WithLabelValues(entity, status).Inc()
}

// Describe implements the prometheus.Collector interface
func (m *IngestMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.ingestRunsTotal.Describe(ch)
	m.ingestRunDuration.Describe(ch)
	m.fetchesTotal.Describe(ch)
	m.fetchDuration.Describe(ch)
	m.recordsParsedTotal.Describe(ch)
	m.insertsTotal.Describe(ch)
}

// Collect implements the prometheus.Collector interface
func (m *IngestMetrics) Collect(ch chan<- prometheus.Metric) {
	m.ingestRunsTotal.Collect(ch)
	m.ingestRunDuration.Collect(ch)
	m.fetchesTotal.Collect(ch)
	m.fetchDuration.Collect(ch)
	m.recordsParsedTotal.Collect(ch)
	m.insertsTotal.Collect(ch)
}
