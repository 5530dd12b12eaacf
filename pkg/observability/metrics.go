package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics.
//
// Every Record method is safe to call on a nil *Metrics.
type Metrics struct {
	// Loader metrics
	DocumentsLoadedTotal *prometheus.CounterVec
	LoadPasses           *prometheus.HistogramVec
	LoadFailuresTotal    *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Library metrics
	RecordsTotal    *prometheus.GaugeVec
	UnstableRecords *prometheus.GaugeVec

	// Diff metrics
	DiffRecordsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		DocumentsLoadedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tclib_documents_loaded_total",
				Help: "Total number of documents loaded into records",
			},
			[]string{"category"},
		),
		LoadPasses: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tclib_load_passes",
				Help:    "Number of loader passes needed to resolve a category",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
			},
			[]string{"category"},
		),
		LoadFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tclib_load_failures_total",
				Help: "Total number of failed loads",
			},
			[]string{"category", "kind"},
		),

		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tclib_document_cache_hits_total",
				Help: "Total number of decoded document cache hits",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tclib_document_cache_misses_total",
				Help: "Total number of decoded document cache misses",
			},
		),

		RecordsTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tclib_records",
				Help: "Number of records in the most recent snapshot",
			},
			[]string{"category"},
		),
		UnstableRecords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tclib_unstable_records",
				Help: "Number of records that did not stabilize in the most recent snapshot",
			},
			[]string{"category"},
		),

		DiffRecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tclib_diff_records_total",
				Help: "Total number of records classified by the differ",
			},
			[]string{"category", "classification"},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.DocumentsLoadedTotal,
		m.LoadPasses,
		m.LoadFailuresTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.RecordsTotal,
		m.UnstableRecords,
		m.DiffRecordsTotal,
	)

	return m
}

// Registry returns the registry the metrics were registered with
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordLoad records a successful load of one category
func (m *Metrics) RecordLoad(category string, documents, passes int) {
	if m == nil {
		return
	}
	m.DocumentsLoadedTotal.WithLabelValues(category).Add(float64(documents))
	m.LoadPasses.WithLabelValues(category).Observe(float64(passes))
}

// RecordLoadFailure records a failed load; kind is collision, unresolved or parse
func (m *Metrics) RecordLoadFailure(category, kind string) {
	if m == nil {
		return
	}
	m.LoadFailuresTotal.WithLabelValues(category, kind).Inc()
}

// RecordCache adds document cache hits and misses
func (m *Metrics) RecordCache(hits, misses int64) {
	if m == nil {
		return
	}
	if hits > 0 {
		m.CacheHitsTotal.Add(float64(hits))
	}
	if misses > 0 {
		m.CacheMissesTotal.Add(float64(misses))
	}
}

// SetRecords sets the record gauges of one category
func (m *Metrics) SetRecords(category string, total, unstable int) {
	if m == nil {
		return
	}
	m.RecordsTotal.WithLabelValues(category).Set(float64(total))
	m.UnstableRecords.WithLabelValues(category).Set(float64(unstable))
}

// RecordDiff adds n records of one classification
func (m *Metrics) RecordDiff(category, classification string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DiffRecordsTotal.WithLabelValues(category, classification).Add(float64(n))
}

// WriteToTextfile writes every registered metric in the Prometheus text
// format, atomically replacing path
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil || m.registry == nil {
		return fmt.Errorf("metrics are not enabled")
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
