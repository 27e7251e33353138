// Package metrics provides Prometheus metrics for the toprated pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds all Prometheus metrics for one report run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Catalog client metrics
	apiRequests        *prometheus.CounterVec
	apiRequestErrors   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec

	// Collector metrics
	membersFetched      prometheus.Counter
	memberFetchFailures prometheus.Counter
	observationsOK      prometheus.Counter
	observationsSkipped *prometheus.CounterVec

	// Pipeline metrics
	gamesRanked      prometheus.Gauge
	pipelineDuration prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "toprated",
		subsystem:        "report",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.apiRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "bgg_requests_total",
			Help:      "Total number of BGG API requests by endpoint",
		},
		[]string{"endpoint"},
	)

	m.apiRequestErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "bgg_request_errors_total",
			Help:      "Total number of failed BGG API requests by endpoint",
		},
		[]string{"endpoint"},
	)

	m.apiRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "bgg_request_duration_seconds",
			Help:      "BGG API request duration in seconds by endpoint",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint"},
	)

	m.cacheHits = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of XML cache hits by object kind",
		},
		[]string{"kind"},
	)

	m.cacheMisses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_misses_total",
			Help:      "Total number of XML cache misses by object kind",
		},
		[]string{"kind"},
	)

	m.membersFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "members_fetched_total",
		Help:      "Total number of member collections fetched successfully",
	})

	m.memberFetchFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "member_fetch_failures_total",
		Help:      "Total number of member collections that could not be fetched",
	})

	m.observationsOK = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "observations_accepted_total",
		Help:      "Total number of rating observations accepted into the pool",
	})

	m.observationsSkipped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "observations_skipped_total",
			Help:      "Total number of rating observations skipped by reason",
		},
		[]string{"reason"},
	)

	m.gamesRanked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_ranked",
		Help:      "Number of games that survived filtering and were ranked",
	})

	m.pipelineDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of a full collect-summarize-rank-render run in seconds",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})
}

// Package-level helpers operating on the global manager.

// RecordAPIRequest counts one BGG API request for the endpoint.
func RecordAPIRequest(endpoint string) {
	globalManager.apiRequests.WithLabelValues(endpoint).Inc()
}

// RecordAPIRequestError counts one failed BGG API request for the endpoint.
func RecordAPIRequestError(endpoint string) {
	globalManager.apiRequestErrors.WithLabelValues(endpoint).Inc()
}

// RecordAPIRequestDuration observes one request duration in seconds.
func RecordAPIRequestDuration(endpoint string, seconds float64) {
	globalManager.apiRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RecordCacheHit counts one XML cache hit for the object kind.
func RecordCacheHit(kind string) {
	globalManager.cacheHits.WithLabelValues(kind).Inc()
}

// RecordCacheMiss counts one XML cache miss for the object kind.
func RecordCacheMiss(kind string) {
	globalManager.cacheMisses.WithLabelValues(kind).Inc()
}

// RecordMemberFetched counts one successfully fetched member collection.
func RecordMemberFetched() {
	globalManager.membersFetched.Inc()
}

// RecordMemberFetchFailure counts one member whose collection fetch failed.
func RecordMemberFetchFailure() {
	globalManager.memberFetchFailures.Inc()
}

// RecordObservationAccepted counts one accepted rating observation.
func RecordObservationAccepted() {
	globalManager.observationsOK.Inc()
}

// RecordObservationSkipped counts one skipped rating observation by reason.
func RecordObservationSkipped(reason string) {
	globalManager.observationsSkipped.WithLabelValues(reason).Inc()
}

// UpdateGamesRanked sets the number of games in the final ranking.
func UpdateGamesRanked(count int) {
	globalManager.gamesRanked.Set(float64(count))
}

// RecordPipelineDuration observes the duration of a full run in seconds.
func RecordPipelineDuration(seconds float64) {
	globalManager.pipelineDuration.Observe(seconds)
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler returns an http.Handler exposing the global registry, for the
// optional metrics listener.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
