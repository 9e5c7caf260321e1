package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the graph store
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// Graph load metrics
	GraphLoadsTotal   *prometheus.CounterVec
	GraphLoadDuration prometheus.Histogram
	TriplesLoaded     prometheus.Counter

	// Lookup metrics
	NodeLookupsTotal prometheus.Counter
	NameResolutions  prometheus.Counter

	// Registry metrics
	GraphsRegistered prometheus.Gauge
	GraphNodes       *prometheus.GaugeVec
	GraphRelations   *prometheus.GaugeVec

	// Remote client cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

var (
	defaultMetrics *Metrics
	metricsOnce    sync.Once
)

// Default returns the process-wide metrics, registering them on the default
// Prometheus registry on first call.
func Default() *Metrics {
	metricsOnce.Do(func() {
		defaultMetrics = newMetrics()
	})
	return defaultMetrics
}

// newMetrics creates and registers all Prometheus metrics
func newMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kgraph_requests_total",
				Help: "Total number of requests by method and status",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kgraph_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method"},
		),
		RequestErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kgraph_request_errors_total",
				Help: "Total number of request errors by method and error type",
			},
			[]string{"method", "error_type"},
		),

		GraphLoadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kgraph_graph_loads_total",
				Help: "Total number of graph loads by backing",
			},
			[]string{"backing"},
		),
		GraphLoadDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kgraph_graph_load_duration_seconds",
				Help:    "Graph load duration in seconds",
				Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
		TriplesLoaded: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "kgraph_triples_loaded_total",
				Help: "Total number of edge triples ingested",
			},
		),

		NodeLookupsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "kgraph_node_lookups_total",
				Help: "Total number of vertex lookups served",
			},
		),
		NameResolutions: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "kgraph_name_resolutions_total",
				Help: "Total number of label resolutions served",
			},
		),

		GraphsRegistered: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "kgraph_graphs_registered",
				Help: "Number of graphs currently registered on the server",
			},
		),
		GraphNodes: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kgraph_graph_nodes",
				Help: "Node dictionary size by graph",
			},
			[]string{"graph"},
		),
		GraphRelations: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kgraph_graph_relations",
				Help: "Relation dictionary size by graph",
			},
			[]string{"graph"},
		),

		CacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "kgraph_remote_cache_hits_total",
				Help: "Total number of remote-client cache hits",
			},
		),
		CacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "kgraph_remote_cache_misses_total",
				Help: "Total number of remote-client cache misses",
			},
		),
	}
}

// RecordRequest records a request with duration and status
func (m *Metrics) RecordRequest(method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError records a request error
func (m *Metrics) RecordError(method, errorType string) {
	m.RequestErrors.WithLabelValues(method, errorType).Inc()
}

// RecordGraphLoad records a completed graph load
func (m *Metrics) RecordGraphLoad(backing string, duration time.Duration, triples int64) {
	m.GraphLoadsTotal.WithLabelValues(backing).Inc()
	m.GraphLoadDuration.Observe(duration.Seconds())
	m.TriplesLoaded.Add(float64(triples))
}

// UpdateGraphSize updates the per-graph dictionary size gauges
func (m *Metrics) UpdateGraphSize(graph string, nodes, relations int) {
	m.GraphNodes.WithLabelValues(graph).Set(float64(nodes))
	m.GraphRelations.WithLabelValues(graph).Set(float64(relations))
}
