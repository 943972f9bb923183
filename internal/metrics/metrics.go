package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mdoc/internal/domain"
	"mdoc/internal/ports"
)

// Metrics holds the mdoc Prometheus collectors.
// Each instance owns an isolated registry so tests never share state.
type Metrics struct {
	Registry *prometheus.Registry

	// Catalog metrics
	CatalogBuildsTotal          *prometheus.CounterVec
	CatalogBuildDurationSeconds prometheus.Histogram
	CatalogDocuments            prometheus.Gauge

	// History metrics
	HistoryLookupsTotal *prometheus.CounterVec

	// HTTP API metrics
	RequestsTotal          *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec

	BuildInfo *prometheus.GaugeVec
}

// Ensure Metrics implements ports.Metrics
var _ ports.Metrics = (*Metrics)(nil)

// New creates a Metrics instance with every collector registered
func New(version, goVersion string) *Metrics {
	reg := prometheus.NewRegistry()

	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		CatalogBuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdoc_catalog_builds_total",
				Help: "Total number of catalog builds.",
			},
			[]string{"result"},
		),
		CatalogBuildDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mdoc_catalog_build_duration_seconds",
				Help:    "Duration of catalog builds in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
		),
		CatalogDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mdoc_catalog_documents",
				Help: "Number of entries in the last built catalog.",
			},
		),

		HistoryLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdoc_history_lookups_total",
				Help: "Total number of history lookups by kind and outcome.",
			},
			[]string{"kind", "status"},
		),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdoc_http_requests_total",
				Help: "Total number of HTTP API requests.",
			},
			[]string{"method", "route", "status"},
		),
		RequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mdoc_http_request_duration_seconds",
				Help:    "Duration of HTTP API requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mdoc_info",
				Help: "Build information.",
			},
			[]string{"version", "go_version"},
		),
	}

	reg.MustRegister(
		m.CatalogBuildsTotal,
		m.CatalogBuildDurationSeconds,
		m.CatalogDocuments,
		m.HistoryLookupsTotal,
		m.RequestsTotal,
		m.RequestDurationSeconds,
		m.BuildInfo,
	)

	m.BuildInfo.WithLabelValues(version, goVersion).Set(1)

	return m
}

// CatalogBuilt records one catalog build
func (m *Metrics) CatalogBuilt(documents int, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.CatalogBuildsTotal.WithLabelValues(result).Inc()
	m.CatalogBuildDurationSeconds.Observe(duration.Seconds())
	m.CatalogDocuments.Set(float64(documents))
}

// HistoryLookup records the outcome of a history or revision lookup
func (m *Metrics) HistoryLookup(kind string, status domain.LookupStatus) {
	m.HistoryLookupsTotal.WithLabelValues(kind, status.String()).Inc()
}

// ObserveRequest records one HTTP API request
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler returns an http.Handler that serves the Prometheus metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
