// Package prom implements the observability hooks with Prometheus metrics.
//
// A [Collector] owns its own registry, so tests and multiple servers in one
// process never collide on registration. Serve it with [Collector.Handler].
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/stargraph/pkg/observability"
)

// Namespace prefixes every metric name.
const Namespace = "stargraph"

// Collector holds all Prometheus metrics for the application.
type Collector struct {
	registry *prometheus.Registry

	// Engine metrics
	Ingests       *prometheus.CounterVec
	NodesAdded    prometheus.Counter
	LinksAdded    prometheus.Counter
	Clicks        *prometheus.CounterVec
	ViewToggles   *prometheus.CounterVec
	SettleTicks   prometheus.Histogram
	ActiveEngines prometheus.Gauge

	// Pipeline metrics
	Fetches       *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	RenderSeconds prometheus.Histogram

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	CacheBytes  *prometheus.CounterVec

	// Outgoing HTTP metrics
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// Incoming HTTP metrics
	ServerRequests *prometheus.CounterVec
	ServerDuration *prometheus.HistogramVec
}

var (
	_ observability.EngineHooks   = (*Collector)(nil)
	_ observability.PipelineHooks = (*Collector)(nil)
	_ observability.CacheHooks    = (*Collector)(nil)
	_ observability.HTTPHooks     = (*Collector)(nil)
)

// New creates a collector with a fresh registry that also exports the Go
// runtime and process collectors.
func New() *Collector {
	registry := prometheus.NewRegistry()
	c := &Collector{
		registry: registry,
		Ingests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "ingests_total",
			Help: "Total number of ingestions, by outcome.",
		}, []string{"outcome"}),
		NodesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Name: "nodes_added_total",
			Help: "Total number of graph nodes created.",
		}),
		LinksAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Name: "links_added_total",
			Help: "Total number of graph links created.",
		}),
		Clicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "click_events_total",
			Help: "Total number of click notifications emitted.",
		}, []string{"event"}),
		ViewToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "view_toggles_total",
			Help: "Total number of level-of-detail transitions.",
		}, []string{"state"}),
		SettleTicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace, Name: "settle_ticks",
			Help:    "Simulation ticks until the layout cooled.",
			Buckets: prometheus.LinearBuckets(25, 25, 12),
		}),
		ActiveEngines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "active_engines",
			Help: "Number of live engine sessions.",
		}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "fetches_total",
			Help: "Total number of user fetches, by status.",
		}, []string{"status"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace, Name: "fetch_duration_seconds",
			Help:    "User fetch duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		RenderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace, Name: "render_duration_seconds",
			Help:    "Artifact render duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "cache_hits_total",
			Help: "Total number of cache hits.",
		}, []string{"key_type"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "cache_misses_total",
			Help: "Total number of cache misses.",
		}, []string{"key_type"}),
		CacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "cache_written_bytes_total",
			Help: "Total bytes written to the cache.",
		}, []string{"key_type"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "upstream_requests_total",
			Help: "Total number of outgoing HTTP requests.",
		}, []string{"method", "host", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace, Name: "upstream_request_duration_seconds",
			Help:    "Outgoing HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "host"}),
		RequestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "upstream_errors_total",
			Help: "Total number of failed outgoing HTTP requests.",
		}, []string{"method", "host"}),
		ServerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "status"}),
		ServerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		c.Ingests, c.NodesAdded, c.LinksAdded, c.Clicks, c.ViewToggles, c.SettleTicks, c.ActiveEngines,
		c.Fetches, c.FetchDuration, c.RenderSeconds,
		c.CacheHits, c.CacheMisses, c.CacheBytes,
		c.Requests, c.RequestDuration, c.RequestErrors,
		c.ServerRequests, c.ServerDuration,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveServerRequest records one served HTTP request.
func (c *Collector) ObserveServerRequest(method, route string, status int, d time.Duration) {
	c.ServerRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.ServerDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// =============================================================================
// EngineHooks
// =============================================================================

func (c *Collector) OnIngest(nodesAdded, linksAdded int, skipped bool) {
	outcome := "merged"
	if skipped {
		outcome = "skipped"
	}
	c.Ingests.WithLabelValues(outcome).Inc()
	c.NodesAdded.Add(float64(nodesAdded))
	c.LinksAdded.Add(float64(linksAdded))
}

func (c *Collector) OnClick(event string)      { c.Clicks.WithLabelValues(event).Inc() }
func (c *Collector) OnViewToggle(state string) { c.ViewToggles.WithLabelValues(state).Inc() }
func (c *Collector) OnSettle(ticks int)        { c.SettleTicks.Observe(float64(ticks)) }

// =============================================================================
// PipelineHooks
// =============================================================================

func (c *Collector) OnFetchStart(context.Context, string) {}

func (c *Collector) OnFetchComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.Fetches.WithLabelValues(status).Inc()
	c.FetchDuration.Observe(d.Seconds())
}

func (c *Collector) OnLayoutStart(context.Context, int) {}

func (c *Collector) OnLayoutComplete(_ context.Context, ticks int, _ time.Duration) {
	c.SettleTicks.Observe(float64(ticks))
}

func (c *Collector) OnRenderStart(context.Context, []string) {}

func (c *Collector) OnRenderComplete(_ context.Context, _ []string, d time.Duration, _ error) {
	c.RenderSeconds.Observe(d.Seconds())
}

// =============================================================================
// CacheHooks
// =============================================================================

func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.CacheHits.WithLabelValues(keyType).Inc()
}

func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.CacheMisses.WithLabelValues(keyType).Inc()
}

func (c *Collector) OnCacheSet(_ context.Context, keyType string, size int) {
	c.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// =============================================================================
// HTTPHooks
// =============================================================================

func (c *Collector) OnRequest(context.Context, string, string, string) {}

func (c *Collector) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	c.Requests.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	c.RequestDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (c *Collector) OnError(_ context.Context, method, host, _ string, _ error) {
	c.RequestErrors.WithLabelValues(method, host).Inc()
}
