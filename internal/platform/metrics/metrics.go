// Copyright (c) 2026 Cartridge Collection. All rights reserved.

/*
Package metrics exposes Prometheus instrumentation for the catalog.

It owns a dedicated registry (no global state) with:

  - HTTP request counters and latency histograms labelled by chi route pattern.
  - Rollup computation latency and cache hit/miss counters.
  - A gauge of boxes whose parent reference no longer resolves.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/middleware"
)

const namespace = "catalog"

// Metrics bundles every collector registered by the service.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	rollupDuration *prometheus.HistogramVec
	cacheResults   *prometheus.CounterVec
	danglingBoxes  prometheus.Gauge
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rollupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rollup_duration_seconds",
			Help:      "Time spent computing a subtree rollup, by root kind.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"root"}),
		cacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollup_cache_results_total",
			Help:      "Rollup cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		danglingBoxes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dangling_boxes",
			Help:      "Boxes whose parent reference does not resolve, as of the last scan.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.rollupDuration,
		m.cacheResults,
		m.danglingBoxes,
	)

	return m
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency. The route label is the chi
// pattern (e.g. "/api/v1/calibers/{caliber}/loads/{id}") so ids never explode
// label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		startTime := time.Now()
		recorder := &middleware.StatusRecorder{ResponseWriter: writer, Status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.httpRequests.WithLabelValues(request.Method, route, strconv.Itoa(recorder.Status)).Inc()
		m.httpDuration.WithLabelValues(request.Method, route).Observe(time.Since(startTime).Seconds())
	})
}

// # Rollup Observer

// ObserveRollup records how long a rollup rooted at a node of rootKind took.
func (m *Metrics) ObserveRollup(rootKind string, elapsed time.Duration) {
	m.rollupDuration.WithLabelValues(rootKind).Observe(elapsed.Seconds())
}

// CacheResult counts a rollup cache lookup outcome.
func (m *Metrics) CacheResult(result string) {
	m.cacheResults.WithLabelValues(result).Inc()
}

// SetDanglingBoxes publishes the size of the latest dangling-box scan.
func (m *Metrics) SetDanglingBoxes(count int) {
	m.danglingBoxes.Set(float64(count))
}
