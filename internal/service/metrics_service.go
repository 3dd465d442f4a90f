package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/class-schedule-api/internal/models"
)

// Generation modes used as metric labels.
const (
	GenerationModeSection = "section"
	GenerationModeAll     = "all"
)

// MetricsService owns the Prometheus registry for HTTP, cache and generation metrics.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheHitRatio   prometheus.Gauge
	cacheLookups    *prometheus.CounterVec

	generationDuration *prometheus.HistogramVec
	generationTotal    *prometheus.CounterVec
	placedEntries      prometheus.Counter
	warningsTotal      prometheus.Counter
	conflictsTotal     *prometheus.CounterVec
	jobsInFlight       prometheus.Gauge

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	generationCount      uint64
	generationFailures   uint64
	generationNanos      uint64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		generationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schedule_generation_duration_seconds",
			Help:    "Wall time of schedule generation runs",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"mode"}),
		generationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_generations_total",
			Help: "Schedule generation runs by mode and outcome",
		}, []string{"mode", "outcome"}),
		placedEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schedule_entries_placed_total",
			Help: "Schedule entries placed by generation runs",
		}),
		warningsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schedule_warnings_total",
			Help: "Placement warnings emitted by generation runs",
		}),
		conflictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_conflicts_total",
			Help: "Conflicts detected by generation runs",
		}, []string{"kind"}),
		jobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schedule_generation_jobs_in_flight",
			Help: "Asynchronous generation jobs queued or running",
		}),
	}

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency, m.cacheWrite, m.cacheHitRatio, m.cacheLookups,
		m.generationDuration, m.generationTotal, m.placedEntries, m.warningsTotal, m.conflictsTotal, m.jobsInFlight,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveGeneration records one generation run. A nil err counts as success
// even when entries were skipped with warnings.
func (m *MetricsService) ObserveGeneration(mode string, duration time.Duration, entries, warnings int, conflicts []models.Conflict, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
		atomic.AddUint64(&m.generationFailures, 1)
	}
	m.generationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	m.generationTotal.WithLabelValues(mode, outcome).Inc()
	m.placedEntries.Add(float64(entries))
	m.warningsTotal.Add(float64(warnings))
	for _, c := range conflicts {
		m.conflictsTotal.WithLabelValues(string(c.Type)).Inc()
	}
	atomic.AddUint64(&m.generationCount, 1)
	atomic.AddUint64(&m.generationNanos, uint64(duration.Nanoseconds()))
}

// JobQueued and JobDone track asynchronous generation jobs.
func (m *MetricsService) JobQueued() {
	if m != nil {
		m.jobsInFlight.Inc()
	}
}

func (m *MetricsService) JobDone() {
	if m != nil {
		m.jobsInFlight.Dec()
	}
}

// Snapshot returns aggregated counters for the JSON metrics endpoint.
func (m *MetricsService) Snapshot() models.MetricsSnapshot {
	if m == nil {
		return models.MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	generations := atomic.LoadUint64(&m.generationCount)

	snap := models.MetricsSnapshot{
		RequestsTotal:      requests,
		CacheHits:          hits,
		CacheMisses:        misses,
		GenerationsTotal:   generations,
		GenerationFailures: atomic.LoadUint64(&m.generationFailures),
		Goroutines:         runtime.NumGoroutine(),
		GeneratedAt:        time.Now().UTC(),
	}
	if hits+misses > 0 {
		snap.CacheHitRatio = float64(hits) / float64(hits+misses)
	}
	if requests > 0 {
		snap.AverageRequestDurationMs = millis(atomic.LoadUint64(&m.requestDurationTotal), requests)
	}
	if generations > 0 {
		snap.AverageGenerationMs = millis(atomic.LoadUint64(&m.generationNanos), generations)
	}
	return snap
}

func millis(totalNanos, count uint64) float64 {
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}
