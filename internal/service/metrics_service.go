package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-coverage-api/internal/coverage"
)

// MetricsService owns the Prometheus registry for HTTP, cache, storage, engine and notification
// instrumentation. A nil *MetricsService is a valid no-op.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec

	coverageRuns        *prometheus.CounterVec
	coveragePeriods     *prometheus.CounterVec
	coverageDuration    prometheus.Observer
	candidatesEvaluated prometheus.Observer
	loadStdDev          prometheus.Gauge

	notifications *prometheus.CounterVec
	breakerState  *prometheus.GaugeVec
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database round trips",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	coverageRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_runs_total",
		Help: "Coverage engine runs by mode",
	}, []string{"mode"})

	coveragePeriods := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_periods_total",
		Help: "Periods resolved by assignment type",
	}, []string{"outcome"})

	coverageDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "coverage_run_duration_seconds",
		Help:    "Wall time of a coverage run including snapshot load and persistence",
		Buckets: prometheus.DefBuckets,
	})

	candidatesEvaluated := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "coverage_candidates_evaluated",
		Help:    "Candidates inspected per coverage run",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	loadStdDev := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "coverage_load_stddev",
		Help: "Standard deviation of per-candidate coverage load in the latest run",
	})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_notifications_total",
		Help: "Coverage result publications by outcome",
	}, []string{"outcome"})

	breakerState := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "notification_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"name"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheLookups, dbQueryDuration,
		coverageRuns, coveragePeriods, coverageDuration, candidatesEvaluated, loadStdDev,
		notifications, breakerState, goroutines)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		cacheLatency:        cacheLatency,
		cacheWrite:          cacheWrite,
		cacheLookups:        cacheLookups,
		dbQueryDuration:     dbQueryDuration,
		coverageRuns:        coverageRuns,
		coveragePeriods:     coveragePeriods,
		coverageDuration:    coverageDuration,
		candidatesEvaluated: candidatesEvaluated,
		loadStdDev:          loadStdDev,
		notifications:       notifications,
		breakerState:        breakerState,
	}
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

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database round-trip timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// ObserveCoverageRun records the outcome of one engine run.
func (m *MetricsService) ObserveCoverageRun(result *coverage.RunResult, dryRun bool, duration time.Duration) {
	if m == nil || result == nil {
		return
	}
	mode := "commit"
	if dryRun {
		mode = "dry_run"
	}
	m.coverageRuns.WithLabelValues(mode).Inc()
	for _, a := range result.Assignments {
		m.coveragePeriods.WithLabelValues(string(a.Type)).Inc()
	}
	m.coverageDuration.Observe(duration.Seconds())
	m.candidatesEvaluated.Observe(float64(result.Meta.TotalCandidatesEvaluated))
	m.loadStdDev.Set(result.Meta.LoadStdDev)
}

// RecordNotification counts a publish attempt by outcome (published, failed, rejected).
func (m *MetricsService) RecordNotification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

// SetBreakerState publishes the numeric state of a circuit breaker.
func (m *MetricsService) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(float64(state))
}
