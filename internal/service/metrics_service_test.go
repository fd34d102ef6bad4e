package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-coverage-api/internal/coverage"
)

func TestMetricsServiceObserveCoverageRun(t *testing.T) {
	metrics := NewMetricsService()
	result := &coverage.RunResult{
		Assignments: []coverage.Assignment{
			{Type: coverage.AssignmentTypeExternal},
			{Type: coverage.AssignmentTypeExternal},
			{Type: coverage.AssignmentTypeNone},
		},
		Meta: coverage.RunMeta{TotalCandidatesEvaluated: 12, LoadStdDev: 0.5},
	}

	metrics.ObserveCoverageRun(result, false, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.coverageRuns.WithLabelValues("commit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.coveragePeriods.WithLabelValues("External Sub")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.coveragePeriods.WithLabelValues("No Coverage")))
	assert.Equal(t, 0.5, testutil.ToFloat64(metrics.loadStdDev))
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordNotification("published")
	metrics.RecordCacheOperation(true, time.Millisecond)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `coverage_notifications_total{outcome="published"} 1`))
	assert.True(t, strings.Contains(body, `cache_lookups_total{result="hit"} 1`))
}

func TestMetricsServiceNilIsNoop(t *testing.T) {
	var metrics *MetricsService
	metrics.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	metrics.ObserveCoverageRun(&coverage.RunResult{}, true, time.Millisecond)
	metrics.RecordNotification("failed")

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
