package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceRecordsGenerations(t *testing.T) {
	m := NewMetricsService()
	m.RecordGeneration(false, 2, 0)
	m.RecordGeneration(true, 3, 4)
	m.RecordGeneration(true, 3, 1)
	m.RecordEmptyGeneration()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.generated.WithLabelValues("permissive")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.generated.WithLabelValues("strict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emptyGenerations))
}

func TestMetricsServiceSessionMisses(t *testing.T) {
	m := NewMetricsService()
	m.ObserveSessionOp("get", true, time.Millisecond)
	m.ObserveSessionOp("get", false, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionMisses))
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, 10*time.Millisecond)
	m.RecordGeneration(false, 2, 0)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
	assert.Contains(t, w.Body.String(), "timetables_generated_total")
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.RecordGeneration(false, 1, 1)
	m.ObserveSessionOp("get", true, time.Millisecond)
	m.ObserveRender(time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
