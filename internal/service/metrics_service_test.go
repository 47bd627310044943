package service

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest("GET", "/api/v1/students", 200, 20*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.ObserveGatewayCall("create_full_student", 10*time.Millisecond, nil)
	m.ObserveGatewayCall("create_full_student", 30*time.Millisecond, errors.New("boom"))
	m.RecordFormSubmission("create", errors.New("boom"))
	m.SetOpenFormSessions(3)

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.001)
	assert.Equal(t, uint64(2), snap.GatewayCalls)
	assert.Equal(t, uint64(1), snap.GatewayErrors)
	assert.InDelta(t, 20, snap.AverageGatewayCallDuration, 0.001)
	assert.Equal(t, uint64(1), snap.FormSubmissionFailures)
	assert.Equal(t, 3, snap.OpenFormSessions)
}

func TestMetricsHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveGatewayCall("get_facultades", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gateway_call_duration_seconds_count{outcome="ok",procedure="get_facultades"} 1`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveGatewayCall("delete_student", time.Millisecond, nil)
	m.RecordFormSubmission("edit", nil)
	m.SetOpenFormSessions(1)
	assert.Equal(t, 0, m.Snapshot().OpenFormSessions)
}
