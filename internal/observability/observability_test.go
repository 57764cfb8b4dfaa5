package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMetricsMiddlewareRecordsRoutePattern(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/buildings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/buildings/123", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/buildings/{id}", "404")))
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordGateDecision(GateMissingToken)
	m.RecordGateDecision(GateMissingToken)
	m.RecordPermissionDenied("BUILDINGS:CREATE")
	m.RecordEmail("", "sent")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.gateDecisions.WithLabelValues(GateMissingToken)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.denials.WithLabelValues("BUILDINGS:CREATE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emails.WithLabelValues("raw", "sent")))
}

func TestMetricsHandlerExposesCollectors(t *testing.T) {
	m := NewMetrics()
	m.RecordGateDecision(GateAllowed)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `aquasync_gate_decisions_total{outcome="allowed"} 1`))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	m.RecordGateDecision(GateAllowed)
	m.RecordPermissionDenied("X:Y")
	m.RecordEmail("welcome", "sent")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.Middleware(next))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLoggerAddsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := context.WithValue(context.Background(), chimiddleware.RequestIDKey, "req-42")
	Logger(ctx, base).Info("hello")
	Logger(context.Background(), base).Info("plain")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
	assert.NotNil(t, Logger(ctx, nil))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "console")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger("", "")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))

	_, err = NewLogger("loud", "json")
	assert.ErrorContains(t, err, "invalid log level")
}
