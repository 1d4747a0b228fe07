package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveLLMRequest("openai", "gpt", "chat", "ok", time.Second)
	m.IncBiteOutcome("fallback")
	m.AddInsights(3)
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCountersAccumulate(t *testing.T) {
	m := NewMetrics()
	m.IncBiteOutcome("generated")
	m.IncBiteOutcome("generated")
	m.IncBiteOutcome("fallback")
	m.ObserveLLMRequest("anthropic", "claude", "chat", "error", 2*time.Second)
	m.AddInsights(4)
	m.AddInsights(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.biteOutcomes.WithLabelValues("generated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.biteOutcomes.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmRequests.WithLabelValues("anthropic", "claude", "chat", "error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.insightsInserted))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/stroke-bites/today", "200", 30*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "strokecovery_api_requests_total"))
}

func TestParseHeaders(t *testing.T) {
	h := ParseHeaders(" a=1, b = 2 ,bad, =x,c=")
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, h)
	assert.Nil(t, ParseHeaders(""))
}
