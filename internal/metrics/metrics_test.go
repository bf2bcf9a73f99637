package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusBucket(t *testing.T) {
	assert.Equal(t, "1xx", statusBucket(101))
	assert.Equal(t, "2xx", statusBucket(200))
	assert.Equal(t, "3xx", statusBucket(302))
	assert.Equal(t, "4xx", statusBucket(404))
	assert.Equal(t, "5xx", statusBucket(502))
}

func TestNewIsIndependentPerInstance(t *testing.T) {
	first := New()
	second := New()

	first.IncSnapshotRefresh(OutcomeWritten)

	assert.Equal(t, 1.0, testutil.ToFloat64(first.snapshotRefresh.WithLabelValues(OutcomeWritten)))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.snapshotRefresh.WithLabelValues(OutcomeWritten)))
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := New()
	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/api/stats", func(c *gin.Context) { c.Status(http.StatusUnauthorized) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/stats", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("unmatched", "4xx")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.IncProviderFetch("youtube", OutcomeOK)
	m.ObserveRequest("/api/stats", http.StatusOK, 10*time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, `creatorstats_provider_fetch_total{outcome="ok",provider="youtube"} 1`))
	assert.Contains(t, body, "creatorstats_http_request_duration_seconds")
}
