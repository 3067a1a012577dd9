package monitoring

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mc := NewMetricsCollector(func() sql.DBStats {
		return sql.DBStats{OpenConnections: 2, InUse: 1, Idle: 1}
	})

	router := gin.New()
	router.Use(mc.Middleware())
	router.GET("/api/ratings/:providerName", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/ratings/health", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	for _, path := range []string{"/api/ratings/wise", "/api/ratings/ofx", "/api/ratings/health", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	snapshot := mc.GetMetrics()
	assert.Equal(t, int64(4), snapshot.HTTP.RequestsTotal)
	assert.Equal(t, int64(1), snapshot.HTTP.RequestsError)
	assert.Equal(t, int64(3), snapshot.HTTP.RequestsSuccess)
	assert.Equal(t, int64(2), snapshot.HTTP.ByRoute["/api/ratings/:providerName"])
	assert.Equal(t, int64(1), snapshot.HTTP.ByRoute["unmatched"])

	require.NotNil(t, snapshot.Database)
	assert.Equal(t, 2, snapshot.Database.OpenConnections)
}

func TestMetricsCollector_Reset(t *testing.T) {
	mc := NewMetricsCollector(nil)
	mc.RecordHTTPRequest("/api/ratings/:providerName", http.StatusOK, 10*time.Millisecond)
	mc.RecordHTTPRequest("/api/ratings/:providerName", http.StatusOK, 30*time.Millisecond)

	snapshot := mc.GetMetrics()
	assert.Equal(t, int64(20), snapshot.HTTP.AvgDurationMs)
	assert.Equal(t, 100.0, snapshot.HTTP.SuccessRate)
	assert.Nil(t, snapshot.Database)

	mc.Reset()
	snapshot = mc.GetMetrics()
	assert.Equal(t, int64(0), snapshot.HTTP.RequestsTotal)
	assert.Empty(t, snapshot.HTTP.ByRoute)
}

func TestMetricsCollector_BoundedSamples(t *testing.T) {
	mc := NewMetricsCollector(nil)
	for i := 0; i < maxDurationSamples+50; i++ {
		mc.RecordHTTPRequest("/x", http.StatusOK, time.Millisecond)
	}
	assert.Len(t, mc.httpRequestDuration, maxDurationSamples)
}
