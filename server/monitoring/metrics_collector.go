package monitoring

import (
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// maxDurationSamples сколько последних длительностей хранится для среднего
const maxDurationSamples = 1000

// MetricsCollector собирает метрики HTTP запросов и пула соединений БД
type MetricsCollector struct {
	mu sync.Mutex

	// HTTP метрики
	httpRequestsTotal   int64
	httpRequestsSuccess int64
	httpRequestsError   int64
	httpRequestDuration []time.Duration
	requestsByRoute     map[string]int64

	// Пул соединений БД
	dbStats func() sql.DBStats

	startTime     time.Time
	lastResetTime time.Time
	now           func() time.Time
}

// NewMetricsCollector создает новый сборщик метрик.
// dbStats может быть nil, тогда метрики пула не отдаются.
func NewMetricsCollector(dbStats func() sql.DBStats) *MetricsCollector {
	now := time.Now()
	return &MetricsCollector{
		requestsByRoute: make(map[string]int64),
		dbStats:         dbStats,
		startTime:       now,
		lastResetTime:   now,
		now:             time.Now,
	}
}

// RecordHTTPRequest записывает HTTP запрос; ответы 5xx считаются ошибками
func (mc *MetricsCollector) RecordHTTPRequest(route string, status int, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.httpRequestsTotal++
	if status >= http.StatusInternalServerError {
		mc.httpRequestsError++
	} else {
		mc.httpRequestsSuccess++
	}

	if route == "" {
		route = "unmatched"
	}
	mc.requestsByRoute[route]++

	mc.httpRequestDuration = append(mc.httpRequestDuration, duration)
	if len(mc.httpRequestDuration) > maxDurationSamples {
		mc.httpRequestDuration = mc.httpRequestDuration[len(mc.httpRequestDuration)-maxDurationSamples:]
	}
}

// Middleware gin middleware, записывающий каждый запрос
func (mc *MetricsCollector) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := mc.now()
		c.Next()
		mc.RecordHTTPRequest(c.FullPath(), c.Writer.Status(), mc.now().Sub(start))
	}
}

// HTTPMetrics метрики HTTP слоя
type HTTPMetrics struct {
	RequestsTotal     int64            `json:"requests_total"`
	RequestsSuccess   int64            `json:"requests_success"`
	RequestsError     int64            `json:"requests_error"`
	SuccessRate       float64          `json:"success_rate"`
	AvgDurationMs     int64            `json:"avg_duration_ms"`
	RequestsPerSecond float64          `json:"requests_per_second"`
	ByRoute           map[string]int64 `json:"by_route"`
}

// DatabaseMetrics метрики пула соединений
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
	WaitDurationMs  int64 `json:"wait_duration_ms"`
}

// MetricsSnapshot снимок метрик
type MetricsSnapshot struct {
	HTTP          HTTPMetrics      `json:"http"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
	UptimeSeconds float64          `json:"uptime_seconds"`
	StartTime     string           `json:"start_time"`
	LastReset     string           `json:"last_reset"`
}

// GetMetrics возвращает текущие метрики
func (mc *MetricsCollector) GetMetrics() MetricsSnapshot {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	var avg time.Duration
	if len(mc.httpRequestDuration) > 0 {
		var total time.Duration
		for _, d := range mc.httpRequestDuration {
			total += d
		}
		avg = total / time.Duration(len(mc.httpRequestDuration))
	}

	successRate := 0.0
	if mc.httpRequestsTotal > 0 {
		successRate = float64(mc.httpRequestsSuccess) / float64(mc.httpRequestsTotal) * 100
	}

	uptime := mc.now().Sub(mc.startTime).Seconds()
	rps := 0.0
	if uptime > 0 {
		rps = float64(mc.httpRequestsTotal) / uptime
	}

	byRoute := make(map[string]int64, len(mc.requestsByRoute))
	for route, count := range mc.requestsByRoute {
		byRoute[route] = count
	}

	snapshot := MetricsSnapshot{
		HTTP: HTTPMetrics{
			RequestsTotal:     mc.httpRequestsTotal,
			RequestsSuccess:   mc.httpRequestsSuccess,
			RequestsError:     mc.httpRequestsError,
			SuccessRate:       successRate,
			AvgDurationMs:     avg.Milliseconds(),
			RequestsPerSecond: rps,
			ByRoute:           byRoute,
		},
		UptimeSeconds: uptime,
		StartTime:     mc.startTime.Format(time.RFC3339),
		LastReset:     mc.lastResetTime.Format(time.RFC3339),
	}

	if mc.dbStats != nil {
		stats := mc.dbStats()
		snapshot.Database = &DatabaseMetrics{
			OpenConnections: stats.OpenConnections,
			InUse:           stats.InUse,
			Idle:            stats.Idle,
			WaitCount:       stats.WaitCount,
			WaitDurationMs:  stats.WaitDuration.Milliseconds(),
		}
	}
	return snapshot
}

// Reset сбрасывает HTTP метрики
func (mc *MetricsCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.httpRequestsTotal = 0
	mc.httpRequestsSuccess = 0
	mc.httpRequestsError = 0
	mc.httpRequestDuration = nil
	mc.requestsByRoute = make(map[string]int64)
	mc.lastResetTime = mc.now()
}
