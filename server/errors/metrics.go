package errors

import (
	"net/http"
	"sync"
	"time"
)

const defaultMaxLastErrors = 50

// ErrorMetricsCollector собирает метрики ошибок HTTP слоя
type ErrorMetricsCollector struct {
	mu sync.RWMutex

	totalErrors      int64
	errorsByType     map[string]int64
	errorsByCode     map[int]int64
	errorsByEndpoint map[string]int64

	lastErrors    []ErrorRecord
	maxLastErrors int

	startTime time.Time
}

// ErrorRecord запись об ошибке
type ErrorRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"`
	Code        int       `json:"code"`
	Message     string    `json:"message"`
	Endpoint    string    `json:"endpoint"`
	RequestID   string    `json:"request_id,omitempty"`
	UserMessage string    `json:"user_message"`
}

// ErrorMetricsSnapshot копия метрик на момент запроса
type ErrorMetricsSnapshot struct {
	TotalErrors      int64            `json:"total_errors"`
	ErrorsByType     map[string]int64 `json:"errors_by_type"`
	ErrorsByCode     map[int]int64    `json:"errors_by_code"`
	ErrorsByEndpoint map[string]int64 `json:"errors_by_endpoint"`
	LastErrors       []ErrorRecord    `json:"last_errors"`
	UptimeSeconds    float64          `json:"uptime_seconds"`
}

// NewErrorMetricsCollector создает новый сборщик метрик ошибок
func NewErrorMetricsCollector() *ErrorMetricsCollector {
	return &ErrorMetricsCollector{
		errorsByType:     make(map[string]int64),
		errorsByCode:     make(map[int]int64),
		errorsByEndpoint: make(map[string]int64),
		maxLastErrors:    defaultMaxLastErrors,
		startTime:        time.Now(),
	}
}

// RecordError записывает ошибку в метрики
func (emc *ErrorMetricsCollector) RecordError(err *AppError, endpoint, requestID string) {
	if err == nil {
		return
	}

	emc.mu.Lock()
	defer emc.mu.Unlock()

	errorType := errorTypeForCode(err.Code)

	emc.totalErrors++
	emc.errorsByType[errorType]++
	emc.errorsByCode[err.Code]++
	if endpoint != "" {
		emc.errorsByEndpoint[endpoint]++
	}

	record := ErrorRecord{
		Timestamp:   time.Now(),
		Type:        errorType,
		Code:        err.Code,
		Message:     err.Error(),
		Endpoint:    endpoint,
		RequestID:   requestID,
		UserMessage: err.UserMessage(),
	}
	emc.lastErrors = append([]ErrorRecord{record}, emc.lastErrors...)
	if len(emc.lastErrors) > emc.maxLastErrors {
		emc.lastErrors = emc.lastErrors[:emc.maxLastErrors]
	}
}

// errorTypeForCode определяет тип ошибки по коду
func errorTypeForCode(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "ValidationError"
	case http.StatusForbidden:
		return "ForbiddenError"
	case http.StatusNotFound:
		return "NotFoundError"
	case http.StatusInternalServerError:
		return "InternalError"
	case http.StatusServiceUnavailable:
		return "ServiceUnavailableError"
	default:
		return "UnknownError"
	}
}

// Snapshot возвращает копию всех метрик
func (emc *ErrorMetricsCollector) Snapshot() ErrorMetricsSnapshot {
	emc.mu.RLock()
	defer emc.mu.RUnlock()

	snapshot := ErrorMetricsSnapshot{
		TotalErrors:      emc.totalErrors,
		ErrorsByType:     make(map[string]int64, len(emc.errorsByType)),
		ErrorsByCode:     make(map[int]int64, len(emc.errorsByCode)),
		ErrorsByEndpoint: make(map[string]int64, len(emc.errorsByEndpoint)),
		LastErrors:       make([]ErrorRecord, len(emc.lastErrors)),
		UptimeSeconds:    time.Since(emc.startTime).Seconds(),
	}
	for k, v := range emc.errorsByType {
		snapshot.ErrorsByType[k] = v
	}
	for k, v := range emc.errorsByCode {
		snapshot.ErrorsByCode[k] = v
	}
	for k, v := range emc.errorsByEndpoint {
		snapshot.ErrorsByEndpoint[k] = v
	}
	copy(snapshot.LastErrors, emc.lastErrors)
	return snapshot
}

// Reset сбрасывает все метрики
func (emc *ErrorMetricsCollector) Reset() {
	emc.mu.Lock()
	defer emc.mu.Unlock()

	emc.totalErrors = 0
	emc.errorsByType = make(map[string]int64)
	emc.errorsByCode = make(map[int]int64)
	emc.errorsByEndpoint = make(map[string]int64)
	emc.lastErrors = nil
	emc.startTime = time.Now()
}
