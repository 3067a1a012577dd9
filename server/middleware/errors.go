package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	apperrors "ratingserver/server/errors"
)

var (
	globalErrorMetrics     *apperrors.ErrorMetricsCollector
	globalErrorMetricsOnce sync.Once
)

// GetErrorMetrics возвращает глобальный сборщик метрик ошибок
func GetErrorMetrics() *apperrors.ErrorMetricsCollector {
	globalErrorMetricsOnce.Do(func() {
		globalErrorMetrics = apperrors.NewErrorMetricsCollector()
	})
	return globalErrorMetrics
}

// HTTPError интерфейс для ошибок с HTTP статусом и сообщением
type HTTPError interface {
	error
	StatusCode() int
	UserMessage() string
	GetContext() string
	Unwrap() error
}

var _ HTTPError = (*apperrors.AppError)(nil)

// ErrorResponse структура ответа об ошибке
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// HandleGinError преобразует ошибку в JSON ответ, логирует ее и пишет в метрики.
// Ошибки без HTTP статуса отдаются как 500 без деталей.
func HandleGinError(c *gin.Context, err error) {
	reqID := GetRequestIDFromGin(c)
	endpoint := c.FullPath()
	if endpoint == "" {
		endpoint = c.Request.URL.Path
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError("unhandled error", err)
	}

	GetErrorMetrics().RecordError(appErr, endpoint, reqID)

	attrs := []any{
		"error", appErr.Unwrap(),
		"user_message", appErr.UserMessage(),
		"context", appErr.GetContext(),
		"status_code", appErr.StatusCode(),
		"request_id", reqID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	if appErr.StatusCode() >= http.StatusInternalServerError {
		slog.Error("HTTP error", attrs...)
	} else {
		slog.Warn("HTTP error", attrs...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.StatusCode(), ErrorResponse{
		Success:   false,
		Message:   appErr.UserMessage(),
		RequestID: reqID,
	})
}
