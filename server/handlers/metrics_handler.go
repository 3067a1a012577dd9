package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ratingserver/server/errors"
	"ratingserver/server/middleware"
	"ratingserver/server/monitoring"
)

// Authorizer проверяет административный ключ
type Authorizer interface {
	Authorize(authKey string) error
}

// MetricsHandler обработчик метрик ошибок и запросов.
// Оба эндпоинта требуют административный ключ.
type MetricsHandler struct {
	authorizer Authorizer
	collector  *monitoring.MetricsCollector
}

// NewMetricsHandler создает новый обработчик метрик; collector может быть nil
func NewMetricsHandler(authorizer Authorizer, collector *monitoring.MetricsCollector) *MetricsHandler {
	return &MetricsHandler{
		authorizer: authorizer,
		collector:  collector,
	}
}

func (h *MetricsHandler) authorize(c *gin.Context) bool {
	if err := h.authorizer.Authorize(c.GetHeader("X-Admin-Key")); err != nil {
		middleware.HandleGinError(c, apperrors.NewForbiddenError("invalid admin key", err))
		return false
	}
	return true
}

// HandleGetErrorMetrics возвращает метрики ошибок HTTP слоя
// @Summary Метрики ошибок
// @Tags monitoring
// @Produce json
// @Param X-Admin-Key header string true "Административный ключ"
// @Success 200 {object} errors.ErrorMetricsSnapshot
// @Failure 403 {object} middleware.ErrorResponse "Неверный ключ"
// @Router /errors/metrics [get]
func (h *MetricsHandler) HandleGetErrorMetrics(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	c.JSON(http.StatusOK, middleware.GetErrorMetrics().Snapshot())
}

// HandleGetMetrics возвращает метрики запросов и пула БД
// @Summary Метрики запросов
// @Tags monitoring
// @Produce json
// @Param X-Admin-Key header string true "Административный ключ"
// @Success 200 {object} monitoring.MetricsSnapshot
// @Failure 403 {object} middleware.ErrorResponse "Неверный ключ"
// @Failure 404 {object} middleware.ErrorResponse "Метрики отключены"
// @Router /metrics [get]
func (h *MetricsHandler) HandleGetMetrics(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	if h.collector == nil {
		middleware.HandleGinError(c, apperrors.NewNotFoundError("metrics are disabled", nil))
		return
	}
	c.JSON(http.StatusOK, h.collector.GetMetrics())
}
