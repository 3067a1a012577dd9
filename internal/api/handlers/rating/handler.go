package rating

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ratingapp "ratingserver/internal/application/rating"
	ratingdomain "ratingserver/internal/domain/rating"
	"ratingserver/internal/domain/repositories"
	apperrors "ratingserver/server/errors"
	"ratingserver/server/middleware"
)

// AdminKeyHeader заголовок с административным ключом для GET/DELETE
const AdminKeyHeader = "X-Admin-Key"

// Handler HTTP обработчик рейтингов одного вида
type Handler struct {
	useCase *ratingapp.UseCase
	kind    string
}

// NewHandler создает новый HTTP обработчик для вида рейтинга
func NewHandler(useCase *ratingapp.UseCase, kind string) *Handler {
	return &Handler{
		useCase: useCase,
		kind:    kind,
	}
}

// Kind возвращает вид рейтинга обработчика
func (h *Handler) Kind() string {
	return h.kind
}

// RatingData данные рейтинга для виджета
type RatingData struct {
	Provider    string    `json:"provider"`
	Value       float64   `json:"value"`
	ReviewCount int       `json:"reviewCount,omitempty"`
	Source      string    `json:"source"`
	LastUpdated time.Time `json:"lastUpdated"`
	Cached      bool      `json:"cached"`
}

// RatingResponse ответ с рейтингом провайдера
type RatingResponse struct {
	Success bool       `json:"success"`
	Data    RatingData `json:"data"`
}

// UpdateData данные об обновленном рейтинге
type UpdateData struct {
	Provider    string    `json:"provider"`
	Rating      float64   `json:"rating"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// UpdateResponse ответ на административное обновление
type UpdateResponse struct {
	Success bool       `json:"success"`
	Data    UpdateData `json:"data"`
}

// ListResponse ответ со списком сохраненных рейтингов
type ListResponse struct {
	Success bool                        `json:"success"`
	Count   int                         `json:"count"`
	Data    []repositories.RatingRecord `json:"data"`
}

// DeleteResponse ответ на удаление рейтинга
type DeleteResponse struct {
	Success bool              `json:"success"`
	Data    map[string]string `json:"data"`
}

// HealthResponse ответ о состоянии хранилища
type HealthResponse struct {
	Success bool                `json:"success"`
	Data    ratingdomain.Health `json:"data"`
}

// HandleGetRating возвращает рейтинг провайдера
// @Summary Получить рейтинг провайдера
// @Description Разрешает имя провайдера в рейтинг: кэш, хранилище, затем таблица fallback
// @Tags ratings
// @Produce json
// @Param providerName path string true "Имя провайдера в любом написании"
// @Success 200 {object} RatingResponse "Рейтинг найден"
// @Failure 400 {object} middleware.ErrorResponse "Имя не нормализуется"
// @Failure 404 {object} middleware.ErrorResponse "Рейтинг не найден"
// @Router /ratings/{providerName} [get]
func (h *Handler) HandleGetRating(c *gin.Context) {
	providerName := c.Param("providerName")

	result, err := h.useCase.Resolve(c.Request.Context(), h.kind, providerName)
	if err != nil {
		middleware.HandleGinError(c, h.toAppError(err, providerName))
		return
	}

	if !result.Found() {
		middleware.HandleGinError(c, apperrors.NewNotFoundError("rating not found", nil).
			WithContext(h.kind+"/"+result.ProviderKey))
		return
	}

	c.JSON(http.StatusOK, RatingResponse{
		Success: true,
		Data: RatingData{
			Provider:    result.ProviderKey,
			Value:       result.Value,
			ReviewCount: result.ReviewCount,
			Source:      result.Source,
			LastUpdated: result.LastUpdated,
			Cached:      result.FromCache,
		},
	})
}

// HandleUpdateRating административно обновляет рейтинг
// @Summary Обновить рейтинг провайдера
// @Description Полностью заменяет сохраненный рейтинг и сбрасывает кэш для провайдера
// @Tags ratings
// @Accept json
// @Produce json
// @Param request body ratingapp.UpdateRequest true "Провайдер, значение и ключ"
// @Success 200 {object} UpdateResponse "Рейтинг обновлен"
// @Failure 400 {object} middleware.ErrorResponse "Некорректное значение"
// @Failure 403 {object} middleware.ErrorResponse "Неверный ключ"
// @Failure 503 {object} middleware.ErrorResponse "Хранилище недоступно"
// @Router /ratings/update [post]
func (h *Handler) HandleUpdateRating(c *gin.Context) {
	var req ratingapp.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleGinError(c, apperrors.NewValidationError("invalid request body", err))
		return
	}

	record, err := h.useCase.Update(c.Request.Context(), h.kind, req)
	if err != nil {
		middleware.HandleGinError(c, h.toAppError(err, req.ProviderName))
		return
	}

	c.JSON(http.StatusOK, UpdateResponse{
		Success: true,
		Data: UpdateData{
			Provider:    record.ProviderKey,
			Rating:      record.Value,
			LastUpdated: record.LastUpdated,
		},
	})
}

// HandleListRatings возвращает все сохраненные рейтинги
// @Summary Список сохраненных рейтингов
// @Tags ratings
// @Produce json
// @Param X-Admin-Key header string true "Административный ключ"
// @Success 200 {object} ListResponse
// @Failure 403 {object} middleware.ErrorResponse "Неверный ключ"
// @Failure 503 {object} middleware.ErrorResponse "Хранилище недоступно"
// @Router /ratings [get]
func (h *Handler) HandleListRatings(c *gin.Context) {
	records, err := h.useCase.List(c.Request.Context(), h.kind, c.GetHeader(AdminKeyHeader))
	if err != nil {
		middleware.HandleGinError(c, h.toAppError(err, ""))
		return
	}

	if records == nil {
		records = []repositories.RatingRecord{}
	}
	c.JSON(http.StatusOK, ListResponse{
		Success: true,
		Count:   len(records),
		Data:    records,
	})
}

// HandleDeleteRating удаляет сохраненный рейтинг
// @Summary Удалить рейтинг провайдера
// @Tags ratings
// @Produce json
// @Param providerName path string true "Имя провайдера"
// @Param X-Admin-Key header string true "Административный ключ"
// @Success 200 {object} DeleteResponse
// @Failure 403 {object} middleware.ErrorResponse "Неверный ключ"
// @Router /ratings/{providerName} [delete]
func (h *Handler) HandleDeleteRating(c *gin.Context) {
	providerName := c.Param("providerName")

	key, err := h.useCase.Delete(c.Request.Context(), h.kind, providerName, c.GetHeader(AdminKeyHeader))
	if err != nil {
		middleware.HandleGinError(c, h.toAppError(err, providerName))
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{
		Success: true,
		Data:    map[string]string{"provider": key},
	})
}

// HandleHealth возвращает состояние хранилища рейтингов
// @Summary Состояние хранилища рейтингов
// @Tags ratings
// @Produce json
// @Success 200 {object} HealthResponse "Хранилище доступно"
// @Failure 503 {object} HealthResponse "Хранилище недоступно"
// @Router /ratings/health [get]
func (h *Handler) HandleHealth(c *gin.Context) {
	health, err := h.useCase.Health(c.Request.Context(), h.kind)
	if err != nil {
		middleware.HandleGinError(c, h.toAppError(err, ""))
		return
	}

	status := http.StatusOK
	if !health.Healthy() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, HealthResponse{
		Success: health.Healthy(),
		Data:    *health,
	})
}

// toAppError сопоставляет доменные ошибки HTTP статусам
func (h *Handler) toAppError(err error, providerName string) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, ratingdomain.ErrInvalidProviderKey):
		appErr = apperrors.NewValidationError("invalid provider name", err)
	case errors.Is(err, ratingdomain.ErrInvalidRatingValue):
		appErr = apperrors.NewValidationError("rating must be a number between 0 and 5", err)
	case errors.Is(err, ratingdomain.ErrUnauthorized):
		appErr = apperrors.NewForbiddenError("invalid admin key", err)
	case errors.Is(err, ratingdomain.ErrStoreUnavailable):
		appErr = apperrors.NewServiceUnavailableError("rating store unavailable", err)
	default:
		appErr = apperrors.NewInternalError("rating operation failed", err)
	}

	if providerName != "" {
		return appErr.WithContext(h.kind + "/" + providerName)
	}
	return appErr.WithContext(h.kind)
}
