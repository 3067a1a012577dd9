package enrichment

import (
	"context"
	"errors"
	"math"
	"time"

	"golang.org/x/time/rate"

	"ratingserver/internal/domain/rating"
	"ratingserver/internal/domain/repositories"
)

// Ошибки внешних источников рейтингов
var (
	ErrMissingAPIKey  = errors.New("api key is not configured")
	ErrNoCandidates   = errors.New("no place candidates found")
	ErrMissingRating  = errors.New("rating is missing in response")
	ErrRatingRange    = errors.New("rating is out of range")
	ErrNoDomain       = errors.New("provider has no review domain")
	ErrCircuitOpen    = errors.New("circuit breaker is open")
	ErrUnexpectedCode = errors.New("unexpected response status")
)

// EnricherConfig конфигурация внешнего источника рейтингов
type EnricherConfig struct {
	APIKey      string        `json:"api_key,omitempty"`
	BaseURL     string        `json:"base_url"`
	Timeout     time.Duration `json:"timeout"`
	MaxRequests int           `json:"max_requests"` // Максимум запросов в минуту
	Enabled     bool          `json:"enabled"`
	UserAgent   string        `json:"user_agent,omitempty"`
}

// FetchedRating рейтинг, полученный от внешнего источника
type FetchedRating struct {
	Value       float64
	ReviewCount int
	Source      string
	ExternalID  string
}

// RatingSource внешний источник рейтингов одного вида
type RatingSource interface {
	// Lookup ищет рейтинг провайдера; любая ошибка означает "нет данных"
	Lookup(ctx context.Context, provider rating.ProviderEntry) (*FetchedRating, error)

	// Name название источника для логов
	Name() string

	// Kind вид рейтинга, в хранилище которого пишется результат
	Kind() string
}

// inRatingRange проверяет, что внешний рейтинг помещается в шкалу хранилища
func inRatingRange(value float64) bool {
	return !math.IsNaN(value) && value >= repositories.MinRatingValue && value <= repositories.MaxRatingValue
}

// newRequestLimiter ограничивает исходящие запросы клиента до MaxRequests в минуту
func newRequestLimiter(config *EnricherConfig) *rate.Limiter {
	if config.MaxRequests <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.MaxRequests)), 1)
}

func applyDefaults(config *EnricherConfig, baseURL string) {
	if config.BaseURL == "" {
		config.BaseURL = baseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxRequests == 0 {
		config.MaxRequests = 60
	}
	if config.UserAgent == "" {
		config.UserAgent = "RatingServer/1.0"
	}
}
