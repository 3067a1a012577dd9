package rating

import (
	"context"
	"time"

	"ratingserver/internal/domain/repositories"
)

// Service интерфейс бизнес-логики разрешения рейтингов одного вида.
// Единственная точка входа для HTTP слоя.
type Service interface {
	// Resolve: нормализация -> кэш -> хранилище -> таблица fallback
	Resolve(ctx context.Context, rawProviderName string) (*Result, error)

	// Административные операции
	Update(ctx context.Context, rawProviderName string, value float64) (*repositories.RatingRecord, error)
	Delete(ctx context.Context, rawProviderName string) (string, error)
	List(ctx context.Context) ([]repositories.RatingRecord, error)

	Health(ctx context.Context) *Health
	Kind() string
}

// Status тег результата разрешения
type Status string

const (
	StatusFound    Status = "found"
	StatusNotFound Status = "not_found"
)

// Источник найденного значения
const (
	SourceStore    = "store"
	SourceFallback = "fallback"
)

// Result результат разрешения рейтинга: Found{value, source, lastUpdated} или NotFound
type Result struct {
	ProviderKey string    `json:"provider"`
	Status      Status    `json:"status"`
	Value       float64   `json:"value,omitempty"`
	ReviewCount int       `json:"review_count,omitempty"`
	Source      string    `json:"source,omitempty"`
	LastUpdated time.Time `json:"last_updated,omitempty"`

	// FromCache выставляется при попадании в кэш запросов
	FromCache bool `json:"cached"`

	// Degraded означает, что хранилище ответило ошибкой и значение взято из fallback
	// либо отсутствует. Такие результаты не кэшируются.
	Degraded bool `json:"degraded,omitempty"`
}

// Found сообщает, найден ли рейтинг
func (r *Result) Found() bool {
	return r != nil && r.Status == StatusFound
}

// ResultCache кэш результатов разрешения, принадлежащий сервису
type ResultCache interface {
	Get(providerKey string) (*Result, bool)
	Set(providerKey string, result *Result)
	Delete(providerKey string)
	Stats() CacheStats
}

// CacheStats статистика кэша
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// Статусы хранилища для health
const (
	StoreStatusConnected    = "connected"
	StoreStatusDisconnected = "disconnected"
)

// Health состояние сервиса рейтингов
type Health struct {
	Kind        string     `json:"kind"`
	StoreStatus string     `json:"store_status"`
	StoreError  string     `json:"store_error,omitempty"`
	Latency     string     `json:"latency"`
	Cache       CacheStats `json:"cache"`
	CheckedAt   time.Time  `json:"checked_at"`
}

// Healthy сообщает, доступно ли хранилище
func (h *Health) Healthy() bool {
	return h.StoreStatus == StoreStatusConnected
}
