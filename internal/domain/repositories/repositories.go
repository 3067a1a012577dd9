package repositories

import (
	"context"
)

// RatingRepository интерфейс хранилища рейтингов одного вида.
// Все записи - upsert целиком, без частичного слияния полей.
type RatingRepository interface {
	// Get возвращает запись по ключу; (nil, nil) если записи нет
	Get(ctx context.Context, providerKey string) (*RatingRecord, error)
	Upsert(ctx context.Context, record *RatingRecord) error
	FindAll(ctx context.Context) ([]RatingRecord, error)
	Delete(ctx context.Context, providerKey string) error

	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error

	// Kind возвращает вид рейтинга, который обслуживает репозиторий
	Kind() string
}
