package persistence

import (
	"context"
	"fmt"

	"ratingserver/database"
	"ratingserver/internal/domain/repositories"
)

// ratingRepository реализация репозитория рейтингов одного вида.
// Адаптер между domain интерфейсом и infrastructure (database.RatingsDB).
// Любая ошибка драйвера оборачивается в repositories.ErrStoreUnavailable.
type ratingRepository struct {
	db   *database.RatingsDB
	kind string
}

// NewRatingRepository создает новый репозиторий рейтингов
func NewRatingRepository(db *database.RatingsDB, kind string) repositories.RatingRepository {
	return &ratingRepository{
		db:   db,
		kind: kind,
	}
}

// Kind возвращает вид рейтинга
func (r *ratingRepository) Kind() string {
	return r.kind
}

// Get возвращает запись по ключу провайдера
func (r *ratingRepository) Get(ctx context.Context, providerKey string) (*repositories.RatingRecord, error) {
	row, err := r.db.GetRating(ctx, r.kind, providerKey)
	if err != nil {
		return nil, storeError(err)
	}
	if row == nil {
		return nil, nil
	}
	return toDomainRecord(row), nil
}

// Upsert вставляет или полностью заменяет запись
func (r *ratingRepository) Upsert(ctx context.Context, record *repositories.RatingRecord) error {
	if err := r.db.UpsertRating(ctx, r.kind, database.RatingRow{
		ProviderKey: record.ProviderKey,
		Value:       record.Value,
		ReviewCount: record.ReviewCount,
		Source:      record.Source,
		LastUpdated: record.LastUpdated,
	}); err != nil {
		return storeError(err)
	}
	return nil
}

// FindAll возвращает все записи
func (r *ratingRepository) FindAll(ctx context.Context) ([]repositories.RatingRecord, error) {
	rows, err := r.db.ListRatings(ctx, r.kind)
	if err != nil {
		return nil, storeError(err)
	}

	records := make([]repositories.RatingRecord, len(rows))
	for i := range rows {
		records[i] = *toDomainRecord(&rows[i])
	}
	return records, nil
}

// Delete удаляет запись; отсутствие записи не ошибка
func (r *ratingRepository) Delete(ctx context.Context, providerKey string) error {
	if _, err := r.db.DeleteRating(ctx, r.kind, providerKey); err != nil {
		return storeError(err)
	}
	return nil
}

// Ping проверяет доступность хранилища
func (r *ratingRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return storeError(err)
	}
	return nil
}

func storeError(err error) error {
	return fmt.Errorf("%w: %v", repositories.ErrStoreUnavailable, err)
}

// toDomainRecord преобразует строку БД в domain модель
func toDomainRecord(row *database.RatingRow) *repositories.RatingRecord {
	return &repositories.RatingRecord{
		ProviderKey: row.ProviderKey,
		Value:       row.Value,
		ReviewCount: row.ReviewCount,
		Source:      row.Source,
		LastUpdated: row.LastUpdated,
	}
}
