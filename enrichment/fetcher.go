package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ratingserver/internal/domain/rating"
	"ratingserver/internal/domain/repositories"
)

// DefaultFallbackRating нейтральное значение, если внешний источник не ответил
const DefaultFallbackRating = 4.0

// FetchResult итог загрузки рейтинга одного провайдера
type FetchResult struct {
	Record repositories.RatingRecord
	// Stored false означает, что Record содержит fallback и в хранилище не записан
	Stored bool
	// Err причина fallback; nil при успешной загрузке
	Err error
}

// Fetcher загружает рейтинг из внешнего источника и сохраняет его
type Fetcher struct {
	source     RatingSource
	repo       repositories.RatingRepository
	normalizer *rating.Normalizer
	now        func() time.Time
	logger     *slog.Logger
}

// NewFetcher создает загрузчик рейтингов. Вид source и repo должен совпадать.
func NewFetcher(source RatingSource, repo repositories.RatingRepository, normalizer *rating.Normalizer) *Fetcher {
	if normalizer == nil {
		normalizer = rating.NewNormalizer(nil)
	}
	return &Fetcher{
		source:     source,
		repo:       repo,
		normalizer: normalizer,
		now:        time.Now,
		logger:     slog.Default(),
	}
}

// WithClock подменяет источник времени
func (f *Fetcher) WithClock(now func() time.Time) *Fetcher {
	if now != nil {
		f.now = now
	}
	return f
}

// WithLogger задает логгер
func (f *Fetcher) WithLogger(logger *slog.Logger) *Fetcher {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// Kind вид рейтинга загрузчика
func (f *Fetcher) Kind() string {
	return f.repo.Kind()
}

// FetchAndStore загружает рейтинг провайдера и делает upsert в хранилище.
// Сбой внешнего источника или рейтинг вне шкалы 0..5 не ошибка: возвращается
// fallback запись. В отличие от успешной загрузки fallback в хранилище не
// пишется, чтобы заглушка не перезаписала сохраненный рейтинг и не считалась
// свежей при следующем прогоне. Ошибка возвращается только если ключ не
// нормализуется или хранилище отказало при записи.
func (f *Fetcher) FetchAndStore(ctx context.Context, provider rating.ProviderEntry) (*FetchResult, error) {
	key, err := f.normalizer.Normalize(provider.Key)
	if err != nil {
		return nil, err
	}

	now := f.now().UTC()

	fetched, err := f.source.Lookup(ctx, provider)
	switch {
	case err != nil:
	case fetched == nil:
		err = ErrMissingRating
	case !inRatingRange(fetched.Value):
		err = fmt.Errorf("%w: %v", ErrRatingRange, fetched.Value)
	}
	if err != nil {
		fetchErr := fmt.Errorf("%w: %s/%s: %w", rating.ErrExternalFetchFailed, f.source.Name(), key, err)
		f.logger.Warn("External rating fetch failed, using fallback",
			"source", f.source.Name(),
			"provider", key,
			"fallback", DefaultFallbackRating,
			"error", err,
		)
		return &FetchResult{
			Record: repositories.RatingRecord{
				ProviderKey: key,
				Value:       DefaultFallbackRating,
				Source:      rating.SourceFallback,
				LastUpdated: now,
			},
			Stored: false,
			Err:    fetchErr,
		}, nil
	}

	record := repositories.RatingRecord{
		ProviderKey: key,
		Value:       fetched.Value,
		ReviewCount: fetched.ReviewCount,
		Source:      fetched.Source,
		LastUpdated: now,
	}

	if err := f.repo.Upsert(ctx, &record); err != nil {
		return &FetchResult{Record: record}, fmt.Errorf("failed to store %s rating for %s: %w", f.Kind(), key, err)
	}

	f.logger.Info("Rating fetched and stored",
		"source", f.source.Name(),
		"provider", key,
		"value", record.Value,
		"review_count", record.ReviewCount,
	)

	return &FetchResult{Record: record, Stored: true}, nil
}
