package rating

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"ratingserver/internal/domain/repositories"
)

// service реализация domain service для рейтингов
type service struct {
	repo       repositories.RatingRepository
	normalizer *Normalizer
	fallback   *FallbackTable
	cache      ResultCache
	now        func() time.Time
	logger     *slog.Logger

	// generations растет при каждом Update/Delete ключа; Resolve кладет
	// результат в кэш, только если поколение не сменилось после чтения
	genMu       sync.Mutex
	generations map[string]uint64
}

// Option настраивает service
type Option func(*service)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger задает логгер сервиса
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService создает новый domain service для рейтингов
func NewService(
	repo repositories.RatingRepository,
	normalizer *Normalizer,
	fallback *FallbackTable,
	cache ResultCache,
	opts ...Option,
) Service {
	s := &service{
		repo:        repo,
		normalizer:  normalizer,
		fallback:    fallback,
		cache:       cache,
		now:         time.Now,
		logger:      slog.Default(),
		generations: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.normalizer == nil {
		s.normalizer = NewNormalizer(nil)
	}
	return s
}

// Kind возвращает вид рейтинга
func (s *service) Kind() string {
	return s.repo.Kind()
}

// Resolve разрешает рейтинг провайдера
func (s *service) Resolve(ctx context.Context, rawProviderName string) (*Result, error) {
	key, err := s.normalizer.Normalize(rawProviderName)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(key); ok {
		cached.FromCache = true
		return cached, nil
	}

	gen := s.generation(key)

	degraded := false
	record, err := s.repo.Get(ctx, key)
	switch {
	case err != nil:
		// Для виджета доступность важнее точности: ошибка хранилища = записи нет
		degraded = true
		s.logger.Warn("Rating store read failed, using fallback",
			"kind", s.Kind(),
			"provider", key,
			"error", err,
		)
	case record != nil:
		result := &Result{
			ProviderKey: key,
			Status:      StatusFound,
			Value:       record.Value,
			ReviewCount: record.ReviewCount,
			Source:      SourceStore,
			LastUpdated: record.LastUpdated,
		}
		s.cacheIfCurrent(key, gen, result)
		return result, nil
	}

	var result *Result
	if value, ok := s.fallback.Lookup(key); ok {
		result = &Result{
			ProviderKey: key,
			Status:      StatusFound,
			Value:       value,
			Source:      SourceFallback,
			LastUpdated: s.now(),
			Degraded:    degraded,
		}
	} else {
		result = &Result{
			ProviderKey: key,
			Status:      StatusNotFound,
			Degraded:    degraded,
		}
	}

	if !degraded {
		s.cacheIfCurrent(key, gen, result)
	}
	return result, nil
}

func (s *service) generation(key string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[key]
}

// cacheIfCurrent не дает медленному Resolve вернуть в кэш значение,
// прочитанное до параллельного Update
func (s *service) cacheIfCurrent(key string, gen uint64, result *Result) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[key] == gen {
		s.cache.Set(key, result)
	}
}

func (s *service) invalidate(key string) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.generations[key]++
	s.cache.Delete(key)
}

// Update административно обновляет рейтинг и сбрасывает запись кэша
func (s *service) Update(ctx context.Context, rawProviderName string, value float64) (*repositories.RatingRecord, error) {
	if math.IsNaN(value) || value < repositories.MinRatingValue || value > repositories.MaxRatingValue {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRatingValue, value)
	}

	key, err := s.normalizer.Normalize(rawProviderName)
	if err != nil {
		return nil, err
	}

	record := &repositories.RatingRecord{
		ProviderKey: key,
		Value:       value,
		Source:      repositories.RecordSourceAdmin,
		LastUpdated: s.now().UTC(),
	}

	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update rating for %s: %w", key, err)
	}

	s.invalidate(key)

	s.logger.Info("Rating updated",
		"kind", s.Kind(),
		"provider", key,
		"value", value,
	)

	return record, nil
}

// Delete удаляет сохраненный рейтинг провайдера
func (s *service) Delete(ctx context.Context, rawProviderName string) (string, error) {
	key, err := s.normalizer.Normalize(rawProviderName)
	if err != nil {
		return "", err
	}

	if err := s.repo.Delete(ctx, key); err != nil {
		return "", fmt.Errorf("failed to delete rating for %s: %w", key, err)
	}

	s.invalidate(key)
	return key, nil
}

// List возвращает все сохраненные записи
func (s *service) List(ctx context.Context) ([]repositories.RatingRecord, error) {
	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return records, nil
}

// Health проверяет доступность хранилища
func (s *service) Health(ctx context.Context) *Health {
	start := time.Now()
	err := s.repo.Ping(ctx)

	health := &Health{
		Kind:        s.Kind(),
		StoreStatus: StoreStatusConnected,
		Latency:     time.Since(start).String(),
		Cache:       s.cache.Stats(),
		CheckedAt:   s.now().UTC(),
	}
	if err != nil {
		health.StoreStatus = StoreStatusDisconnected
		health.StoreError = err.Error()
	}
	return health
}
