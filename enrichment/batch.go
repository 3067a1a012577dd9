package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"ratingserver/internal/domain/rating"
	"ratingserver/internal/domain/repositories"
)

// Значения по умолчанию для пакетной загрузки
const (
	DefaultFetchDelay = time.Second
	DefaultStaleAfter = 7 * 24 * time.Hour
)

// BatchConfig настройки пакетной загрузки
type BatchConfig struct {
	// Delay минимальный интервал между обращениями к внешнему источнику; 0 без ограничения
	Delay time.Duration
	// StaleAfter возраст записи, после которого она обновляется
	StaleAfter time.Duration
	Now        func() time.Time
	Logger     *slog.Logger
}

// BatchReport итог пакетной загрузки
type BatchReport struct {
	Kind     string                      `json:"kind"`
	Stored   []repositories.RatingRecord `json:"stored"`
	Skipped  []string                    `json:"skipped"`
	Fallback []string                    `json:"fallback"`
	Failed   []string                    `json:"failed"`
	Duration time.Duration               `json:"duration"`
}

// BatchDriver последовательно обновляет рейтинги всех провайдеров справочника
type BatchDriver struct {
	fetcher    *Fetcher
	repo       repositories.RatingRepository
	providers  []rating.ProviderEntry
	limiter    *rate.Limiter
	staleAfter time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewBatchDriver создает драйвер пакетной загрузки
func NewBatchDriver(fetcher *Fetcher, repo repositories.RatingRepository, providers []rating.ProviderEntry, config BatchConfig) *BatchDriver {
	limit := rate.Inf
	if config.Delay > 0 {
		limit = rate.Every(config.Delay)
	}
	if config.StaleAfter <= 0 {
		config.StaleAfter = DefaultStaleAfter
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &BatchDriver{
		fetcher:    fetcher,
		repo:       repo,
		providers:  providers,
		limiter:    rate.NewLimiter(limit, 1),
		staleAfter: config.StaleAfter,
		now:        config.Now,
		logger:     config.Logger,
	}
}

// Run обходит провайдеров по одному. Ошибка одного провайдера не прерывает обход;
// прервать его может только отмена ctx между провайдерами.
// Свежие записи пропускаются, если force не задан.
func (d *BatchDriver) Run(ctx context.Context, force bool) (*BatchReport, error) {
	start := d.now()
	report := &BatchReport{Kind: d.fetcher.Kind()}

	d.logger.Info("Rating batch started",
		"kind", report.Kind,
		"providers", len(d.providers),
		"force", force,
	)

	for _, provider := range d.providers {
		if err := ctx.Err(); err != nil {
			report.Duration = d.now().Sub(start)
			return report, err
		}

		if !force && d.isFresh(ctx, provider.Key) {
			report.Skipped = append(report.Skipped, provider.Key)
			continue
		}

		if err := d.limiter.Wait(ctx); err != nil {
			report.Duration = d.now().Sub(start)
			return report, fmt.Errorf("rate limit wait failed: %w", err)
		}

		result, err := d.fetcher.FetchAndStore(ctx, provider)
		switch {
		case err != nil:
			report.Failed = append(report.Failed, provider.Key)
			d.logger.Error("Rating batch provider failed",
				"kind", report.Kind,
				"provider", provider.Key,
				"error", err,
			)
		case !result.Stored:
			report.Fallback = append(report.Fallback, provider.Key)
		default:
			report.Stored = append(report.Stored, result.Record)
		}
	}

	report.Duration = d.now().Sub(start)
	d.logger.Info("Rating batch completed",
		"kind", report.Kind,
		"stored", len(report.Stored),
		"skipped", len(report.Skipped),
		"fallback", len(report.Fallback),
		"failed", len(report.Failed),
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// isFresh сообщает, что запись есть и еще не устарела.
// Ошибка чтения считается отсутствием записи.
func (d *BatchDriver) isFresh(ctx context.Context, providerKey string) bool {
	record, err := d.repo.Get(ctx, providerKey)
	if err != nil {
		d.logger.Warn("Rating batch freshness check failed",
			"provider", providerKey,
			"error", err,
		)
		return false
	}
	return record != nil && !record.IsStale(d.now(), d.staleAfter)
}
