package container

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"sync"

	"ratingserver/database"
	"ratingserver/enrichment"
	ratinghandler "ratingserver/internal/api/handlers/rating"
	ratingapp "ratingserver/internal/application/rating"
	"ratingserver/internal/config"
	ratingdomain "ratingserver/internal/domain/rating"
	"ratingserver/internal/domain/repositories"
	"ratingserver/internal/infrastructure/cache"
	"ratingserver/internal/infrastructure/persistence"
)

// Kinds виды рейтингов в порядке регистрации
var Kinds = []string{repositories.KindGoogle, repositories.KindTrustpilot}

// Container контейнер зависимостей сервиса рейтингов.
// Управляет жизненным циклом БД и фоновой очистки кэшей.
type Container struct {
	mu sync.RWMutex

	Config  *config.Config
	Logger  *slog.Logger
	Catalog *ratingdomain.Catalog

	DB *database.RatingsDB

	Normalizer   *ratingdomain.Normalizer
	Repositories map[string]repositories.RatingRepository
	Caches       map[string]*cache.RatingCache
	Services     map[string]ratingdomain.Service

	UseCase  *ratingapp.UseCase
	Handlers []*ratinghandler.Handler

	cleanupCancel context.CancelFunc
	cleanupWG     sync.WaitGroup
}

// NewContainer создает контейнер и инициализирует все компоненты
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Config:       cfg,
		Logger:       logger,
		Repositories: make(map[string]repositories.RatingRepository),
		Caches:       make(map[string]*cache.RatingCache),
		Services:     make(map[string]ratingdomain.Service),
	}

	if err := c.initCatalog(); err != nil {
		return nil, err
	}
	if err := c.initDatabase(); err != nil {
		return nil, err
	}
	c.initServices()

	return c, nil
}

func (c *Container) initCatalog() error {
	catalog, err := ratingdomain.LoadCatalog(c.Config.TablesPath)
	if err != nil {
		return fmt.Errorf("failed to load rating tables: %w", err)
	}
	c.Catalog = catalog
	c.Normalizer = ratingdomain.NewNormalizer(catalog.Aliases)
	log.Printf("[Container] ✓ Rating tables loaded: version %s, %d providers, %d aliases",
		catalog.Version, len(catalog.Providers), catalog.Aliases.Len())
	return nil
}

func (c *Container) initDatabase() error {
	db, err := database.NewRatingsDBWithConfig(c.Config.DatabasePath, database.DBConfig{
		MaxOpenConns:    c.Config.MaxOpenConns,
		MaxIdleConns:    c.Config.MaxIdleConns,
		ConnMaxLifetime: c.Config.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to open ratings database: %w", err)
	}
	c.DB = db
	log.Printf("[Container] ✓ Ratings database opened: %s", c.Config.DatabasePath)
	return nil
}

func (c *Container) initServices() {
	services := make([]ratingdomain.Service, 0, len(Kinds))

	for _, kind := range Kinds {
		repo := persistence.NewRatingRepository(c.DB, kind)
		ratingCache := cache.NewRatingCache(c.Config.CacheTTL, nil)
		svc := ratingdomain.NewService(
			repo,
			c.Normalizer,
			c.Catalog.Fallback(kind),
			ratingCache,
			ratingdomain.WithLogger(c.Logger),
		)

		c.Repositories[kind] = repo
		c.Caches[kind] = ratingCache
		c.Services[kind] = svc
		services = append(services, svc)
	}

	c.UseCase = ratingapp.NewUseCase(c.Config.AdminKey, services...)
	if c.Config.AdminKey == "" {
		log.Printf("[Container] ⚠ RATINGS_ADMIN_KEY не задан, административные операции отключены")
	}

	for _, kind := range Kinds {
		c.Handlers = append(c.Handlers, ratinghandler.NewHandler(c.UseCase, kind))
	}
}

// StartCacheCleanup запускает фоновую очистку всех кэшей до вызова Close
func (c *Container) StartCacheCleanup(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cleanupCancel != nil {
		return
	}

	cleanupCtx, cancel := context.WithCancel(ctx)
	c.cleanupCancel = cancel

	for kind, ratingCache := range c.Caches {
		c.cleanupWG.Add(1)
		go func(kind string, rc *cache.RatingCache) {
			defer c.cleanupWG.Done()
			rc.StartCleanup(cleanupCtx, c.Config.CacheCleanupInterval)
			c.Logger.Debug("Rating cache cleanup stopped", "kind", kind)
		}(kind, ratingCache)
	}
}

// Source создает внешний источник рейтингов для вида
func (c *Container) Source(kind string) (enrichment.RatingSource, error) {
	switch kind {
	case repositories.KindGoogle:
		cfg := c.Config.Enrichment.Service(config.ServiceGooglePlaces)
		if cfg == nil || !cfg.Enabled {
			return nil, fmt.Errorf("source %s is disabled", config.ServiceGooglePlaces)
		}
		return enrichment.NewPlacesClient(cfg), nil
	case repositories.KindTrustpilot:
		cfg := c.Config.Enrichment.Service(config.ServiceTrustpilot)
		if cfg == nil || !cfg.Enabled {
			return nil, fmt.Errorf("source %s is disabled", config.ServiceTrustpilot)
		}
		return enrichment.NewTrustpilotClient(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ratingapp.ErrUnknownKind, kind)
	}
}

// BatchDriver создает драйвер пакетной загрузки для вида
func (c *Container) BatchDriver(kind string) (*enrichment.BatchDriver, error) {
	source, err := c.Source(kind)
	if err != nil {
		return nil, err
	}

	repo := c.Repositories[kind]
	fetcher := enrichment.NewFetcher(source, repo, c.Normalizer).WithLogger(c.Logger)

	return enrichment.NewBatchDriver(fetcher, repo, c.Catalog.Providers, enrichment.BatchConfig{
		Delay:      c.Config.Enrichment.FetchDelay,
		StaleAfter: c.Config.Enrichment.StaleAfter,
		Logger:     c.Logger,
	}), nil
}

// Close останавливает фоновые задачи и закрывает БД
func (c *Container) Close() error {
	c.mu.Lock()
	cancel := c.cleanupCancel
	c.cleanupCancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		c.cleanupWG.Wait()
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close ratings database: %w", err)
		}
	}
	return nil
}
