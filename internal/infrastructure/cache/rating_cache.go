package cache

import (
	"context"
	"sync"
	"time"

	"ratingserver/internal/domain/rating"
)

// Значения по умолчанию для кэша запросов
const (
	DefaultRatingCacheTTL      = 5 * time.Minute
	DefaultRatingCacheInterval = 10 * time.Minute
)

// RatingCache кэш результатов разрешения рейтингов в памяти процесса.
// Get, Set и Delete атомарны по отдельности; очистка не атомарна целиком.
type RatingCache struct {
	mu    sync.RWMutex
	data  map[string]*ratingCacheEntry
	ttl   time.Duration
	now   func() time.Time
	stats rating.CacheStats
}

type ratingCacheEntry struct {
	result     rating.Result
	insertedAt time.Time
}

// NewRatingCache создает кэш с заданным TTL; now == nil означает time.Now
func NewRatingCache(ttl time.Duration, now func() time.Time) *RatingCache {
	if ttl <= 0 {
		ttl = DefaultRatingCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &RatingCache{
		data: make(map[string]*ratingCacheEntry),
		ttl:  ttl,
		now:  now,
	}
}

// Get возвращает копию живой записи. Просроченные записи игнорируются.
func (c *RatingCache) Get(providerKey string) (*rating.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.data[providerKey]
	if !exists || c.expired(entry) {
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++
	result := entry.result
	return &result, true
}

// Set сохраняет копию результата с текущим временем
func (c *RatingCache) Set(providerKey string, result *rating.Result) {
	if result == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[providerKey] = &ratingCacheEntry{
		result:     *result,
		insertedAt: c.now(),
	}
}

// Delete удаляет запись из кэша
func (c *RatingCache) Delete(providerKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, providerKey)
}

// Clear очищает весь кэш
func (c *RatingCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]*ratingCacheEntry)
	c.stats = rating.CacheStats{}
}

// Stats возвращает статистику кэша
func (c *RatingCache) Stats() rating.CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.Size = len(c.data)
	return stats
}

// Sweep удаляет просроченные записи и возвращает их количество
func (c *RatingCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.data {
		if c.expired(entry) {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

// StartCleanup запускает периодическую очистку до отмены контекста
func (c *RatingCache) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRatingCacheInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// expired вызывается под блокировкой
func (c *RatingCache) expired(entry *ratingCacheEntry) bool {
	return c.now().Sub(entry.insertedAt) >= c.ttl
}
