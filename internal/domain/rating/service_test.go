package rating_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratingserver/internal/domain/rating"
	"ratingserver/internal/domain/repositories"
	"ratingserver/internal/infrastructure/cache"
)

// memoryRepo репозиторий в памяти со счетчиком чтений и управляемой ошибкой
type memoryRepo struct {
	mu      sync.Mutex
	records map[string]repositories.RatingRecord
	gets    int
	failErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]repositories.RatingRecord)}
}

func (r *memoryRepo) Kind() string { return repositories.KindGoogle }

func (r *memoryRepo) Get(_ context.Context, key string) (*repositories.RatingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	if r.failErr != nil {
		return nil, r.failErr
	}
	record, ok := r.records[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (r *memoryRepo) Upsert(_ context.Context, record *repositories.RatingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.records[record.ProviderKey] = *record
	return nil
}

func (r *memoryRepo) FindAll(_ context.Context) ([]repositories.RatingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	out := make([]repositories.RatingRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	return out, nil
}

func (r *memoryRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	delete(r.records, key)
	return nil
}

func (r *memoryRepo) Ping(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failErr
}

func (r *memoryRepo) getCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}

func (r *memoryRepo) setFail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failErr = err
}

// fakeClock управляемые часы для кэша и сервиса
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const testTables = `{
	"version": "test",
	"providers": [{"key": "wise"}, {"key": "westernunion"}, {"key": "ofx"}],
	"aliases": {"TransferWise": "wise", "WU": "westernunion"},
	"fallbacks": {"google": {"wise": 4.7, "ofx": 4.3}}
}`

type fixture struct {
	repo  *memoryRepo
	cache *cache.RatingCache
	clock *fakeClock
	svc   rating.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog, err := rating.ParseCatalog([]byte(testTables))
	require.NoError(t, err)

	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	repo := newMemoryRepo()
	rc := cache.NewRatingCache(5*time.Minute, clock.Now)
	svc := rating.NewService(
		repo,
		rating.NewNormalizer(catalog.Aliases),
		catalog.Fallback(repositories.KindGoogle),
		rc,
		rating.WithClock(clock.Now),
		rating.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return &fixture{repo: repo, cache: rc, clock: clock, svc: svc}
}

func TestService_EndToEndFallbackThenStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.Resolve(ctx, "TransferWise")
	require.NoError(t, err)
	assert.True(t, result.Found())
	assert.Equal(t, "wise", result.ProviderKey)
	assert.Equal(t, 4.7, result.Value)
	assert.Equal(t, rating.SourceFallback, result.Source)

	record, err := f.svc.Update(ctx, "wise", 4.9)
	require.NoError(t, err)
	assert.Equal(t, repositories.RecordSourceAdmin, record.Source)

	result, err = f.svc.Resolve(ctx, "transferwise")
	require.NoError(t, err)
	assert.Equal(t, 4.9, result.Value)
	assert.Equal(t, rating.SourceStore, result.Source)
	assert.False(t, result.FromCache)
}

func TestService_ResolveIsIdempotentAndCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Upsert(ctx, &repositories.RatingRecord{
		ProviderKey: "westernunion", Value: 4.2, ReviewCount: 10, LastUpdated: f.clock.Now(),
	}))

	first, err := f.svc.Resolve(ctx, "Western Union")
	require.NoError(t, err)
	second, err := f.svc.Resolve(ctx, "provider-WESTERNUNION")
	require.NoError(t, err)
	third, err := f.svc.Resolve(ctx, "WU")
	require.NoError(t, err)

	assert.Equal(t, 1, f.repo.getCount())
	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.True(t, third.FromCache)
	for _, r := range []*rating.Result{first, second, third} {
		assert.Equal(t, "westernunion", r.ProviderKey)
		assert.Equal(t, 4.2, r.Value)
		assert.Equal(t, 10, r.ReviewCount)
		assert.Equal(t, rating.SourceStore, r.Source)
	}
}

func TestService_StorePrecedesFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Upsert(ctx, &repositories.RatingRecord{
		ProviderKey: "ofx", Value: 3.1, LastUpdated: f.clock.Now(),
	}))

	result, err := f.svc.Resolve(ctx, "OFX")
	require.NoError(t, err)
	assert.Equal(t, 3.1, result.Value)
	assert.Equal(t, rating.SourceStore, result.Source)
}

func TestService_NotFoundIsCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.Resolve(ctx, "Unknown Remit")
	require.NoError(t, err)
	assert.False(t, result.Found())
	assert.Equal(t, rating.StatusNotFound, result.Status)
	assert.Equal(t, "unknownremit", result.ProviderKey)

	result, err = f.svc.Resolve(ctx, "unknown-remit")
	require.NoError(t, err)
	assert.False(t, result.Found())
	assert.True(t, result.FromCache)
	assert.Equal(t, 1, f.repo.getCount())
}

func TestService_InvalidProviderKey(t *testing.T) {
	f := newFixture(t)

	for _, raw := range []string{"", "---"} {
		_, err := f.svc.Resolve(context.Background(), raw)
		assert.ErrorIs(t, err, rating.ErrInvalidProviderKey)
	}
	assert.Equal(t, 0, f.repo.getCount())
}

func TestService_UpdateInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.Resolve(ctx, "wise")
	require.NoError(t, err)
	assert.Equal(t, rating.SourceFallback, result.Source)

	_, err = f.svc.Update(ctx, "TransferWise", 2.5)
	require.NoError(t, err)

	result, err = f.svc.Resolve(ctx, "wise")
	require.NoError(t, err)
	assert.Equal(t, 2.5, result.Value)
	assert.False(t, result.FromCache)
}

func TestService_UpdateRejectsOutOfRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, value := range []float64{5.1, -0.1} {
		_, err := f.svc.Update(ctx, "wise", value)
		assert.ErrorIs(t, err, rating.ErrInvalidRatingValue)
	}

	records, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	for _, value := range []float64{0, 5} {
		_, err := f.svc.Update(ctx, "wise", value)
		assert.NoError(t, err)
	}
}

func TestService_UpdateStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.setFail(repositories.ErrStoreUnavailable)

	_, err := f.svc.Update(context.Background(), "wise", 4.0)
	assert.ErrorIs(t, err, rating.ErrStoreUnavailable)
}

func TestService_TTLExpiryReconsultsStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Resolve(ctx, "wise")
	require.NoError(t, err)

	// Запись в хранилище в обход сервиса не видна до истечения TTL
	require.NoError(t, f.repo.Upsert(ctx, &repositories.RatingRecord{
		ProviderKey: "wise", Value: 4.0, LastUpdated: f.clock.Now(),
	}))

	f.clock.Advance(4 * time.Minute)
	result, err := f.svc.Resolve(ctx, "wise")
	require.NoError(t, err)
	assert.Equal(t, 4.7, result.Value)
	assert.True(t, result.FromCache)

	f.clock.Advance(2 * time.Minute)
	result, err = f.svc.Resolve(ctx, "wise")
	require.NoError(t, err)
	assert.Equal(t, 4.0, result.Value)
	assert.Equal(t, rating.SourceStore, result.Source)
	assert.Equal(t, 2, f.repo.getCount())
}

func TestService_StoreFailureIsDegradedAndNotCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.repo.setFail(errors.Join(repositories.ErrStoreUnavailable, errors.New("disk I/O error")))

	result, err := f.svc.Resolve(ctx, "wise")
	require.NoError(t, err)
	assert.Equal(t, 4.7, result.Value)
	assert.Equal(t, rating.SourceFallback, result.Source)
	assert.True(t, result.Degraded)

	result, err = f.svc.Resolve(ctx, "westernunion")
	require.NoError(t, err)
	assert.False(t, result.Found())
	assert.True(t, result.Degraded)

	f.repo.setFail(nil)
	require.NoError(t, f.repo.Upsert(ctx, &repositories.RatingRecord{
		ProviderKey: "wise", Value: 4.4, LastUpdated: f.clock.Now(),
	}))

	result, err = f.svc.Resolve(ctx, "wise")
	require.NoError(t, err)
	assert.Equal(t, 4.4, result.Value)
	assert.False(t, result.Degraded)
	assert.Equal(t, 3, f.repo.getCount())
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Update(ctx, "wise", 4.9)
	require.NoError(t, err)
	_, err = f.svc.Resolve(ctx, "wise")
	require.NoError(t, err)

	key, err := f.svc.Delete(ctx, "TransferWise")
	require.NoError(t, err)
	assert.Equal(t, "wise", key)

	result, err := f.svc.Resolve(ctx, "wise")
	require.NoError(t, err)
	assert.Equal(t, rating.SourceFallback, result.Source)
	assert.False(t, result.FromCache)
}

func TestService_Health(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	health := f.svc.Health(ctx)
	assert.True(t, health.Healthy())
	assert.Equal(t, repositories.KindGoogle, health.Kind)
	assert.Empty(t, health.StoreError)

	f.repo.setFail(repositories.ErrStoreUnavailable)
	health = f.svc.Health(ctx)
	assert.False(t, health.Healthy())
	assert.Equal(t, rating.StoreStatusDisconnected, health.StoreStatus)
	assert.NotEmpty(t, health.StoreError)
}

func TestService_ConcurrentResolveAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			result, err := f.svc.Resolve(ctx, "wise")
			assert.NoError(t, err)
			assert.True(t, result.Found())
		}()
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Update(ctx, "wise", float64(i%5))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	_, err := f.svc.Update(ctx, "wise", 3.3)
	require.NoError(t, err)
	result, err := f.svc.Resolve(ctx, "wise")
	require.NoError(t, err)
	assert.Equal(t, 3.3, result.Value)
}

// slowReadRepo первое чтение ключа задерживает до сигнала release
type slowReadRepo struct {
	*memoryRepo
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (r *slowReadRepo) Get(ctx context.Context, key string) (*repositories.RatingRecord, error) {
	record, err := r.memoryRepo.Get(ctx, key)
	r.once.Do(func() {
		close(r.read)
		<-r.release
	})
	return record, err
}

func TestService_StaleReadIsNotCachedAfterUpdate(t *testing.T) {
	catalog, err := rating.ParseCatalog([]byte(testTables))
	require.NoError(t, err)

	repo := &slowReadRepo{memoryRepo: newMemoryRepo(), read: make(chan struct{}), release: make(chan struct{})}
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &repositories.RatingRecord{ProviderKey: "wise", Value: 4.1}))

	svc := rating.NewService(
		repo,
		rating.NewNormalizer(catalog.Aliases),
		catalog.Fallback(repositories.KindGoogle),
		cache.NewRatingCache(5*time.Minute, nil),
		rating.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	done := make(chan *rating.Result, 1)
	go func() {
		result, err := svc.Resolve(ctx, "wise")
		assert.NoError(t, err)
		done <- result
	}()

	<-repo.read
	_, err = svc.Update(ctx, "wise", 4.9)
	require.NoError(t, err)
	close(repo.release)

	stale := <-done
	assert.Equal(t, 4.1, stale.Value)

	result, err := svc.Resolve(ctx, "wise")
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, 4.9, result.Value)
}
