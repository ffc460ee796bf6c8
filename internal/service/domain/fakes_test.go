package domain

import (
	"context"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/movie-watchlist/internal/cache"
	"github.com/qs-lzh/movie-watchlist/internal/repository"
	"github.com/qs-lzh/movie-watchlist/internal/testutil"
)

// memoryCache mirrors cache.RedisCache with a map and a version counter.
type memoryCache struct {
	mu      sync.Mutex
	version int64
	entries map[string][]byte
	hits    int
	misses  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) GetListing(_ context.Context, kind string, query any, dest any) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fp, err := cache.Fingerprint(query)
	if err != nil {
		return "", false, err
	}
	key := cache.MakeListingKey(c.version, kind, fp)
	data, ok := c.entries[key]
	if !ok {
		c.misses++
		return key, false, nil
	}
	c.hits++
	return key, true, json.Unmarshal(data, dest)
}

func (c *memoryCache) SetListing(_ context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	return nil
}

type published struct {
	queue   string
	message any
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []published
}

func (p *recordingPublisher) Publish(_ context.Context, queue string, message any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{queue, message})
	return nil
}

type fixture struct {
	db        *gorm.DB
	cache     *memoryCache
	publisher *recordingPublisher
	movies    *movieService
	watchlist *watchlistService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	movieRepo := repository.NewMovieRepoGorm(db)
	f := &fixture{
		db:        db,
		cache:     newMemoryCache(),
		publisher: &recordingPublisher{},
	}
	f.movies = NewMovieService(db, movieRepo, f.cache, f.publisher, zap.NewNop())
	f.watchlist = NewWatchlistService(db, repository.NewWatchlistRepoGorm(db), movieRepo, zap.NewNop())
	return f
}

func ptr[T any](v T) *T {
	return &v
}

func movieInput(title string, year int, rating float64, genres ...string) MovieInput {
	return MovieInput{
		Title:       ptr(title),
		Description: ptr("A long enough description of " + title),
		ReleaseYear: ptr(year),
		Genre:       genres,
		Duration:    ptr("120 min"),
		Rating:      ptr(rating),
		PosterURL:   ptr("https://image.example.com/poster.jpg"),
		BannerURL:   ptr("https://image.example.com/banner.jpg"),
	}
}
