package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/movie-watchlist/internal/model"
	"github.com/qs-lzh/movie-watchlist/internal/mq"
	"github.com/qs-lzh/movie-watchlist/internal/repository"
	"github.com/qs-lzh/movie-watchlist/internal/service"
	"github.com/qs-lzh/movie-watchlist/internal/util"
)

const (
	CategoryLimit    = 20
	DefaultPageSize  = 20
	MaxPageSize      = 100
	defaultSortKey   = "createdAt"
	searchSortKey    = "rating"
	orderAscending   = "asc"
	orderDescending  = "desc"
	listingKindAll   = "all"
	listingKindFind  = "search"
	listingKindTrend = "trending"
	listingKindPop   = "popular"
	listingKindNew   = "new"
)

type MovieService interface {
	GetTrendingMovies(ctx context.Context) ([]model.MovieView, error)
	GetPopularMovies(ctx context.Context) ([]model.MovieView, error)
	GetNewReleases(ctx context.Context) ([]model.MovieView, error)
	GetAllMovies(ctx context.Context, q MovieQuery) (*MovieList, error)
	SearchMovies(ctx context.Context, q MovieQuery) (*MovieList, error)
	GetMovieByID(ctx context.Context, id uint) (*model.Movie, error)
	AddMovie(ctx context.Context, in MovieInput) (*model.Movie, error)
	UpdateMovie(ctx context.Context, id uint, in MovieInput) (*model.Movie, error)
	DeleteMovie(ctx context.Context, id uint) error
	ToggleTrending(ctx context.Context, id uint) (bool, error)
	TogglePopular(ctx context.Context, id uint) (bool, error)
	GetMovieStats(ctx context.Context) (*MovieStats, error)
}

// MovieQuery holds listing parameters. Zero values select the defaults.
type MovieQuery struct {
	Page   int      `json:"page"`
	Limit  int      `json:"limit"`
	Genre  string   `json:"genre,omitempty"`
	Rating *float64 `json:"rating,omitempty"`
	Year   *int     `json:"year,omitempty"`
	Search string   `json:"search,omitempty"`
	Sort   string   `json:"sort"`
	Order  string   `json:"order"`

	Duration string `json:"duration,omitempty"`
	Language string `json:"language,omitempty"`
	Director string `json:"director,omitempty"`
	Cast     string `json:"cast,omitempty"`
}

type Pagination struct {
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Total       int64 `json:"total"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := util.TotalPages(total, limit)
	return Pagination{
		TotalPages:  totalPages,
		CurrentPage: page,
		Total:       total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

type MovieList struct {
	Movies     []model.MovieView `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

type MovieStats struct {
	TotalMovies      int64   `json:"totalMovies"`
	TotalTrending    int64   `json:"totalTrending"`
	TotalPopular     int64   `json:"totalPopular"`
	TotalNewReleases int64   `json:"totalNewReleases"`
	AvgRating        float64 `json:"avgRating"`
	UniqueGenres     int64   `json:"uniqueGenres"`
}

type movieService struct {
	db        *gorm.DB
	repo      repository.MovieRepo
	cache     ListingCache
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

var _ MovieService = (*movieService)(nil)

// NewMovieService wires the movie service. cache and publisher may be nil.
func NewMovieService(db *gorm.DB, movieRepo repository.MovieRepo, cache ListingCache, publisher EventPublisher, logger *zap.Logger) *movieService {
	if cache == nil {
		cache = noopCache{}
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &movieService{
		db:        db,
		repo:      movieRepo,
		cache:     cache,
		publisher: publisher,
		logger:    logger.Named("movie"),
		now:       time.Now,
	}
}

// readThrough serves kind/query from the cache, loading and storing
// it on a miss. Cache failures only cost a store round trip.
func readThrough[T any](ctx context.Context, s *movieService, kind string, query any, load func() (T, error)) (T, error) {
	var cached T
	key, hit, err := s.cache.GetListing(ctx, kind, query, &cached)
	if err != nil {
		s.logger.Warn("listing cache read failed", zap.String("kind", kind), zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if key != "" {
		if err := s.cache.SetListing(ctx, key, value); err != nil {
			s.logger.Warn("listing cache write failed", zap.String("kind", kind), zap.Error(err))
		}
	}
	return value, nil
}

func (s *movieService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("listing cache invalidation failed", zap.Error(err))
	}
}

func (s *movieService) GetTrendingMovies(ctx context.Context) ([]model.MovieView, error) {
	return readThrough(ctx, s, listingKindTrend, CategoryLimit, func() ([]model.MovieView, error) {
		movies, err := s.repo.ListTrending(ctx, CategoryLimit)
		if err != nil {
			return nil, fmt.Errorf("list trending movies: %w", err)
		}
		return model.MovieViews(movies, model.ProjectionCard), nil
	})
}

func (s *movieService) GetPopularMovies(ctx context.Context) ([]model.MovieView, error) {
	return readThrough(ctx, s, listingKindPop, CategoryLimit, func() ([]model.MovieView, error) {
		movies, err := s.repo.ListPopular(ctx, CategoryLimit)
		if err != nil {
			return nil, fmt.Errorf("list popular movies: %w", err)
		}
		return model.MovieViews(movies, model.ProjectionCard), nil
	})
}

func (s *movieService) GetNewReleases(ctx context.Context) ([]model.MovieView, error) {
	year := s.now().Year()
	return readThrough(ctx, s, listingKindNew, year, func() ([]model.MovieView, error) {
		movies, err := s.repo.ListNewReleases(ctx, year, CategoryLimit)
		if err != nil {
			return nil, fmt.Errorf("list new releases: %w", err)
		}
		return model.MovieViews(movies, model.ProjectionCard), nil
	})
}

// normalize fills defaults and rejects out-of-range parameters.
func (q *MovieQuery) normalize(defaultSort string) error {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Page < 1 {
		return service.Invalid("page", "Page must be a positive integer")
	}
	if q.Limit == 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit < 1 || q.Limit > MaxPageSize {
		return service.Invalid("limit", "Limit must be between 1 and 100")
	}
	if q.Rating != nil && (*q.Rating < 0 || *q.Rating > 10) {
		return service.Invalid("rating", "Rating must be between 0 and 10")
	}
	if q.Sort == "" {
		q.Sort = defaultSort
	}
	if !repository.IsMovieSortKey(q.Sort) {
		return service.Invalid("sort", "Sort must be one of: title, rating, releaseYear, createdAt")
	}
	if q.Order == "" {
		q.Order = orderDescending
	}
	if q.Order != orderAscending && q.Order != orderDescending {
		return service.Invalid("order", "Order must be either asc or desc")
	}
	return nil
}

func (q *MovieQuery) filter(searchPeople bool) repository.MovieFilter {
	return repository.MovieFilter{
		Genre:        q.Genre,
		MinRating:    q.Rating,
		Year:         q.Year,
		Search:       q.Search,
		SearchPeople: searchPeople,
		SortKey:      q.Sort,
		Desc:         q.Order == orderDescending,
		Offset:       (q.Page - 1) * q.Limit,
		Limit:        q.Limit,
	}
}

func (s *movieService) GetAllMovies(ctx context.Context, q MovieQuery) (*MovieList, error) {
	// search-only filters do not apply to the general listing
	q.Duration, q.Language, q.Director, q.Cast = "", "", "", ""
	if err := q.normalize(defaultSortKey); err != nil {
		return nil, err
	}
	return readThrough(ctx, s, listingKindAll, q, func() (*MovieList, error) {
		movies, total, err := s.repo.Find(ctx, q.filter(false))
		if err != nil {
			return nil, fmt.Errorf("find movies: %w", err)
		}
		return &MovieList{
			Movies:     model.MovieViews(movies, model.ProjectionListing),
			Pagination: NewPagination(q.Page, q.Limit, total),
		}, nil
	})
}

func (s *movieService) SearchMovies(ctx context.Context, q MovieQuery) (*MovieList, error) {
	if err := q.normalize(searchSortKey); err != nil {
		return nil, err
	}
	return readThrough(ctx, s, listingKindFind, q, func() (*MovieList, error) {
		filter := q.filter(true)
		filter.Duration = q.Duration
		filter.Language = q.Language
		filter.Director = q.Director
		filter.Cast = q.Cast
		filter.WithCast = true

		movies, total, err := s.repo.Find(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("search movies: %w", err)
		}
		return &MovieList{
			Movies:     model.MovieViews(movies, model.ProjectionSearch),
			Pagination: NewPagination(q.Page, q.Limit, total),
		}, nil
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return service.ErrNotFound
	}
	return err
}

func (s *movieService) GetMovieByID(ctx context.Context, id uint) (*model.Movie, error) {
	movie, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return movie, nil
}

func (s *movieService) AddMovie(ctx context.Context, in MovieInput) (*model.Movie, error) {
	movie := &model.Movie{}
	in.Apply(movie)
	if err := ValidateMovie(movie); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, movie)
	})
	if err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}
	s.invalidate(ctx)
	return movie, nil
}

func (s *movieService) UpdateMovie(ctx context.Context, id uint, in MovieInput) (*model.Movie, error) {
	var updated *model.Movie
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		movie, err := repo.GetByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		in.Apply(movie)
		if err := ValidateMovie(movie); err != nil {
			return err
		}
		if err := repo.Update(ctx, movie); err != nil {
			return fmt.Errorf("update movie: %w", err)
		}
		updated, err = repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *movieService) DeleteMovie(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete movie: %w", err)
		}
		if rows == 0 {
			return service.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)

	// watchlist entries of the movie are purged by the catalog workflow
	if err := s.publisher.Publish(ctx, mq.MovieDeletedQueue, mq.MovieDeletedMessage{MovieID: id}); err != nil {
		s.logger.Error("failed to publish movie deletion", zap.Uint("movie_id", id), zap.Error(err))
	}
	return nil
}

func (s *movieService) ToggleTrending(ctx context.Context, id uint) (bool, error) {
	return s.toggle(ctx, id, repository.FlagTrending, func(m *model.Movie) bool { return m.IsTrending })
}

func (s *movieService) TogglePopular(ctx context.Context, id uint) (bool, error) {
	return s.toggle(ctx, id, repository.FlagPopular, func(m *model.Movie) bool { return m.IsPopular })
}

func (s *movieService) toggle(ctx context.Context, id uint, flag repository.MovieFlag, current func(*model.Movie) bool) (bool, error) {
	var value bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		movie, err := repo.GetByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		value = !current(movie)
		if err := repo.SetFlag(ctx, id, flag, value); err != nil {
			return fmt.Errorf("set %s: %w", flag, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	s.invalidate(ctx)
	return value, nil
}

func (s *movieService) GetMovieStats(ctx context.Context) (*MovieStats, error) {
	row, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("movie stats: %w", err)
	}
	if row.TotalMovies == 0 {
		return &MovieStats{}, nil
	}

	stats := &MovieStats{
		TotalMovies:      row.TotalMovies,
		TotalTrending:    row.TotalTrending,
		TotalPopular:     row.TotalPopular,
		TotalNewReleases: row.TotalNewReleases,
		UniqueGenres:     row.UniqueGenres,
	}
	if row.AvgRating != nil {
		stats.AvgRating = util.Round2(*row.AvgRating)
	}
	return stats, nil
}
