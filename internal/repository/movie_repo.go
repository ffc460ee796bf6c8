package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-watchlist/internal/model"
)

type MovieRepo interface {
	WithTx(tx *gorm.DB) MovieRepo
	Create(ctx context.Context, movie *model.Movie) error
	GetByID(ctx context.Context, id uint) (*model.Movie, error)
	GetByIDs(ctx context.Context, ids []uint) ([]model.Movie, error)
	ExistingIDs(ctx context.Context, ids []uint) ([]uint, error)
	Update(ctx context.Context, movie *model.Movie) error
	SetFlag(ctx context.Context, id uint, flag MovieFlag, value bool) error
	Delete(ctx context.Context, id uint) (int, error)
	ListTrending(ctx context.Context, limit int) ([]model.Movie, error)
	ListPopular(ctx context.Context, limit int) ([]model.Movie, error)
	ListNewReleases(ctx context.Context, year, limit int) ([]model.Movie, error)
	Find(ctx context.Context, filter MovieFilter) ([]model.Movie, int64, error)
	Stats(ctx context.Context) (*MovieStatsRow, error)
}

// MovieFlag names one of the boolean classification columns.
type MovieFlag string

const (
	FlagTrending   MovieFlag = "is_trending"
	FlagPopular    MovieFlag = "is_popular"
	FlagNewRelease MovieFlag = "is_new_release"
)

type MovieStatsRow struct {
	TotalMovies      int64
	TotalTrending    int64
	TotalPopular     int64
	TotalNewReleases int64
	AvgRating        *float64
	UniqueGenres     int64
}

type movieRepoGorm struct {
	db *gorm.DB
}

var _ MovieRepo = (*movieRepoGorm)(nil)

func NewMovieRepoGorm(db *gorm.DB) *movieRepoGorm {
	return &movieRepoGorm{
		db: db,
	}
}

func (r *movieRepoGorm) WithTx(tx *gorm.DB) MovieRepo {
	return &movieRepoGorm{
		db: tx,
	}
}

func orderedGenres(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func orderedCast(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

// Create inserts the movie together with its genre and cast rows.
func (r *movieRepoGorm) Create(ctx context.Context, movie *model.Movie) error {
	return r.db.WithContext(ctx).Create(movie).Error
}

func (r *movieRepoGorm) GetByID(ctx context.Context, id uint) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.WithContext(ctx).
		Preload("Genres", orderedGenres).
		Preload("Cast", orderedCast).
		First(&movie, id).Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *movieRepoGorm) GetByIDs(ctx context.Context, ids []uint) ([]model.Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var movies []model.Movie
	err := r.db.WithContext(ctx).
		Preload("Genres", orderedGenres).
		Where("id IN ?", ids).
		Find(&movies).Error
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (r *movieRepoGorm) ExistingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	err := r.db.WithContext(ctx).
		Model(&model.Movie{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Update writes every column of the movie and replaces its genre and cast
// rows. Callers run it inside a transaction.
func (r *movieRepoGorm) Update(ctx context.Context, movie *model.Movie) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Genres", "Cast").Save(movie).Error; err != nil {
		return err
	}

	if err := db.Where("movie_id = ?", movie.ID).Delete(&model.MovieGenre{}).Error; err != nil {
		return err
	}
	if len(movie.Genres) > 0 {
		for i := range movie.Genres {
			movie.Genres[i].ID = 0
			movie.Genres[i].MovieID = movie.ID
		}
		if err := db.Create(&movie.Genres).Error; err != nil {
			return err
		}
	}

	if err := db.Where("movie_id = ?", movie.ID).Delete(&model.MovieCastMember{}).Error; err != nil {
		return err
	}
	if len(movie.Cast) > 0 {
		for i := range movie.Cast {
			movie.Cast[i].ID = 0
			movie.Cast[i].MovieID = movie.ID
		}
		if err := db.Create(&movie.Cast).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *movieRepoGorm) SetFlag(ctx context.Context, id uint, flag MovieFlag, value bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Movie{ID: id}).
		Update(string(flag), value).Error
}

// Delete removes the movie and its genre and cast rows. Callers run it
// inside a transaction.
func (r *movieRepoGorm) Delete(ctx context.Context, id uint) (int, error) {
	if _, err := gorm.G[model.MovieGenre](r.db).Where("movie_id = ?", id).Delete(ctx); err != nil {
		return 0, err
	}
	if _, err := gorm.G[model.MovieCastMember](r.db).Where("movie_id = ?", id).Delete(ctx); err != nil {
		return 0, err
	}
	return gorm.G[model.Movie](r.db).Where("id = ?", id).Delete(ctx)
}

func (r *movieRepoGorm) ListTrending(ctx context.Context, limit int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.WithContext(ctx).
		Preload("Genres", orderedGenres).
		Where("is_trending = ?", true).
		Order("id").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

func (r *movieRepoGorm) ListPopular(ctx context.Context, limit int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.WithContext(ctx).
		Preload("Genres", orderedGenres).
		Where("is_popular = ?", true).
		Order("rating DESC, id").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

func (r *movieRepoGorm) ListNewReleases(ctx context.Context, year, limit int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.WithContext(ctx).
		Preload("Genres", orderedGenres).
		Where("is_new_release = ? OR release_year = ?", true, year).
		Order("release_year DESC, created_at DESC, id DESC").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// Find returns one page of movies matching the filter and the total number
// of matches, counted independently of the page window.
func (r *movieRepoGorm) Find(ctx context.Context, filter MovieFilter) ([]model.Movie, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&model.Movie{}).Scopes(filter.Scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := db.Model(&model.Movie{}).
		Scopes(filter.Scope).
		Preload("Genres", orderedGenres).
		Order(filter.OrderClause()).
		Offset(filter.Offset).
		Limit(filter.Limit)
	if filter.WithCast {
		query = query.Preload("Cast", orderedCast)
	}

	var movies []model.Movie
	if err := query.Find(&movies).Error; err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

func (r *movieRepoGorm) Stats(ctx context.Context) (*MovieStatsRow, error) {
	db := r.db.WithContext(ctx)

	var row MovieStatsRow
	err := db.Model(&model.Movie{}).
		Select(`COUNT(*) AS total_movies,
			COALESCE(SUM(CASE WHEN is_trending THEN 1 ELSE 0 END), 0) AS total_trending,
			COALESCE(SUM(CASE WHEN is_popular THEN 1 ELSE 0 END), 0) AS total_popular,
			COALESCE(SUM(CASE WHEN is_new_release THEN 1 ELSE 0 END), 0) AS total_new_releases,
			AVG(rating) AS avg_rating`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	if err := db.Model(&model.MovieGenre{}).Distinct("name").Count(&row.UniqueGenres).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
