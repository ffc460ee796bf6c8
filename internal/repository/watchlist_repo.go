package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-watchlist/internal/model"
)

type WatchlistRepo interface {
	WithTx(tx *gorm.DB) WatchlistRepo
	Create(ctx context.Context, entry *model.WatchlistEntry) error
	CreateBatch(ctx context.Context, entries []model.WatchlistEntry) error
	GetByUserID(ctx context.Context, userID uint) ([]model.WatchlistEntry, error)
	GetByUserAndMovie(ctx context.Context, userID, movieID uint) (*model.WatchlistEntry, error)
	MovieIDsInList(ctx context.Context, userID uint, movieIDs []uint) ([]uint, error)
	UpdateFields(ctx context.Context, userID, movieID uint, fields map[string]any) (int, error)
	DeleteByUserAndMovie(ctx context.Context, userID, movieID uint) (int, error)
	DeleteByMovieID(ctx context.Context, movieID uint) (int, error)
	Stats(ctx context.Context, userID uint) (*WatchlistStatsRow, error)
	TopGenres(ctx context.Context, userID uint, limit int) ([]GenreCount, error)
}

type WatchlistStatsRow struct {
	TotalMovies   int64
	WatchedMovies int64
	AvgRating     *float64
	TotalRatings  int64
}

type GenreCount struct {
	Genre string `json:"genre"`
	Count int64  `json:"count"`
}

type watchlistRepoGorm struct {
	db *gorm.DB
}

var _ WatchlistRepo = (*watchlistRepoGorm)(nil)

func NewWatchlistRepoGorm(db *gorm.DB) *watchlistRepoGorm {
	return &watchlistRepoGorm{
		db: db,
	}
}

func (r *watchlistRepoGorm) WithTx(tx *gorm.DB) WatchlistRepo {
	return &watchlistRepoGorm{
		db: tx,
	}
}

const joinLiveMovies = "JOIN movies ON movies.id = watchlist_entries.movie_id"

func (r *watchlistRepoGorm) Create(ctx context.Context, entry *model.WatchlistEntry) error {
	return gorm.G[model.WatchlistEntry](r.db).Create(ctx, entry)
}

func (r *watchlistRepoGorm) CreateBatch(ctx context.Context, entries []model.WatchlistEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return gorm.G[model.WatchlistEntry](r.db).CreateInBatches(ctx, &entries, 100)
}

// GetByUserID returns the user's entries, newest first, each with its movie
// attached. Entries whose movie no longer exists are skipped.
func (r *watchlistRepoGorm) GetByUserID(ctx context.Context, userID uint) ([]model.WatchlistEntry, error) {
	var entries []model.WatchlistEntry
	err := r.db.WithContext(ctx).
		Joins(joinLiveMovies).
		Where("watchlist_entries.user_id = ?", userID).
		Order("watchlist_entries.added_at DESC, watchlist_entries.id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachMovies(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *watchlistRepoGorm) GetByUserAndMovie(ctx context.Context, userID, movieID uint) (*model.WatchlistEntry, error) {
	var entry model.WatchlistEntry
	err := r.db.WithContext(ctx).
		Joins(joinLiveMovies).
		Where("watchlist_entries.user_id = ? AND watchlist_entries.movie_id = ?", userID, movieID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	entries := []model.WatchlistEntry{entry}
	if err := r.attachMovies(ctx, entries); err != nil {
		return nil, err
	}
	return &entries[0], nil
}

func (r *watchlistRepoGorm) attachMovies(ctx context.Context, entries []model.WatchlistEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.MovieID)
	}
	movies, err := NewMovieRepoGorm(r.db).GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[uint]*model.Movie, len(movies))
	for i := range movies {
		byID[movies[i].ID] = &movies[i]
	}
	for i := range entries {
		entries[i].Movie = byID[entries[i].MovieID]
	}
	return nil
}

func (r *watchlistRepoGorm) MovieIDsInList(ctx context.Context, userID uint, movieIDs []uint) ([]uint, error) {
	if len(movieIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.WatchlistEntry{}).
		Where("user_id = ? AND movie_id IN ?", userID, movieIDs).
		Pluck("movie_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *watchlistRepoGorm) UpdateFields(ctx context.Context, userID, movieID uint, fields map[string]any) (int, error) {
	res := r.db.WithContext(ctx).
		Model(&model.WatchlistEntry{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Updates(fields)
	return int(res.RowsAffected), res.Error
}

func (r *watchlistRepoGorm) DeleteByUserAndMovie(ctx context.Context, userID, movieID uint) (int, error) {
	return gorm.G[model.WatchlistEntry](r.db).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(ctx)
}

func (r *watchlistRepoGorm) DeleteByMovieID(ctx context.Context, movieID uint) (int, error) {
	return gorm.G[model.WatchlistEntry](r.db).
		Where("movie_id = ?", movieID).
		Delete(ctx)
}

func (r *watchlistRepoGorm) Stats(ctx context.Context, userID uint) (*WatchlistStatsRow, error) {
	var row WatchlistStatsRow
	err := r.db.WithContext(ctx).
		Model(&model.WatchlistEntry{}).
		Select(`COUNT(*) AS total_movies,
			COALESCE(SUM(CASE WHEN watchlist_entries.watched THEN 1 ELSE 0 END), 0) AS watched_movies,
			AVG(CAST(watchlist_entries.rating AS FLOAT)) AS avg_rating,
			COUNT(watchlist_entries.rating) AS total_ratings`).
		Joins(joinLiveMovies).
		Where("watchlist_entries.user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// TopGenres counts the genres of the user's listed movies, most frequent
// first, ties broken by genre name.
func (r *watchlistRepoGorm) TopGenres(ctx context.Context, userID uint, limit int) ([]GenreCount, error) {
	var rows []GenreCount
	err := r.db.WithContext(ctx).
		Model(&model.WatchlistEntry{}).
		Select("movie_genres.name AS genre, COUNT(*) AS count").
		Joins("JOIN movie_genres ON movie_genres.movie_id = watchlist_entries.movie_id").
		Where("watchlist_entries.user_id = ?", userID).
		Group("movie_genres.name").
		Order("COUNT(*) DESC, movie_genres.name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
