package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/movie-watchlist/internal/model"
	"github.com/qs-lzh/movie-watchlist/internal/repository"
	"github.com/qs-lzh/movie-watchlist/internal/service"
	"github.com/qs-lzh/movie-watchlist/internal/util"
)

const (
	TopGenresLimit = 5
	MaxNotesLength = 500
)

type WatchlistService interface {
	GetUserWatchlist(ctx context.Context, userID uint) ([]model.WatchlistEntry, error)
	AddToWatchlist(ctx context.Context, userID, movieID uint) (*model.WatchlistEntry, error)
	RemoveFromWatchlist(ctx context.Context, userID, movieID uint) error
	UpdateWatchlistItem(ctx context.Context, userID, movieID uint, update WatchlistUpdate) (*model.WatchlistEntry, error)
	CheckWatchlistStatus(ctx context.Context, userID, movieID uint) (*WatchlistStatus, error)
	GetWatchlistStats(ctx context.Context, userID uint) (*WatchlistStats, error)
	BulkAddToWatchlist(ctx context.Context, userID uint, movieIDs []uint) (*BulkAddResult, error)
	PurgeMovie(ctx context.Context, movieID uint) (int, error)
}

// WatchlistUpdate is a partial update; nil fields are left unchanged.
// ClearRating and ClearNotes reset the field to null and take precedence
// over a value.
type WatchlistUpdate struct {
	Watched     *bool   `json:"watched"`
	Rating      *int    `json:"rating"`
	Notes       *string `json:"notes"`
	ClearRating bool    `json:"-"`
	ClearNotes  bool    `json:"-"`
}

type WatchlistStatus struct {
	InWatchlist bool    `json:"inWatchlist"`
	Watched     bool    `json:"watched"`
	Rating      *int    `json:"rating"`
	Notes       *string `json:"notes"`
}

type WatchlistStats struct {
	TotalMovies     int64                   `json:"totalMovies"`
	WatchedMovies   int64                   `json:"watchedMovies"`
	UnwatchedMovies int64                   `json:"unwatchedMovies"`
	AvgRating       float64                 `json:"avgRating"`
	TotalRatings    int64                   `json:"totalRatings"`
	WatchProgress   float64                 `json:"watchProgress"`
	TopGenres       []repository.GenreCount `json:"topGenres"`
}

type BulkAddResult struct {
	Added         int `json:"added"`
	AlreadyExists int `json:"alreadyExists"`
}

type watchlistService struct {
	db        *gorm.DB
	repo      repository.WatchlistRepo
	movieRepo repository.MovieRepo
	logger    *zap.Logger
	now       func() time.Time
}

var _ WatchlistService = (*watchlistService)(nil)

func NewWatchlistService(db *gorm.DB, watchlistRepo repository.WatchlistRepo, movieRepo repository.MovieRepo, logger *zap.Logger) *watchlistService {
	return &watchlistService{
		db:        db,
		repo:      watchlistRepo,
		movieRepo: movieRepo,
		logger:    logger.Named("watchlist"),
		now:       time.Now,
	}
}

func (s *watchlistService) GetUserWatchlist(ctx context.Context, userID uint) ([]model.WatchlistEntry, error) {
	entries, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get watchlist: %w", err)
	}
	return entries, nil
}

// AddToWatchlist creates the (user, movie) entry. The pre-check gives the
// common case a clean error; the unique index settles concurrent adds.
func (s *watchlistService) AddToWatchlist(ctx context.Context, userID, movieID uint) (*model.WatchlistEntry, error) {
	movie, err := s.movieRepo.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrMovieNotFound
		}
		return nil, fmt.Errorf("get movie: %w", err)
	}

	existing, err := s.repo.MovieIDsInList(ctx, userID, []uint{movieID})
	if err != nil {
		return nil, fmt.Errorf("check watchlist: %w", err)
	}
	if len(existing) > 0 {
		return nil, service.ErrAlreadyInWatchlist
	}

	entry := &model.WatchlistEntry{
		UserID:  userID,
		MovieID: movieID,
		AddedAt: s.now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, service.ErrAlreadyInWatchlist
		}
		return nil, fmt.Errorf("create watchlist entry: %w", err)
	}
	entry.Movie = movie
	return entry, nil
}

func (s *watchlistService) RemoveFromWatchlist(ctx context.Context, userID, movieID uint) error {
	rows, err := s.repo.DeleteByUserAndMovie(ctx, userID, movieID)
	if err != nil {
		return fmt.Errorf("delete watchlist entry: %w", err)
	}
	if rows == 0 {
		return service.ErrNotInWatchlist
	}
	return nil
}

func (u *WatchlistUpdate) validate() error {
	if !u.ClearRating && u.Rating != nil && (*u.Rating < 1 || *u.Rating > 5) {
		return service.ErrInvalidRating
	}
	if !u.ClearNotes && u.Notes != nil && len([]rune(*u.Notes)) > MaxNotesLength {
		return service.Invalid("notes", "Notes cannot exceed 500 characters")
	}
	return nil
}

func (u *WatchlistUpdate) fields() map[string]any {
	fields := make(map[string]any, 3)
	if u.Watched != nil {
		fields["watched"] = *u.Watched
	}
	switch {
	case u.ClearRating:
		fields["rating"] = nil
	case u.Rating != nil:
		fields["rating"] = *u.Rating
	}
	switch {
	case u.ClearNotes:
		fields["notes"] = nil
	case u.Notes != nil:
		fields["notes"] = *u.Notes
	}
	return fields
}

func (s *watchlistService) UpdateWatchlistItem(ctx context.Context, userID, movieID uint, update WatchlistUpdate) (*model.WatchlistEntry, error) {
	if err := update.validate(); err != nil {
		return nil, err
	}

	var entry *model.WatchlistEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if fields := update.fields(); len(fields) > 0 {
			rows, err := repo.UpdateFields(ctx, userID, movieID, fields)
			if err != nil {
				return fmt.Errorf("update watchlist entry: %w", err)
			}
			if rows == 0 {
				return service.ErrNotInWatchlist
			}
		}
		var err error
		entry, err = repo.GetByUserAndMovie(ctx, userID, movieID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return service.ErrNotInWatchlist
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CheckWatchlistStatus reports membership; absence is not an error.
func (s *watchlistService) CheckWatchlistStatus(ctx context.Context, userID, movieID uint) (*WatchlistStatus, error) {
	entry, err := s.repo.GetByUserAndMovie(ctx, userID, movieID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &WatchlistStatus{}, nil
		}
		return nil, fmt.Errorf("check watchlist status: %w", err)
	}
	return &WatchlistStatus{
		InWatchlist: true,
		Watched:     entry.Watched,
		Rating:      entry.Rating,
		Notes:       entry.Notes,
	}, nil
}

func (s *watchlistService) GetWatchlistStats(ctx context.Context, userID uint) (*WatchlistStats, error) {
	row, err := s.repo.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("watchlist stats: %w", err)
	}
	if row.TotalMovies == 0 {
		return &WatchlistStats{TopGenres: []repository.GenreCount{}}, nil
	}

	genres, err := s.repo.TopGenres(ctx, userID, TopGenresLimit)
	if err != nil {
		return nil, fmt.Errorf("watchlist genres: %w", err)
	}
	if genres == nil {
		genres = []repository.GenreCount{}
	}

	stats := &WatchlistStats{
		TotalMovies:     row.TotalMovies,
		WatchedMovies:   row.WatchedMovies,
		UnwatchedMovies: row.TotalMovies - row.WatchedMovies,
		TotalRatings:    row.TotalRatings,
		WatchProgress:   util.Percent(row.WatchedMovies, row.TotalMovies),
		TopGenres:       genres,
	}
	if row.AvgRating != nil {
		stats.AvgRating = util.Round2(*row.AvgRating)
	}
	return stats, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// BulkAddToWatchlist adds every listed movie not already present. The batch
// is rejected whole when any id has no movie.
func (s *watchlistService) BulkAddToWatchlist(ctx context.Context, userID uint, movieIDs []uint) (*BulkAddResult, error) {
	if len(movieIDs) == 0 {
		return nil, service.ErrEmptyMovieIDs
	}
	ids := dedupe(movieIDs)

	var result *BulkAddResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.movieRepo.WithTx(tx).ExistingIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("check movies: %w", err)
		}
		if len(found) != len(ids) {
			return service.ErrSomeMoviesNotFound
		}

		repo := s.repo.WithTx(tx)
		present, err := repo.MovieIDsInList(ctx, userID, ids)
		if err != nil {
			return fmt.Errorf("check watchlist: %w", err)
		}
		inList := make(map[uint]struct{}, len(present))
		for _, id := range present {
			inList[id] = struct{}{}
		}

		now := s.now()
		entries := make([]model.WatchlistEntry, 0, len(ids)-len(present))
		for _, id := range ids {
			if _, ok := inList[id]; ok {
				continue
			}
			entries = append(entries, model.WatchlistEntry{UserID: userID, MovieID: id, AddedAt: now})
		}
		if len(entries) == 0 {
			return service.ErrAllAlreadyInWatchlist
		}

		if err := repo.CreateBatch(ctx, entries); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return service.ErrAlreadyInWatchlist
			}
			return fmt.Errorf("create watchlist entries: %w", err)
		}
		result = &BulkAddResult{Added: len(entries), AlreadyExists: len(present)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PurgeMovie removes every entry that references the movie.
func (s *watchlistService) PurgeMovie(ctx context.Context, movieID uint) (int, error) {
	rows, err := s.repo.DeleteByMovieID(ctx, movieID)
	if err != nil {
		return 0, fmt.Errorf("purge watchlist entries: %w", err)
	}
	if rows > 0 {
		s.logger.Info("purged watchlist entries of deleted movie", zap.Uint("movie_id", movieID), zap.Int("entries", rows))
	}
	return rows, nil
}
