package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-watchlist/internal/model"
	"github.com/qs-lzh/movie-watchlist/internal/testutil"
)

func addEntry(t *testing.T, repo WatchlistRepo, userID, movieID uint, addedAt time.Time) *model.WatchlistEntry {
	t.Helper()
	entry := &model.WatchlistEntry{UserID: userID, MovieID: movieID, AddedAt: addedAt}
	if err := repo.Create(context.Background(), entry); err != nil {
		t.Fatalf("Create(%d, %d): %v", userID, movieID, err)
	}
	return entry
}

func TestWatchlistRepoUniquePair(t *testing.T) {
	db := testutil.NewDB(t)
	movies := NewMovieRepoGorm(db)
	repo := NewWatchlistRepoGorm(db)

	m := newMovie("Dark", 2017, 8.8, "Drama")
	createMovies(t, movies, m)

	addEntry(t, repo, 1, m.ID, time.Now())
	err := repo.Create(context.Background(), &model.WatchlistEntry{UserID: 1, MovieID: m.ID, AddedAt: time.Now()})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate Create error = %v, want ErrDuplicatedKey", err)
	}
	// another user may list the same movie
	addEntry(t, repo, 2, m.ID, time.Now())
}

func TestWatchlistRepoListOrderAndOrphans(t *testing.T) {
	db := testutil.NewDB(t)
	movies := NewMovieRepoGorm(db)
	repo := NewWatchlistRepoGorm(db)
	ctx := context.Background()

	older := newMovie("Older", 2015, 7, "Drama")
	newer := newMovie("Newer", 2020, 8, "Drama")
	gone := newMovie("Gone", 2018, 6, "Drama")
	createMovies(t, movies, older, newer, gone)

	base := time.Now().Add(-time.Hour)
	addEntry(t, repo, 1, older.ID, base)
	addEntry(t, repo, 1, newer.ID, base.Add(time.Minute))
	addEntry(t, repo, 1, gone.ID, base.Add(2*time.Minute))
	addEntry(t, repo, 2, older.ID, base)

	if _, err := movies.Delete(ctx, gone.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	entries, err := repo.GetByUserID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (orphan hidden)", len(entries))
	}
	if entries[0].Movie == nil || entries[0].Movie.Title != "Newer" || entries[1].Movie.Title != "Older" {
		t.Errorf("order = %v, %v; want Newer then Older", entries[0].Movie, entries[1].Movie)
	}

	if _, err := repo.GetByUserAndMovie(ctx, 1, gone.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("GetByUserAndMovie(orphan) error = %v, want ErrRecordNotFound", err)
	}

	row, err := repo.Stats(ctx, 1)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if row.TotalMovies != 2 {
		t.Errorf("stats total = %d, want 2", row.TotalMovies)
	}

	purged, err := repo.DeleteByMovieID(ctx, gone.ID)
	if err != nil || purged != 1 {
		t.Errorf("DeleteByMovieID() = %d, %v; want 1", purged, err)
	}
}

func TestWatchlistRepoStatsAndTopGenres(t *testing.T) {
	db := testutil.NewDB(t)
	movies := NewMovieRepoGorm(db)
	repo := NewWatchlistRepoGorm(db)
	ctx := context.Background()

	a := newMovie("A", 2020, 8, "Drama", "Crime")
	b := newMovie("B", 2020, 7, "Drama", "Action")
	c := newMovie("C", 2020, 6, "Comedy")
	createMovies(t, movies, a, b, c)

	now := time.Now()
	addEntry(t, repo, 1, a.ID, now)
	addEntry(t, repo, 1, b.ID, now)
	addEntry(t, repo, 1, c.ID, now)

	if _, err := repo.UpdateFields(ctx, 1, a.ID, map[string]any{"watched": true, "rating": 4}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if _, err := repo.UpdateFields(ctx, 1, b.ID, map[string]any{"rating": 5}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	row, err := repo.Stats(ctx, 1)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if row.TotalMovies != 3 || row.WatchedMovies != 1 || row.TotalRatings != 2 {
		t.Errorf("stats = %+v", row)
	}
	if row.AvgRating == nil || *row.AvgRating != 4.5 {
		t.Errorf("avg rating = %v, want 4.5", row.AvgRating)
	}

	genres, err := repo.TopGenres(ctx, 1, 3)
	if err != nil {
		t.Fatalf("TopGenres: %v", err)
	}
	want := []GenreCount{{"Drama", 2}, {"Action", 1}, {"Comedy", 1}}
	if len(genres) != len(want) {
		t.Fatalf("top genres = %v, want %v", genres, want)
	}
	for i := range want {
		if genres[i] != want[i] {
			t.Errorf("top genres[%d] = %v, want %v", i, genres[i], want[i])
		}
	}

	rows, err := repo.UpdateFields(ctx, 9, a.ID, map[string]any{"watched": true})
	if err != nil || rows != 0 {
		t.Errorf("UpdateFields(other user) = %d, %v; want 0", rows, err)
	}
}
