package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-watchlist/internal/model"
	"github.com/qs-lzh/movie-watchlist/internal/testutil"
)

func newMovie(title string, year int, rating float64, genres ...string) *model.Movie {
	m := &model.Movie{
		Title:       title,
		Description: "A movie used by repository tests.",
		ReleaseYear: year,
		Duration:    "120 min",
		Rating:      rating,
		PosterURL:   "https://example.com/poster.jpg",
		BannerURL:   "https://example.com/banner.jpg",
		Language:    model.DefaultLanguage,
	}
	m.SetGenres(genres)
	return m
}

func createMovies(t *testing.T, repo MovieRepo, movies ...*model.Movie) {
	t.Helper()
	for _, m := range movies {
		if err := repo.Create(context.Background(), m); err != nil {
			t.Fatalf("Create(%q): %v", m.Title, err)
		}
	}
}

func TestMovieRepoCreateAndGet(t *testing.T) {
	repo := NewMovieRepoGorm(testutil.NewDB(t))
	ctx := context.Background()

	m := newMovie("Dark", 2017, 8.8, "Crime", "Drama", "Mystery")
	m.SetCast([]string{"Louis Hofmann", "Karoline Eichhorn"})
	createMovies(t, repo, m)

	got, err := repo.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if names := got.GenreNames(); fmt.Sprint(names) != "[Crime Drama Mystery]" {
		t.Errorf("genres = %v, want order preserved", names)
	}
	if names := got.CastNames(); len(names) != 2 || names[0] != "Louis Hofmann" {
		t.Errorf("cast = %v", names)
	}

	if _, err := repo.GetByID(ctx, m.ID+100); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrRecordNotFound", err)
	}
}

func TestMovieRepoUpdateReplacesChildren(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMovieRepoGorm(db)
	ctx := context.Background()

	m := newMovie("Ozark", 2017, 8.4, "Crime", "Drama")
	createMovies(t, repo, m)

	m.Title = "Ozark (Series)"
	m.SetGenres([]string{"Thriller"})
	if err := repo.Update(ctx, m); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Ozark (Series)" {
		t.Errorf("title = %q", got.Title)
	}
	if names := got.GenreNames(); len(names) != 1 || names[0] != "Thriller" {
		t.Errorf("genres = %v, want [Thriller]", names)
	}

	var rows int64
	db.Model(&model.MovieGenre{}).Where("movie_id = ?", m.ID).Count(&rows)
	if rows != 1 {
		t.Errorf("genre rows = %d, want 1", rows)
	}
}

func TestMovieRepoDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMovieRepoGorm(db)
	ctx := context.Background()

	m := newMovie("Narcos", 2015, 8.8, "Crime", "Drama")
	m.SetCast([]string{"Wagner Moura"})
	createMovies(t, repo, m)

	rows, err := repo.Delete(ctx, m.ID)
	if err != nil || rows != 1 {
		t.Fatalf("Delete() = %d, %v; want 1", rows, err)
	}
	rows, err = repo.Delete(ctx, m.ID)
	if err != nil || rows != 0 {
		t.Fatalf("second Delete() = %d, %v; want 0", rows, err)
	}

	var genres, cast int64
	db.Model(&model.MovieGenre{}).Count(&genres)
	db.Model(&model.MovieCastMember{}).Count(&cast)
	if genres != 0 || cast != 0 {
		t.Errorf("child rows left behind: %d genres, %d cast", genres, cast)
	}
}

func TestMovieRepoCategoryLists(t *testing.T) {
	repo := NewMovieRepoGorm(testutil.NewDB(t))
	ctx := context.Background()

	low := newMovie("Low", 2020, 6.0, "Drama")
	low.IsPopular = true
	high := newMovie("High", 2019, 9.0, "Drama")
	high.IsPopular = true
	high.IsTrending = true
	current := newMovie("Current", 2026, 7.0, "Drama")
	flagged := newMovie("Flagged", 2010, 7.0, "Drama")
	flagged.IsNewRelease = true
	createMovies(t, repo, low, high, current, flagged)

	popular, err := repo.ListPopular(ctx, 20)
	if err != nil {
		t.Fatalf("ListPopular: %v", err)
	}
	if len(popular) != 2 || popular[0].Title != "High" || popular[1].Title != "Low" {
		t.Errorf("popular = %v, want [High Low]", titles(popular))
	}

	trending, err := repo.ListTrending(ctx, 20)
	if err != nil {
		t.Fatalf("ListTrending: %v", err)
	}
	if len(trending) != 1 || trending[0].Title != "High" {
		t.Errorf("trending = %v, want [High]", titles(trending))
	}

	releases, err := repo.ListNewReleases(ctx, 2026, 20)
	if err != nil {
		t.Fatalf("ListNewReleases: %v", err)
	}
	if len(releases) != 2 || releases[0].Title != "Current" || releases[1].Title != "Flagged" {
		t.Errorf("new releases = %v, want [Current Flagged]", titles(releases))
	}
}

func titles(movies []model.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.Title
	}
	return out
}

func TestMovieRepoFindPagesAreDisjoint(t *testing.T) {
	repo := NewMovieRepoGorm(testutil.NewDB(t))
	ctx := context.Background()

	// equal ratings force the id tiebreaker
	for i := 0; i < 7; i++ {
		createMovies(t, repo, newMovie(fmt.Sprintf("Movie %d", i), 2000+i, float64(5+i%2), "Drama"))
	}

	for _, desc := range []bool{true, false} {
		seen := make(map[uint]bool)
		var pages []model.Movie
		for offset := 0; offset < 7; offset += 3 {
			movies, total, err := repo.Find(ctx, MovieFilter{SortKey: "rating", Desc: desc, Offset: offset, Limit: 3})
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if total != 7 {
				t.Errorf("total = %d, want 7", total)
			}
			pages = append(pages, movies...)
		}
		if len(pages) != 7 {
			t.Fatalf("desc=%v: pages hold %d movies, want 7", desc, len(pages))
		}
		for i, m := range pages {
			if seen[m.ID] {
				t.Errorf("desc=%v: movie %d appears twice", desc, m.ID)
			}
			seen[m.ID] = true
			if i == 0 {
				continue
			}
			prev := pages[i-1]
			if desc && prev.Rating < m.Rating || !desc && prev.Rating > m.Rating {
				t.Errorf("desc=%v: rating order broken at %d", desc, i)
			}
		}
	}
}

func TestMovieRepoFindFilters(t *testing.T) {
	repo := NewMovieRepoGorm(testutil.NewDB(t))
	ctx := context.Background()

	wolf := newMovie("100% Wolf", 2020, 5.5, "Animation", "Comedy")
	wolves := newMovie("1000 Wolves", 2020, 6.5, "Documentary")
	underscore := newMovie("snake_case", 2021, 7.0, "Comedy")
	snake := newMovie("snakes case", 2021, 7.5, "Horror")
	drama := newMovie("The Crown", 2016, 8.6, "Drama", "History")
	drama.Director = "Peter Morgan"
	drama.SetCast([]string{"Claire Foy", "Olivia Colman"})
	createMovies(t, repo, wolf, wolves, underscore, snake, drama)

	year := 2020
	rating := 6.0
	tests := []struct {
		name   string
		filter MovieFilter
		want   []string
	}{
		{"percent is literal", MovieFilter{Search: "100%"}, []string{"100% Wolf"}},
		{"underscore is literal", MovieFilter{Search: "snake_"}, []string{"snake_case"}},
		{"search is case-insensitive", MovieFilter{Search: "WOL"}, []string{"100% Wolf", "1000 Wolves"}},
		{"genre membership", MovieFilter{Genre: "Comedy"}, []string{"100% Wolf", "snake_case"}},
		{"genre and year", MovieFilter{Genre: "Comedy", Year: &year}, []string{"100% Wolf"}},
		{"rating floor", MovieFilter{MinRating: &rating, Year: &year}, []string{"1000 Wolves"}},
		{"listing search skips people", MovieFilter{Search: "foy"}, nil},
		{"people search matches cast", MovieFilter{Search: "foy", SearchPeople: true}, []string{"The Crown"}},
		{"people search matches director", MovieFilter{Search: "morgan", SearchPeople: true}, []string{"The Crown"}},
		{"cast filter", MovieFilter{Cast: "colman"}, []string{"The Crown"}},
		{"director filter", MovieFilter{Director: "peter"}, []string{"The Crown"}},
		{"language filter", MovieFilter{Language: "engl"}, []string{"100% Wolf", "1000 Wolves", "snake_case", "snakes case", "The Crown"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.SortKey = "createdAt"
			tt.filter.Limit = 20
			movies, total, err := repo.Find(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if int(total) != len(tt.want) {
				t.Errorf("total = %d, want %d", total, len(tt.want))
			}
			if got := titles(movies); fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("titles = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMovieRepoStats(t *testing.T) {
	repo := NewMovieRepoGorm(testutil.NewDB(t))
	ctx := context.Background()

	row, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats(empty): %v", err)
	}
	if row.TotalMovies != 0 || row.AvgRating != nil || row.UniqueGenres != 0 {
		t.Errorf("empty stats = %+v", row)
	}

	a := newMovie("A", 2020, 8, "Drama", "Crime")
	a.IsTrending = true
	b := newMovie("B", 2021, 7, "Drama")
	b.IsPopular = true
	b.IsNewRelease = true
	createMovies(t, repo, a, b)

	row, err = repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if row.TotalMovies != 2 || row.TotalTrending != 1 || row.TotalPopular != 1 || row.TotalNewReleases != 1 {
		t.Errorf("counts = %+v", row)
	}
	if row.AvgRating == nil || *row.AvgRating != 7.5 {
		t.Errorf("avg rating = %v, want 7.5", row.AvgRating)
	}
	if row.UniqueGenres != 2 {
		t.Errorf("unique genres = %d, want 2", row.UniqueGenres)
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		filter MovieFilter
		want   string
	}{
		{MovieFilter{SortKey: "title"}, "movies.title ASC, movies.id ASC"},
		{MovieFilter{SortKey: "releaseYear", Desc: true}, "movies.release_year DESC, movies.id DESC"},
		{MovieFilter{SortKey: "bogus", Desc: true}, "movies.created_at DESC, movies.id DESC"},
	}
	for _, tt := range tests {
		if got := tt.filter.OrderClause(); got != tt.want {
			t.Errorf("OrderClause(%q) = %q, want %q", tt.filter.SortKey, got, tt.want)
		}
	}
}
