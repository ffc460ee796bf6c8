package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Sort keys accepted by MovieFilter, mapped to their columns.
var movieSortColumns = map[string]string{
	"title":       "movies.title",
	"rating":      "movies.rating",
	"releaseYear": "movies.release_year",
	"createdAt":   "movies.created_at",
}

func IsMovieSortKey(key string) bool {
	_, ok := movieSortColumns[key]
	return ok
}

// MovieFilter composes the WHERE, ORDER BY and page window of a movie
// listing. Empty string and nil fields are ignored.
type MovieFilter struct {
	Genre     string
	MinRating *float64
	Year      *int

	// Search matches title or description; with SearchPeople it also
	// matches director and cast.
	Search       string
	SearchPeople bool

	Duration string
	Language string
	Director string
	Cast     string

	SortKey string
	Desc    bool

	Offset int
	Limit  int

	WithCast bool
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive substring pattern for use with
// LOWER(column) LIKE ? ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

const (
	likeExpr       = "LOWER(%s) LIKE ? ESCAPE '\\'"
	castExistsExpr = "EXISTS (SELECT 1 FROM movie_cast WHERE movie_cast.movie_id = movies.id AND LOWER(movie_cast.name) LIKE ? ESCAPE '\\')"
)

func (f MovieFilter) Scope(db *gorm.DB) *gorm.DB {
	if f.Genre != "" {
		db = db.Where("EXISTS (SELECT 1 FROM movie_genres WHERE movie_genres.movie_id = movies.id AND movie_genres.name = ?)", f.Genre)
	}
	if f.MinRating != nil {
		db = db.Where("movies.rating >= ?", *f.MinRating)
	}
	if f.Year != nil {
		db = db.Where("movies.release_year = ?", *f.Year)
	}
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		clauses := []string{
			fmt.Sprintf(likeExpr, "movies.title"),
			fmt.Sprintf(likeExpr, "movies.description"),
		}
		args := []any{pattern, pattern}
		if f.SearchPeople {
			clauses = append(clauses, fmt.Sprintf(likeExpr, "movies.director"), castExistsExpr)
			args = append(args, pattern, pattern)
		}
		db = db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	if f.Duration != "" {
		db = db.Where(fmt.Sprintf(likeExpr, "movies.duration"), containsPattern(f.Duration))
	}
	if f.Language != "" {
		db = db.Where(fmt.Sprintf(likeExpr, "movies.language"), containsPattern(f.Language))
	}
	if f.Director != "" {
		db = db.Where(fmt.Sprintf(likeExpr, "movies.director"), containsPattern(f.Director))
	}
	if f.Cast != "" {
		db = db.Where(castExistsExpr, containsPattern(f.Cast))
	}
	return db
}

// OrderClause sorts by the requested column with the primary key as a
// tiebreaker in the same direction, so consecutive pages never overlap.
func (f MovieFilter) OrderClause() string {
	column, ok := movieSortColumns[f.SortKey]
	if !ok {
		column = movieSortColumns["createdAt"]
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, movies.id %s", column, dir, dir)
}
