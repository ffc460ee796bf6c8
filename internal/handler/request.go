package handler

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"

	"github.com/qs-lzh/movie-watchlist/internal/service/domain"
	"github.com/qs-lzh/movie-watchlist/internal/validation"
)

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=30,username"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ProfileRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30,username"`
}

var authMessages = validation.Messages{
	"email":             "Please enter a valid email",
	"password":          "Password must be at least 6 characters long",
	"password:required": "Password is required",
	"username":          "Username must be between 3 and 30 characters",
	"username:username": "Username can only contain letters, numbers, and underscores",
}

// MovieListQuery binds listing and search parameters. Pointer fields tell
// an explicit empty or zero value apart from an absent one, so "page=0"
// and "genre=" are rejected instead of falling back to defaults.
type MovieListQuery struct {
	Page     *int     `form:"page" binding:"omitempty,min=1"`
	Limit    *int     `form:"limit" binding:"omitempty,min=1,max=100"`
	Genre    *string  `form:"genre" binding:"omitempty,notblank"`
	Rating   *float64 `form:"rating" binding:"omitempty,min=0,max=10"`
	Year     *int     `form:"year" binding:"omitempty,releaseyear"`
	Search   *string  `form:"search" binding:"omitempty,notblank"`
	Query    *string  `form:"q"`
	Sort     string   `form:"sort" binding:"omitempty,oneof=title rating releaseYear createdAt"`
	Order    string   `form:"order" binding:"omitempty,oneof=asc desc"`
	Duration string   `form:"duration"`
	Language string   `form:"language"`
	Director string   `form:"director"`
	Cast     string   `form:"cast"`
}

var movieQueryMessages = validation.Messages{
	"page":   "Page must be a positive integer",
	"limit":  "Limit must be between 1 and 100",
	"genre":  "Genre must be a valid string",
	"search": "Search query must be a valid string",
	"rating": "Rating must be between 0 and 10",
	"year":   "Year must be a valid year",
	"sort":   "Sort must be one of: title, rating, releaseYear, createdAt",
	"order":  "Order must be either asc or desc",
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// toDomain converts the bound query. "search" wins over its "q" alias.
func (q *MovieListQuery) toDomain() domain.MovieQuery {
	search := trimmed(q.Search)
	if search == "" {
		search = trimmed(q.Query)
	}
	return domain.MovieQuery{
		Page:     intValue(q.Page),
		Limit:    intValue(q.Limit),
		Genre:    trimmed(q.Genre),
		Rating:   q.Rating,
		Year:     q.Year,
		Search:   search,
		Sort:     q.Sort,
		Order:    q.Order,
		Duration: q.Duration,
		Language: q.Language,
		Director: q.Director,
		Cast:     q.Cast,
	}
}

type AddWatchlistRequest struct {
	MovieID uint `json:"movieId" binding:"required"`
}

type BulkAddRequest struct {
	MovieIDs []uint `json:"movieIds"`
}

type UpdateWatchlistRequest struct {
	Watched *bool   `json:"watched"`
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Notes   *string `json:"notes" binding:"omitempty,max=500"`
}

// nullKeys reports which of keys the JSON object body sets to null.
// Binding into pointers cannot tell null from an absent key.
func nullKeys(body []byte, keys ...string) map[string]bool {
	nulls := make(map[string]bool, len(keys))
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nulls
	}
	for _, key := range keys {
		if v, ok := fields[key]; ok && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			nulls[key] = true
		}
	}
	return nulls
}

var watchlistMessages = validation.Messages{
	"movieId": "Invalid movie ID",
	"rating":  "Rating must be between 1 and 5",
	"notes":   "Notes cannot exceed 500 characters",
}
