package domain

import (
	"strings"

	"github.com/qs-lzh/movie-watchlist/internal/model"
	"github.com/qs-lzh/movie-watchlist/internal/validation"
)

// MovieInput carries the writable movie fields. Nil fields are left
// unchanged on update; on create the validated record must still be
// complete.
type MovieInput struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	ReleaseYear  *int     `json:"releaseYear"`
	Genre        []string `json:"genre"`
	Duration     *string  `json:"duration"`
	Rating       *float64 `json:"rating"`
	PosterURL    *string  `json:"posterUrl"`
	PosterPath   *string  `json:"poster_path,omitempty"`
	Poster       *string  `json:"poster,omitempty"`
	BannerURL    *string  `json:"bannerUrl"`
	TrailerURL   *string  `json:"trailerUrl"`
	IsTrending   *bool    `json:"isTrending"`
	IsPopular    *bool    `json:"isPopular"`
	IsNewRelease *bool    `json:"isNewRelease"`
	Cast         []string `json:"cast"`
	Director     *string  `json:"director"`
	Language     *string  `json:"language"`
}

const tmdbPosterBase = "https://image.tmdb.org/t/p/w500"

// usable treats the placeholder strings legacy clients send as absent.
func usable(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	v := strings.TrimSpace(*s)
	if v == "" || v == "undefined" || v == "null" {
		return "", false
	}
	return v, true
}

// posterURL resolves the poster aliases into the canonical posterUrl:
// posterUrl, then a TMDB poster_path, then poster.
func (in *MovieInput) posterURL() *string {
	if v, ok := usable(in.PosterURL); ok {
		return &v
	}
	if v, ok := usable(in.PosterPath); ok {
		if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			v = tmdbPosterBase + "/" + strings.TrimPrefix(v, "/")
		}
		return &v
	}
	if v, ok := usable(in.Poster); ok {
		return &v
	}
	return in.PosterURL
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// Apply merges the input into m.
func (in *MovieInput) Apply(m *model.Movie) {
	setTrimmed(&m.Title, in.Title)
	setTrimmed(&m.Description, in.Description)
	if in.ReleaseYear != nil {
		m.ReleaseYear = *in.ReleaseYear
	}
	if in.Genre != nil {
		m.SetGenres(trimAll(in.Genre))
	}
	setTrimmed(&m.Duration, in.Duration)
	if in.Rating != nil {
		m.Rating = *in.Rating
	}
	setTrimmed(&m.PosterURL, in.posterURL())
	setTrimmed(&m.BannerURL, in.BannerURL)
	setTrimmed(&m.TrailerURL, in.TrailerURL)
	if in.IsTrending != nil {
		m.IsTrending = *in.IsTrending
	}
	if in.IsPopular != nil {
		m.IsPopular = *in.IsPopular
	}
	if in.IsNewRelease != nil {
		m.IsNewRelease = *in.IsNewRelease
	}
	if in.Cast != nil {
		m.SetCast(trimAll(in.Cast))
	}
	setTrimmed(&m.Director, in.Director)
	setTrimmed(&m.Language, in.Language)
	if m.Language == "" {
		m.Language = model.DefaultLanguage
	}
}

type movieRecord struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"min=10,max=1000"`
	ReleaseYear int      `json:"releaseYear" validate:"releaseyear"`
	Genre       []string `json:"genre" validate:"min=1,dive,required"`
	Duration    string   `json:"duration" validate:"required"`
	Rating      float64  `json:"rating" validate:"min=0,max=10"`
	PosterURL   string   `json:"posterUrl" validate:"url"`
	BannerURL   string   `json:"bannerUrl" validate:"url"`
	TrailerURL  string   `json:"trailerUrl" validate:"omitempty,url"`
	Cast        []string `json:"cast" validate:"dive,required"`
	Director    string   `json:"director" validate:"max=100"`
	Language    string   `json:"language" validate:"required,max=50"`
}

var movieMessages = validation.Messages{
	"title":       "Title must be between 1 and 200 characters",
	"description": "Description must be between 10 and 1000 characters",
	"releaseYear": "Release year must be a valid year",
	"genre":       "At least one genre is required",
	"genre[]":     "Genre names cannot be empty",
	"duration":    "Duration is required",
	"rating":      "Rating must be between 0 and 10",
	"posterUrl":   "Poster URL must be a valid URL",
	"bannerUrl":   "Banner URL must be a valid URL",
	"trailerUrl":  "Trailer URL must be a valid URL",
	"cast[]":      "Cast names cannot be empty",
	"director":    "Director name must be between 1 and 100 characters",
	"language":    "Language must be between 1 and 50 characters",
}

// ValidateMovie checks a complete movie record before it is stored.
func ValidateMovie(m *model.Movie) error {
	rec := movieRecord{
		Title:       m.Title,
		Description: m.Description,
		ReleaseYear: m.ReleaseYear,
		Genre:       m.GenreNames(),
		Duration:    m.Duration,
		Rating:      m.Rating,
		PosterURL:   m.PosterURL,
		BannerURL:   m.BannerURL,
		TrailerURL:  m.TrailerURL,
		Cast:        m.CastNames(),
		Director:    m.Director,
		Language:    m.Language,
	}
	return validation.Struct(&rec, movieMessages)
}
