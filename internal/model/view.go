package model

import "time"

// Projection selects which movie fields a response carries.
type Projection int

const (
	// ProjectionCard is the category list subset (trending, popular, new).
	ProjectionCard Projection = iota
	// ProjectionListing adds the classification flags.
	ProjectionListing
	// ProjectionSearch adds duration, language, director and cast.
	ProjectionSearch
	// ProjectionWatchlist adds duration.
	ProjectionWatchlist
	// ProjectionFull is the complete record.
	ProjectionFull
)

type MovieView struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	PosterURL    string     `json:"posterUrl"`
	BannerURL    string     `json:"bannerUrl"`
	Rating       float64    `json:"rating"`
	Genre        []string   `json:"genre"`
	ReleaseYear  int        `json:"releaseYear"`
	Duration     string     `json:"duration,omitempty"`
	TrailerURL   string     `json:"trailerUrl,omitempty"`
	IsTrending   *bool      `json:"isTrending,omitempty"`
	IsPopular    *bool      `json:"isPopular,omitempty"`
	IsNewRelease *bool      `json:"isNewRelease,omitempty"`
	Cast         []string   `json:"cast,omitempty"`
	Director     string     `json:"director,omitempty"`
	Language     string     `json:"language,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

func (m *Movie) View(p Projection) MovieView {
	v := MovieView{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		PosterURL:   m.PosterURL,
		BannerURL:   m.BannerURL,
		Rating:      m.Rating,
		Genre:       m.GenreNames(),
		ReleaseYear: m.ReleaseYear,
	}

	switch p {
	case ProjectionListing:
		v.setFlags(m)
	case ProjectionSearch:
		v.Duration = m.Duration
		v.Language = m.Language
		v.Director = m.Director
		v.Cast = m.CastNames()
	case ProjectionWatchlist:
		v.Duration = m.Duration
	case ProjectionFull:
		v.setFlags(m)
		v.Duration = m.Duration
		v.TrailerURL = m.TrailerURL
		v.Language = m.Language
		v.Director = m.Director
		v.Cast = m.CastNames()
		createdAt, updatedAt := m.CreatedAt, m.UpdatedAt
		v.CreatedAt = &createdAt
		v.UpdatedAt = &updatedAt
	}
	return v
}

func (v *MovieView) setFlags(m *Movie) {
	trending, popular, newRelease := m.IsTrending, m.IsPopular, m.IsNewRelease
	v.IsTrending = &trending
	v.IsPopular = &popular
	v.IsNewRelease = &newRelease
}

func MovieViews(movies []Movie, p Projection) []MovieView {
	views := make([]MovieView, len(movies))
	for i := range movies {
		views[i] = movies[i].View(p)
	}
	return views
}

type WatchlistEntryView struct {
	ID      uint       `json:"id"`
	UserID  uint       `json:"user"`
	Movie   *MovieView `json:"movie"`
	AddedAt time.Time  `json:"addedAt"`
	Watched bool       `json:"watched"`
	Rating  *int       `json:"rating"`
	Notes   *string    `json:"notes"`
}

func (e *WatchlistEntry) View() WatchlistEntryView {
	v := WatchlistEntryView{
		ID:      e.ID,
		UserID:  e.UserID,
		AddedAt: e.AddedAt,
		Watched: e.Watched,
		Rating:  e.Rating,
		Notes:   e.Notes,
	}
	if e.Movie != nil {
		mv := e.Movie.View(ProjectionWatchlist)
		v.Movie = &mv
	}
	return v
}
