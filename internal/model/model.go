package model

import (
	"time"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name           string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	HashedPassword string    `gorm:"not null" json:"-"`
	Role           UserRole  `gorm:"type:varchar(16);not null" json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
}

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const DefaultLanguage = "English"

type Movie struct {
	ID           uint         `gorm:"primaryKey"`
	Title        string       `gorm:"size:200;not null;index"`
	Description  string       `gorm:"type:text;not null"`
	ReleaseYear  int          `gorm:"not null;index"`
	Genres       []MovieGenre `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
	Duration     string       `gorm:"size:64;not null"`
	Rating       float64      `gorm:"not null;index"`
	PosterURL    string       `gorm:"not null"`
	BannerURL    string       `gorm:"not null"`
	TrailerURL   string
	IsTrending   bool              `gorm:"not null;index"`
	IsPopular    bool              `gorm:"not null;index"`
	IsNewRelease bool              `gorm:"not null;index"`
	Cast         []MovieCastMember `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
	Director     string            `gorm:"size:100"`
	Language     string            `gorm:"size:50;not null"`
	CreatedAt    time.Time         `gorm:"index"`
	UpdatedAt    time.Time
}

// MovieGenre is one element of a movie's ordered genre list.
type MovieGenre struct {
	ID       uint   `gorm:"primaryKey"`
	MovieID  uint   `gorm:"not null;index"`
	Position int    `gorm:"not null"`
	Name     string `gorm:"size:64;not null;index"`
}

// MovieCastMember is one element of a movie's ordered cast list.
type MovieCastMember struct {
	ID       uint   `gorm:"primaryKey"`
	MovieID  uint   `gorm:"not null;index"`
	Position int    `gorm:"not null"`
	Name     string `gorm:"size:128;not null"`
}

func (MovieCastMember) TableName() string {
	return "movie_cast"
}

func (m *Movie) GenreNames() []string {
	names := make([]string, len(m.Genres))
	for i, g := range m.Genres {
		names[i] = g.Name
	}
	return names
}

func (m *Movie) CastNames() []string {
	names := make([]string, len(m.Cast))
	for i, c := range m.Cast {
		names[i] = c.Name
	}
	return names
}

// SetGenres replaces the genre list, keeping the given order.
func (m *Movie) SetGenres(names []string) {
	m.Genres = make([]MovieGenre, len(names))
	for i, name := range names {
		m.Genres[i] = MovieGenre{MovieID: m.ID, Position: i, Name: name}
	}
}

func (m *Movie) SetCast(names []string) {
	m.Cast = make([]MovieCastMember, len(names))
	for i, name := range names {
		m.Cast[i] = MovieCastMember{MovieID: m.ID, Position: i, Name: name}
	}
}

// WatchlistEntry joins a user to a movie. The movie reference carries no
// foreign key: entries of a deleted movie are filtered out on read and
// purged by the catalog workflow.
type WatchlistEntry struct {
	ID      uint      `gorm:"primaryKey"`
	UserID  uint      `gorm:"not null;uniqueIndex:idx_watchlist_user_movie,priority:1"`
	MovieID uint      `gorm:"not null;uniqueIndex:idx_watchlist_user_movie,priority:2;index"`
	Movie   *Movie    `gorm:"-"`
	AddedAt time.Time `gorm:"not null;index"`
	Watched bool      `gorm:"not null"`
	Rating  *int
	Notes   *string `gorm:"size:500"`
}
