// Command seed loads the sample catalog and two accounts.
package main

import (
	"context"
	_ "embed"
	"flag"
	"log"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/movie-watchlist/config"
	"github.com/qs-lzh/movie-watchlist/internal/app"
	"github.com/qs-lzh/movie-watchlist/internal/auth"
	"github.com/qs-lzh/movie-watchlist/internal/cache"
	"github.com/qs-lzh/movie-watchlist/internal/database"
	"github.com/qs-lzh/movie-watchlist/internal/logger"
	"github.com/qs-lzh/movie-watchlist/internal/model"
	"github.com/qs-lzh/movie-watchlist/internal/service/domain"
)

//go:embed movies.json
var moviesJSON []byte

type account struct {
	email, username, password string
	role                      model.UserRole
}

var accounts = []account{
	{"admin@netflixclone.com", "admin", "admin123", model.RoleAdmin},
	{"user@netflixclone.com", "user", "user123", model.RoleUser},
}

func main() {
	reset := flag.Bool("reset", true, "delete existing movies, watchlists and users first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	if err := seed(context.Background(), cfg, zlog, *reset); err != nil {
		zlog.Fatal("seeding failed", zap.Error(err))
	}
}

func seed(ctx context.Context, cfg *config.Config, zlog *zap.Logger, reset bool) error {
	db, err := database.Open(cfg, zlog)
	if err != nil {
		return err
	}

	var redisCache *cache.RedisCache
	if cfg.CacheURL != "" {
		if redisCache, err = cache.NewRedisCache(cfg.CacheURL, cfg.CacheTTL, zlog); err != nil {
			return err
		}
	}

	a, err := app.New(cfg, db, redisCache, nil, zlog)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.Init(); err != nil {
		return err
	}

	if reset {
		if err := clearData(db); err != nil {
			return err
		}
		zlog.Info("cleared existing data")
	}

	for _, acc := range accounts {
		hashed, err := auth.HashPassword(acc.password)
		if err != nil {
			return err
		}
		user := &model.User{
			Email:          acc.email,
			Name:           acc.username,
			HashedPassword: hashed,
			Role:           acc.role,
		}
		if err := a.UserRepo.Create(ctx, user); err != nil {
			return err
		}
		zlog.Info("created user", zap.String("email", acc.email), zap.String("role", string(acc.role)))
	}

	var movies []domain.MovieInput
	if err := json.Unmarshal(moviesJSON, &movies); err != nil {
		return err
	}
	for _, in := range movies {
		if _, err := a.MovieService.AddMovie(ctx, in); err != nil {
			return err
		}
	}

	stats, err := a.MovieService.GetMovieStats(ctx)
	if err != nil {
		return err
	}
	zlog.Info("database seeded",
		zap.Int64("movies", stats.TotalMovies),
		zap.Int64("trending", stats.TotalTrending),
		zap.Int64("popular", stats.TotalPopular),
		zap.Int64("new_releases", stats.TotalNewReleases),
	)
	return nil
}

func clearData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []any{
			&model.WatchlistEntry{},
			&model.MovieGenre{},
			&model.MovieCastMember{},
			&model.Movie{},
			&model.User{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
