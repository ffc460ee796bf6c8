package app

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/movie-watchlist/config"
	"github.com/qs-lzh/movie-watchlist/internal/auth"
	"github.com/qs-lzh/movie-watchlist/internal/cache"
	"github.com/qs-lzh/movie-watchlist/internal/database"
	"github.com/qs-lzh/movie-watchlist/internal/mq"
	"github.com/qs-lzh/movie-watchlist/internal/repository"
	"github.com/qs-lzh/movie-watchlist/internal/service/domain"
	"github.com/qs-lzh/movie-watchlist/internal/service/workflow"
)

type App struct {
	Config *config.Config

	DB        *gorm.DB
	Cache     *cache.RedisCache
	Logger    *zap.Logger
	MQConn    *amqp.Connection
	Publisher *mq.Publisher
	Tokens    *auth.JWTManager

	UserRepo      repository.UserRepo
	MovieRepo     repository.MovieRepo
	WatchlistRepo repository.WatchlistRepo

	UserService      domain.UserService
	MovieService     domain.MovieService
	WatchlistService domain.WatchlistService

	CatalogWorkflow *workflow.CatalogWorkflow

	cancel context.CancelFunc
}

// New wires repositories, services and workflows. redisCache and mqConn
// may be nil, which disables the listing cache and catalog events.
func New(cfg *config.Config, db *gorm.DB, redisCache *cache.RedisCache, mqConn *amqp.Connection, logger *zap.Logger) (*App, error) {
	tokens, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpire)
	if err != nil {
		return nil, err
	}

	var publisher *mq.Publisher
	if mqConn != nil {
		publisher, err = mq.NewPublisher(mqConn)
		if err != nil {
			return nil, err
		}
	}

	userRepo := repository.NewUserRepoGorm(db)
	movieRepo := repository.NewMovieRepoGorm(db)
	watchlistRepo := repository.NewWatchlistRepoGorm(db)

	// typed nils must not leak into the service interfaces
	var listingCache domain.ListingCache
	if redisCache != nil {
		listingCache = redisCache
	}
	var eventPublisher domain.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}

	userService := domain.NewUserService(userRepo, tokens, logger)
	movieService := domain.NewMovieService(db, movieRepo, listingCache, eventPublisher, logger)
	watchlistService := domain.NewWatchlistService(db, watchlistRepo, movieRepo, logger)

	catalogWorkflow := workflow.NewCatalogWorkflow(watchlistService, logger)

	return &App{
		Config:           cfg,
		DB:               db,
		Cache:            redisCache,
		Logger:           logger,
		MQConn:           mqConn,
		Publisher:        publisher,
		Tokens:           tokens,
		UserRepo:         userRepo,
		MovieRepo:        movieRepo,
		WatchlistRepo:    watchlistRepo,
		UserService:      userService,
		MovieService:     movieService,
		WatchlistService: watchlistService,
		CatalogWorkflow:  catalogWorkflow,
	}, nil
}

func (app *App) Init() error {
	// init database
	if err := database.Migrate(app.DB); err != nil {
		return err
	}

	// init rabbit mq
	if app.MQConn == nil {
		app.Logger.Warn("RabbitMQ not configured, watchlist entries of deleted movies will not be purged")
		return nil
	}
	if err := mq.InitQueues(app.MQConn); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	return app.CatalogWorkflow.Start(ctx, app.MQConn)
}

func (app *App) Close() error {
	if app.cancel != nil {
		app.cancel()
	}

	var errs []error
	if app.Publisher != nil {
		errs = append(errs, app.Publisher.Close())
	}
	if app.MQConn != nil {
		errs = append(errs, app.MQConn.Close())
	}
	if app.Cache != nil {
		errs = append(errs, app.Cache.Close())
	}
	errs = append(errs, database.Close(app.DB))
	return errors.Join(errs...)
}
