package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qs-lzh/movie-watchlist/internal/app"
	"github.com/qs-lzh/movie-watchlist/internal/validation"
)

const authRateBurst = 10

var registerOnce sync.Once

// NewRouter builds the HTTP API for app.
func NewRouter(app *app.App) *gin.Engine {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validation.Register(v)
		}
	})

	if !app.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(app.Logger.Named("http")), Metrics())

	r.GET("/health", NewHealthHandler(app).HandleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := RequireAuth(app.Tokens)
	requireAdmin := RequireAdmin()

	authHandler := NewAuthHandler(app)
	authGroup := r.Group("/api/auth")
	{
		limited := authGroup.Group("", RateLimit(app.Config.AuthRateLimit, authRateBurst))
		limited.POST("/signup", authHandler.HandleSignup)
		limited.POST("/login", authHandler.HandleLogin)

		authGroup.GET("/profile", requireAuth, authHandler.HandleGetProfile)
		authGroup.PUT("/profile", requireAuth, authHandler.HandleUpdateProfile)
	}

	movieHandler := NewMovieHandler(app)
	movies := r.Group("/api/movies")
	{
		movies.GET("/trending", movieHandler.HandleTrending)
		movies.GET("/popular", movieHandler.HandlePopular)
		movies.GET("/new", movieHandler.HandleNewReleases)
		movies.GET("/search", movieHandler.HandleSearch)
		movies.GET("", movieHandler.HandleList)
		movies.GET("/:id", movieHandler.HandleGet)

		admin := movies.Group("", requireAuth, requireAdmin)
		admin.POST("", movieHandler.HandleCreate)
		admin.PUT("/:id", movieHandler.HandleUpdate)
		admin.DELETE("/:id", movieHandler.HandleDelete)
		admin.PATCH("/:id/trending", movieHandler.HandleToggleTrending)
		admin.PATCH("/:id/popular", movieHandler.HandleTogglePopular)
		admin.GET("/stats/admin", movieHandler.HandleStats)
	}

	watchlistHandler := NewWatchlistHandler(app)
	watchlist := r.Group("/api/watchlist", requireAuth)
	{
		watchlist.GET("", watchlistHandler.HandleList)
		watchlist.POST("", watchlistHandler.HandleAdd)
		watchlist.POST("/bulk", watchlistHandler.HandleBulkAdd)
		watchlist.GET("/stats", watchlistHandler.HandleStats)
		watchlist.GET("/status/:movieId", watchlistHandler.HandleStatus)
		watchlist.PUT("/:movieId", watchlistHandler.HandleUpdate)
		watchlist.DELETE("/:movieId", watchlistHandler.HandleRemove)
	}

	r.NoRoute(func(ctx *gin.Context) {
		abortJSON(ctx, http.StatusNotFound, "Route not found")
	})

	return r
}

type HealthHandler struct {
	app *app.App
}

func NewHealthHandler(app *app.App) *HealthHandler {
	return &HealthHandler{app: app}
}

// HandleHealth reports liveness together with database reachability.
func (h *HealthHandler) HandleHealth(ctx *gin.Context) {
	status, code := "OK", http.StatusOK

	sqlDB, err := h.app.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx.Request.Context())
	}
	if err != nil {
		status, code = "ERROR", http.StatusServiceUnavailable
	}

	ctx.JSON(code, gin.H{
		"status":      status,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.app.Config.Env,
	})
}
