package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/movie-watchlist/internal/app"
	"github.com/qs-lzh/movie-watchlist/internal/model"
	"github.com/qs-lzh/movie-watchlist/internal/service"
	"github.com/qs-lzh/movie-watchlist/internal/service/domain"
)

type MovieHandler struct {
	responder
}

func NewMovieHandler(app *app.App) *MovieHandler {
	return &MovieHandler{responder{app: app}}
}

// parseID reads a positive integer path parameter.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// movieErr reports a missing movie by name rather than as a generic
// resource.
func movieErr(err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return service.ErrMovieNotFound
	}
	return err
}

func (h *MovieHandler) HandleTrending(ctx *gin.Context) {
	movies, err := h.app.MovieService.GetTrendingMovies(ctx.Request.Context())
	if err != nil {
		h.handleError(ctx, err, "Error fetching trending movies")
		return
	}
	h.respondList(ctx, movies, len(movies))
}

func (h *MovieHandler) HandlePopular(ctx *gin.Context) {
	movies, err := h.app.MovieService.GetPopularMovies(ctx.Request.Context())
	if err != nil {
		h.handleError(ctx, err, "Error fetching popular movies")
		return
	}
	h.respondList(ctx, movies, len(movies))
}

func (h *MovieHandler) HandleNewReleases(ctx *gin.Context) {
	movies, err := h.app.MovieService.GetNewReleases(ctx.Request.Context())
	if err != nil {
		h.handleError(ctx, err, "Error fetching new releases")
		return
	}
	h.respondList(ctx, movies, len(movies))
}

func (h *MovieHandler) respondPage(ctx *gin.Context, list *domain.MovieList) {
	ctx.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       list.Movies,
		"pagination": list.Pagination,
	})
}

func (h *MovieHandler) HandleList(ctx *gin.Context) {
	var q MovieListQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		h.bindError(ctx, err, movieQueryMessages, "Invalid query parameters")
		return
	}

	list, err := h.app.MovieService.GetAllMovies(ctx.Request.Context(), q.toDomain())
	if err != nil {
		h.handleError(ctx, err, "Error fetching movies")
		return
	}
	h.respondPage(ctx, list)
}

func (h *MovieHandler) HandleSearch(ctx *gin.Context) {
	var q MovieListQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		h.bindError(ctx, err, movieQueryMessages, "Invalid query parameters")
		return
	}

	list, err := h.app.MovieService.SearchMovies(ctx.Request.Context(), q.toDomain())
	if err != nil {
		h.handleError(ctx, err, "Error searching movies")
		return
	}
	h.respondPage(ctx, list)
}

func (h *MovieHandler) HandleGet(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		h.fail(ctx, http.StatusBadRequest, "Invalid movie ID", nil)
		return
	}

	movie, err := h.app.MovieService.GetMovieByID(ctx.Request.Context(), id)
	if err != nil {
		h.handleError(ctx, movieErr(err), "Error fetching movie")
		return
	}
	h.respond(ctx, http.StatusOK, "", movie.View(model.ProjectionFull))
}

func (h *MovieHandler) HandleCreate(ctx *gin.Context) {
	var in domain.MovieInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		h.fail(ctx, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	movie, err := h.app.MovieService.AddMovie(ctx.Request.Context(), in)
	if err != nil {
		h.handleError(ctx, err, "Error adding movie")
		return
	}
	h.respond(ctx, http.StatusCreated, "Movie added successfully", movie.View(model.ProjectionFull))
}

func (h *MovieHandler) HandleUpdate(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		h.fail(ctx, http.StatusBadRequest, "Invalid movie ID", nil)
		return
	}
	var in domain.MovieInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		h.fail(ctx, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	movie, err := h.app.MovieService.UpdateMovie(ctx.Request.Context(), id, in)
	if err != nil {
		h.handleError(ctx, movieErr(err), "Error updating movie")
		return
	}
	h.respond(ctx, http.StatusOK, "Movie updated successfully", movie.View(model.ProjectionFull))
}

func (h *MovieHandler) HandleDelete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		h.fail(ctx, http.StatusBadRequest, "Invalid movie ID", nil)
		return
	}

	if err := h.app.MovieService.DeleteMovie(ctx.Request.Context(), id); err != nil {
		h.handleError(ctx, movieErr(err), "Error deleting movie")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Movie deleted successfully",
	})
}

func toggleMessage(value bool, category string) string {
	if value {
		return fmt.Sprintf("Movie added to %s", category)
	}
	return fmt.Sprintf("Movie removed from %s", category)
}

func (h *MovieHandler) HandleToggleTrending(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		h.fail(ctx, http.StatusBadRequest, "Invalid movie ID", nil)
		return
	}

	value, err := h.app.MovieService.ToggleTrending(ctx.Request.Context(), id)
	if err != nil {
		h.handleError(ctx, movieErr(err), "Error updating trending status")
		return
	}
	h.respond(ctx, http.StatusOK, toggleMessage(value, "trending"), gin.H{"isTrending": value})
}

func (h *MovieHandler) HandleTogglePopular(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		h.fail(ctx, http.StatusBadRequest, "Invalid movie ID", nil)
		return
	}

	value, err := h.app.MovieService.TogglePopular(ctx.Request.Context(), id)
	if err != nil {
		h.handleError(ctx, movieErr(err), "Error updating popular status")
		return
	}
	h.respond(ctx, http.StatusOK, toggleMessage(value, "popular"), gin.H{"isPopular": value})
}

func (h *MovieHandler) HandleStats(ctx *gin.Context) {
	stats, err := h.app.MovieService.GetMovieStats(ctx.Request.Context())
	if err != nil {
		h.handleError(ctx, err, "Error fetching movie statistics")
		return
	}
	h.respond(ctx, http.StatusOK, "", stats)
}
