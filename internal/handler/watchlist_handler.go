package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/movie-watchlist/internal/app"
	"github.com/qs-lzh/movie-watchlist/internal/model"
	"github.com/qs-lzh/movie-watchlist/internal/service/domain"
)

type WatchlistHandler struct {
	responder
}

func NewWatchlistHandler(app *app.App) *WatchlistHandler {
	return &WatchlistHandler{responder{app: app}}
}

func (h *WatchlistHandler) HandleList(ctx *gin.Context) {
	entries, err := h.app.WatchlistService.GetUserWatchlist(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		h.handleError(ctx, err, "Error fetching watchlist")
		return
	}

	views := make([]model.WatchlistEntryView, len(entries))
	for i := range entries {
		views[i] = entries[i].View()
	}
	h.respondList(ctx, views, len(views))
}

func (h *WatchlistHandler) HandleAdd(ctx *gin.Context) {
	var req AddWatchlistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.bindError(ctx, err, watchlistMessages, "Invalid movie ID")
		return
	}

	entry, err := h.app.WatchlistService.AddToWatchlist(ctx.Request.Context(), currentUserID(ctx), req.MovieID)
	if err != nil {
		h.handleError(ctx, err, "Error adding to watchlist")
		return
	}
	h.respond(ctx, http.StatusCreated, "Movie added to watchlist", entry.View())
}

func (h *WatchlistHandler) HandleRemove(ctx *gin.Context) {
	movieID, ok := parseID(ctx, "movieId")
	if !ok {
		h.fail(ctx, http.StatusBadRequest, "Invalid movie ID", nil)
		return
	}

	if err := h.app.WatchlistService.RemoveFromWatchlist(ctx.Request.Context(), currentUserID(ctx), movieID); err != nil {
		h.handleError(ctx, err, "Error removing from watchlist")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Movie removed from watchlist",
	})
}

func (h *WatchlistHandler) HandleUpdate(ctx *gin.Context) {
	movieID, ok := parseID(ctx, "movieId")
	if !ok {
		h.fail(ctx, http.StatusBadRequest, "Invalid movie ID", nil)
		return
	}
	var req UpdateWatchlistRequest
	if err := ctx.ShouldBindBodyWithJSON(&req); err != nil {
		h.bindError(ctx, err, watchlistMessages, "Invalid request format")
		return
	}
	body, _ := ctx.Get(gin.BodyBytesKey)
	raw, _ := body.([]byte)
	nulls := nullKeys(raw, "rating", "notes")

	update := domain.WatchlistUpdate{
		Watched:     req.Watched,
		Rating:      req.Rating,
		Notes:       req.Notes,
		ClearRating: nulls["rating"],
		ClearNotes:  nulls["notes"],
	}
	entry, err := h.app.WatchlistService.UpdateWatchlistItem(ctx.Request.Context(), currentUserID(ctx), movieID, update)
	if err != nil {
		h.handleError(ctx, err, "Error updating watchlist item")
		return
	}
	h.respond(ctx, http.StatusOK, "Watchlist item updated", entry.View())
}

func (h *WatchlistHandler) HandleStatus(ctx *gin.Context) {
	movieID, ok := parseID(ctx, "movieId")
	if !ok {
		h.fail(ctx, http.StatusBadRequest, "Invalid movie ID", nil)
		return
	}

	status, err := h.app.WatchlistService.CheckWatchlistStatus(ctx.Request.Context(), currentUserID(ctx), movieID)
	if err != nil {
		h.handleError(ctx, err, "Error checking watchlist status")
		return
	}
	h.respond(ctx, http.StatusOK, "", status)
}

func (h *WatchlistHandler) HandleStats(ctx *gin.Context) {
	stats, err := h.app.WatchlistService.GetWatchlistStats(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		h.handleError(ctx, err, "Error fetching watchlist statistics")
		return
	}
	h.respond(ctx, http.StatusOK, "", stats)
}

func (h *WatchlistHandler) HandleBulkAdd(ctx *gin.Context) {
	var req BulkAddRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.fail(ctx, http.StatusBadRequest, "Movie IDs array is required", err)
		return
	}

	result, err := h.app.WatchlistService.BulkAddToWatchlist(ctx.Request.Context(), currentUserID(ctx), req.MovieIDs)
	if err != nil {
		h.handleError(ctx, err, "Error bulk adding to watchlist")
		return
	}
	h.respond(ctx, http.StatusCreated, fmt.Sprintf("%d movies added to watchlist", result.Added), result)
}
