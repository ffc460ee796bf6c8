package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/qs-lzh/movie-watchlist/internal/app"
	"github.com/qs-lzh/movie-watchlist/internal/service"
	"github.com/qs-lzh/movie-watchlist/internal/validation"
)

// responder writes the API envelope shared by every handler.
type responder struct {
	app *app.App
}

func (r responder) respond(ctx *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	ctx.JSON(status, body)
}

func (r responder) respondList(ctx *gin.Context, data any, count int) {
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
		"data":    data,
	})
}

func (r responder) fail(ctx *gin.Context, status int, message string, err error) {
	body := gin.H{"success": false, "message": message}
	if err != nil && r.app.Config.IsDevelopment() {
		body["error"] = err.Error()
	}
	ctx.AbortWithStatusJSON(status, body)
}

// handleError maps service errors to a status code. Anything unknown is
// logged and reported with the fallback message.
func (r responder) handleError(ctx *gin.Context, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": verr.Message,
			"errors":  []*service.ValidationError{verr},
		})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrEmptyMovieIDs),
		errors.Is(err, service.ErrSomeMoviesNotFound),
		errors.Is(err, service.ErrAlreadyInWatchlist),
		errors.Is(err, service.ErrAllAlreadyInWatchlist),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken):
		r.fail(ctx, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrMovieNotFound),
		errors.Is(err, service.ErrNotInWatchlist),
		errors.Is(err, service.ErrNotFound):
		r.fail(ctx, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthorized):
		r.fail(ctx, http.StatusUnauthorized, err.Error(), nil)
	default:
		r.app.Logger.Error(fallback,
			zap.String("request_id", ctx.GetString(ctxRequestID)),
			zap.Error(err),
		)
		r.fail(ctx, http.StatusInternalServerError, fallback, err)
	}
}

// bindError reports a request that could not be decoded or failed its
// binding rules.
func (r responder) bindError(ctx *gin.Context, err error, messages validation.Messages, fallback string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		r.fail(ctx, http.StatusBadRequest, fallback, err)
		return
	}
	fields := validation.FieldErrors(verrs, messages)
	ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": fields[0].Message,
		"errors":  fields,
	})
}
