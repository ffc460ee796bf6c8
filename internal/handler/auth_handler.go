package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/movie-watchlist/internal/app"
)

type AuthHandler struct {
	responder
}

func NewAuthHandler(app *app.App) *AuthHandler {
	return &AuthHandler{responder{app: app}}
}

func (h *AuthHandler) HandleSignup(ctx *gin.Context) {
	var req SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.bindError(ctx, err, authMessages, "Invalid request format")
		return
	}

	result, err := h.app.UserService.Signup(ctx.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		h.handleError(ctx, err, "Error creating user")
		return
	}
	h.respond(ctx, http.StatusCreated, "User created successfully", result)
}

func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.bindError(ctx, err, authMessages, "Invalid request format")
		return
	}

	result, err := h.app.UserService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(ctx, err, "Error during login")
		return
	}
	h.respond(ctx, http.StatusOK, "Login successful", result)
}

func (h *AuthHandler) HandleGetProfile(ctx *gin.Context) {
	user, err := h.app.UserService.GetProfile(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		h.handleError(ctx, err, "Error fetching profile")
		return
	}
	h.respond(ctx, http.StatusOK, "", user)
}

func (h *AuthHandler) HandleUpdateProfile(ctx *gin.Context) {
	var req ProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.bindError(ctx, err, authMessages, "Invalid request format")
		return
	}

	user, err := h.app.UserService.UpdateProfile(ctx.Request.Context(), currentUserID(ctx), req.Username)
	if err != nil {
		h.handleError(ctx, err, "Error updating profile")
		return
	}
	h.respond(ctx, http.StatusOK, "Profile updated successfully", user)
}
