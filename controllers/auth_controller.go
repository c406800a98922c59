package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/presensi/presensi-server/middleware"
	"github.com/presensi/presensi-server/models"
	"github.com/presensi/presensi-server/services"
	"github.com/presensi/presensi-server/utils"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authPayload struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthController handles local account registration and JWT sessions.
type AuthController struct {
	svc *services.AuthService
}

// NewAuthController creates an AuthController.
func NewAuthController(svc *services.AuthService) *AuthController {
	return &AuthController{svc: svc}
}

// Register handles local account registration with bcrypt hashing.
func (a *AuthController) Register(ctx *gin.Context) {
	var req services.RegisterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, bindErrorMessage(err))
		return
	}

	user, err := a.svc.Register(ctx.Request.Context(), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	utils.Created(ctx, "registration successful", user)
}

// Login verifies user credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, bindErrorMessage(err))
		return
	}

	token, user, err := a.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrBadCredentials) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, err.Error())
		return
	}
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	utils.Success(ctx, "login successful", authPayload{Token: token, User: user})
}

// Logout revokes the token until its expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	expiresAt := time.Now().Add(72 * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.RevokeToken(ctx.Request.Context(), claims.ID, expiresAt)
	utils.Success(ctx, "logged out", nil)
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	user, err := a.svc.Me(ctx.Request.Context(), actor.UserID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	utils.Success(ctx, "success", user)
}
