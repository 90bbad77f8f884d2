package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openagora/forum/forum"
	"github.com/openagora/forum/middleware"
	"github.com/openagora/forum/models"
	"github.com/openagora/forum/utils"
)

const sessionDuration = 72 * time.Hour

// AuthController handles registration, login and session endpoints.
type AuthController struct {
	svc *forum.Service
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(svc *forum.Service) *AuthController {
	return &AuthController{svc: svc}
}

// Register creates a local account.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	user, err := a.svc.RegisterUser(ctx.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		renderError(ctx, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, sessionDuration)
	if err != nil {
		renderError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  publicUser(*user),
	})
}

// Login authenticates a local account and issues a session token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}

	user, err := a.svc.Authenticate(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		renderError(ctx, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, sessionDuration)
	if err != nil {
		renderError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  publicUser(*user),
	})
}

// Logout revokes the presented token until its natural expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	tokenVal, exists := ctx.Get(middleware.ContextTokenKey)
	if !exists {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	tokenString, _ := tokenVal.(string)

	expiresAt := time.Now().Add(sessionDuration)
	if claims, err := utils.ParseToken(tokenString); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(tokenString, expiresAt)

	utils.Success(ctx, gin.H{"logged_out": true})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	user, err := a.svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		renderError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": publicUser(*user)})
}

// publicUser strips credentials from a user record before it goes on
// the wire.
func publicUser(user models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	}
}
