package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/opensupplyhub/oshub/internal/config"
	"github.com/opensupplyhub/oshub/internal/middleware"
)

// RegisterRoutes registers the auth routes. The repository is constructed by
// the caller because other features share it through adapter interfaces.
func RegisterRoutes(router *gin.RouterGroup, cfg *config.Config, repo *Repository) {
	handler := NewHandler(repo, cfg)
	authed := middleware.Auth(cfg)

	auth := router.Group("/auth")
	{
		auth.POST("/google", handler.GoogleLogin)
		auth.POST("/refresh", handler.RefreshToken)
		auth.POST("/logout", authed, handler.Logout)
		auth.GET("/me", authed, handler.Me)
		auth.PATCH("/profile", authed, handler.UpdateProfile)
	}
}
