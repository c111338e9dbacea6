package moderation

import (
	"github.com/gin-gonic/gin"
	"github.com/opensupplyhub/oshub/internal/config"
	"github.com/opensupplyhub/oshub/internal/middleware"
)

func RegisterRoutes(router *gin.RouterGroup, cfg *config.Config, repo *Repository, sessions *Sessions) {
	handler := NewHandler(repo, sessions)

	group := router.Group("/moderation")
	group.Use(middleware.Auth(cfg), middleware.RequireRole("moderator"))
	{
		group.GET("/queue", handler.GetQueue)
		group.DELETE("/queue", handler.CloseQueue)
		group.PATCH("/queue/filters", handler.UpdateFilters)
		group.POST("/queue/next", handler.NextPage)
		group.POST("/queue/prev", handler.PrevPage)
		group.POST("/queue/refresh", handler.Refresh)
		group.GET("/options", handler.GetOptions)
		group.PATCH("/events/:id", handler.ResolveEvent)
	}
}
