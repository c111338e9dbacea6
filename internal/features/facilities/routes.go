package facilities

import (
	"github.com/gin-gonic/gin"
	"github.com/opensupplyhub/oshub/internal/config"
	"github.com/opensupplyhub/oshub/internal/middleware"
)

// RegisterRoutes takes the repository rather than constructing one so the
// claims adapter and these handlers share a single handle.
func RegisterRoutes(router *gin.RouterGroup, cfg *config.Config, repo *Repository, users UserDirectory, events ContributionRecorder) {
	handler := NewHandler(repo, users, events, cfg)

	group := router.Group("/facilities")
	{
		group.GET("", handler.List)
		group.GET("/:osId", handler.Get)

		authed := group.Group("")
		authed.Use(middleware.Auth(cfg))
		{
			authed.POST("", handler.Create)
			authed.GET("/:osId/dispute", handler.DisputeEligibility)
			authed.POST("/:osId/activity-reports", handler.ReportClosure)
		}
	}
}
