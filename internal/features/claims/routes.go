package claims

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opensupplyhub/oshub/internal/config"
	"github.com/opensupplyhub/oshub/internal/middleware"
	"github.com/opensupplyhub/oshub/internal/pkg/cloudinary"
	"github.com/opensupplyhub/oshub/internal/pkg/logger"
	"github.com/opensupplyhub/oshub/internal/pkg/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, facilities FacilityDirectory, ledger ClaimLedger, uploads *cloudinary.Service, log *logger.Logger) {
	repo := NewRepository(db)
	handler := NewHandler(repo, facilities, ledger, uploads, cfg, log)
	auth := middleware.Auth(cfg)
	moderator := middleware.RequireRole("moderator")

	// Claim submission is rate limited to keep claim spam out of the queue.
	claimLimiter := ratelimit.UserBasedMiddleware(ratelimit.New(5, time.Hour))

	router.POST("/facilities/:osId/claim", auth, claimLimiter, handler.Submit)
	router.GET("/claims/mine", auth, handler.Mine)

	review := router.Group("/claims")
	review.Use(auth, moderator)
	{
		review.GET("", handler.List)
		review.GET("/:id", handler.Get)
		review.POST("/:id/approve", handler.Approve)
		review.POST("/:id/deny", handler.Deny)
		review.POST("/:id/revoke", handler.Revoke)
		review.POST("/:id/message", handler.MessageClaimant)
		review.POST("/:id/controls/reset", handler.ResetControls)
		review.PATCH("/:id/note", handler.UpdateNoteDraft)
		review.POST("/:id/note", handler.SubmitNote)
	}
}
