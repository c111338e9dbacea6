package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opensupplyhub/oshub/internal/config"
	"github.com/opensupplyhub/oshub/internal/features/auth"
	"github.com/opensupplyhub/oshub/internal/features/claims"
	"github.com/opensupplyhub/oshub/internal/features/facilities"
	"github.com/opensupplyhub/oshub/internal/features/moderation"
	"github.com/opensupplyhub/oshub/internal/pkg/cloudinary"
	"github.com/opensupplyhub/oshub/internal/pkg/logger"
)

// contributionRecorderAdapter feeds new facility submissions into the
// moderation queue.
type contributionRecorderAdapter struct {
	repo *moderation.Repository
}

func (a *contributionRecorderAdapter) Record(ctx context.Context, c facilities.Contribution) error {
	return a.repo.Insert(ctx, &moderation.Event{
		Type:          moderation.EventNewFacility,
		OSID:          c.OSID,
		Name:          c.Name,
		Address:       c.Address,
		CountryCode:   c.CountryCode,
		Source:        c.Source,
		ContributorID: c.ContributorID,
	})
}

// facilityDirectoryAdapter adapts facilities.Repository to the narrow
// surface the claims workflow needs.
type facilityDirectoryAdapter struct {
	repo *facilities.Repository
}

func (a *facilityDirectoryAdapter) Lookup(ctx context.Context, osID string) (string, bool, error) {
	facility, err := a.repo.GetByOSID(ctx, osID)
	if err != nil {
		return "", false, err
	}
	if facility == nil {
		return "", false, nil
	}
	return facility.Name, true, nil
}

func (a *facilityDirectoryAdapter) SetClaim(ctx context.Context, osID string, claim *claims.ActiveClaim) error {
	if claim == nil {
		return a.repo.SetClaimInfo(ctx, osID, nil)
	}
	return a.repo.SetClaimInfo(ctx, osID, &facilities.ClaimInfo{
		Status:      facilities.ClaimStatus(claim.Status),
		Contributor: facilities.Contributor{Name: claim.ContributorName},
		ApprovedAt:  claim.ApprovedAt,
	})
}

// claimLedgerAdapter adapts auth.Repository to the claims ledger surface.
type claimLedgerAdapter struct {
	repo *auth.Repository
}

func (a *claimLedgerAdapter) AddPending(ctx context.Context, userID, osID string) error {
	return a.repo.AddPendingClaim(ctx, userID, osID)
}

func (a *claimLedgerAdapter) Promote(ctx context.Context, userID, osID string) error {
	return a.repo.PromoteClaim(ctx, userID, osID)
}

func (a *claimLedgerAdapter) Remove(ctx context.Context, userID, osID string) error {
	return a.repo.RemoveClaim(ctx, userID, osID)
}

func SetupRoutes(router *gin.Engine, db *mongo.Database, cfg *config.Config, log *logger.Logger) {
	api := router.Group("/api/v1")

	// Repositories shared across features through adapters
	authRepo := auth.NewRepository(db)
	moderationRepo := moderation.NewRepository(db)
	facilitiesRepo := facilities.NewRepository(db)

	uploads, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, "claims")
	if err != nil {
		log.Warn("Failed to initialize cloudinary service: %v", err)
	}

	moderationSessions := moderation.NewSessions(moderationRepo, log)

	auth.RegisterRoutes(api, cfg, authRepo)
	facilities.RegisterRoutes(api, cfg, facilitiesRepo, authRepo, &contributionRecorderAdapter{repo: moderationRepo})
	claims.RegisterRoutes(api, db, cfg, &facilityDirectoryAdapter{repo: facilitiesRepo}, &claimLedgerAdapter{repo: authRepo}, uploads, log)
	moderation.RegisterRoutes(api, cfg, moderationRepo, moderationSessions)
}
