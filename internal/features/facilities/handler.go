package facilities

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opensupplyhub/oshub/internal/config"
	"github.com/opensupplyhub/oshub/internal/pkg/pagination"
	"github.com/opensupplyhub/oshub/internal/pkg/response"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserDirectory exposes the claimed-facility-id sets of a user. Implemented
// by an adapter over the auth repository in routes wiring.
type UserDirectory interface {
	ClaimedIDs(ctx context.Context, userID string) (approved, pending []string, err error)
}

// Contribution is the moderation-queue record of a new facility submission.
type Contribution struct {
	OSID          string
	Name          string
	Address       string
	CountryCode   string
	Source        string
	ContributorID string
}

// ContributionRecorder enqueues a contribution for moderation. Implemented
// by an adapter over the moderation repository in routes wiring.
type ContributionRecorder interface {
	Record(ctx context.Context, c Contribution) error
}

type Handler struct {
	repo   *Repository
	users  UserDirectory
	events ContributionRecorder
	cfg    *config.Config
}

func NewHandler(repo *Repository, users UserDirectory, events ContributionRecorder, cfg *config.Config) *Handler {
	return &Handler{
		repo:   repo,
		users:  users,
		events: events,
		cfg:    cfg,
	}
}

// @Summary List facilities
// @Description List production locations with optional country and text filters
// @Tags facilities
// @Produce json
// @Param countries query string false "Comma-separated ISO country codes"
// @Param q query string false "Free-text search over name and address"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.PaginatedResponse
// @Router /facilities [get]
func (h *Handler) List(c *gin.Context) {
	req := pagination.FromRequest(c.Query("page"), c.Query("limit"))

	query := ListQuery{
		Q:     strings.TrimSpace(c.Query("q")),
		Page:  req.Page,
		Limit: req.Limit,
	}
	if raw := strings.TrimSpace(c.Query("countries")); raw != "" {
		query.Countries = strings.Split(raw, ",")
	}

	facilities, total, err := h.repo.List(c.Request.Context(), query)
	if err != nil {
		response.InternalServerError(c, "Failed to list facilities", "DATABASE_ERROR")
		return
	}

	features := make([]Feature, 0, len(facilities))
	for i := range facilities {
		// List rows carry no derived banners; those belong to the detail view.
		features = append(features, facilities[i].ToFeature(nil, nil))
	}

	response.Paginated(c, features, total, query.Limit, query.Page)
}

// @Summary Get a facility
// @Description Get one production location as a GeoJSON feature with derived claim and closure banners. Banners are suppressed with embed=1.
// @Tags facilities
// @Produce json
// @Param osId path string true "OS ID"
// @Param embed query string false "Set to 1 for embed views"
// @Success 200 {object} response.SuccessResponse{data=Feature}
// @Failure 404 {object} response.ErrorResponse
// @Router /facilities/{osId} [get]
func (h *Handler) Get(c *gin.Context) {
	osID := c.Param("osId")
	if !IsValidOSID(osID) {
		response.BadRequest(c, "Invalid OS ID", "INVALID_OS_ID")
		return
	}

	facility, err := h.repo.GetByOSID(c.Request.Context(), osID)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch facility", "DATABASE_ERROR")
		return
	}
	if facility == nil {
		response.NotFound(c, "Facility not found", "NOT_FOUND")
		return
	}

	embedded := c.Query("embed") == "1"

	claimBanner := ResolveClaimBanner(facility.ClaimInfo, false, embedded)
	var closureBanner *ClosureStatus
	if !embedded {
		closure := ResolveClosureStatus(facility)
		closureBanner = &closure
	}

	response.Success(c, facility.ToFeature(claimBanner, closureBanner))
}

// @Summary Contribute a facility
// @Description Submit a new production location. The record is created immediately and queued for moderation.
// @Tags facilities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateFacilityRequest true "Facility details"
// @Success 201 {object} response.SuccessResponse{data=Feature}
// @Router /facilities [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request format", "INVALID_JSON")
		return
	}

	if err := ValidateCreateFacility(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	userID := c.GetString("userID")

	facility := &Facility{
		Name:        req.Name,
		Address:     req.Address,
		CountryCode: strings.ToUpper(req.CountryCode),
		Lat:         req.Lat,
		Lng:         req.Lng,
	}

	// The unique index on osId turns a serial collision into a duplicate key
	// error; mint a fresh ID and retry once.
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		facility.OSID = GenerateOSID(facility.CountryCode, time.Now())
		if err = h.repo.Create(c.Request.Context(), facility); err == nil || !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	if err != nil {
		response.InternalServerError(c, "Failed to create facility", "DATABASE_ERROR")
		return
	}

	if err := h.events.Record(c.Request.Context(), Contribution{
		OSID:          facility.OSID,
		Name:          facility.Name,
		Address:       facility.Address,
		CountryCode:   facility.CountryCode,
		Source:        req.Source,
		ContributorID: userID,
	}); err != nil {
		// The facility exists either way; moderation picks it up on resync.
		response.Created(c, facility.ToFeature(nil, nil))
		return
	}

	response.Created(c, facility.ToFeature(nil, nil))
}

// @Summary Check dispute eligibility
// @Description Report whether the current user may dispute the facility's claim
// @Tags facilities
// @Produce json
// @Security BearerAuth
// @Param osId path string true "OS ID"
// @Success 200 {object} response.SuccessResponse
// @Router /facilities/{osId}/dispute [get]
func (h *Handler) DisputeEligibility(c *gin.Context) {
	osID := c.Param("osId")
	if !IsValidOSID(osID) {
		response.BadRequest(c, "Invalid OS ID", "INVALID_OS_ID")
		return
	}

	facility, err := h.repo.GetByOSID(c.Request.Context(), osID)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch facility", "DATABASE_ERROR")
		return
	}
	if facility == nil {
		response.NotFound(c, "Facility not found", "NOT_FOUND")
		return
	}

	approved, pending, err := h.users.ClaimedIDs(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.InternalServerError(c, "Failed to fetch claimed facilities", "DATABASE_ERROR")
		return
	}

	eligible := ShouldShowDisputeClaim(facility, osID, NewClaimedIDSets(approved, pending))
	response.Success(c, map[string]interface{}{"eligible": eligible})
}

// @Summary Report facility closure
// @Description File an activity report asserting the facility opened or closed; the report awaits moderation.
// @Tags facilities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param osId path string true "OS ID"
// @Param request body ReportClosureRequest true "Report details"
// @Success 201 {object} response.SuccessResponse
// @Router /facilities/{osId}/activity-reports [post]
func (h *Handler) ReportClosure(c *gin.Context) {
	osID := c.Param("osId")
	if !IsValidOSID(osID) {
		response.BadRequest(c, "Invalid OS ID", "INVALID_OS_ID")
		return
	}

	var req ReportClosureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request format", "INVALID_JSON")
		return
	}

	report := ActivityReport{ClosureState: req.ClosureState}
	if err := h.repo.AddActivityReport(c.Request.Context(), osID, report); err != nil {
		response.NotFound(c, "Facility not found", "NOT_FOUND")
		return
	}

	response.Created(c, "Report submitted")
}
