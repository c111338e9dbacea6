package claims

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opensupplyhub/oshub/internal/config"
	"github.com/opensupplyhub/oshub/internal/pkg/cloudinary"
	"github.com/opensupplyhub/oshub/internal/pkg/lifecycle"
	"github.com/opensupplyhub/oshub/internal/pkg/logger"
	"github.com/opensupplyhub/oshub/internal/pkg/pagination"
	"github.com/opensupplyhub/oshub/internal/pkg/response"
	apperrors "github.com/opensupplyhub/oshub/pkg/errors"
)

// ActiveClaim is what the facility record should show as its one active
// claim after a status change. nil clears it.
type ActiveClaim struct {
	Status          Status
	ContributorName string
	ApprovedAt      *time.Time
}

// FacilityDirectory is the narrow facility surface the claims workflow
// needs; wired to the facilities repository in routes.
type FacilityDirectory interface {
	Lookup(ctx context.Context, osID string) (name string, found bool, err error)
	SetClaim(ctx context.Context, osID string, claim *ActiveClaim) error
}

// ClaimLedger maintains the per-user claimed-facility-id sets; wired to the
// auth repository in routes.
type ClaimLedger interface {
	AddPending(ctx context.Context, userID, osID string) error
	Promote(ctx context.Context, userID, osID string) error
	Remove(ctx context.Context, userID, osID string) error
}

type Handler struct {
	repo       *Repository
	facilities FacilityDirectory
	ledger     ClaimLedger
	uploads    *cloudinary.Service
	sessions   *ReviewSessions
	cfg        *config.Config
	log        *logger.Logger
}

func NewHandler(repo *Repository, facilities FacilityDirectory, ledger ClaimLedger, uploads *cloudinary.Service, cfg *config.Config, log *logger.Logger) *Handler {
	return &Handler{
		repo:       repo,
		facilities: facilities,
		ledger:     ledger,
		uploads:    uploads,
		sessions:   NewReviewSessions(),
		cfg:        cfg,
		log:        log,
	}
}

// @Summary Claim a facility
// @Description Assert ownership of a production location. Evidence documents ride along as the optional "evidence" file field.
// @Tags claims
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param osId path string true "OS ID"
// @Param company_name formData string true "Company name"
// @Param job_title formData string true "Claimant job title"
// @Param website formData string false "Company website"
// @Param evidence formData file false "Supporting document (image or PDF)"
// @Success 201 {object} response.SuccessResponse{data=Claim}
// @Failure 409 {object} response.ErrorResponse
// @Router /facilities/{osId}/claim [post]
func (h *Handler) Submit(c *gin.Context) {
	osID := c.Param("osId")

	var req SubmitClaimRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid request format", "INVALID_FORM")
		return
	}
	if err := ValidateSubmitClaim(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	facilityName, found, err := h.facilities.Lookup(c.Request.Context(), osID)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch facility", "DATABASE_ERROR")
		return
	}
	if !found {
		response.NotFound(c, "Facility not found", "NOT_FOUND")
		return
	}

	pending, err := h.repo.HasPendingClaim(c.Request.Context(), osID)
	if err != nil {
		response.InternalServerError(c, "Failed to check existing claims", "DATABASE_ERROR")
		return
	}
	if pending {
		response.Conflict(c, "There is already a pending claim for this production location", "CLAIM_PENDING")
		return
	}

	userID := c.GetString("userID")

	claim := &Claim{
		FacilityOSID:    osID,
		FacilityName:    facilityName,
		ContributorID:   userID,
		ContributorName: req.CompanyName,
		CompanyName:     req.CompanyName,
		JobTitle:        req.JobTitle,
		Website:         req.Website,
	}

	if attachment := h.uploadEvidence(c); attachment != nil {
		claim.Attachments = append(claim.Attachments, *attachment)
	}

	if err := h.repo.Create(c.Request.Context(), claim); err != nil {
		response.InternalServerError(c, "Failed to create claim", "DATABASE_ERROR")
		return
	}

	// The facility shows the pending-claim banner from now on, and the
	// claimant's pending set picks up the OS ID.
	if err := h.facilities.SetClaim(c.Request.Context(), osID, &ActiveClaim{
		Status:          StatusPending,
		ContributorName: req.CompanyName,
	}); err != nil {
		h.log.Error("claim %s: facility %s claim info not updated: %v", claim.ID.Hex(), osID, err)
	}
	if err := h.ledger.AddPending(c.Request.Context(), userID, osID); err != nil {
		h.log.Error("claim %s: pending set for user %s not updated: %v", claim.ID.Hex(), userID, err)
	}

	response.Created(c, claim)
}

// uploadEvidence uploads the optional evidence file. A missing file is a
// normal branch; upload failures are swallowed so the claim still lands.
func (h *Handler) uploadEvidence(c *gin.Context) *Attachment {
	if h.uploads == nil {
		return nil
	}

	file, header, err := c.Request.FormFile("evidence")
	if err != nil {
		return nil
	}
	defer file.Close()

	var result *cloudinary.UploadResult
	contentType := header.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "image") {
		if cloudinary.ValidateImageFile(header) != nil {
			return nil
		}
		result, err = h.uploads.UploadImage(c.Request.Context(), file, header.Filename)
	} else {
		if cloudinary.ValidateFile(header) != nil {
			return nil
		}
		result, err = h.uploads.UploadFile(c.Request.Context(), file, header.Filename)
	}
	if err != nil {
		return nil
	}

	return &Attachment{
		URL:      result.URL,
		PublicID: result.PublicID,
		FileName: header.Filename,
	}
}

// @Summary My claims
// @Description List the current user's claims
// @Tags claims
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse{data=[]Claim}
// @Router /claims/mine [get]
func (h *Handler) Mine(c *gin.Context) {
	claims, err := h.repo.ListByContributor(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.InternalServerError(c, "Failed to list claims", "DATABASE_ERROR")
		return
	}
	if claims == nil {
		claims = []Claim{}
	}
	response.Success(c, claims)
}

// @Summary List claims
// @Description List claims for review, optionally filtered by status
// @Tags claims
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, APPROVED, DENIED, or REVOKED"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.PaginatedResponse
// @Router /claims [get]
func (h *Handler) List(c *gin.Context) {
	status := Status(strings.ToUpper(c.Query("status")))
	if status != "" && status != StatusPending && status != StatusApproved && status != StatusDenied && status != StatusRevoked {
		response.BadRequest(c, "status must be: PENDING, APPROVED, DENIED, or REVOKED", "INVALID_STATUS")
		return
	}

	req := pagination.FromRequest(c.Query("page"), c.Query("limit"))

	claims, total, err := h.repo.List(c.Request.Context(), status, req.Page, req.Limit)
	if err != nil {
		response.InternalServerError(c, "Failed to list claims", "DATABASE_ERROR")
		return
	}
	if claims == nil {
		claims = []Claim{}
	}

	response.Paginated(c, claims, total, req.Limit, req.Page)
}

// @Summary Get a claim for review
// @Description Fetch one claim and the live review workflow state
// @Tags claims
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim ID"
// @Success 200 {object} response.SuccessResponse{data=ReviewState}
// @Router /claims/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	claimID := c.Param("id")

	var gen uint64
	h.sessions.Update(claimID, func(s ReviewState) ReviewState {
		s.Detail, gen = s.Detail.Start()
		return s
	})

	claim, err := h.repo.GetByID(c.Request.Context(), claimID)
	if err != nil {
		h.sessions.Update(claimID, func(s ReviewState) ReviewState {
			s.Detail = s.Detail.Fail(gen, lifecycle.FailErr(err))
			return s
		})
		if errors.Is(err, apperrors.ErrBadRequest) {
			response.BadRequest(c, "Invalid claim ID", "INVALID_CLAIM_ID")
			return
		}
		response.InternalServerError(c, err.Error(), "DATABASE_ERROR")
		return
	}
	if claim == nil {
		h.sessions.Update(claimID, func(s ReviewState) ReviewState {
			s.Detail = s.Detail.Fail(gen, lifecycle.Fail("claim not found"))
			return s
		})
		response.NotFound(c, "Claim not found", "NOT_FOUND")
		return
	}

	state := h.sessions.Update(claimID, func(s ReviewState) ReviewState {
		s.Detail = s.Detail.Complete(gen, *claim)
		return s
	})

	response.Success(c, state)
}

// @Summary Approve a claim
// @Tags claims
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim ID"
// @Success 200 {object} response.SuccessResponse{data=Claim}
// @Failure 409 {object} response.ErrorResponse
// @Router /claims/{id}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	h.changeStatus(c, StatusApproved)
}

// @Summary Deny a claim
// @Tags claims
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim ID"
// @Param request body StatusChangeRequest false "Reason"
// @Success 200 {object} response.SuccessResponse{data=Claim}
// @Router /claims/{id}/deny [post]
func (h *Handler) Deny(c *gin.Context) {
	h.changeStatus(c, StatusDenied)
}

// @Summary Revoke an approved claim
// @Tags claims
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim ID"
// @Param request body StatusChangeRequest false "Reason"
// @Success 200 {object} response.SuccessResponse{data=Claim}
// @Router /claims/{id}/revoke [post]
func (h *Handler) Revoke(c *gin.Context) {
	h.changeStatus(c, StatusRevoked)
}

// changeStatus runs one status verb through the shared statusControls
// track: start, repository update, facility and ledger side effects, then
// complete with the server-returned claim.
func (h *Handler) changeStatus(c *gin.Context, status Status) {
	claimID := c.Param("id")

	var req StatusChangeRequest
	c.ShouldBindJSON(&req) // reason is optional; an empty body is fine

	gen, ok := h.sessions.BeginStatusChange(claimID)
	if !ok {
		response.Conflict(c, "A status change for this claim is already in progress", "REVIEW_IN_PROGRESS")
		return
	}

	updated, err := h.repo.UpdateStatus(c.Request.Context(), claimID, status, req.Reason)
	if err != nil {
		h.sessions.Update(claimID, func(s ReviewState) ReviewState {
			return s.FailStatusChange(gen, lifecycle.FailErr(err))
		})
		if errors.Is(err, apperrors.ErrBadRequest) {
			response.BadRequest(c, "Invalid claim ID", "INVALID_CLAIM_ID")
			return
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Claim not found", "NOT_FOUND")
			return
		}
		response.InternalServerError(c, err.Error(), "STATUS_CHANGE_FAILED")
		return
	}

	// The status is already committed; a side-effect failure leaves the
	// facility record or claimed-id sets out of line with it, so it has
	// to be visible in the log for repair.
	if err := h.applyStatusSideEffects(c.Request.Context(), updated); err != nil {
		h.log.Error("claim %s: status %s committed but side effects failed: %v", claimID, status, err)
	}

	h.sessions.Update(claimID, func(s ReviewState) ReviewState {
		return s.CompleteStatusChange(gen, *updated)
	})

	response.Success(c, updated)
}

// applyStatusSideEffects keeps the facility record and the claimant's
// claimed-id sets in line with the claim's new status. Both effects are
// attempted even when the first fails; the errors come back joined.
func (h *Handler) applyStatusSideEffects(ctx context.Context, claim *Claim) error {
	switch claim.Status {
	case StatusApproved:
		return errors.Join(
			h.facilities.SetClaim(ctx, claim.FacilityOSID, &ActiveClaim{
				Status:          StatusApproved,
				ContributorName: claim.ContributorName,
				ApprovedAt:      claim.ApprovedAt,
			}),
			h.ledger.Promote(ctx, claim.ContributorID, claim.FacilityOSID),
		)
	case StatusDenied, StatusRevoked:
		return errors.Join(
			h.facilities.SetClaim(ctx, claim.FacilityOSID, nil),
			h.ledger.Remove(ctx, claim.ContributorID, claim.FacilityOSID),
		)
	}
	return nil
}

// @Summary Message the claimant
// @Description Send the claimant a message; routes through the same status-controls lifecycle as the status verbs.
// @Tags claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim ID"
// @Param request body MessageClaimantRequest true "Message"
// @Success 200 {object} response.SuccessResponse{data=Claim}
// @Router /claims/{id}/message [post]
func (h *Handler) MessageClaimant(c *gin.Context) {
	claimID := c.Param("id")

	var req MessageClaimantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request format", "INVALID_JSON")
		return
	}

	gen, ok := h.sessions.BeginStatusChange(claimID)
	if !ok {
		response.Conflict(c, "A status change for this claim is already in progress", "REVIEW_IN_PROGRESS")
		return
	}

	updated, err := h.repo.AppendMessage(c.Request.Context(), claimID, Message{
		AuthorID: c.GetString("userID"),
		Text:     req.Text,
	})
	if err != nil {
		h.sessions.Update(claimID, func(s ReviewState) ReviewState {
			return s.FailStatusChange(gen, lifecycle.FailErr(err))
		})
		if errors.Is(err, apperrors.ErrBadRequest) {
			response.BadRequest(c, "Invalid claim ID", "INVALID_CLAIM_ID")
			return
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Claim not found", "NOT_FOUND")
			return
		}
		response.InternalServerError(c, err.Error(), "MESSAGE_FAILED")
		return
	}

	h.sessions.Update(claimID, func(s ReviewState) ReviewState {
		return s.CompleteStatusChange(gen, *updated)
	})

	response.Success(c, updated)
}

// @Summary Reset status controls
// @Description Clear the status-change track without touching the claim detail
// @Tags claims
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim ID"
// @Success 200 {object} response.SuccessResponse{data=ReviewState}
// @Router /claims/{id}/controls/reset [post]
func (h *Handler) ResetControls(c *gin.Context) {
	state := h.sessions.Update(c.Param("id"), func(s ReviewState) ReviewState {
		return s.ResetControls()
	})
	response.Success(c, state)
}

// @Summary Edit the review-note draft
// @Description Update the moderator's draft note text; typing clears any prior submission error
// @Tags claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim ID"
// @Param request body NoteRequest true "Draft text"
// @Success 200 {object} response.SuccessResponse{data=ReviewState}
// @Router /claims/{id}/note [patch]
func (h *Handler) UpdateNoteDraft(c *gin.Context) {
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request format", "INVALID_JSON")
		return
	}

	state := h.sessions.Update(c.Param("id"), func(s ReviewState) ReviewState {
		return s.UpdateNote(req.Text)
	})
	response.Success(c, state)
}

// @Summary Submit the review note
// @Description Attach the drafted note to the claim. On failure the draft is preserved; on success the note track resets and the returned detail carries the note.
// @Tags claims
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim ID"
// @Success 200 {object} response.SuccessResponse{data=ReviewState}
// @Router /claims/{id}/note [post]
func (h *Handler) SubmitNote(c *gin.Context) {
	claimID := c.Param("id")

	if !h.sessions.BeginNote(claimID) {
		response.Conflict(c, "A note submission for this claim is already in progress", "NOTE_IN_PROGRESS")
		return
	}

	text := strings.TrimSpace(h.sessions.Load(claimID).Note.Text)
	if text == "" {
		h.sessions.Update(claimID, func(s ReviewState) ReviewState {
			return s.FailNote(lifecycle.Fail("note text is empty"))
		})
		response.ValidationFailed(c, "note text is empty")
		return
	}

	updated, err := h.repo.AddReviewNote(c.Request.Context(), claimID, ReviewNote{
		AuthorID: c.GetString("userID"),
		Text:     text,
	})
	if err != nil {
		h.sessions.Update(claimID, func(s ReviewState) ReviewState {
			return s.FailNote(lifecycle.FailErr(err))
		})
		if errors.Is(err, apperrors.ErrBadRequest) {
			response.BadRequest(c, "Invalid claim ID", "INVALID_CLAIM_ID")
			return
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Claim not found", "NOT_FOUND")
			return
		}
		response.InternalServerError(c, err.Error(), "NOTE_FAILED")
		return
	}

	state := h.sessions.Update(claimID, func(s ReviewState) ReviewState {
		return s.CompleteNote(*updated)
	})

	response.Success(c, state)
}
