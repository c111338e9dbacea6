package moderation

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/opensupplyhub/oshub/internal/pkg/response"
)

type Handler struct {
	repo     *Repository
	sessions *Sessions
}

func NewHandler(repo *Repository, sessions *Sessions) *Handler {
	return &Handler{
		repo:     repo,
		sessions: sessions,
	}
}

// GetQueue returns the caller's queue session state
// @Summary Get moderation queue
// @Description Returns the admin's current queue page, filters, and pagination
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse{data=State}
// @Failure 401 {object} response.ErrorResponse
// @Router /moderation/queue [get]
func (h *Handler) GetQueue(c *gin.Context) {
	userID := c.GetString("userID")
	queue := h.sessions.Get(c.Request.Context(), userID)
	response.Success(c, queue.Snapshot())
}

// UpdateFilters applies a partial filter edit to the caller's session
// @Summary Update queue filters
// @Description Applies filter edits; invalid date bounds are rejected with a combined message
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateFiltersRequest true "Filter edits"
// @Success 200 {object} response.SuccessResponse{data=State}
// @Failure 400 {object} response.ErrorResponse
// @Router /moderation/queue/filters [patch]
func (h *Handler) UpdateFilters(c *gin.Context) {
	var req UpdateFiltersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	ctx := c.Request.Context()
	userID := c.GetString("userID")
	queue := h.sessions.Get(ctx, userID)

	if req.DataSources != nil {
		queue.SetDataSources(ctx, *req.DataSources)
	}
	if req.ModerationStatuses != nil {
		queue.SetModerationStatuses(ctx, *req.ModerationStatuses)
	}
	if req.Countries != nil {
		queue.SetCountries(ctx, *req.Countries)
	}

	var dateErr error
	if req.AfterDate != nil {
		if err := queue.SetAfterDate(ctx, *req.AfterDate); err != nil {
			dateErr = err
		}
	}
	if req.BeforeDate != nil {
		if err := queue.SetBeforeDate(ctx, *req.BeforeDate); err != nil {
			dateErr = err
		}
	}

	if dateErr != nil {
		if errors.Is(dateErr, ErrDateRange) {
			response.BadRequest(c, dateErr.Error(), "INVALID_DATE_RANGE")
		} else {
			response.BadRequest(c, dateErr.Error(), "INVALID_DATE")
		}
		return
	}

	response.Success(c, queue.Snapshot())
}

// NextPage advances the caller's queue session one page
// @Summary Next queue page
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse{data=State}
// @Router /moderation/queue/next [post]
func (h *Handler) NextPage(c *gin.Context) {
	queue := h.sessions.Get(c.Request.Context(), c.GetString("userID"))
	queue.NextPage(c.Request.Context())
	response.Success(c, queue.Snapshot())
}

// PrevPage moves the caller's queue session back one page
// @Summary Previous queue page
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse{data=State}
// @Router /moderation/queue/prev [post]
func (h *Handler) PrevPage(c *gin.Context) {
	queue := h.sessions.Get(c.Request.Context(), c.GetString("userID"))
	queue.PrevPage(c.Request.Context())
	response.Success(c, queue.Snapshot())
}

// Refresh refetches the caller's current queue page
// @Summary Refresh queue
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse{data=State}
// @Router /moderation/queue/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	queue := h.sessions.Get(c.Request.Context(), c.GetString("userID"))
	queue.Refresh(c.Request.Context())
	response.Success(c, queue.Snapshot())
}

// CloseQueue drops the caller's queue session
// @Summary Close queue session
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Router /moderation/queue [delete]
func (h *Handler) CloseQueue(c *gin.Context) {
	h.sessions.Drop(c.GetString("userID"))
	response.Success(c, gin.H{"message": "Queue session closed"})
}

// GetOptions returns the selectable filter values
// @Summary Get filter options
// @Description Countries present in the queue plus the fixed source and status lists
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse{data=FilterOptions}
// @Failure 500 {object} response.ErrorResponse
// @Router /moderation/options [get]
func (h *Handler) GetOptions(c *gin.Context) {
	countries, err := h.repo.DistinctCountries(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, "Failed to fetch filter options", "DATABASE_ERROR")
		return
	}

	response.Success(c, FilterOptions{
		Countries: countries,
		Sources:   Sources,
		Statuses:  Statuses,
	})
}

// ResolveEvent sets a queue item's review outcome
// @Summary Resolve queue item
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body ResolveEventRequest true "Outcome"
// @Success 200 {object} response.SuccessResponse{data=Event}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /moderation/events/{id} [patch]
func (h *Handler) ResolveEvent(c *gin.Context) {
	var req ResolveEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	event, err := h.repo.Resolve(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.BadRequest(c, "Invalid event ID", "INVALID_ID")
		return
	}
	if event == nil {
		response.NotFound(c, "Event not found", "EVENT_NOT_FOUND")
		return
	}

	response.Success(c, event)
}
