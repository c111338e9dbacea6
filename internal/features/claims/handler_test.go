package claims

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensupplyhub/oshub/internal/pkg/logger"
)

type stubDirectory struct {
	setErr   error
	setCalls []struct {
		osID  string
		claim *ActiveClaim
	}
}

func (d *stubDirectory) Lookup(ctx context.Context, osID string) (string, bool, error) {
	return "Stub Facility", true, nil
}

func (d *stubDirectory) SetClaim(ctx context.Context, osID string, claim *ActiveClaim) error {
	d.setCalls = append(d.setCalls, struct {
		osID  string
		claim *ActiveClaim
	}{osID, claim})
	return d.setErr
}

type stubLedger struct {
	err      error
	promoted []string
	removed  []string
	pending  []string
}

func (l *stubLedger) AddPending(ctx context.Context, userID, osID string) error {
	l.pending = append(l.pending, osID)
	return l.err
}

func (l *stubLedger) Promote(ctx context.Context, userID, osID string) error {
	l.promoted = append(l.promoted, osID)
	return l.err
}

func (l *stubLedger) Remove(ctx context.Context, userID, osID string) error {
	l.removed = append(l.removed, osID)
	return l.err
}

func newTestHandler(dir *stubDirectory, led *stubLedger) *Handler {
	return &Handler{
		repo:       &Repository{},
		facilities: dir,
		ledger:     led,
		sessions:   NewReviewSessions(),
		log:        logger.New(logger.FATAL),
	}
}

func approvedClaim() *Claim {
	now := time.Now()
	return &Claim{
		FacilityOSID:    "US2025123456ABCD",
		ContributorID:   "user-1",
		ContributorName: "Acme Apparel",
		Status:          StatusApproved,
		ApprovedAt:      &now,
	}
}

func TestApproveSideEffectsUpdateFacilityAndLedger(t *testing.T) {
	dir := &stubDirectory{}
	led := &stubLedger{}
	h := newTestHandler(dir, led)

	err := h.applyStatusSideEffects(context.Background(), approvedClaim())
	require.NoError(t, err)

	require.Len(t, dir.setCalls, 1)
	require.NotNil(t, dir.setCalls[0].claim)
	assert.Equal(t, StatusApproved, dir.setCalls[0].claim.Status)
	assert.Equal(t, "Acme Apparel", dir.setCalls[0].claim.ContributorName)
	assert.Equal(t, []string{"US2025123456ABCD"}, led.promoted)
}

func TestRevokeSideEffectsClearFacilityClaim(t *testing.T) {
	dir := &stubDirectory{}
	led := &stubLedger{}
	h := newTestHandler(dir, led)

	claim := approvedClaim()
	claim.Status = StatusRevoked

	err := h.applyStatusSideEffects(context.Background(), claim)
	require.NoError(t, err)

	require.Len(t, dir.setCalls, 1)
	assert.Nil(t, dir.setCalls[0].claim, "revoking must clear the facility's claim info")
	assert.Equal(t, []string{"US2025123456ABCD"}, led.removed)
}

func TestSideEffectFailuresAreCollectedNotDropped(t *testing.T) {
	dir := &stubDirectory{setErr: errors.New("facility update refused")}
	led := &stubLedger{err: errors.New("ledger unavailable")}
	h := newTestHandler(dir, led)

	err := h.applyStatusSideEffects(context.Background(), approvedClaim())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "facility update refused")
	assert.Contains(t, err.Error(), "ledger unavailable")

	// The ledger is still attempted after the facility update fails.
	assert.Len(t, led.promoted, 1)
}

func TestGetRejectsMalformedClaimID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler(&stubDirectory{}, &stubLedger{})

	r := gin.New()
	r.GET("/claims/:id", h.Get)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/claims/not-a-hex-id", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_CLAIM_ID", body["code"])
}

func TestApproveRejectsMalformedClaimID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler(&stubDirectory{}, &stubLedger{})

	r := gin.New()
	r.POST("/claims/:id/approve", h.Approve)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/claims/not-a-hex-id/approve", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_CLAIM_ID", body["code"])
}
