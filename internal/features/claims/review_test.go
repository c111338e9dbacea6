package claims

import (
	"testing"

	"github.com/opensupplyhub/oshub/internal/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteStatusChangeReplacesDetailAndIdlesControls(t *testing.T) {
	var state ReviewState
	state = state.UpdateNote("draft in progress")

	state, gen := state.StartStatusChange()
	require.True(t, state.StatusControls.Fetching)

	updated := Claim{FacilityOSID: "US2025123456ABCD", Status: StatusApproved}
	state = state.CompleteStatusChange(gen, updated)

	assert.False(t, state.StatusControls.Fetching)
	assert.Nil(t, state.StatusControls.Err)
	require.NotNil(t, state.Detail.Data)
	assert.Equal(t, StatusApproved, state.Detail.Data.Status)

	// The note track must be untouched by the status track.
	assert.Equal(t, "draft in progress", state.Note.Text)
	assert.False(t, state.Note.Fetching)
}

func TestFailStatusChangeKeepsDetail(t *testing.T) {
	var state ReviewState
	state, gen := state.StartStatusChange()
	state = state.CompleteStatusChange(gen, Claim{Status: StatusPending})

	state, gen = state.StartStatusChange()
	state = state.FailStatusChange(gen, lifecycle.Fail("claim already revoked"))

	assert.False(t, state.StatusControls.Fetching)
	require.NotNil(t, state.StatusControls.Err)
	assert.Equal(t, []string{"claim already revoked"}, state.StatusControls.Err.Messages)
	require.NotNil(t, state.Detail.Data)
	assert.Equal(t, StatusPending, state.Detail.Data.Status)
}

func TestStaleStatusChangeCompletionIgnored(t *testing.T) {
	var state ReviewState
	state, stale := state.StartStatusChange()
	state = state.ResetControls()
	state, fresh := state.StartStatusChange()

	state = state.CompleteStatusChange(stale, Claim{Status: StatusDenied})
	assert.True(t, state.StatusControls.Fetching, "stale completion must not settle the fresh change")
	assert.Nil(t, state.Detail.Data)

	state = state.CompleteStatusChange(fresh, Claim{Status: StatusApproved})
	assert.False(t, state.StatusControls.Fetching)
	require.NotNil(t, state.Detail.Data)
	assert.Equal(t, StatusApproved, state.Detail.Data.Status)
}

func TestResetControlsLeavesDetail(t *testing.T) {
	var state ReviewState
	state, gen := state.StartStatusChange()
	state = state.FailStatusChange(gen, lifecycle.Fail("boom"))
	state.Detail.Data = &Claim{Status: StatusPending}

	state = state.ResetControls()
	assert.Nil(t, state.StatusControls.Err)
	assert.False(t, state.StatusControls.Fetching)
	require.NotNil(t, state.Detail.Data)
}

func TestNoteFailurePreservesDraft(t *testing.T) {
	var state ReviewState
	state = state.UpdateNote("needs a business licence check")

	state = state.StartNote()
	require.True(t, state.Note.Fetching)
	assert.Nil(t, state.Note.Err)

	state = state.FailNote(lifecycle.Fail("service unavailable"))
	assert.False(t, state.Note.Fetching)
	require.NotNil(t, state.Note.Err)
	assert.Equal(t, "needs a business licence check", state.Note.Text, "a failed submission must not lose the draft")
}

func TestTypingClearsNoteError(t *testing.T) {
	var state ReviewState
	state = state.StartNote()
	state = state.FailNote(lifecycle.Fail("service unavailable"))

	state = state.UpdateNote("needs a business licence check, resubmitting")
	assert.Nil(t, state.Note.Err)
	assert.Equal(t, "needs a business licence check, resubmitting", state.Note.Text)
}

func TestCompleteNoteResetsTrackAndReplacesDetail(t *testing.T) {
	var state ReviewState
	state = state.UpdateNote("looks legitimate")
	state = state.StartNote()

	updated := Claim{
		Status:      StatusPending,
		ReviewNotes: []ReviewNote{{Text: "looks legitimate"}},
	}
	state = state.CompleteNote(updated)

	assert.Equal(t, NoteState{}, state.Note, "the note is embedded in the detail payload, not kept locally")
	require.NotNil(t, state.Detail.Data)
	require.Len(t, state.Detail.Data.ReviewNotes, 1)
	assert.Equal(t, "looks legitimate", state.Detail.Data.ReviewNotes[0].Text)
}

func TestReviewSessionsStatusChangeGuard(t *testing.T) {
	sessions := NewReviewSessions()

	gen, ok := sessions.BeginStatusChange("claim-1")
	require.True(t, ok)

	_, ok = sessions.BeginStatusChange("claim-1")
	assert.False(t, ok, "a second status change on the same claim must be rejected while one is in flight")

	// A different claim is unaffected.
	_, ok = sessions.BeginStatusChange("claim-2")
	assert.True(t, ok)

	state := sessions.Update("claim-1", func(s ReviewState) ReviewState {
		return s.CompleteStatusChange(gen, Claim{Status: StatusApproved})
	})
	assert.False(t, state.StatusControls.Fetching)

	_, ok = sessions.BeginStatusChange("claim-1")
	assert.True(t, ok, "the guard lifts once the change settles")
}

func TestReviewSessionsNoteGuardAndDrop(t *testing.T) {
	sessions := NewReviewSessions()

	require.True(t, sessions.BeginNote("claim-1"))
	assert.False(t, sessions.BeginNote("claim-1"))

	sessions.Update("claim-1", func(s ReviewState) ReviewState {
		return s.CompleteNote(Claim{Status: StatusPending})
	})
	assert.True(t, sessions.BeginNote("claim-1"))

	sessions.Drop("claim-1")
	state := sessions.Load("claim-1")
	assert.Equal(t, NoteState{}, state.Note)
	assert.Nil(t, state.Detail.Data)
}
