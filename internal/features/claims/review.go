package claims

import (
	"sync"

	"github.com/opensupplyhub/oshub/internal/pkg/lifecycle"
)

// ReviewState is the per-claim review workflow state. Two independent
// tracks share it: status changes (approve, deny, revoke, message claimant)
// all route through StatusControls, and review notes run through Note.
// Values are replaced wholesale on every transition.
type ReviewState struct {
	Detail         lifecycle.Resource[Claim]    `json:"detail"`
	StatusControls lifecycle.Resource[struct{}] `json:"status_controls"`
	Note           NoteState                    `json:"note"`
}

// NoteState is the review-note track. Text is the moderator's draft; it
// survives a failed submission so the draft is not lost.
type NoteState struct {
	Text     string             `json:"note"`
	Fetching bool               `json:"fetching"`
	Err      *lifecycle.Failure `json:"error"`
}

// StartStatusChange marks a status change in flight. All four status verbs
// share this one phase, so at most one change per claim runs at a time.
func (s ReviewState) StartStatusChange() (ReviewState, uint64) {
	var gen uint64
	s.StatusControls, gen = s.StatusControls.Start()
	return s, gen
}

// FailStatusChange settles a failed status change. Detail is untouched.
func (s ReviewState) FailStatusChange(gen uint64, failure *lifecycle.Failure) ReviewState {
	s.StatusControls = s.StatusControls.Fail(gen, failure)
	return s
}

// CompleteStatusChange settles a successful status change: the claim detail
// is replaced with the server-returned updated claim and the controls go
// back to idle. The note track is untouched.
func (s ReviewState) CompleteStatusChange(gen uint64, updated Claim) ReviewState {
	if !s.StatusControls.Current(gen) {
		return s
	}
	s.StatusControls = s.StatusControls.Reset()
	s.Detail.Data = &updated
	return s
}

// ResetControls clears the status-change track without touching the detail.
func (s ReviewState) ResetControls() ReviewState {
	s.StatusControls = s.StatusControls.Reset()
	return s
}

// UpdateNote replaces the draft text, clearing any prior submission error
// as the moderator types.
func (s ReviewState) UpdateNote(text string) ReviewState {
	s.Note.Text = text
	s.Note.Err = nil
	return s
}

// StartNote marks a note submission in flight.
func (s ReviewState) StartNote() ReviewState {
	s.Note.Fetching = true
	s.Note.Err = nil
	return s
}

// FailNote settles a failed note submission. The draft text is preserved.
func (s ReviewState) FailNote(failure *lifecycle.Failure) ReviewState {
	s.Note.Fetching = false
	s.Note.Err = failure
	return s
}

// CompleteNote settles a successful note submission: the whole note track
// returns to idle and the detail is replaced with the server-returned claim,
// which carries the new note embedded.
func (s ReviewState) CompleteNote(updated Claim) ReviewState {
	s.Note = NoteState{}
	s.Detail.Data = &updated
	return s
}

// ReviewSessions holds the live review state per claim. Handlers read a
// snapshot, apply transitions, and store the result; the in-flight flags
// double as a guard against two moderators racing the same claim.
type ReviewSessions struct {
	mu     sync.Mutex
	states map[string]ReviewState
}

func NewReviewSessions() *ReviewSessions {
	return &ReviewSessions{states: make(map[string]ReviewState)}
}

// Load returns the current state for a claim, zero-valued if none exists.
func (rs *ReviewSessions) Load(claimID string) ReviewState {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.states[claimID]
}

// Store replaces the state for a claim.
func (rs *ReviewSessions) Store(claimID string, state ReviewState) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.states[claimID] = state
}

// BeginStatusChange atomically starts a status change unless one is already
// in flight for the claim.
func (rs *ReviewSessions) BeginStatusChange(claimID string) (uint64, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	state := rs.states[claimID]
	if state.StatusControls.Fetching {
		return 0, false
	}
	state, gen := state.StartStatusChange()
	rs.states[claimID] = state
	return gen, true
}

// BeginNote atomically starts a note submission unless one is in flight.
func (rs *ReviewSessions) BeginNote(claimID string) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	state := rs.states[claimID]
	if state.Note.Fetching {
		return false
	}
	rs.states[claimID] = state.StartNote()
	return true
}

// Update applies fn to the claim's state under the lock.
func (rs *ReviewSessions) Update(claimID string, fn func(ReviewState) ReviewState) ReviewState {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	state := fn(rs.states[claimID])
	rs.states[claimID] = state
	return state
}

// Drop discards a claim's review state; used once a review reaches a
// terminal status and the detail view is left.
func (rs *ReviewSessions) Drop(claimID string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	delete(rs.states, claimID)
}
