package facilities

import (
	"fmt"
	"strings"
)

// Banner copy shown on the facility detail view.
const (
	bannerPendingClaim = "There is a pending claim for this production location"
	bannerClaimed      = "CLAIMED PROFILE"
	bannerUnclaimed    = "This production location has not been claimed"
)

// claimedByDateLayout renders locale-aware long-form dates ("June 15, 2023").
const claimedByDateLayout = "January 2, 2006"

// ClaimBanner is the derived claim state the view renders above a facility.
type ClaimBanner struct {
	Text          string `json:"text"`
	ShowClaimLink bool   `json:"show_claim_link"`
	ClaimedByLine string `json:"claimed_by_line,omitempty"`
}

// ClaimedIDSets are the OS IDs the current user has claimed, split by
// whether the claim was approved or is still pending. Populated from the
// user's profile on login and read-only here.
type ClaimedIDSets struct {
	Approved map[string]struct{}
	Pending  map[string]struct{}
}

// NewClaimedIDSets builds the set pair from the stored ID slices.
func NewClaimedIDSets(approved, pending []string) ClaimedIDSets {
	sets := ClaimedIDSets{
		Approved: make(map[string]struct{}, len(approved)),
		Pending:  make(map[string]struct{}, len(pending)),
	}
	for _, id := range approved {
		sets.Approved[id] = struct{}{}
	}
	for _, id := range pending {
		sets.Pending[id] = struct{}{}
	}
	return sets
}

// ResolveClaimBanner computes the claim banner for a facility. Embed views
// suppress the banner entirely, so a nil return signals "render nothing",
// not an error. pending is set when the viewer's own claim for this
// facility is still awaiting review.
func ResolveClaimBanner(claim *ClaimInfo, pending bool, embedded bool) *ClaimBanner {
	if embedded {
		return nil
	}

	if pending || (claim != nil && claim.Status == ClaimPending) {
		return &ClaimBanner{Text: bannerPendingClaim}
	}

	if claim != nil {
		banner := &ClaimBanner{Text: bannerClaimed}
		// Both the name and the approval date must be present; a missing or
		// zero date suppresses the line rather than erroring.
		if claim.Contributor.Name != "" && claim.ApprovedAt != nil && !claim.ApprovedAt.IsZero() {
			banner.ClaimedByLine = fmt.Sprintf(
				"Claimed by %s on %s",
				claim.Contributor.Name,
				claim.ApprovedAt.Format(claimedByDateLayout),
			)
		}
		return banner
	}

	return &ClaimBanner{Text: bannerUnclaimed, ShowClaimLink: true}
}

// ShouldShowDisputeClaim reports whether the viewer should be offered a
// "dispute this claim" action. A user is never offered dispute on their own
// claim, whether it was approved or is still pending. Approval takes
// precedence: an ID in the approved set suppresses dispute even if it also
// erroneously appears in the pending set.
func ShouldShowDisputeClaim(f *Facility, osID string, sets ClaimedIDSets) bool {
	if f == nil || f.ClaimInfo == nil {
		return false
	}
	if f.ClaimInfo.Status == ClaimPending {
		return false
	}
	if _, ok := sets.Approved[osID]; ok {
		return false
	}
	if _, ok := sets.Pending[osID]; ok {
		return false
	}
	return true
}

// ClosureStatus is the derived closure banner for a facility.
type ClosureStatus struct {
	Pending   bool   `json:"pending"`
	Closed    bool   `json:"closed"`
	MovedToID string `json:"moved_to_id,omitempty"`
	Text      string `json:"text,omitempty"`
}

// ResolveClosureStatus computes the closure banner. A facility with no
// activity reports shows nothing regardless of is_closed. A PENDING report
// always wins over is_closed, even when both are set.
func ResolveClosureStatus(f *Facility) ClosureStatus {
	if f == nil || len(f.ActivityReports) == 0 {
		return ClosureStatus{}
	}

	latest := f.ActivityReports[0]
	if latest.Status == ReportPending {
		return ClosureStatus{
			Pending: true,
			Text: fmt.Sprintf("This facility may be %s.",
				strings.ToLower(string(latest.ClosureState))),
		}
	}

	if f.IsClosed {
		return ClosureStatus{
			Closed:    true,
			MovedToID: f.NewOSID,
		}
	}

	return ClosureStatus{}
}
