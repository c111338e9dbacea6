package claims

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the lifecycle status of a claim.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDenied   Status = "DENIED"
	StatusRevoked  Status = "REVOKED"
)

// ReviewNote is an internal note left by a moderator on a claim.
type ReviewNote struct {
	ID        primitive.ObjectID `bson:"id" json:"id"`
	AuthorID  string             `bson:"authorId" json:"author_id"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}

// Message is a moderator-to-claimant message attached to the claim.
type Message struct {
	AuthorID string    `bson:"authorId" json:"author_id"`
	Text     string    `bson:"text" json:"text"`
	SentAt   time.Time `bson:"sentAt" json:"sent_at"`
}

// Attachment is an evidence document uploaded with the claim.
type Attachment struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"publicId" json:"-"`
	FileName string `bson:"fileName" json:"file_name"`
}

// Claim is an assertion by a facility's real-world operator that they own
// or manage that record.
type Claim struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FacilityOSID       string             `bson:"facilityOsId" json:"facility_os_id" example:"US2025123456ABCD"`
	FacilityName       string             `bson:"facilityName" json:"facility_name"`
	ContributorID      string             `bson:"contributorId" json:"contributor_id"`
	ContributorName    string             `bson:"contributorName" json:"contributor_name"`
	CompanyName        string             `bson:"companyName" json:"company_name"`
	JobTitle           string             `bson:"jobTitle" json:"job_title"`
	Website            string             `bson:"website,omitempty" json:"website,omitempty"`
	Status             Status             `bson:"status" json:"status"`
	StatusChangeReason string             `bson:"statusChangeReason,omitempty" json:"status_change_reason,omitempty"`
	ReviewNotes        []ReviewNote       `bson:"reviewNotes,omitempty" json:"review_notes,omitempty"`
	Messages           []Message          `bson:"messages,omitempty" json:"messages,omitempty"`
	Attachments        []Attachment       `bson:"attachments,omitempty" json:"attachments,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updated_at"`
	ApprovedAt         *time.Time         `bson:"approvedAt,omitempty" json:"approved_at,omitempty"`
}

// SubmitClaimRequest is the multipart form for claiming a facility. An
// optional evidence document rides alongside as the "evidence" file field.
type SubmitClaimRequest struct {
	CompanyName string `form:"company_name" binding:"required,min=2,max=200"`
	JobTitle    string `form:"job_title" binding:"required,min=2,max=100"`
	Website     string `form:"website" binding:"omitempty,max=200"`
}

// StatusChangeRequest carries the optional reason for a deny or revoke.
type StatusChangeRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// MessageClaimantRequest is the payload for messaging the claimant.
type MessageClaimantRequest struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}

// NoteRequest is the payload for review-note draft edits and submission.
type NoteRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}
