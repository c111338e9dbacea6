package moderation

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventStatus is the review status of a moderation-queue item.
type EventStatus string

const (
	EventPending  EventStatus = "PENDING"
	EventApproved EventStatus = "APPROVED"
	EventRejected EventStatus = "REJECTED"
)

// EventType names what kind of contribution is awaiting review.
type EventType string

const (
	EventNewFacility    EventType = "NEW_FACILITY"
	EventClaim          EventType = "CLAIM"
	EventActivityReport EventType = "ACTIVITY_REPORT"
)

// Sources a contribution can arrive from.
var Sources = []string{"WEB", "API", "SLC"}

// Statuses an event can be filtered by.
var Statuses = []string{
	string(EventPending),
	string(EventApproved),
	string(EventRejected),
}

// Event is an admin-queue item representing a pending contribution.
type Event struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type          EventType          `bson:"type" json:"type"`
	Status        EventStatus        `bson:"status" json:"status"`
	Source        string             `bson:"source" json:"source" example:"API"`
	OSID          string             `bson:"osId" json:"os_id" example:"US2025123456ABCD"`
	Name          string             `bson:"name" json:"name"`
	Address       string             `bson:"address,omitempty" json:"address,omitempty"`
	CountryCode   string             `bson:"countryCode" json:"country_code" example:"US"`
	ContributorID string             `bson:"contributorId" json:"contributor_id"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updated_at"`
}

// FilterOptions are the selectable values for the queue filters.
type FilterOptions struct {
	Countries []string `json:"countries"`
	Sources   []string `json:"sources"`
	Statuses  []string `json:"statuses"`
}

// UpdateFiltersRequest carries a partial filter edit. Omitted fields are
// left untouched; dates are ISO "2006-01-02" strings, empty to clear.
type UpdateFiltersRequest struct {
	DataSources        *[]string `json:"data_sources,omitempty"`
	ModerationStatuses *[]string `json:"moderation_statuses,omitempty"`
	Countries          *[]string `json:"countries,omitempty"`
	AfterDate          *string   `json:"after_date,omitempty"`
	BeforeDate         *string   `json:"before_date,omitempty"`
}

// ResolveEventRequest sets a queue item's review outcome.
type ResolveEventRequest struct {
	Status EventStatus `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}
