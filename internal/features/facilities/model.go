package facilities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClaimStatus is the lifecycle status of a facility claim.
type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "PENDING"
	ClaimApproved ClaimStatus = "APPROVED"
	ClaimDenied   ClaimStatus = "DENIED"
	ClaimRevoked  ClaimStatus = "REVOKED"
)

// ReportStatus is the review status of a facility activity report.
type ReportStatus string

const (
	ReportPending  ReportStatus = "PENDING"
	ReportResolved ReportStatus = "RESOLVED"
)

// ClosureState is what an activity report asserts about the facility.
type ClosureState string

const (
	ClosureOpen   ClosureState = "OPEN"
	ClosureClosed ClosureState = "CLOSED"
)

// Contributor identifies who holds a claim.
type Contributor struct {
	Name string `bson:"name" json:"name"`
}

// ClaimInfo is the facility's one active claim. A facility carries at most
// one at a time; historical claims live in the claims collection.
type ClaimInfo struct {
	Status      ClaimStatus `bson:"status" json:"status"`
	Contributor Contributor `bson:"contributor" json:"contributor"`
	ApprovedAt  *time.Time  `bson:"approvedAt,omitempty" json:"approved_at,omitempty"`
}

// ActivityReport is a contributor assertion that a facility opened or
// closed. Reports are stored most recent first; only reports[0] drives the
// closure banner.
type ActivityReport struct {
	Status       ReportStatus `bson:"status" json:"status"`
	ClosureState ClosureState `bson:"closureState" json:"closure_state"`
	ReportedAt   time.Time    `bson:"reportedAt" json:"reported_at"`
}

// Facility is a production location record.
type Facility struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	OSID            string             `bson:"osId" json:"os_id" example:"US2025123456ABCD"`
	Name            string             `bson:"name" json:"name" example:"Acme Garment Works"`
	Address         string             `bson:"address" json:"address"`
	CountryCode     string             `bson:"countryCode" json:"country_code" example:"US"`
	Lat             float64            `bson:"lat" json:"lat"`
	Lng             float64            `bson:"lng" json:"lng"`
	IsClosed        bool               `bson:"isClosed" json:"is_closed"`
	NewOSID         string             `bson:"newOsId,omitempty" json:"new_os_id,omitempty"`
	ActivityReports []ActivityReport   `bson:"activityReports,omitempty" json:"activity_reports,omitempty"`
	ClaimInfo       *ClaimInfo         `bson:"claimInfo,omitempty" json:"claim_info,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updated_at"`
}

// Feature is the GeoJSON-shaped API representation of a facility.
type Feature struct {
	ID         string            `json:"id"`
	Type       string            `json:"type" example:"Feature"`
	Geometry   Geometry          `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// Geometry is a GeoJSON point.
type Geometry struct {
	Type        string     `json:"type" example:"Point"`
	Coordinates [2]float64 `json:"coordinates"` // [lng, lat]
}

// FeatureProperties carries the facility record plus the derived banner
// state the view layer renders. Banners are nil in embed mode.
type FeatureProperties struct {
	Name            string           `json:"name"`
	Address         string           `json:"address"`
	CountryCode     string           `json:"country_code"`
	IsClosed        bool             `json:"is_closed"`
	NewOSID         string           `json:"new_os_id,omitempty"`
	ActivityReports []ActivityReport `json:"activity_reports,omitempty"`
	ClaimInfo       *ClaimInfo       `json:"claim_info,omitempty"`
	ClaimBanner     *ClaimBanner     `json:"claim_banner,omitempty"`
	ClosureBanner   *ClosureStatus   `json:"closure_banner,omitempty"`
}

// ToFeature converts a stored facility into its API shape. The banners are
// computed by the handler and passed in; both are nil for embed views.
func (f *Facility) ToFeature(claim *ClaimBanner, closure *ClosureStatus) Feature {
	return Feature{
		ID:   f.OSID,
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: [2]float64{f.Lng, f.Lat},
		},
		Properties: FeatureProperties{
			Name:            f.Name,
			Address:         f.Address,
			CountryCode:     f.CountryCode,
			IsClosed:        f.IsClosed,
			NewOSID:         f.NewOSID,
			ActivityReports: f.ActivityReports,
			ClaimInfo:       f.ClaimInfo,
			ClaimBanner:     claim,
			ClosureBanner:   closure,
		},
	}
}

// CreateFacilityRequest is the payload for contributing a new facility.
type CreateFacilityRequest struct {
	Name        string  `json:"name" binding:"required,min=3,max=200" example:"Acme Garment Works"`
	Address     string  `json:"address" binding:"required,min=5,max=300"`
	CountryCode string  `json:"country_code" binding:"required,len=2" example:"US"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Source      string  `json:"source" example:"API"`
}

// ReportClosureRequest is the payload for reporting a facility opened or
// closed.
type ReportClosureRequest struct {
	ClosureState ClosureState `json:"closure_state" binding:"required,oneof=OPEN CLOSED"`
	Reason       string       `json:"reason" binding:"omitempty,max=500"`
}
