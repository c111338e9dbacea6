package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user account can carry.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
)

// ClaimedFacilities tracks which production locations a contributor has
// claimed, split by review outcome. An ID moves from Pending to Approved
// when a moderator approves the claim, and leaves both lists on denial or
// revocation.
type ClaimedFacilities struct {
	Approved []string `bson:"approved" json:"approved"`
	Pending  []string `bson:"pending" json:"pending"`
}

// User represents a registered contributor account
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GoogleID          string             `bson:"googleId" json:"googleId"`
	Email             string             `bson:"email" json:"email"`
	Name              string             `bson:"name" json:"name"`
	ContributorName   string             `bson:"contributorName" json:"contributorName"`
	Role              string             `bson:"role" json:"role"`
	ClaimedFacilities ClaimedFacilities  `bson:"claimedFacilities" json:"claimedFacilities"`
	LastLoginAt       time.Time          `bson:"lastLoginAt" json:"lastLoginAt"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// GoogleAuthRequest represents the payload for Google OAuth login
type GoogleAuthRequest struct {
	GoogleIDToken string `json:"googleIdToken" binding:"required"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
}

// UpdateProfileRequest represents the payload for updating the profile
type UpdateProfileRequest struct {
	Name            string `json:"name" binding:"omitempty,min=2,max=100"`
	ContributorName string `json:"contributorName" binding:"omitempty,min=2,max=200"`
}
